package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ddcquery/internal/mcp"
	"github.com/Aman-CERP/ddcquery/internal/output"
)

func newParseCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse <notation>",
		Short: "Explain how a DDC notation is parsed",
		Long: `Explain how a DDC notation is parsed: a single number, a range with
its parse quality, or a "vs" comparison.

Examples:
  ddcquery parse 026.09
  ddcquery parse 220.1-220.Summary
  ddcquery parse "T1-0922 vs T1-093-099" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := mcp.ExplainNotation(strings.Join(args, " "))
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(parsed)
			}
			printParse(output.New(cmd.OutOrStdout()), parsed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printParse(out *output.Writer, p *mcp.ParseOutput) {
	out.Heading(p.Raw)
	out.KeyValue("Form", p.Form)
	for _, n := range p.Numbers {
		out.KeyValue("Number", n.Canonical)
	}
	for _, r := range p.Ranges {
		out.KeyValue("Range", r.Lower+" .. "+r.Upper+" ("+r.Quality+")")
	}
}
