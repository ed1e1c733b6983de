package cmd

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/output"
)

// sourceRow is one line of the sources listing.
type sourceRow struct {
	Source    string `json:"source"`
	Documents int    `json:"documents"`
	Error     string `json:"error,omitempty"`
}

func newSourcesCmd(st *state) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List loaded sources and document counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, report, err := loadCorpus(cmd.Context(), st.cfg)
			if err != nil {
				return err
			}
			rows := sourceRows(c, report)
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printSources(output.New(cmd.OutOrStdout()), rows, c.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

// sourceRows lists every known source in priority order, with failures.
func sourceRows(c *corpus.Corpus, report *corpus.LoadReport) []sourceRow {
	counts := c.Counts()
	rows := make([]sourceRow, 0, len(corpus.AllSources()))
	for _, tag := range corpus.AllSources() {
		row := sourceRow{Source: tag.String(), Documents: counts[tag]}
		if err, ok := report.Failed[tag]; ok {
			row.Error = err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

func printSources(out *output.Writer, rows []sourceRow, total int) {
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		docs := strconv.Itoa(r.Documents)
		if r.Documents == 0 {
			docs = "-"
		}
		table = append(table, []string{r.Source, docs})
	}
	out.Table([]string{"SOURCE", "DOCUMENTS"}, table)
	out.Newline()
	out.KeyValue("Total documents", total)
	for _, r := range rows {
		if r.Error != "" {
			out.Warningf("%s failed to load: %s", r.Source, r.Error)
		}
	}
}
