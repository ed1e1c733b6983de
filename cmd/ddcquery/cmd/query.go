package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/ddcquery/internal/config"
	"github.com/Aman-CERP/ddcquery/internal/errors"
	"github.com/Aman-CERP/ddcquery/internal/mcp"
	"github.com/Aman-CERP/ddcquery/internal/output"
	"github.com/Aman-CERP/ddcquery/internal/querier"
)

// queryOptions holds CLI flags for query.
type queryOptions struct {
	numbers        []string
	keywords       []string
	facets         map[string]string
	sources        []string
	kPerSource     int
	maxDocs        int
	noExpand       bool
	stdSubdivs     bool
	semantic       bool
	semanticWeight float64
	model          string
	format         string // "text", "json"
	requestFile    string
}

func newQueryCmd(st *state) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Retrieve DDC documents for numbers and keywords",
		Long: `Retrieve reference documents for candidate DDC numbers and keywords.

Every source is searched independently, hits are merged by score and the
signals behind each score are shown. A full request can be read from a JSON
file with --request (use - for stdin).

Examples:
  ddcquery query -n 026 -n 020 -k libraries -s Sch2 -s Sch2_ranges
  ddcquery query -n 220.15 --format json
  ddcquery query -k poetry --facet form=anthology --semantic
  ddcquery query --request request.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != "text" && opts.format != "json" {
				return errors.New(errors.ErrCodeInvalidInput,
					fmt.Sprintf("unknown output format %q", opts.format), nil).
					WithSuggestion("use --format text or --format json")
			}
			req, err := opts.request(cmd, st.cfg.Search)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), cmd, st, req, opts.format)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.numbers, "number", "n", nil, "Candidate DDC number (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.keywords, "keyword", "k", nil, "Keyword or phrase (repeatable)")
	cmd.Flags().StringToStringVar(&opts.facets, "facet", nil, "Facet as name=value (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.sources, "source", "s", nil, "Source tag to search (repeatable, default all)")
	cmd.Flags().IntVar(&opts.kPerSource, "k-per-source", 0, "Hits kept per source (default from config)")
	cmd.Flags().IntVar(&opts.maxDocs, "max-docs", 0, "Hits returned overall (default from config)")
	cmd.Flags().BoolVar(&opts.noExpand, "no-expand", false, "Disable keyword synonym expansion")
	cmd.Flags().BoolVar(&opts.stdSubdivs, "std-subdivisions", false, "Probe Table 1 standard subdivisions")
	cmd.Flags().BoolVar(&opts.semantic, "semantic", false, "Add the semantic similarity signal")
	cmd.Flags().Float64Var(&opts.semanticWeight, "semantic-weight", 0, "Blend weight of semantic similarity (0-1)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Semantic model name")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().StringVar(&opts.requestFile, "request", "", "Read the full request as JSON from a file (- for stdin)")

	return cmd
}

// request builds the querier request from a request file or from flags.
// Flags only override configured defaults when given.
func (o *queryOptions) request(cmd *cobra.Command, defaults config.SearchConfig) (*querier.Request, error) {
	if o.requestFile != "" {
		data, err := readRequestFile(cmd.InOrStdin(), o.requestFile)
		if err != nil {
			return nil, err
		}
		return querier.DecodeRequest(data)
	}

	input := mcp.QueryInput{
		Numbers:       o.numbers,
		Keywords:      o.keywords,
		Facets:        o.facets,
		Sources:       o.sources,
		KPerSource:    o.kPerSource,
		MaxDocs:       o.maxDocs,
		UseSemantic:   o.semantic,
		SemanticModel: o.model,
	}
	if o.noExpand {
		off := false
		input.ExpandSynonyms = &off
	}
	if o.stdSubdivs {
		on := true
		input.IncludeStdSubdivisions = &on
	}
	if cmd.Flags().Changed("semantic-weight") {
		w := o.semanticWeight
		input.SemanticWeight = &w
	}
	return mcp.BuildRequest(input, defaults), nil
}

func readRequestFile(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("cannot read request file", err).
			WithDetail("path", path)
	}
	return data, nil
}

func runQuery(ctx context.Context, cmd *cobra.Command, st *state, req *querier.Request, format string) error {
	a, err := newApp(ctx, st.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.querier.Execute(ctx, req)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(mcp.ToQueryOutput(resp))
	}
	printQueryResponse(output.New(cmd.OutOrStdout()), resp)
	return nil
}

func printQueryResponse(out *output.Writer, resp *querier.Response) {
	if len(resp.Hits) == 0 {
		out.Warning("No DDC documents matched")
	} else {
		out.Heading(fmt.Sprintf("DDC Hits (%d)", len(resp.Hits)))
		rows := make([][]string, 0, len(resp.Hits))
		for i, h := range resp.Hits {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				h.Key.Source.String(),
				h.Document.Number,
				h.Document.Heading,
				strconv.FormatFloat(h.Score, 'f', 3, 64),
				mcp.FormatSignals(h.Signals),
			})
		}
		out.Table([]string{"#", "SOURCE", "NUMBER", "HEADING", "SCORE", "SIGNALS"}, rows)
		out.Newline()
		out.KeyValue("Round relevance", strconv.FormatFloat(resp.RoundRelevance(), 'f', 3, 64))
	}
	if len(resp.NumbersFound) > 0 {
		out.KeyValue("Numbers found", strings.Join(resp.NumbersFound, ", "))
	}
	for _, note := range mcp.DiagnosticNotes(resp.Diagnostics) {
		out.Warning(note)
	}
}
