package mcp

import (
	"github.com/Aman-CERP/ddcquery/internal/querier"
)

// QueryInput defines the input schema for the ddc_query tool. Omitted
// limits and options take the configured defaults.
type QueryInput struct {
	Numbers                []string          `json:"numbers,omitempty" jsonschema:"candidate DDC numbers, e.g. 026 or T1--09"`
	Keywords               []string          `json:"keywords,omitempty" jsonschema:"subject keywords matched against headings"`
	Facets                 map[string]string `json:"facets,omitempty" jsonschema:"descriptive facets such as form or period"`
	Sources                []string          `json:"sources,omitempty" jsonschema:"source tags to search (Sch2, Sch2_ranges, ManSc, T1, ...); default all"`
	KPerSource             int               `json:"k_per_source,omitempty" jsonschema:"maximum hits per source"`
	MaxDocs                int               `json:"max_docs,omitempty" jsonschema:"maximum hits overall"`
	ExpandSynonyms         *bool             `json:"expand_synonyms,omitempty" jsonschema:"widen keywords with library-science synonyms"`
	IncludeStdSubdivisions *bool             `json:"include_std_subdivisions,omitempty" jsonschema:"probe standard subdivisions of three-digit numbers"`
	UseSemantic            bool              `json:"use_semantic,omitempty" jsonschema:"add embedding similarity to the score"`
	SemanticWeight         *float64          `json:"semantic_weight,omitempty" jsonschema:"blend weight of the semantic signal, 0 to 1"`
	SemanticModel          string            `json:"semantic_model,omitempty" jsonschema:"registered semantic provider name"`
}

// QueryOutput defines the output schema for the ddc_query tool.
type QueryOutput struct {
	RequestID      string              `json:"request_id"`
	Hits           []HitOutput         `json:"hits"`
	NumbersFound   []string            `json:"numbers_found"`
	RoundRelevance float64             `json:"round_relevance" jsonschema:"mean score of the top five hits"`
	Diagnostics    querier.Diagnostics `json:"diagnostics"`
}

// HitOutput is one scored document.
type HitOutput struct {
	Source              string             `json:"source"`
	Number              string             `json:"number"`
	Heading             string             `json:"heading"`
	Description         string             `json:"description,omitempty"`
	Score               float64            `json:"score"`
	Signals             map[string]float64 `json:"signals" jsonschema:"per-signal values that produced the score"`
	MatchedNumbers      []string           `json:"matched_numbers,omitempty"`
	RangeFallback       bool               `json:"range_fallback,omitempty"`
	StdSubdivisionProbe bool               `json:"std_subdivision_probe,omitempty"`
}

// ParseInput defines the input schema for the ddc_parse tool.
type ParseInput struct {
	Notation string `json:"notation" jsonschema:"a DDC notation such as 220.1-220.Summary or T1-0922 vs T1-093-099"`
}

// ParseOutput explains how a notation was parsed.
type ParseOutput struct {
	Raw     string         `json:"raw"`
	Form    string         `json:"form" jsonschema:"number, range or versus"`
	Numbers []NumberOutput `json:"numbers,omitempty"`
	Ranges  []RangeOutput  `json:"ranges,omitempty"`
}

// NumberOutput is a parsed single number.
type NumberOutput struct {
	Raw         string `json:"raw"`
	TablePrefix string `json:"table_prefix,omitempty"`
	Canonical   string `json:"canonical"`
}

// RangeOutput is a parsed range.
type RangeOutput struct {
	Raw     string `json:"raw"`
	Lower   string `json:"lower"`
	Upper   string `json:"upper"`
	Quality string `json:"quality" jsonschema:"exact, loose-prefix or malformed-fallback"`
}

// StatsInput defines the input schema for the ddc_stats tool (no parameters).
type StatsInput struct{}

// StatsOutput reports the loaded corpus and usage counters.
type StatsOutput struct {
	Sources        []SourceStat  `json:"sources"`
	TotalDocuments int           `json:"total_documents"`
	Usage          querier.Stats `json:"usage"`
	Semantic       SemanticInfo  `json:"semantic"`
}

// SourceStat is the document count of one loaded source.
type SourceStat struct {
	Source    string `json:"source"`
	Documents int    `json:"documents"`
}

// SemanticInfo describes the semantic providers.
type SemanticInfo struct {
	Models       []string `json:"models"`
	DefaultModel string   `json:"default_model,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Dimensions   int      `json:"dimensions,omitempty"`
	Status       string   `json:"status" jsonschema:"ready, unavailable or none"`
}
