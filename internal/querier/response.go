package querier

import (
	"github.com/Aman-CERP/ddcquery/internal/search"
)

// Response is the result of one Execute.
type Response struct {
	RequestID    string        `json:"request_id"`
	Hits         []*search.Hit `json:"hits"`
	NumbersFound []string      `json:"numbers_found"`
	Diagnostics  Diagnostics   `json:"diagnostics"`
}

// Diagnostics explain how a response was produced. Every field is derived
// deterministically from the request and corpus.
type Diagnostics struct {
	// SourceCounts is the hit count per searched source after the
	// per-source cap, before the global merge.
	SourceCounts map[string]int `json:"source_counts"`

	// ReturnedBySource counts the returned hits per source.
	ReturnedBySource map[string]int `json:"returned_by_source"`

	// TopSignals is the mean of each signal over the returned hits.
	TopSignals map[string]float64 `json:"top_signals"`

	DroppedSources []string `json:"dropped_sources,omitempty"`
	MissingSources []string `json:"missing_sources,omitempty"`
	ClampedLimits  []string `json:"clamped_limits,omitempty"`

	// FallbackRanges lists returned notations credited only through a
	// malformed range.
	FallbackRanges []string `json:"fallback_ranges,omitempty"`

	// StdSubdivisionHits counts returned hits carrying the probe bonus.
	StdSubdivisionHits int `json:"std_subdivision_hits,omitempty"`

	SemanticModel       string            `json:"semantic_model,omitempty"`
	SemanticUnavailable bool              `json:"semantic_unavailable,omitempty"`
	SemanticNote        string            `json:"semantic_note,omitempty"`
	SemanticErrors      map[string]string `json:"semantic_errors,omitempty"`

	// LiteratureTableHint suggests T3A, T3B or T3C when facets describe a
	// literary work.
	LiteratureTableHint string `json:"literature_table_hint,omitempty"`
}

// roundRelevanceTop is the number of leading hits averaged by RoundRelevance.
const roundRelevanceTop = 5

// RoundRelevance is the mean score of the top five hits, 0 without hits.
func (r *Response) RoundRelevance() float64 {
	n := min(len(r.Hits), roundRelevanceTop)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range r.Hits[:n] {
		sum += h.Score
	}
	return sum / float64(n)
}

// Stats are cumulative counters since the Querier was created.
type Stats struct {
	TotalRequests  int64 `json:"total_requests"`
	TotalHits      int64 `json:"total_hits"`
	SourcesScanned int64 `json:"sources_scanned"`
}
