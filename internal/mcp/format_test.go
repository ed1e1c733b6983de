package mcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/querier"
	"github.com/Aman-CERP/ddcquery/internal/scoring"
	"github.com/Aman-CERP/ddcquery/internal/search"
)

func TestFormatQueryResponse_Empty(t *testing.T) {
	// Given: a response with no hits but several diagnostics
	resp := &querier.Response{
		Hits: []*search.Hit{},
		Diagnostics: querier.Diagnostics{
			DroppedSources:      []string{"Sch9"},
			MissingSources:      []string{"ManTB"},
			ClampedLimits:       []string{"max_docs: 0 -> 1"},
			SemanticUnavailable: true,
			SemanticNote:        "no semantic provider configured",
			LiteratureTableHint: "T3B",
		},
	}

	// When: formatting
	md := FormatQueryResponse(resp)

	// Then: the empty notice and every note appear
	assert.True(t, strings.HasPrefix(md, "No DDC documents matched."))
	assert.Contains(t, md, "Unknown sources ignored: Sch9")
	assert.Contains(t, md, "Sources not loaded: ManTB")
	assert.Contains(t, md, "Limit adjusted: max_docs: 0 -> 1")
	assert.Contains(t, md, "Semantic similarity unavailable: no semantic provider configured")
	assert.Contains(t, md, "Literature facets suggest Table 3B")
	assert.NotContains(t, md, "Round relevance")
}

func TestFormatQueryResponse_Hits(t *testing.T) {
	var sig scoring.Signals
	sig.Set(scoring.SignalExactNumber, 1)
	sig.Set(scoring.SignalRangeContainment, 0)
	resp := &querier.Response{
		Hits: []*search.Hit{{
			Key:      corpus.DocKey{Source: corpus.SourceSch2},
			Document: &corpus.Document{Number: "026", Heading: "Libraries | archives", Source: corpus.SourceSch2},
			Score:    0.4,
			Signals:  sig,
		}},
		NumbersFound: []string{"026"},
	}

	md := FormatQueryResponse(resp)

	assert.Contains(t, md, "## DDC Hits (1)")
	assert.Contains(t, md, "| 1 | Sch2 | `026` | Libraries \\| archives | 0.400 | exact_number=1.00 |")
	assert.Contains(t, md, "Round relevance: 0.400")
	assert.Contains(t, md, "Numbers found: 026")
	assert.NotContains(t, md, "### Diagnostics")
}

func TestFormatSignals_NoneSet(t *testing.T) {
	assert.Equal(t, "-", FormatSignals(scoring.Signals{}))
}
