// Package search scores corpus documents against a structured query.
//
// Each document of a source receives a closed set of signals (exact number,
// range containment, heading similarity, keyword coverage, optional semantic
// similarity and the standard-subdivision bonus) which scoring.Combine folds
// into one score. Hits are ranked by score, then source priority, then
// insertion order, so results are reproducible.
package search

import (
	"context"

	"github.com/Aman-CERP/ddcquery/internal/corpus"
	"github.com/Aman-CERP/ddcquery/internal/scoring"
)

// Expander widens query keywords. Implementations return the input
// keywords first.
type Expander interface {
	Expand(keywords []string) []string
}

// Similarity scores two texts in [0,1].
type Similarity interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Query is one search over one or more sources.
type Query struct {
	Numbers  []string
	Keywords []string
	Facets   map[string]*string

	// KPerSource caps hits per source. Values below 1 mean 1.
	KPerSource int

	ExpandSynonyms         bool
	IncludeStdSubdivisions bool

	UseSemantic bool
	// SemanticWeight in [0,1]; nil means scoring.DefaultSemanticWeight.
	SemanticWeight *float64
	// SemanticModel selects a registered provider; empty means the default.
	SemanticModel string
}

// Hit is a scored document. Document is borrowed from the corpus and must
// not be modified.
type Hit struct {
	Key      corpus.DocKey    `json:"key"`
	Document *corpus.Document `json:"document"`
	Score    float64          `json:"score"`
	Signals  scoring.Signals  `json:"signals"`

	// MatchedNumbers are the query numbers the notation equals.
	MatchedNumbers []string `json:"matched_numbers,omitempty"`

	// Fallback marks range credit that came only from a malformed range.
	Fallback bool `json:"range_fallback,omitempty"`

	// Probe marks hits that received the standard-subdivision bonus.
	Probe bool `json:"std_subdivision_probe,omitempty"`
}

// SourceResult is the outcome of searching one source.
type SourceResult struct {
	Source corpus.SourceTag
	Hits   []*Hit

	// Missing is set when the source is absent or empty.
	Missing bool

	// Candidates counts documents with a non-zero score before truncation.
	Candidates int

	// SemanticError is set when the similarity provider failed; the
	// semantic signal was then dropped for the whole source.
	SemanticError string
}
