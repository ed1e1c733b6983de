package search

import (
	"strings"
)

// SynonymExpander widens query keywords with subject vocabulary so that a
// cataloger's term ("cookery") meets the heading's term ("cooking").
//
// The expansion strategy:
//  1. Keep original keywords first, normalized and deduplicated
//  2. Append up to maxExpansions synonyms per keyword
type SynonymExpander struct {
	synonyms      map[string][]string
	maxExpansions int
}

// SynonymExpanderOption configures the expander.
type SynonymExpanderOption func(*SynonymExpander)

// WithMaxExpansions sets the maximum synonyms added per keyword.
func WithMaxExpansions(n int) SynonymExpanderOption {
	return func(e *SynonymExpander) {
		if n >= 0 {
			e.maxExpansions = n
		}
	}
}

// WithCustomSynonyms adds synonym mappings on top of SubjectSynonyms.
func WithCustomSynonyms(synonyms map[string][]string) SynonymExpanderOption {
	return func(e *SynonymExpander) {
		for k, v := range synonyms {
			k = normalizeKeyword(k)
			e.synonyms[k] = append(append([]string(nil), e.synonyms[k]...), v...)
		}
	}
}

// NewSynonymExpander creates an expander with the default subject synonyms.
func NewSynonymExpander(opts ...SynonymExpanderOption) *SynonymExpander {
	e := &SynonymExpander{
		synonyms:      make(map[string][]string, len(SubjectSynonyms)),
		maxExpansions: 3,
	}
	for k, v := range SubjectSynonyms {
		e.synonyms[k] = v
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns the keywords followed by their synonyms. The result is
// lower-cased and free of duplicates; its order depends only on the input.
func (e *SynonymExpander) Expand(keywords []string) []string {
	seen := make(map[string]bool)
	expanded := make([]string, 0, len(keywords))

	originals := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = normalizeKeyword(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		originals = append(originals, kw)
		expanded = append(expanded, kw)
	}

	for _, kw := range originals {
		added := 0
		for _, syn := range e.synonyms[kw] {
			if added >= e.maxExpansions {
				break
			}
			syn = normalizeKeyword(syn)
			if syn == "" || seen[syn] {
				continue
			}
			seen[syn] = true
			expanded = append(expanded, syn)
			added++
		}
	}

	return expanded
}

// normalizeKeyword lower-cases and collapses whitespace.
func normalizeKeyword(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// normalizeKeywords normalizes and deduplicates keywords, keeping first
// occurrences in order.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = normalizeKeyword(kw)
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
