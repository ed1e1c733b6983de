package search

import (
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/registry"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/ddcquery/internal/scoring"
)

// DefaultTermCacheSize is the number of analyzed texts kept by TextMatcher.
const DefaultTermCacheSize = 8192

// approxTokenThreshold is the Ratio at which two single words count as the
// same word for keyword coverage ("catalogue" vs "catalog").
const approxTokenThreshold = 0.85

// terms is the analyzed form of a text.
type terms struct {
	lower string
	words []string
	stems map[string]struct{}
}

// keyword is a prepared query keyword.
type keyword struct {
	text  string
	words []string
	stems []string
}

// TextMatcher computes the text signals (heading_fuzzy, keyword_coverage).
// Stemming uses bleve's English analyzer; analyzed document texts are kept
// in an LRU cache shared by all queries. Safe for concurrent use.
type TextMatcher struct {
	analyzer analysis.Analyzer
	cache    *lru.Cache[string, *terms]
}

// NewTextMatcher builds a matcher. cacheSize <= 0 uses DefaultTermCacheSize.
func NewTextMatcher(cacheSize int) (*TextMatcher, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultTermCacheSize
	}
	analyzer, err := registry.NewCache().AnalyzerNamed(en.AnalyzerName)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, *terms](cacheSize)
	if err != nil {
		return nil, err
	}
	return &TextMatcher{analyzer: analyzer, cache: cache}, nil
}

// Stems returns the English stems of text, stop words removed.
func (m *TextMatcher) Stems(text string) []string {
	stream := m.analyzer.Analyze([]byte(text))
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		out = append(out, string(tok.Term))
	}
	return out
}

func (m *TextMatcher) analyze(text string) *terms {
	if t, ok := m.cache.Get(text); ok {
		return t
	}
	lower := strings.ToLower(text)
	t := &terms{
		lower: lower,
		words: splitWords(lower),
		stems: make(map[string]struct{}),
	}
	for _, s := range m.Stems(text) {
		t.stems[s] = struct{}{}
	}
	m.cache.Add(text, t)
	return t
}

// prepareKeywords analyzes normalized keywords once per query.
func (m *TextMatcher) prepareKeywords(normalized []string) []keyword {
	out := make([]keyword, 0, len(normalized))
	for _, kw := range normalized {
		out = append(out, keyword{
			text:  kw,
			words: splitWords(kw),
			stems: m.Stems(kw),
		})
	}
	return out
}

// HeadingSimilarity is the best partial similarity between the heading and
// any keyword. A keyword found verbatim in the heading saturates to 1.
// Similarities below scoring.FuzzyCutoff count as 0.
func (m *TextMatcher) HeadingSimilarity(heading string, keywords []string) float64 {
	return m.headingSimilarity(heading, m.prepareKeywords(normalizeKeywords(keywords)))
}

func (m *TextMatcher) headingSimilarity(heading string, keywords []keyword) float64 {
	if heading == "" || len(keywords) == 0 {
		return 0
	}
	h := m.analyze(heading)
	best := 0.0
	for _, kw := range keywords {
		if strings.Contains(h.lower, kw.text) {
			return 1
		}
		if r := windowRatio(kw.words, h.words); r > best {
			best = r
		}
	}
	if best < scoring.FuzzyCutoff {
		return 0
	}
	return best
}

// Coverage is the fraction of keywords found in text verbatim, by stem, or
// by approximate word match.
func (m *TextMatcher) Coverage(text string, keywords []string) float64 {
	prepared := m.prepareKeywords(normalizeKeywords(keywords))
	groups := make([][]keyword, len(prepared))
	for i, kw := range prepared {
		groups[i] = []keyword{kw}
	}
	return m.coverage(text, groups)
}

// coverage counts a group as found when any of its variants is found. A
// group is an original keyword followed by its synonyms, so expansion never
// lowers the fraction.
func (m *TextMatcher) coverage(text string, groups [][]keyword) float64 {
	if text == "" || len(groups) == 0 {
		return 0
	}
	t := m.analyze(text)
	found := 0
	for _, group := range groups {
		for _, kw := range group {
			if keywordFound(kw, t) {
				found++
				break
			}
		}
	}
	return float64(found) / float64(len(groups))
}

func keywordFound(kw keyword, t *terms) bool {
	if strings.Contains(t.lower, kw.text) {
		return true
	}
	if len(kw.stems) > 0 && allStemsPresent(kw.stems, t.stems) {
		return true
	}
	return allWordsApprox(kw.words, t.words)
}

func allStemsPresent(stems []string, set map[string]struct{}) bool {
	for _, s := range stems {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func allWordsApprox(needle, haystack []string) bool {
	if len(needle) == 0 {
		return false
	}
	for _, w := range needle {
		matched := false
		for _, h := range haystack {
			if Ratio(w, h) >= approxTokenThreshold {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
