package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

// StaticModelName identifies the static embedder in diagnostics.
const StaticModelName = "static"

// StaticEmbedder hashes words and character trigrams into a fixed-size
// vector. It needs no network or model download and is deterministic, at the
// cost of only capturing lexical overlap.
type StaticEmbedder struct {
	mu     sync.RWMutex
	closed bool
}

// englishStopWords carry no subject content in headings and facet values.
var englishStopWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true,
	"in": true, "on": true, "for": true, "to": true, "by": true,
	"with": true, "from": true, "or": true, "as": true, "at": true,
	"is": true, "are": true, "its": true, "their": true, "into": true,
	"about": true, "other": true, "general": true, "specific": true,
}

const (
	wordWeight    = 0.7
	trigramWeight = 0.3
	trigramSize   = 3
)

// NewStaticEmbedder creates a static embedder.
func NewStaticEmbedder() *StaticEmbedder {
	return &StaticEmbedder{}
}

// Embed generates the embedding for a single text. Blank input yields the
// zero vector.
func (e *StaticEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embedder is closed")
	}

	words := filterStopWords(tokenize(text))
	vector := make([]float32, StaticDimensions)
	if len(words) == 0 {
		return vector, nil
	}
	for _, w := range words {
		vector[hashToIndex(w, StaticDimensions)] += wordWeight
		// Trigrams are taken per word, padded, so "library" and
		// "libraries" share most of their mass.
		for _, g := range trigrams("^" + w + "$") {
			vector[hashToIndex(g, StaticDimensions)] += trigramWeight
		}
	}
	return normalizeVector(vector), nil
}

// EmbedBatch embeds each text in order.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns StaticDimensions.
func (e *StaticEmbedder) Dimensions() int {
	return StaticDimensions
}

// ModelName returns StaticModelName.
func (e *StaticEmbedder) ModelName() string {
	return StaticModelName
}

// Available is true until Close.
func (e *StaticEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close marks the embedder closed. Safe to call more than once.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func filterStopWords(tokens []string) []string {
	filtered := tokens[:0]
	for _, t := range tokens {
		if !englishStopWords[t] {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func trigrams(word string) []string {
	runes := []rune(word)
	if len(runes) < trigramSize {
		return []string{word}
	}
	out := make([]string, 0, len(runes)-trigramSize+1)
	for i := 0; i+trigramSize <= len(runes); i++ {
		out = append(out, string(runes[i:i+trigramSize]))
	}
	return out
}

func hashToIndex(s string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dims))
}
