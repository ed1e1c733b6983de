package search

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/ddcquery/internal/embed"
	"github.com/Aman-CERP/ddcquery/internal/errors"
)

// EmbeddingSimilarity scores texts by the cosine of their embeddings,
// clamped at 0. Calls go through a circuit breaker so a dead provider is
// skipped quickly after repeated failures.
type EmbeddingSimilarity struct {
	embedder embed.Embedder
	breaker  *errors.CircuitBreaker
}

var _ Similarity = (*EmbeddingSimilarity)(nil)

// NewEmbeddingSimilarity wraps embedder. A nil breaker gets a default one.
func NewEmbeddingSimilarity(embedder embed.Embedder, breaker *errors.CircuitBreaker) (*EmbeddingSimilarity, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrNilDependency)
	}
	if breaker == nil {
		breaker = errors.NewCircuitBreaker("embed:" + embedder.ModelName())
	}
	return &EmbeddingSimilarity{embedder: embedder, breaker: breaker}, nil
}

// Similarity embeds a and b in one batch and returns their cosine.
func (s *EmbeddingSimilarity) Similarity(ctx context.Context, a, b string) (float64, error) {
	vecs, err := errors.CircuitDo(s.breaker, func() ([][]float32, error) {
		return s.embedder.EmbedBatch(ctx, []string{a, b})
	})
	if err != nil {
		return 0, errors.New(errors.ErrCodeEmbeddingFailed, "embedding failed", err).
			WithDetail("model", s.embedder.ModelName())
	}
	if len(vecs) != 2 {
		return 0, errors.New(errors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("expected 2 embeddings, got %d", len(vecs)), nil)
	}
	if len(vecs[0]) != len(vecs[1]) {
		return 0, errors.New(errors.ErrCodeDimensionMismatch, "embedding dimensions differ", nil).
			WithDetail("a", fmt.Sprint(len(vecs[0]))).
			WithDetail("b", fmt.Sprint(len(vecs[1])))
	}
	return max(embed.Cosine(vecs[0], vecs[1]), 0), nil
}

// Model returns the embedder's model name.
func (s *EmbeddingSimilarity) Model() string {
	return s.embedder.ModelName()
}
