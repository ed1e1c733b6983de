package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ddcquery/internal/embed"
	"github.com/Aman-CERP/ddcquery/internal/errors"
)

// stubEmbedder returns fixed vectors per text, or fails.
type stubEmbedder struct {
	vectors map[string][]float32
	fail    bool
	calls   int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return v[0], nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("connection refused")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int                { return 2 }
func (s *stubEmbedder) ModelName() string              { return "stub" }
func (s *stubEmbedder) Available(context.Context) bool { return !s.fail }
func (s *stubEmbedder) Close() error                   { return nil }

func TestNewEmbeddingSimilarity_NilEmbedder(t *testing.T) {
	_, err := NewEmbeddingSimilarity(nil, nil)
	require.ErrorIs(t, err, ErrNilDependency)
}

func TestEmbeddingSimilarity(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{
		"a":    {1, 0},
		"same": {2, 0},
		"orth": {0, 1},
		"opp":  {-1, 0},
		"long": {1, 0, 0},
	}}
	s, err := NewEmbeddingSimilarity(stub, nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", s.Model())
	ctx := context.Background()

	got, err := s.Similarity(ctx, "a", "same")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-9)

	got, err = s.Similarity(ctx, "a", "orth")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)

	// Negative cosine clamps to 0.
	got, err = s.Similarity(ctx, "a", "opp")
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)

	_, err = s.Similarity(ctx, "a", "long")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDimensionMismatch, errors.GetCode(err))
}

func TestEmbeddingSimilarity_BreakerOpens(t *testing.T) {
	// Given: a failing embedder behind a two-failure breaker
	stub := &stubEmbedder{fail: true}
	s, err := NewEmbeddingSimilarity(stub, errors.NewCircuitBreaker("test", errors.WithMaxFailures(2)))
	require.NoError(t, err)

	// When: calling three times
	for i := 0; i < 3; i++ {
		_, err = s.Similarity(context.Background(), "a", "b")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeEmbeddingFailed, errors.GetCode(err))
	}

	// Then: the third call never reached the embedder
	assert.Equal(t, 2, stub.calls)
	assert.ErrorIs(t, err, errors.ErrCircuitOpen)
}

func TestEmbeddingSimilarity_WithStaticEmbedder(t *testing.T) {
	s, err := NewEmbeddingSimilarity(embed.NewStaticEmbedder(), nil)
	require.NoError(t, err)

	near, err := s.Similarity(context.Background(), "medical libraries", "Libraries devoted to medicine")
	require.NoError(t, err)
	far, err := s.Similarity(context.Background(), "medical libraries", "Volcanoes and earthquakes")
	require.NoError(t, err)
	assert.Greater(t, near, far)
}
