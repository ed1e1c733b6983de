package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ddcquery/internal/errors"
)

// fakeOllama serves /api/tags and /api/embed. The first failFirst embed
// calls answer 503.
func fakeOllama(t *testing.T, model string, failFirst int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"` + model + `:latest"}]}`))
		case "/api/embed":
			n := calls.Add(1)
			if n <= failFirst {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			var req ollamaEmbedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			resp := ollamaEmbedResponse{Model: req.Model}
			for _, text := range req.Input {
				resp.Embeddings = append(resp.Embeddings, []float64{float64(len(text)), 0, 0})
			}
			_ = json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestOllamaEmbedder_HealthCheckLearnsDimensions(t *testing.T) {
	// Given: a server listing the model
	srv, _ := fakeOllama(t, "all-minilm", 0)

	// When: creating the embedder with a tagless model name
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: srv.URL + "/", Model: "all-minilm"})

	// Then: it connects and knows the dimension
	require.NoError(t, err)
	defer func() { _ = e.Close() }()
	assert.Equal(t, 3, e.Dimensions())
	assert.Equal(t, "all-minilm", e.ModelName())
}

func TestOllamaEmbedder_MissingModel(t *testing.T) {
	srv, _ := fakeOllama(t, "other-model", 0)
	_, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: srv.URL, Model: "all-minilm"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNetworkUnavailable, errors.GetCode(err))
}

func TestOllamaEmbedder_EmbedBatch_ChunksAndNormalizes(t *testing.T) {
	srv, calls := fakeOllama(t, "m", 0)
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host: srv.URL, Model: "m", BatchSize: 2, SkipHealthCheck: true,
	})
	require.NoError(t, err)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, int32(2), calls.Load())
	assert.InDelta(t, 1.0, float64(vecs[2][0]), 1e-6)
	assert.Equal(t, 3, e.Dimensions())
}

func TestOllamaEmbedder_RetriesServerErrors(t *testing.T) {
	srv, calls := fakeOllama(t, "m", 1)
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{
		Host: srv.URL, Model: "m", MaxRetries: 2, SkipHealthCheck: true,
	})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOllamaEmbedder_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: srv.URL, SkipHealthCheck: true})
	require.NoError(t, err)
	_, err = e.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmbeddingFailed, errors.GetCode(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestOllamaEmbedder_Closed(t *testing.T) {
	srv, _ := fakeOllama(t, "m", 0)
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: srv.URL, Model: "m", SkipHealthCheck: true})
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.False(t, e.Available(context.Background()))
	_, err = e.Embed(context.Background(), "x")
	assert.Error(t, err)
}
