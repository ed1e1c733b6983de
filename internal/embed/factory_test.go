package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderType
		wantErr bool
	}{
		{"", ProviderStatic, false},
		{"Static", ProviderStatic, false},
		{" ollama ", ProviderOllama, false},
		{"mlx", "", true},
	}
	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewEmbedder_StaticIsCachedByDefault(t *testing.T) {
	t.Setenv("DDCQUERY_EMBED_PROVIDER", "")
	e, err := NewEmbedder(context.Background(), ProviderStatic, Options{})
	require.NoError(t, err)
	c, ok := e.(*CachedEmbedder)
	require.True(t, ok)
	assert.IsType(t, &StaticEmbedder{}, c.Inner())
}

func TestNewEmbedder_NegativeCacheDisables(t *testing.T) {
	t.Setenv("DDCQUERY_EMBED_PROVIDER", "")
	e, err := NewEmbedder(context.Background(), ProviderStatic, Options{CacheSize: -1})
	require.NoError(t, err)
	assert.IsType(t, &StaticEmbedder{}, e)
}

func TestNewEmbedder_EnvOverride(t *testing.T) {
	// Given: the environment forces the static provider
	t.Setenv("DDCQUERY_EMBED_PROVIDER", "static")

	// When: ollama is requested
	e, err := NewEmbedder(context.Background(), ProviderOllama, Options{CacheSize: -1})

	// Then: the environment wins and no server is contacted
	require.NoError(t, err)
	assert.Equal(t, StaticModelName, e.ModelName())
}

func TestNewEmbedder_OllamaUnavailable(t *testing.T) {
	t.Setenv("DDCQUERY_EMBED_PROVIDER", "")
	t.Setenv("DDCQUERY_OLLAMA_HOST", "http://127.0.0.1:1")
	_, err := NewEmbedder(context.Background(), ProviderOllama, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama unavailable")
}

func TestNewEmbedder_OllamaViaFakeServer(t *testing.T) {
	t.Setenv("DDCQUERY_EMBED_PROVIDER", "")
	t.Setenv("DDCQUERY_OLLAMA_HOST", "")
	srv, _ := fakeOllama(t, "all-minilm", 0)
	e, err := NewEmbedder(context.Background(), ProviderOllama, Options{OllamaHost: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaModel, e.ModelName())
	assert.Equal(t, 3, e.Dimensions())
}
