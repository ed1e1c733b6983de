package embed

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ProviderType names an embedding provider.
type ProviderType string

const (
	// ProviderStatic uses hash-based embeddings. Always available.
	ProviderStatic ProviderType = "static"

	// ProviderOllama uses an Ollama server.
	ProviderOllama ProviderType = "ollama"
)

// ParseProvider maps a config value to a provider. Empty means static.
func ParseProvider(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ProviderStatic):
		return ProviderStatic, nil
	case string(ProviderOllama):
		return ProviderOllama, nil
	default:
		return "", fmt.Errorf("unknown embedding provider %q (want static or ollama)", s)
	}
}

// Options configures NewEmbedder.
type Options struct {
	Model      string
	OllamaHost string
	// CacheSize bounds the LRU wrapper. Negative disables caching.
	CacheSize int
}

// NewEmbedder creates the embedder for provider. DDCQUERY_EMBED_PROVIDER
// and DDCQUERY_OLLAMA_HOST override the arguments. An explicitly chosen
// provider that is unreachable is an error; there is no silent fallback.
func NewEmbedder(ctx context.Context, provider ProviderType, opts Options) (Embedder, error) {
	if env := os.Getenv("DDCQUERY_EMBED_PROVIDER"); env != "" {
		p, err := ParseProvider(env)
		if err != nil {
			return nil, err
		}
		provider = p
	}
	if host := os.Getenv("DDCQUERY_OLLAMA_HOST"); host != "" {
		opts.OllamaHost = host
	}

	var embedder Embedder
	switch provider {
	case ProviderStatic, "":
		embedder = NewStaticEmbedder()
	case ProviderOllama:
		cfg := DefaultOllamaConfig()
		if opts.Model != "" {
			cfg.Model = opts.Model
		}
		if opts.OllamaHost != "" {
			cfg.Host = opts.OllamaHost
		}
		e, err := NewOllamaEmbedder(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ollama unavailable: %w", err)
		}
		embedder = e
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}

	if opts.CacheSize < 0 {
		return embedder, nil
	}
	return NewCachedEmbedder(embedder, opts.CacheSize), nil
}
