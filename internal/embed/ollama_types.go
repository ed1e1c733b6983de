package embed

import "time"

const (
	// DefaultOllamaHost is the default Ollama API endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is a small general-purpose English embedding model.
	DefaultOllamaModel = "all-minilm"

	// OllamaConnectTimeout bounds the startup model probe.
	OllamaConnectTimeout = 10 * time.Second
)

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	Host  string
	Model string

	// BatchSize caps texts per request (default DefaultBatchSize).
	BatchSize int

	// Timeout bounds one request attempt (default DefaultTimeout).
	Timeout time.Duration

	// MaxRetries for transient failures (default 3).
	MaxRetries int

	// SkipHealthCheck skips the startup probe. Dimensions are then learned
	// from the first response.
	SkipHealthCheck bool
}

// DefaultOllamaConfig returns the defaults.
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Host:       DefaultOllamaHost,
		Model:      DefaultOllamaModel,
		BatchSize:  DefaultBatchSize,
		Timeout:    DefaultTimeout,
		MaxRetries: 3,
	}
}

// ollamaEmbedRequest is the /api/embed request body.
type ollamaEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// ollamaEmbedResponse is the /api/embed response body.
type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// ollamaTagsResponse is the /api/tags response body.
type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}
