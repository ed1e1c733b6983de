package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/ddcquery/internal/errors"
)

// isolate points the user config at an empty directory and clears every
// override so tests see only what they set.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, key := range []string{
		"DDCQUERY_CORPUS_DIR", "DDCQUERY_CORPUS_DB", "DDCQUERY_K_PER_SOURCE",
		"DDCQUERY_MAX_DOCS", "DDCQUERY_SEMANTIC_WEIGHT", "DDCQUERY_EXPAND_SYNONYMS",
		"DDCQUERY_EMBED_PROVIDER", "DDCQUERY_EMBED_MODEL", "DDCQUERY_OLLAMA_HOST",
		"DDCQUERY_LOG_LEVEL", "DDCQUERY_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration at all
	cfg := NewConfig()

	// Then: defaults are applied
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "corpus", cfg.Corpus.Dir)
	assert.Empty(t, cfg.Corpus.SQLitePath)

	assert.Equal(t, 5, cfg.Search.KPerSource)
	assert.Equal(t, 20, cfg.Search.MaxDocs)
	assert.Equal(t, 0.25, cfg.Search.SemanticWeight)
	assert.True(t, cfg.Search.ExpandSynonyms)
	assert.False(t, cfg.Search.IncludeStdSubdivisions)
	assert.Equal(t, runtime.NumCPU(), cfg.Search.Workers)

	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 4096, cfg.Embeddings.CacheSize)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stdio", cfg.Server.Transport)
	assert.NoError(t, cfg.Validate())
}

// =============================================================================
// Layered loading
// =============================================================================

func TestLoad_NoFiles_UsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, NewConfig().Search, cfg.Search)
}

func TestLoad_ProjectConfigOverridesDefaults(t *testing.T) {
	// Given: a project config with search and corpus settings
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ddcquery.yaml"), `
corpus:
  sqlite_path: data/ddc.db
search:
  k_per_source: 8
  max_docs: 40
  semantic_weight: 0.4
  include_std_subdivisions: true
logging:
  level: debug
`)

	// When: loading
	cfg, err := Load(dir)

	// Then: file values win and relative paths resolve against the project
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Search.KPerSource)
	assert.Equal(t, 40, cfg.Search.MaxDocs)
	assert.Equal(t, 0.4, cfg.Search.SemanticWeight)
	assert.True(t, cfg.Search.IncludeStdSubdivisions)
	assert.True(t, cfg.Search.ExpandSynonyms, "unset booleans keep defaults")
	assert.Equal(t, filepath.Join(dir, "data", "ddc.db"), cfg.Corpus.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YmlFallback(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ddcquery.yml"), "search:\n  max_docs: 7\n")

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.MaxDocs)
}

func TestLoad_Precedence(t *testing.T) {
	// Given: user config, project config and env all set max_docs
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeFile(t, filepath.Join(xdg, "ddcquery", "config.yaml"), `
search:
  max_docs: 11
  k_per_source: 3
embeddings:
  provider: ollama
  ollama_host: http://gpu-box:11434
`)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ddcquery.yaml"), "search:\n  max_docs: 12\n")
	t.Setenv("DDCQUERY_MAX_DOCS", "13")

	// When: loading
	cfg, err := Load(dir)

	// Then: env > project > user > defaults
	require.NoError(t, err)
	assert.True(t, UserConfigExists())
	assert.Equal(t, 13, cfg.Search.MaxDocs)
	assert.Equal(t, 3, cfg.Search.KPerSource)
	assert.Equal(t, "ollama", cfg.Embeddings.Provider)
	assert.Equal(t, "http://gpu-box:11434", cfg.Embeddings.OllamaHost)
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("DDCQUERY_CORPUS_DIR", "/srv/ddc")
	t.Setenv("DDCQUERY_K_PER_SOURCE", "9")
	t.Setenv("DDCQUERY_SEMANTIC_WEIGHT", "0")
	t.Setenv("DDCQUERY_EXPAND_SYNONYMS", "false")
	t.Setenv("DDCQUERY_EMBED_MODEL", "nomic-embed-text")
	t.Setenv("DDCQUERY_LOG_LEVEL", "warn")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "/srv/ddc", cfg.Corpus.Dir)
	assert.Equal(t, 9, cfg.Search.KPerSource)
	assert.Zero(t, cfg.Search.SemanticWeight)
	assert.False(t, cfg.Search.ExpandSynonyms)
	assert.Equal(t, "nomic-embed-text", cfg.Embeddings.Model)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvIgnoresGarbage(t *testing.T) {
	isolate(t)
	t.Setenv("DDCQUERY_K_PER_SOURCE", "many")
	t.Setenv("DDCQUERY_SEMANTIC_WEIGHT", "heavy")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.KPerSource)
	assert.Equal(t, 0.25, cfg.Search.SemanticWeight)
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ddcquery.yaml"), "search: [unclosed\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_InvalidValueFailsValidation(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".ddcquery.yaml"), "search:\n  semantic_weight: 1.5\n")

	_, err := Load(dir)

	require.Error(t, err)
	coded, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "search.semantic_weight", coded.Details["field"])
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"no corpus", func(c *Config) { c.Corpus.Dir = "" }, "corpus"},
		{"sqlite only", func(c *Config) { c.Corpus.Dir = ""; c.Corpus.SQLitePath = "ddc.db" }, ""},
		{"k_per_source zero", func(c *Config) { c.Search.KPerSource = 0 }, "search.k_per_source"},
		{"max_docs negative", func(c *Config) { c.Search.MaxDocs = -1 }, "search.max_docs"},
		{"weight negative", func(c *Config) { c.Search.SemanticWeight = -0.1 }, "search.semantic_weight"},
		{"workers zero", func(c *Config) { c.Search.Workers = 0 }, "search.workers"},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "mlx" }, "embeddings.provider"},
		{"provider case", func(c *Config) { c.Embeddings.Provider = "Ollama" }, ""},
		{"cache disabled", func(c *Config) { c.Embeddings.CacheSize = -1 }, ""},
		{"cache too small", func(c *Config) { c.Embeddings.CacheSize = -2 }, "embeddings.cache_size"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad rotation", func(c *Config) { c.Logging.MaxFiles = 0 }, "logging.max_files"},
		{"bad transport", func(c *Config) { c.Server.Transport = "sse" }, "server.transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			coded, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeConfigInvalid, coded.Code)
			assert.Equal(t, tt.field, coded.Details["field"])
		})
	}
}

// =============================================================================
// Paths and persistence
// =============================================================================

func TestGetUserConfigPath_RespectsXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	assert.Equal(t, filepath.Join(xdg, "ddcquery", "config.yaml"), GetUserConfigPath())
	assert.False(t, UserConfigExists())
}

func TestFindProjectRoot(t *testing.T) {
	// Given: a project config two levels above the start directory
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".ddcquery.yaml"), "version: 1\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	// When: searching upwards
	found, err := FindProjectRoot(nested)

	// Then: the config directory is the root
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindProjectRoot_GitMarker(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(nested, 0o755))

	found, err := FindProjectRoot(nested)

	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestWriteYAML_RoundTripsThroughLoad(t *testing.T) {
	// Given: a customized config written as a project file
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Search.MaxDocs = 33
	cfg.Embeddings.Provider = "ollama"

	// When: writing and loading it back
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ".ddcquery.yaml")))
	loaded, err := Load(dir)

	// Then: the customized values survive
	require.NoError(t, err)
	assert.Equal(t, 33, loaded.Search.MaxDocs)
	assert.Equal(t, "ollama", loaded.Embeddings.Provider)
}
