package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/ddcquery/internal/errors"
)

// Config is the complete ddcquery configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Corpus     CorpusConfig     `yaml:"corpus" json:"corpus"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Server     ServerConfig     `yaml:"server" json:"server"`
}

// CorpusConfig locates the reference documents. SQLitePath wins over Dir
// when both are set.
type CorpusConfig struct {
	// Dir holds one YAML or JSON file per source (Sch2.yaml, T1.json, ...).
	Dir string `yaml:"dir" json:"dir"`
	// SQLitePath is a database written by `ddcquery import`.
	SQLitePath string `yaml:"sqlite_path" json:"sqlite_path"`
}

// SearchConfig holds request defaults used by the CLI and MCP surfaces.
// Values given in a request always win.
//
// Configurable via:
//  1. User config (~/.config/ddcquery/config.yaml)
//  2. Project config (.ddcquery.yaml)
//  3. Env vars (DDCQUERY_K_PER_SOURCE, DDCQUERY_MAX_DOCS, DDCQUERY_SEMANTIC_WEIGHT)
type SearchConfig struct {
	KPerSource int `yaml:"k_per_source" json:"k_per_source"`
	MaxDocs    int `yaml:"max_docs" json:"max_docs"`

	// SemanticWeight blends the semantic signal into the base score (0.0-1.0).
	SemanticWeight float64 `yaml:"semantic_weight" json:"semantic_weight"`
	// SemanticModel is the provider used when a request names none.
	SemanticModel string `yaml:"semantic_model" json:"semantic_model"`

	ExpandSynonyms         bool `yaml:"expand_synonyms" json:"expand_synonyms"`
	IncludeStdSubdivisions bool `yaml:"include_std_subdivisions" json:"include_std_subdivisions"`

	// Workers bounds parallel per-source searches. 1 is sequential.
	Workers int `yaml:"workers" json:"workers"`
}

// EmbeddingsConfig configures the embedding provider behind semantic
// similarity.
type EmbeddingsConfig struct {
	Provider   string `yaml:"provider" json:"provider"` // static (default) or ollama
	Model      string `yaml:"model" json:"model"`
	OllamaHost string `yaml:"ollama_host" json:"ollama_host"` // default http://localhost:11434
	// CacheSize bounds the embedding LRU. -1 disables it.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// FilePath enables the rotating log file. Empty logs to stderr only.
	FilePath  string `yaml:"file_path" json:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
}

// Config file names, in lookup order.
var projectConfigNames = []string{".ddcquery.yaml", ".ddcquery.yml"}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Corpus: CorpusConfig{
			Dir: "corpus",
		},
		Search: SearchConfig{
			KPerSource:     5,
			MaxDocs:        20,
			SemanticWeight: 0.25,
			ExpandSynonyms: true,
			Workers:        runtime.NumCPU(),
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "static",
			Model:     "",
			CacheSize: 4096,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
		Server: ServerConfig{
			Transport: "stdio",
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/ddcquery/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/ddcquery/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ddcquery", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "ddcquery", "config.yaml")
	}
	return filepath.Join(home, ".config", "ddcquery", "config.yaml")
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// loadUserConfig returns nil, nil when there is no user config.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}
	var parsed Config
	if err := parseYAML(configPath, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Load loads configuration for dir. Precedence, lowest first:
//  1. Defaults
//  2. User config (~/.config/ddcquery/config.yaml)
//  3. Project config (.ddcquery.yaml in dir)
//  4. Environment variables (DDCQUERY_*)
//
// Relative corpus paths in the project config resolve against dir.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := loadUserConfig()
	if err != nil {
		return nil, err
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile merges .ddcquery.yaml (or .yml) from dir if present.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range projectConfigNames {
		path := filepath.Join(dir, name)
		if !fileExists(path) {
			continue
		}
		var parsed Config
		if err := parseYAML(path, &parsed); err != nil {
			return err
		}
		parsed.Corpus.Dir = resolvePath(dir, parsed.Corpus.Dir)
		parsed.Corpus.SQLitePath = resolvePath(dir, parsed.Corpus.SQLitePath)
		c.mergeWith(&parsed)
		return nil
	}
	return nil
}

func parseYAML(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New(errors.ErrCodeConfigNotFound, "failed to read config file", err).
			WithDetail("path", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return errors.ConfigError("failed to parse config file", err).
			WithDetail("path", path).
			WithSuggestion("check the YAML syntax and field types")
	}
	return nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// mergeWith copies non-zero values from other into c. Booleans are merged
// only when set to true; use env overrides to turn a default off.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Corpus.Dir != "" {
		c.Corpus.Dir = other.Corpus.Dir
	}
	if other.Corpus.SQLitePath != "" {
		c.Corpus.SQLitePath = other.Corpus.SQLitePath
	}

	if other.Search.KPerSource != 0 {
		c.Search.KPerSource = other.Search.KPerSource
	}
	if other.Search.MaxDocs != 0 {
		c.Search.MaxDocs = other.Search.MaxDocs
	}
	if other.Search.SemanticWeight != 0 {
		c.Search.SemanticWeight = other.Search.SemanticWeight
	}
	if other.Search.SemanticModel != "" {
		c.Search.SemanticModel = other.Search.SemanticModel
	}
	if other.Search.ExpandSynonyms {
		c.Search.ExpandSynonyms = true
	}
	if other.Search.IncludeStdSubdivisions {
		c.Search.IncludeStdSubdivisions = true
	}
	if other.Search.Workers != 0 {
		c.Search.Workers = other.Search.Workers
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.FilePath != "" {
		c.Logging.FilePath = other.Logging.FilePath
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
}

// applyEnvOverrides applies DDCQUERY_* environment variables. Unparseable
// numbers are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DDCQUERY_CORPUS_DIR"); v != "" {
		c.Corpus.Dir = v
	}
	if v := os.Getenv("DDCQUERY_CORPUS_DB"); v != "" {
		c.Corpus.SQLitePath = v
	}
	if v := os.Getenv("DDCQUERY_K_PER_SOURCE"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			c.Search.KPerSource = k
		}
	}
	if v := os.Getenv("DDCQUERY_MAX_DOCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.MaxDocs = n
		}
	}
	// Explicit zero is allowed here, unlike in YAML.
	if v := os.Getenv("DDCQUERY_SEMANTIC_WEIGHT"); v != "" {
		if w, err := parseFloat64(v); err == nil {
			c.Search.SemanticWeight = w
		}
	}
	if v := os.Getenv("DDCQUERY_EXPAND_SYNONYMS"); v != "" {
		c.Search.ExpandSynonyms = parseBool(v)
	}
	if v := os.Getenv("DDCQUERY_EMBED_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("DDCQUERY_EMBED_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("DDCQUERY_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("DDCQUERY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("DDCQUERY_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
}

func parseFloat64(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// FindProjectRoot walks up from startDir to the first directory holding a
// .ddcquery.yaml, .ddcquery.yml or .git. It returns the absolute startDir
// when none is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		for _, name := range projectConfigNames {
			if fileExists(filepath.Join(currentDir, name)) {
				return currentDir, nil
			}
		}
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Validate returns an ERR_102 error describing the first invalid field.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return errors.ConfigError(fmt.Sprintf(format, args...), nil).
			WithDetail("field", field)
	}

	if c.Corpus.Dir == "" && c.Corpus.SQLitePath == "" {
		return invalid("corpus", "corpus.dir or corpus.sqlite_path is required")
	}
	if c.Search.KPerSource < 1 {
		return invalid("search.k_per_source", "search.k_per_source must be at least 1, got %d", c.Search.KPerSource)
	}
	if c.Search.MaxDocs < 1 {
		return invalid("search.max_docs", "search.max_docs must be at least 1, got %d", c.Search.MaxDocs)
	}
	if c.Search.SemanticWeight < 0 || c.Search.SemanticWeight > 1 {
		return invalid("search.semantic_weight", "search.semantic_weight must be between 0 and 1, got %g", c.Search.SemanticWeight)
	}
	if c.Search.Workers < 1 {
		return invalid("search.workers", "search.workers must be at least 1, got %d", c.Search.Workers)
	}

	switch strings.ToLower(c.Embeddings.Provider) {
	case "", "static", "ollama":
	default:
		return invalid("embeddings.provider", "embeddings.provider must be 'static' or 'ollama', got %s", c.Embeddings.Provider)
	}
	if c.Embeddings.CacheSize < -1 {
		return invalid("embeddings.cache_size", "embeddings.cache_size must be -1 or more, got %d", c.Embeddings.CacheSize)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level", "logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 1 {
		return invalid("logging.max_size_mb", "logging.max_size_mb must be positive, got %d", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxFiles < 1 {
		return invalid("logging.max_files", "logging.max_files must be positive, got %d", c.Logging.MaxFiles)
	}

	if !strings.EqualFold(c.Server.Transport, "stdio") {
		return invalid("server.transport", "server.transport must be 'stdio', got %s", c.Server.Transport)
	}
	return nil
}

// WriteYAML writes the configuration to path, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
