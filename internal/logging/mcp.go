package logging

import (
	"log/slog"
)

// SetupMCPMode installs a file-only logger for the MCP server. stdout
// carries JSON-RPC exclusively and some clients treat stderr output as a
// failure, so nothing is written to either. An empty path uses
// DefaultLogPath.
func SetupMCPMode(cfg Config) (func(), error) {
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultLogPath()
	}
	cfg.WriteToStderr = false

	cleanup, err := SetupDefault(cfg)
	if err != nil {
		return nil, err
	}

	slog.Info("mcp_logging_initialized",
		slog.String("log_file", cfg.FilePath),
		slog.String("level", cfg.Level))
	return cleanup, nil
}
