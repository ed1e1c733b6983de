package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns ~/.ddcquery/logs, or a temp directory when the home
// directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".ddcquery", "logs")
	}
	return filepath.Join(home, ".ddcquery", "logs")
}

// DefaultLogPath returns the MCP server log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "server.log")
}
