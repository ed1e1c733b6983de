// Package logging configures structured slog output for ddcquery.
//
// Logs go to stderr by default. When a file path is configured they are also
// written, as JSON, to a size-rotated file. In MCP mode stdout carries the
// protocol, so logs go to the file only.
package logging
