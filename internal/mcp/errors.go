// Package mcp exposes the DDC retrieval engine as Model Context Protocol
// tools and resources.
package mcp

import (
	"context"
	"errors"
	"fmt"

	ddcerrors "github.com/Aman-CERP/ddcquery/internal/errors"
)

// Custom MCP error codes for ddcquery.
const (
	// ErrCodeCorpusUnavailable indicates the corpus could not be loaded.
	ErrCodeCorpusUnavailable = -32001

	// ErrCodeEmbeddingFailed indicates the semantic provider failed.
	ErrCodeEmbeddingFailed = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodeSourceNotFound indicates an unknown or empty source.
	ErrCodeSourceNotFound = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors. Coded errors keep their
// message and suggestion.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}
	if coded, ok := ddcerrors.As(err); ok {
		return mapCodedError(coded)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapCodedError(ce *ddcerrors.CodedError) *MCPError {
	message := ce.Message
	if ce.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ce.Message, ce.Suggestion)
	}

	switch ce.Category {
	case ddcerrors.CategoryIO:
		return &MCPError{Code: ErrCodeCorpusUnavailable, Message: message}
	case ddcerrors.CategoryNetwork:
		return &MCPError{Code: ErrCodeTimeout, Message: message}
	case ddcerrors.CategoryValidation:
		if ce.Code == ddcerrors.ErrCodeInvalidRequest || ce.Code == ddcerrors.ErrCodeNilRequest {
			return &MCPError{Code: ErrCodeInvalidRequest, Message: message}
		}
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		if ce.Code == ddcerrors.ErrCodeEmbeddingFailed {
			return &MCPError{Code: ErrCodeEmbeddingFailed, Message: message}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}

// NewResourceNotFoundError creates an error for unknown or empty sources.
func NewResourceNotFoundError(uri string) *MCPError {
	return &MCPError{
		Code:    ErrCodeSourceNotFound,
		Message: fmt.Sprintf("Resource '%s' not found.", uri),
	}
}
