package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodedError_Unwrap_PreservesCause(t *testing.T) {
	// Given: an original error
	cause := errors.New("open Sch2.json: no such file")

	// When: wrapping it in a CodedError
	err := New(ErrCodeFileNotFound, "corpus file missing", cause)

	// Then: the cause is reachable through the chain
	require.NotNil(t, err)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestCodedError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{"config", ErrCodeConfigNotFound, "config file not found", "[ERR_101_CONFIG_NOT_FOUND] config file not found"},
		{"missing field", ErrCodeMissingField, "missing required field", "[ERR_405_MISSING_FIELD] missing required field"},
		{"network", ErrCodeNetworkTimeout, "request timed out", "[ERR_301_NETWORK_TIMEOUT] request timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, New(tt.code, tt.message, nil).Error())
		})
	}
}

func TestCodedError_Is_MatchesByCode(t *testing.T) {
	a := New(ErrCodeUnknownOption, "unknown option foo", nil)
	b := New(ErrCodeUnknownOption, "unknown option bar", nil)
	c := New(ErrCodeMissingField, "missing numbers", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
		wantSeverity Severity
		wantRetry    bool
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError, false},
		{ErrCodeCorpusMalformed, CategoryIO, SeverityError, false},
		{ErrCodeCorpusEmpty, CategoryIO, SeverityFatal, false},
		{ErrCodeNetworkUnavailable, CategoryNetwork, SeverityWarning, true},
		{ErrCodeNilRequest, CategoryValidation, SeverityError, false},
		{ErrCodeSearchFailed, CategoryInternal, SeverityError, false},
		{"bogus", CategoryInternal, SeverityError, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
			assert.Equal(t, tt.wantSeverity, err.Severity)
			assert.Equal(t, tt.wantRetry, err.Retryable)
		})
	}
}

func TestWithDetailAndSuggestion(t *testing.T) {
	err := New(ErrCodeMissingField, "missing required field", nil).
		WithDetail("field", "limits.max_docs").
		WithSuggestion("send every request field")

	assert.Equal(t, "limits.max_docs", err.Details["field"])
	assert.Equal(t, "send every request field", err.Suggestion)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestHelpers_FindCodedErrorInChain(t *testing.T) {
	// Given: a CodedError wrapped by fmt.Errorf
	inner := NetworkError("ollama unreachable", nil)
	err := fmt.Errorf("embedding query: %w", inner)

	// Then: the helpers look through the wrapper
	assert.True(t, IsRetryable(err))
	assert.Equal(t, ErrCodeNetworkUnavailable, GetCode(err))

	// And: plain errors carry no code
	assert.Equal(t, "", GetCode(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, ErrCodeConfigInvalid, ConfigError("x", nil).Code)
	assert.Equal(t, ErrCodeFileNotFound, IOError("x", nil).Code)
	assert.Equal(t, ErrCodeInvalidInput, ValidationError("x", nil).Code)
	assert.Equal(t, ErrCodeInternal, InternalError("x", nil).Code)
	assert.Equal(t, SeverityFatal, New(ErrCodeCorpusEmpty, "no documents", nil).Severity)
}

func TestFormatForCLI(t *testing.T) {
	// Given: an error with detail and suggestion
	err := New(ErrCodeUnknownOption, "unknown option key", nil).
		WithDetail("key", "use_magic").
		WithSuggestion("see `ddcquery query --help`")

	out := FormatForCLI(err)

	assert.Contains(t, out, "Error: unknown option key")
	assert.Contains(t, out, "key: use_magic")
	assert.Contains(t, out, "Hint: see `ddcquery query --help`")
	assert.Contains(t, out, "Code: ERR_406_UNKNOWN_OPTION")
	assert.Equal(t, "", FormatForCLI(nil))
}

func TestFormatForCLI_PlainErrorBecomesInternal(t *testing.T) {
	out := FormatForCLI(errors.New("boom"))
	assert.Contains(t, out, "Code: ERR_501_INTERNAL")
}

func TestFormatJSON(t *testing.T) {
	err := New(ErrCodeMissingField, "missing required field", errors.New("numbers")).
		WithDetail("field", "numbers")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	assert.JSONEq(t, `{
		"code": "ERR_405_MISSING_FIELD",
		"message": "missing required field",
		"category": "VALIDATION",
		"severity": "ERROR",
		"details": {"field": "numbers"},
		"cause": "numbers",
		"retryable": false
	}`, string(data))
}

func TestLogAttrs(t *testing.T) {
	err := New(ErrCodeDatabase, "query failed", nil).WithDetail("path", "ddc.db")
	attrs := LogAttrs(err)

	assert.Equal(t, []any{
		"error_code", ErrCodeDatabase,
		"error", "query failed",
		"category", "IO",
		"detail_path", "ddc.db",
	}, attrs)
	assert.Equal(t, []any{"error", "plain"}, LogAttrs(errors.New("plain")))
	assert.Nil(t, LogAttrs(nil))
}
