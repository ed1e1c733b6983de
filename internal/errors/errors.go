package errors

import (
	stderrors "errors"
	"fmt"
)

// CodedError is the structured error type for ddcquery.
type CodedError struct {
	// Code is the unique error code (e.g., "ERR_405_MISSING_FIELD").
	Code string

	// Message is the human-readable error message.
	Message string

	Category Category
	Severity Severity

	// Details carries context such as the offending field name.
	Details map[string]string

	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable hint for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *CodedError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CodedError) Unwrap() error {
	return e.Cause
}

// Is matches another CodedError by code.
func (e *CodedError) Is(target error) bool {
	if t, ok := target.(*CodedError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail and returns the error for chaining.
func (e *CodedError) WithDetail(key, value string) *CodedError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the user hint and returns the error for chaining.
func (e *CodedError) WithSuggestion(suggestion string) *CodedError {
	e.Suggestion = suggestion
	return e
}

// New creates a CodedError. Category, severity and retryability derive from
// the code.
func New(code string, message string, cause error) *CodedError {
	return &CodedError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CodedError from an existing error, reusing its message.
func Wrap(code string, err error) *CodedError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

func ConfigError(message string, cause error) *CodedError {
	return New(ErrCodeConfigInvalid, message, cause)
}

func IOError(message string, cause error) *CodedError {
	return New(ErrCodeFileNotFound, message, cause)
}

// NetworkError creates a retryable provider error.
func NetworkError(message string, cause error) *CodedError {
	return New(ErrCodeNetworkUnavailable, message, cause)
}

func ValidationError(message string, cause error) *CodedError {
	return New(ErrCodeInvalidInput, message, cause)
}

func InternalError(message string, cause error) *CodedError {
	return New(ErrCodeInternal, message, cause)
}

// As finds the first CodedError in err's chain.
func As(err error) (*CodedError, bool) {
	var ce *CodedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsRetryable reports whether any CodedError in the chain is retryable.
func IsRetryable(err error) bool {
	ce, ok := As(err)
	return ok && ce.Retryable
}

// GetCode returns the code of the first CodedError in the chain, or "".
func GetCode(err error) string {
	if ce, ok := As(err); ok {
		return ce.Code
	}
	return ""
}
