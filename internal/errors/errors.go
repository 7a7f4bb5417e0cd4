package errors

import (
	stderrors "errors"
	"fmt"
)

// CrmdexError is the structured error type for crmdex.
// It provides rich context for error handling, logging, and user presentation.
type CrmdexError struct {
	// Code is the unique error code (e.g., "ERR_402_DIMENSION_MISMATCH").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Source, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *CrmdexError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *CrmdexError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with CrmdexError.
func (e *CrmdexError) Is(target error) bool {
	if t, ok := target.(*CrmdexError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *CrmdexError) WithDetail(key, value string) *CrmdexError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *CrmdexError) WithSuggestion(suggestion string) *CrmdexError {
	e.Suggestion = suggestion
	return e
}

// New creates a new CrmdexError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *CrmdexError {
	return &CrmdexError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a CrmdexError from an existing error.
// The error's message becomes the CrmdexError message.
func Wrap(code string, err error) *CrmdexError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *CrmdexError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// TransientSourceError creates a retryable CRM source error.
func TransientSourceError(message string, cause error) *CrmdexError {
	return New(ErrCodeSourceTransient, message, cause)
}

// PermanentSourceError creates a non-retryable CRM source error.
func PermanentSourceError(message string, cause error) *CrmdexError {
	return New(ErrCodeSourcePermanent, message, cause)
}

// EmbeddingError creates an embedding-stage error.
func EmbeddingError(message string, cause error) *CrmdexError {
	return New(ErrCodeEmbeddingFailed, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *CrmdexError {
	return New(ErrCodeInvalidQuery, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *CrmdexError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable. Unwraps the chain, so a
// retryable error stays visible through fmt.Errorf wrapping.
func IsRetryable(err error) bool {
	var ce *CrmdexError
	if stderrors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// IsFatal checks if an error in the chain has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	var ce *CrmdexError
	if stderrors.As(err, &ce) {
		return ce.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from the first CrmdexError in the
// chain, or "" when there is none.
func GetCode(err error) string {
	var ce *CrmdexError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// GetCategory extracts the category from the first CrmdexError in the
// chain, or "" when there is none.
func GetCategory(err error) Category {
	var ce *CrmdexError
	if stderrors.As(err, &ce) {
		return ce.Category
	}
	return ""
}
