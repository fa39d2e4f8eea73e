// Package apperrors provides the coded errors returned across the API
// boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	CodeBadRequest        ErrorCode = "BAD_REQUEST"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeConflict          ErrorCode = "CONFLICT"
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeOverAllocated     ErrorCode = "OVER_ALLOCATED"
	CodeTooManyRequests   ErrorCode = "TOO_MANY_REQUESTS"
	CodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	CodeUnavailable       ErrorCode = "SERVICE_UNAVAILABLE"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with structured information
type AppError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Cause   error             `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidationFailed, CodeOverAllocated:
		return http.StatusUnprocessableEntity
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodePersistenceFailed:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithFields attaches per-field validation messages
func (e *AppError) WithFields(fields map[string]string) *AppError {
	e.Fields = fields
	return e
}

func New(code ErrorCode, message, details string) *AppError {
	return &AppError{Code: code, Message: message, Details: details}
}

func NewBadRequest(message string) *AppError {
	return New(CodeBadRequest, message, "")
}

// NewValidation reports input the user can correct. cause is kept for
// errors.Is checks.
func NewValidation(cause error) *AppError {
	return New(CodeValidationFailed, "Validation failed", cause.Error()).WithCause(cause)
}

func NewNotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), id)
}

func NewConflict(message string) *AppError {
	return New(CodeConflict, message, "")
}

func NewOverAllocated(cause error) *AppError {
	return New(CodeOverAllocated, "Ingredient over-allocated", cause.Error()).WithCause(cause)
}

// NewPersistence wraps a failure of the recipe store or the image host.
// The collaborator's message is passed through unchanged.
func NewPersistence(operation string, cause error) *AppError {
	return New(CodePersistenceFailed, fmt.Sprintf("Failed to %s", operation), cause.Error()).WithCause(cause)
}

func NewUnavailable(message string) *AppError {
	return New(CodeUnavailable, message, "")
}

func NewInternal(cause error) *AppError {
	return New(CodeInternal, "An unexpected error occurred", "").WithCause(cause)
}

// As returns the *AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status for err, 500 when it is not an
// *AppError.
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// IsCode reports whether err carries code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
