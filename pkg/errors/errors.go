// Package errors defines the structured error types used by the obsdemo service.
// Every error that reaches the HTTP boundary maps to a status code and a short message.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeNotFound      = "not_found"
	ErrCodeInternal      = "internal_error"
	ErrCodeInvalidConfig = "invalid_config"
)

// ================================================================================
// Base Error Interface
// ================================================================================

// AppError is a structured error carrying an HTTP status.
type AppError interface {
	error

	// Code returns the machine readable error code.
	Code() string

	// HTTPStatus returns the HTTP status code the error maps to.
	HTTPStatus() int

	// Unwrap returns the underlying cause, if any.
	Unwrap() error

	// WithCause returns a copy of the error wrapping cause.
	WithCause(cause error) AppError
}

// ================================================================================
// Base Error Implementation
// ================================================================================

type baseError struct {
	code       string
	httpStatus int
	message    string
	cause      error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string    { return e.code }
func (e *baseError) HTTPStatus() int { return e.httpStatus }
func (e *baseError) Unwrap() error   { return e.cause }

// Message returns the client-facing message without the cause chain.
func (e *baseError) Message() string { return e.message }

// WithCause copies the error so that shared sentinels are never mutated.
func (e *baseError) WithCause(cause error) AppError {
	cp := *e
	cp.cause = cause
	return &cp
}

// Is matches errors by code and status so that a wrapped copy still
// satisfies errors.Is against its sentinel.
func (e *baseError) Is(target error) bool {
	t, ok := target.(*baseError)
	if !ok {
		return false
	}
	return e.code == t.code && e.httpStatus == t.httpStatus && e.message == t.message
}

// NewError creates a new AppError.
func NewError(code string, httpStatus int, message string) AppError {
	return &baseError{
		code:       code,
		httpStatus: httpStatus,
		message:    message,
	}
}

// ================================================================================
// Predefined Errors
// ================================================================================

var (
	// Simulated application errors returned by the error endpoint.
	ErrBadRequest       = NewError(ErrCodeBadRequest, http.StatusBadRequest, "Bad Request")
	ErrResourceNotFound = NewError(ErrCodeNotFound, http.StatusNotFound, "Resource Not Found")
	ErrInternalServer   = NewError(ErrCodeInternal, http.StatusInternalServerError, "Internal Server Error")

	// Boundary fallbacks.
	ErrRouteNotFound = NewError(ErrCodeNotFound, http.StatusNotFound, "Not found")
	ErrInternal      = NewError(ErrCodeInternal, http.StatusInternalServerError, "Internal server error")
)

// ErrInvalidConfig reports a configuration value rejected at startup.
func ErrInvalidConfig(key string, reason string) AppError {
	return NewError(ErrCodeInvalidConfig, http.StatusInternalServerError,
		fmt.Sprintf("invalid configuration %q: %s", key, reason))
}

// ================================================================================
// Helpers
// ================================================================================

// As extracts an AppError from err's chain.
func As(err error) (AppError, bool) {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus returns the status code for err, defaulting to 500.
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the message safe to show to a client.
// Errors that are not AppErrors are hidden behind the generic internal message.
func PublicMessage(err error) string {
	appErr, ok := As(err)
	if !ok {
		return ErrInternal.Error()
	}
	if m, ok := appErr.(interface{ Message() string }); ok {
		return m.Message()
	}
	return appErr.Error()
}
