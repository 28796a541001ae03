package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable code carried in error responses.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeBadRequest   ErrorCode = "BAD_REQUEST"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"
	CodeDatabase     ErrorCode = "DATABASE_ERROR"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with an HTTP status,
// a machine-readable code and an optional wrapped cause.
type AppError struct {
	Status  int       `json:"statusCode"`
	Code    ErrorCode `json:"errorCode"`
	Message string    `json:"error"`
	Details []string  `json:"errors,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so errors.Is(err, NotFound("x", 0)) style checks work.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// AsAppError unwraps err to an *AppError, or wraps it as an internal error.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Error constructors

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NotFoundMsg(message string) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    CodeNotFound,
		Message: message,
	}
}

func Validation(message string, details ...string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeBadRequest,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return &AppError{
		Status:  http.StatusForbidden,
		Code:    CodeForbidden,
		Message: message,
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Status:  http.StatusConflict,
		Code:    CodeConflict,
		Message: message,
		Err:     err,
	}
}

func RateLimited() *AppError {
	return &AppError{
		Status:  http.StatusTooManyRequests,
		Code:    CodeRateLimited,
		Message: "too many requests",
	}
}

// Database wraps a storage failure. The cause stays available via Unwrap
// for logging but is never serialized to clients.
func Database(operation string, err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeDatabase,
		Message: fmt.Sprintf("database error during %s", operation),
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}
