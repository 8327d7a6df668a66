package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
	ErrTimeout      = errors.New("operation timed out")
	ErrUnavailable  = errors.New("service unavailable")
)

// AppError carries a client-facing message and status alongside the
// sentinel it wraps.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	// Field names the offending input field, if any.
	Field string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// WithField returns a copy of e tagged with the input field it concerns.
func (e *AppError) WithField(field string) *AppError {
	cp := *e
	cp.Field = field
	return &cp
}

func NotFound(message string) *AppError {
	return New(ErrNotFound, http.StatusNotFound, message)
}

func Conflict(message string) *AppError {
	return New(ErrConflict, http.StatusConflict, message)
}

func InvalidInput(message string) *AppError {
	return New(ErrInvalidInput, http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(ErrUnauthorized, http.StatusUnauthorized, message)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err. Errors that are not
// AppErrors are reported generically.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	switch HTTPStatusCode(err) {
	case http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}
