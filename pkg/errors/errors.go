// Package errors defines the sentinel errors shared across the index build
// and query paths, plus an AppError type that carries an HTTP status for the
// query service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound marks a key that was never indexed. Lookup paths return
	// empty results instead of this error; it exists for callers that need
	// a hard distinction (the HTTP document endpoint).
	ErrNotFound = errors.New("not found in index")
	// ErrCorruptLeaf marks a leaf file that violates the header/payload
	// line contract. It is fatal for the single lookup that hit it.
	ErrCorruptLeaf = errors.New("corrupt index leaf file")
	// ErrIndexUnavailable marks a missing or unreadable index root.
	ErrIndexUnavailable = errors.New("index unavailable")
	// ErrInvalidInput marks rejected caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrBuildAborted marks an index build terminated before both trees
	// were fully persisted; the output directories are corrupt.
	ErrBuildAborted = errors.New("index build aborted")
	// ErrTimeout marks an operation cancelled by its deadline.
	ErrTimeout = errors.New("operation timed out")
	// ErrInternal marks everything else.
	ErrInternal = errors.New("internal error")
)

// AppError wraps a sentinel with a message and an HTTP status code.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError from a sentinel, status code, and message.
func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps err to an HTTP status for the query service.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
