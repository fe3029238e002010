// Package errors provides the shared error types for go-research-ui.
//
// Two layers:
//   - L1 sentinel errors: ErrNotFound / ErrInvalidInput / ErrTimeout etc.
//   - L2 AppError: operation-scoped error with Op + Code + Message
package errors

import (
	"errors"
	"fmt"
)

// ========================================
// L1 sentinel errors
// ========================================

var (
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a caller-supplied value failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout means the operation exceeded its deadline.
	ErrTimeout = errors.New("timeout")

	// ErrInternal means an unexpected internal failure.
	ErrInternal = errors.New("internal error")

	// ErrUnavailable means the research backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")
)

// ========================================
// L2 AppError
// ========================================

// AppError carries operation context alongside the underlying cause.
type AppError struct {
	Op      string // operation, e.g. "Client.Submit"
	Code    string // machine code, e.g. "STREAM_ERROR"
	Message string // human-readable message
	Err     error  // wrapped cause, may be nil
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap supports errors.Is / errors.As chain lookup.
func (e *AppError) Unwrap() error {
	return e.Err
}

// ========================================
// Factories
// ========================================

// New creates an application error without a cause.
func New(op, message string) error {
	return &AppError{Op: op, Message: message}
}

// Newf creates an application error with a formatted message.
func Newf(op, format string, args ...any) error {
	return &AppError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with operation context.
func Wrap(err error, op, message string) error {
	return &AppError{Op: op, Message: message, Err: err}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, op, format string, args ...any) error {
	return &AppError{Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}
