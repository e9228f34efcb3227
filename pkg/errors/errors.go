package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a failure in the collection pipeline
type ErrorType string

const (
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeGeneration ErrorType = "generation"
	ErrorTypeIO         ErrorType = "io"
)

// Error is a typed pipeline error
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigError reports invalid construction parameters
func NewConfigError(format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeConfig, Message: fmt.Sprintf(format, args...)}
}

// NewGenerationError reports a failure synthesizing the record for one identifier
func NewGenerationError(identifier string, err error) *Error {
	return &Error{
		Type:    ErrorTypeGeneration,
		Message: fmt.Sprintf("identifier %q", identifier),
		Err:     err,
	}
}

// NewIOError reports an export write failure
func NewIOError(op, path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeIO,
		Message: fmt.Sprintf("%s %s", op, path),
		Err:     err,
	}
}

// TypeOf returns the type of the first *Error in err's chain
func TypeOf(err error) (ErrorType, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Type, true
	}
	return "", false
}

func IsConfig(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrorTypeConfig
}

func IsGeneration(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrorTypeGeneration
}

func IsIO(err error) bool {
	t, ok := TypeOf(err)
	return ok && t == ErrorTypeIO
}

// IsRetryable checks if an error type may succeed when attempted again
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeGeneration:
		return true
	case ErrorTypeConfig, ErrorTypeIO:
		return false
	default:
		return false
	}
}
