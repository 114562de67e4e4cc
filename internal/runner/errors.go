package runner

import (
	"errors"
	"fmt"
)

// RuntimeError represents a failure detected while executing a suite.
//
// Runtime errors include:
//   - Bind failure: setup or input binding against the backend failed
//   - Backend error: a dispatched operation failed
//   - Eval error: an expression could not be evaluated
//   - Non-numeric assertion: an assert_close term produced a symbolic value
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Benchmark identifies the affected benchmark.
	Benchmark string

	// Operation identifies the affected timed operation ("" for bind
	// failures, which happen before any operation runs).
	Operation string

	// Err is the underlying cause, when one exists.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeBindFailed indicates setup or input binding failed.
	ErrCodeBindFailed RuntimeErrorCode = "BIND_FAILED"

	// ErrCodeBackend indicates a backend operation failed.
	ErrCodeBackend RuntimeErrorCode = "BACKEND_ERROR"

	// ErrCodeEval indicates expression evaluation failed.
	ErrCodeEval RuntimeErrorCode = "EVAL_ERROR"

	// ErrCodeNotNumeric indicates an assertion term produced a value that
	// cannot be compared against a number.
	ErrCodeNotNumeric RuntimeErrorCode = "ASSERT_NOT_NUMERIC"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	switch {
	case e.Benchmark != "" && e.Operation != "":
		return fmt.Sprintf("%s: %s (benchmark=%s, operation=%s)", e.Code, e.Message, e.Benchmark, e.Operation)
	case e.Benchmark != "":
		return fmt.Sprintf("%s: %s (benchmark=%s)", e.Code, e.Message, e.Benchmark)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error { return e.Err }

// IsBindError reports whether err is a bind failure.
// Uses errors.As to handle wrapped errors.
func IsBindError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeBindFailed
}

// IsNotNumericError reports whether err is a non-numeric assertion failure.
// Uses errors.As to handle wrapped errors.
func IsNotNumericError(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeNotNumeric
}
