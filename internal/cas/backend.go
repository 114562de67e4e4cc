package cas

import (
	"context"
	"errors"
	"fmt"
)

// Backend is an opaque provider of named CAS operations.
//
// Implementations live outside this repository (a SymEngine binding, a
// Maxima pipe, an in-process engine) and register themselves via Register.
// The harness only requires that a backend can mint symbolic handles and
// dispatch calls by operation name.
//
// Backends are used by a single benchmark run at a time; implementations do
// not need to be safe for concurrent Call invocations.
type Backend interface {
	// Name identifies the backend in results and error messages.
	Name() string

	// Symbol returns a symbolic handle for the given variable name.
	// Called once per setup.variables entry when an environment is bound.
	Symbol(ctx context.Context, name string) (Value, error)

	// Call dispatches a named operation. Arguments are values previously
	// produced by this backend (or Number/Int literals from expressions).
	// Unknown operations must return an OpError wrapping ErrUnknownOperation.
	Call(ctx context.Context, op string, args ...Value) (Value, error)

	// Operations returns the sorted names of operations Call accepts.
	// Used at bind time to reject suites naming unsupported functions.
	Operations() []string

	// Close releases backend resources. Safe to call more than once.
	Close() error
}

// Sentinel causes for OpError. Backends wrap these so the harness can
// classify failures without knowing backend internals.
var (
	// ErrUnknownOperation indicates the operation name is not provided by
	// the backend.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrArity indicates the operation was called with the wrong number of
	// arguments.
	ErrArity = errors.New("wrong number of arguments")

	// ErrNotNumeric indicates an operation required a numeric argument but
	// received a symbolic one.
	ErrNotNumeric = errors.New("argument is not numeric")
)

// OpError reports a failed backend operation with enough context to name
// the backend, the operation, and the underlying cause.
type OpError struct {
	// Backend is the backend name.
	Backend string

	// Op is the operation that failed ("" for Symbol failures).
	Op string

	// Err is the underlying cause, often one of the sentinel errors above.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("cas %s: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("cas %s: %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *OpError) Unwrap() error { return e.Err }

// NewOpError constructs an OpError for backend b and operation op.
func NewOpError(backend, op string, err error) *OpError {
	return &OpError{Backend: backend, Op: op, Err: err}
}

// IsUnknownOperation reports whether err is an unknown-operation failure.
// Uses errors.Is to handle wrapped errors.
func IsUnknownOperation(err error) bool {
	return errors.Is(err, ErrUnknownOperation)
}
