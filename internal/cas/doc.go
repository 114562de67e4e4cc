// Package cas defines the contract between the benchmark harness and a
// computer-algebra-system backend.
//
// The harness never manipulates symbolic mathematics itself. It treats the
// backend as an opaque provider of named operations: it asks the backend to
// mint symbolic handles for the names declared in a suite's setup, passes
// those handles back into backend calls verbatim, and only inspects values
// when an assertion needs a number.
//
// ARCHITECTURE:
//
// Backend registration follows the database/sql driver pattern. A backend
// package registers an Opener from init():
//
//	func init() {
//	    cas.Register("maxima", func(ctx context.Context) (cas.Backend, error) {
//	        return connect(ctx)
//	    })
//	}
//
// and a binary selects it by name:
//
//	backend, err := cas.Open(ctx, "maxima")
//
// Value is a sealed interface: only Symbol, Expr, Number, and Int implement
// it. Backends produce values, the harness routes them; neither side ever
// sees a value kind it did not agree on at compile time.
package cas
