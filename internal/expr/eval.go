package expr

import (
	"context"
	"fmt"

	"github.com/casbench/casbench/internal/cas"
)

// Scope resolves names during evaluation. The environment binder provides
// the concrete implementation; the evaluator never talks to a backend
// directly.
type Scope interface {
	// Lookup resolves a value-position name (variable, input, or result).
	Lookup(name string) (cas.Value, bool)

	// Call dispatches a function-position name with evaluated arguments.
	Call(ctx context.Context, name string, args []cas.Value) (cas.Value, error)
}

// EvalError wraps an evaluation failure with the source position of the
// failing node.
type EvalError struct {
	// Expr is the source rendering of the failing node.
	Expr string

	// Column is the node's zero-based column.
	Column int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	return fmt.Sprintf("eval %s at column %d: %v", e.Expr, e.Column, e.Err)
}

// Unwrap returns the underlying cause.
func (e *EvalError) Unwrap() error { return e.Err }

// Eval evaluates a term against a scope. Arguments of a call are evaluated
// strictly left to right before the call dispatches. Literals evaluate to
// cas.Int and cas.Number values.
//
// Assert nodes are not terms; evaluate their Left instead.
func Eval(ctx context.Context, node Node, scope Scope) (cas.Value, error) {
	switch n := node.(type) {
	case *IntLit:
		return cas.Int(n.Value), nil

	case *FloatLit:
		return cas.Number(n.Value), nil

	case *Ident:
		v, ok := scope.Lookup(n.Name)
		if !ok {
			return nil, &EvalError{
				Expr:   n.Name,
				Column: n.Column,
				Err:    fmt.Errorf("unbound name %q", n.Name),
			}
		}
		return v, nil

	case *Call:
		args := make([]cas.Value, len(n.Args))
		for i, argNode := range n.Args {
			arg, err := Eval(ctx, argNode, scope)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		v, err := scope.Call(ctx, n.Func, args)
		if err != nil {
			return nil, &EvalError{Expr: n.String(), Column: n.Column, Err: err}
		}
		return v, nil

	case *Assert:
		return nil, &EvalError{
			Expr:   n.String(),
			Column: n.Column,
			Err:    fmt.Errorf("assertion is not a term"),
		}

	default:
		return nil, fmt.Errorf("unsupported node type %T", node)
	}
}
