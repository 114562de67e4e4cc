// Package env binds suite setup and benchmark inputs into the scopes
// expressions evaluate in.
//
// Scopes are immutable layered environments: the suite environment holds
// setup bindings, each benchmark layers its inputs over it, and each
// assertion layers the operation's result over that. Layering never mutates
// a parent, so benchmarks cannot leak bindings into each other.
package env

import (
	"context"
	"fmt"
	"strings"

	"github.com/casbench/casbench/internal/cas"
	"github.com/casbench/casbench/internal/expr"
	"github.com/casbench/casbench/internal/spec"
)

// BindError reports a failed binding with the name that failed.
type BindError struct {
	// Name is the binding being established.
	Name string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BindError) Unwrap() error { return e.Err }

// Environment is an immutable scope of symbolic bindings backed by a CAS
// backend. It implements expr.Scope.
type Environment struct {
	backend cas.Backend
	parent  *Environment
	values  map[string]cas.Value
	funcs   map[string]bool
}

// BindSuite resolves a suite's setup against a backend: every variable
// becomes a symbolic handle via Backend.Symbol, and every function name is
// checked against the backend's operation list. Functions a backend does
// not provide fail the bind with the backend's operations in the error.
func BindSuite(ctx context.Context, backend cas.Backend, setup spec.Setup) (*Environment, error) {
	e := &Environment{
		backend: backend,
		values:  make(map[string]cas.Value, len(setup.Variables)),
		funcs:   make(map[string]bool, len(setup.Functions)),
	}

	for _, name := range setup.Variables {
		sym, err := backend.Symbol(ctx, name)
		if err != nil {
			return nil, &BindError{Name: name, Err: err}
		}
		e.values[name] = sym
	}

	supported := make(map[string]bool)
	for _, op := range backend.Operations() {
		supported[op] = true
	}
	for _, name := range setup.Functions {
		if !supported[name] {
			return nil, &BindError{
				Name: name,
				Err: fmt.Errorf("backend %s does not provide operation %q (provides: %s)",
					backend.Name(), name, strings.Join(backend.Operations(), ", ")),
			}
		}
		e.funcs[name] = true
	}

	return e, nil
}

// BindInputs evaluates a benchmark's input expressions in document order,
// each in the suite scope extended by the inputs bound before it. Input
// binding happens outside any timing window.
func BindInputs(ctx context.Context, suiteEnv *Environment, b *spec.Benchmark) (*Environment, error) {
	e := suiteEnv
	for i := range b.Inputs {
		in := &b.Inputs[i]

		if _, bound := e.Lookup(in.Name); bound {
			// Statically rejected at load time; kept as a runtime guard for
			// suites constructed without going through spec.Parse.
			return nil, &BindError{Name: in.Name, Err: fmt.Errorf("name already bound")}
		}

		v, err := expr.Eval(ctx, in.AST(), e)
		if err != nil {
			return nil, &BindError{Name: in.Name, Err: err}
		}
		e = e.WithValue(in.Name, v)
	}
	return e, nil
}

// WithValue returns a child environment with one extra binding.
// The receiver is unchanged.
func (e *Environment) WithValue(name string, v cas.Value) *Environment {
	return &Environment{
		backend: e.backend,
		parent:  e,
		values:  map[string]cas.Value{name: v},
		funcs:   e.funcs,
	}
}

// Lookup resolves a name through the scope chain, innermost first.
func (e *Environment) Lookup(name string) (cas.Value, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Call dispatches a bound function to the backend. Names outside
// setup.functions are rejected here even if the backend would accept them,
// so a suite only ever exercises the operations it declared.
func (e *Environment) Call(ctx context.Context, name string, args []cas.Value) (cas.Value, error) {
	if !e.funcs[name] {
		return nil, fmt.Errorf("function %q is not declared in setup.functions", name)
	}
	return e.backend.Call(ctx, name, args...)
}

// Backend returns the backend this environment is bound to.
func (e *Environment) Backend() cas.Backend { return e.backend }
