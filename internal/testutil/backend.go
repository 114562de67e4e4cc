// Package testutil provides test doubles for the benchmark harness: a
// scripted CAS backend, a deterministic timer, and a fixed run-ID
// generator.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/casbench/casbench/internal/cas"
)

// Call records one dispatched backend operation.
type Call struct {
	Op   string
	Args []cas.Value
}

// FakeBackend is a scripted cas.Backend. Operations are declared with
// handler funcs; symbols become plain cas.Symbol values. Every Call is
// recorded so tests can assert on dispatch order and arguments.
//
// The zero value is not usable; construct with NewFakeBackend.
type FakeBackend struct {
	mu       sync.Mutex
	name     string
	handlers map[string]func(args []cas.Value) (cas.Value, error)
	calls    []Call
	closed   bool
}

// NewFakeBackend creates a fake backend with no operations.
func NewFakeBackend(name string) *FakeBackend {
	return &FakeBackend{
		name:     name,
		handlers: make(map[string]func(args []cas.Value) (cas.Value, error)),
	}
}

// Handle declares an operation with a handler. Returns the backend for
// chaining in test setup.
func (b *FakeBackend) Handle(op string, fn func(args []cas.Value) (cas.Value, error)) *FakeBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[op] = fn
	return b
}

// HandleExpr declares an operation that always returns an opaque expression
// handle with the given display text.
func (b *FakeBackend) HandleExpr(op, text string) *FakeBackend {
	return b.Handle(op, func(args []cas.Value) (cas.Value, error) {
		return cas.Expr{Text: text}, nil
	})
}

// HandleNumber declares an evalf-style operation that always returns a
// scripted number.
func (b *FakeBackend) HandleNumber(op string, n float64) *FakeBackend {
	return b.Handle(op, func(args []cas.Value) (cas.Value, error) {
		return cas.Number(n), nil
	})
}

// Name implements cas.Backend.
func (b *FakeBackend) Name() string { return b.name }

// Symbol implements cas.Backend. Symbols are plain cas.Symbol handles.
func (b *FakeBackend) Symbol(ctx context.Context, name string) (cas.Value, error) {
	return cas.Symbol{Name: name}, nil
}

// Call implements cas.Backend, dispatching to the declared handler and
// recording the call.
func (b *FakeBackend) Call(ctx context.Context, op string, args ...cas.Value) (cas.Value, error) {
	b.mu.Lock()
	b.calls = append(b.calls, Call{Op: op, Args: args})
	fn, ok := b.handlers[op]
	b.mu.Unlock()

	if !ok {
		return nil, cas.NewOpError(b.name, op, cas.ErrUnknownOperation)
	}
	return fn(args)
}

// Operations implements cas.Backend, returning declared operation names
// sorted.
func (b *FakeBackend) Operations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ops := make([]string, 0, len(b.handlers))
	for op := range b.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Close implements cas.Backend.
func (b *FakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (b *FakeBackend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Calls returns a copy of the recorded calls in dispatch order.
func (b *FakeBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallOps returns just the operation names of recorded calls, in order.
func (b *FakeBackend) CallOps() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	ops := make([]string, len(b.calls))
	for i, c := range b.calls {
		ops[i] = c.Op
	}
	return ops
}

// String aids debugging in failed test output.
func (b *FakeBackend) String() string {
	return fmt.Sprintf("FakeBackend(%s)", b.name)
}
