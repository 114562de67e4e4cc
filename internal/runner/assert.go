package runner

import (
	"context"
	"fmt"
	"math"

	"github.com/casbench/casbench/internal/cas"
	"github.com/casbench/casbench/internal/expr"
	"github.com/casbench/casbench/internal/spec"
)

// Default assertion tolerances. The relative tolerance dominates for
// values away from zero; the absolute floor lets assertions against an
// expected zero pass at all.
const (
	DefaultRelTol = 1e-9
	DefaultAbsTol = 1e-12
)

// AssertionError is returned when an assert_close does not hold. It carries
// the full comparison so failure output needs no re-evaluation.
type AssertionError struct {
	Expression string
	Want       float64
	Got        float64
	RelTol     float64
	AbsTol     float64
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s\n  Expected: %v (rel_tol=%g, abs_tol=%g)\n  Actual: %v",
		e.Expression, e.Want, e.RelTol, e.AbsTol, e.Got)
}

// Close reports whether got is approximately want:
//
//	|got-want| <= max(relTol*max(|got|, |want|), absTol)
//
// NaN is never close to anything, itself included. An infinity is close
// only to an equal infinity.
func Close(got, want, relTol, absTol float64) bool {
	if math.IsNaN(got) || math.IsNaN(want) {
		return false
	}
	if math.IsInf(got, 0) || math.IsInf(want, 0) {
		return got == want
	}
	diff := math.Abs(got - want)
	return diff <= math.Max(relTol*math.Max(math.Abs(got), math.Abs(want)), absTol)
}

// checkAssertion evaluates an operation's assert_close in the given scope
// (which must already have "result" bound) and compares the outcome.
//
// Returns the comparison record and nil when the check was performed,
// whether or not it held. Returns an error only when the assertion term
// could not be evaluated or produced a non-numeric value.
func checkAssertion(ctx context.Context, op *spec.TimedOperation, scope expr.Scope) (*AssertionResult, error) {
	node := op.AssertAST()

	got, err := expr.Eval(ctx, node.Left, scope)
	if err != nil {
		return nil, err
	}

	value, ok := cas.NumericValue(got)
	if !ok {
		return nil, &RuntimeError{
			Code:    ErrCodeNotNumeric,
			Message: fmt.Sprintf("assertion term produced %s %q, need a number", cas.KindOf(got), cas.DisplayValue(got)),
		}
	}

	relTol, absTol := DefaultRelTol, DefaultAbsTol
	if op.RelTol != nil {
		relTol = *op.RelTol
	}
	if op.AbsTol != nil {
		absTol = *op.AbsTol
	}

	return &AssertionResult{
		Expression: op.AssertClose,
		Want:       node.Want,
		Got:        value,
		RelTol:     relTol,
		AbsTol:     absTol,
		Pass:       Close(value, node.Want, relTol, absTol),
	}, nil
}
