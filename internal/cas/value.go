package cas

import (
	"fmt"
	"strconv"
)

// Value is a sealed interface representing the value kinds that flow between
// the harness and a backend. Only Symbol, Expr, Number, and Int implement it.
//
// Symbolic handles (Symbol, Expr) are opaque to the harness: it never looks
// inside them, it only threads them through backend calls. Numeric values
// (Number, Int) are the only kinds an assertion can compare.
type Value interface {
	// Display returns a human-readable rendering for logs and reports.
	// It is NOT a wire format and round-tripping it is not supported.
	Display() string

	casValue() // Sealed - only types in this package implement it
}

// Symbol is a named symbolic handle minted by Backend.Symbol.
//
// The name is the identifier from the suite's setup.variables section.
// Backends that keep per-symbol state should wrap Symbol in their own Expr
// representation when it first enters a Call.
type Symbol struct {
	// Name is the identifier the symbol was created under.
	Name string
}

func (Symbol) casValue() {}

// Display returns the symbol's name.
func (s Symbol) Display() string { return s.Name }

// Expr is an opaque backend expression handle.
//
// Handle is backend-private: the harness stores it and passes it back into
// subsequent calls on the same backend, nothing more. Text is the backend's
// display rendering, captured at construction time so results remain
// printable after the backend is closed.
type Expr struct {
	// Handle is the backend's internal representation. Never inspected by
	// the harness; must only be passed back to the backend that produced it.
	Handle any

	// Text is a display rendering of the expression (e.g. "cos(x)").
	Text string
}

func (Expr) casValue() {}

// Display returns the backend's rendering, or "<expr>" when the backend
// supplied none.
func (e Expr) Display() string {
	if e.Text == "" {
		return "<expr>"
	}
	return e.Text
}

// Number is a floating-point numeric value, typically the output of an
// evalf-style operation. Assertions compare Numbers.
type Number float64

func (Number) casValue() {}

// Display formats the number with the shortest representation that
// round-trips (strconv 'g', precision -1).
func (n Number) Display() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Int is an integer numeric value. Integer literals in expressions evaluate
// to Int so backends can distinguish exact derivative orders from floats.
type Int int64

func (Int) casValue() {}

// Display returns the decimal rendering.
func (i Int) Display() string { return strconv.FormatInt(int64(i), 10) }

// NumericValue extracts a float64 from a numeric Value.
// Returns false for Symbol and Expr values.
func NumericValue(v Value) (float64, bool) {
	switch val := v.(type) {
	case Number:
		return float64(val), true
	case Int:
		return float64(val), true
	default:
		return 0, false
	}
}

// DisplayValue renders any Value, tolerating nil (which prints as "<nil>").
// Used by error paths where a backend may have returned nothing.
func DisplayValue(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Display()
}

// KindOf names a Value's kind for diagnostics: "symbol", "expr", "number",
// "int", or "unknown kind %T" for a type that escaped the sealed set.
func KindOf(v Value) string {
	switch v.(type) {
	case Symbol:
		return "symbol"
	case Expr:
		return "expr"
	case Number:
		return "number"
	case Int:
		return "int"
	default:
		return fmt.Sprintf("unknown kind %T", v)
	}
}
