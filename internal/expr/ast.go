package expr

import (
	"fmt"
	"strings"
)

// Node is the sealed interface for expression AST nodes.
// Only Call, Ident, IntLit, FloatLit, and Assert implement it.
type Node interface {
	// Pos returns the zero-based column of the node's first token.
	Pos() int

	// String renders the node as source text.
	String() string

	exprNode() // Sealed - only types in this package implement it
}

// Ident is a bare name referencing a bound value (a setup variable, a
// benchmark input, or - in assertions only - the reserved name "result").
type Ident struct {
	Name   string
	Column int
}

func (Ident) exprNode() {}

// Pos returns the identifier's column.
func (n *Ident) Pos() int { return n.Column }

func (n *Ident) String() string { return n.Name }

// IntLit is an integer literal.
type IntLit struct {
	Value  int64
	Column int
}

func (IntLit) exprNode() {}

// Pos returns the literal's column.
func (n *IntLit) Pos() int { return n.Column }

func (n *IntLit) String() string { return fmt.Sprintf("%d", n.Value) }

// FloatLit is a floating-point literal. Lexeme preserves the source spelling
// ("1." stays "1.", not "1") so rendered expressions round-trip.
type FloatLit struct {
	Value  float64
	Lexeme string
	Column int
}

func (FloatLit) exprNode() {}

// Pos returns the literal's column.
func (n *FloatLit) Pos() int { return n.Column }

func (n *FloatLit) String() string { return n.Lexeme }

// Call is a function application with at least one argument.
// The grammar has no empty argument list.
type Call struct {
	Func   string
	Args   []Node
	Column int
}

func (Call) exprNode() {}

// Pos returns the column of the function name.
func (n *Call) Pos() int { return n.Column }

func (n *Call) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Func + "(" + strings.Join(args, ", ") + ")"
}

// Assert is a top-level assertion: a term compared against a numeric
// literal. Only ParseAssertion produces Assert nodes; they never nest.
type Assert struct {
	// Left is the term evaluated at check time.
	Left Node

	// Want is the expected value. Integer literals are widened to float64.
	Want float64

	// WantLexeme preserves the source spelling of the expected literal.
	WantLexeme string

	Column int
}

func (Assert) exprNode() {}

// Pos returns the column of the left term.
func (n *Assert) Pos() int { return n.Column }

func (n *Assert) String() string {
	return n.Left.String() + " == " + n.WantLexeme
}
