package expr

import "fmt"

// TokenType identifies the kind of a lexed token.
type TokenType int

// Token types produced by Lex.
const (
	// Identifier is a name: a letter followed by letters, digits, or
	// underscores (leading underscore is an invalid lexeme).
	Identifier TokenType = iota

	// IntLiteral is a run of digits with no decimal point.
	IntLiteral

	// FloatLiteral is a run of digits containing exactly one decimal point.
	// A trailing decimal point ("1.") is a valid float.
	FloatLiteral

	// LeftParen is "(".
	LeftParen

	// RightParen is ")".
	RightParen

	// Comma is ",".
	Comma

	// EqualEqual is "==". A lone "=" is an invalid lexeme.
	EqualEqual

	// EOF marks the end of input. Its lexeme is empty.
	EOF
)

// String returns the token type name for diagnostics.
func (t TokenType) String() string {
	switch t {
	case Identifier:
		return "identifier"
	case IntLiteral:
		return "integer literal"
	case FloatLiteral:
		return "float literal"
	case LeftParen:
		return "'('"
	case RightParen:
		return "')'"
	case Comma:
		return "','"
	case EqualEqual:
		return "'=='"
	case EOF:
		return "end of input"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is a single lexeme with its source position.
//
// Line and Column are zero-based. Column counts runes from the start of the
// expression; expressions are single-line, so Line is 0 for every token the
// lexer currently produces, but the field is kept so positions stay stable
// if multi-line sources ever appear.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Column int

	// Int holds the value of an IntLiteral token.
	Int int64

	// Float holds the value of a FloatLiteral token.
	Float float64
}

// String renders the token for error messages.
func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
}
