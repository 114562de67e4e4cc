package expr

import (
	"fmt"
	"strconv"
	"unicode"
)

// LexError is returned when the lexer encounters a lexeme that cannot be
// tokenized: a leading underscore, a number with two decimal points, a digit
// run followed by a letter, a lone "=", or any rune outside the grammar
// (tabs included - the only whitespace is the space character).
type LexError struct {
	// Lexeme is the offending rune as encountered.
	Lexeme string

	// Line and Column locate the lexeme (zero-based).
	Line   int
	Column int

	// Index is the rune offset from the start of the source.
	Index int
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return fmt.Sprintf("invalid lexeme %q on line %d at column %d (index %d)",
		e.Lexeme, e.Line, e.Column, e.Index)
}

// Lex tokenizes an expression into a token stream ending with an EOF token.
// Returns a LexError on the first invalid lexeme.
func Lex(source string) ([]Token, error) {
	runes := []rune(source)

	line := 0
	column := 0
	index := 0

	var tokens []Token

	invalid := func(r rune) error {
		return &LexError{Lexeme: string(r), Line: line, Column: column, Index: index}
	}

	for index < len(runes) {
		current := runes[index]

		// The space character is the only ignorable whitespace.
		if current == ' ' {
			column++
			index++
			continue
		}

		tok := Token{Line: line, Column: column}

		switch {
		case unicode.IsLetter(current):
			length := 1
			for index+length < len(runes) && isIdentRune(runes[index+length]) {
				length++
			}
			tok.Type = Identifier
			tok.Lexeme = string(runes[index : index+length])
			column += length
			index += length

		case isDigit(current):
			length := 1
			hasDecimalPoint := false
			for index+length < len(runes) {
				peek := runes[index+length]
				if peek == '.' {
					if hasDecimalPoint {
						return nil, invalid(current)
					}
					hasDecimalPoint = true
				} else if unicode.IsLetter(peek) || peek == '_' {
					// "100_000" and "10x" are invalid, not two tokens.
					return nil, invalid(current)
				} else if !isDigit(peek) {
					break
				}
				length++
			}
			tok.Lexeme = string(runes[index : index+length])
			if hasDecimalPoint {
				tok.Type = FloatLiteral
				f, err := strconv.ParseFloat(tok.Lexeme, 64)
				if err != nil {
					return nil, invalid(current)
				}
				tok.Float = f
			} else {
				tok.Type = IntLiteral
				n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
				if err != nil {
					return nil, invalid(current)
				}
				tok.Int = n
			}
			column += length
			index += length

		case current == '(':
			tok.Type = LeftParen
			tok.Lexeme = "("
			column++
			index++

		case current == ')':
			tok.Type = RightParen
			tok.Lexeme = ")"
			column++
			index++

		case current == ',':
			tok.Type = Comma
			tok.Lexeme = ","
			column++
			index++

		case current == '=':
			// Only "==" is a valid comparison lexeme.
			if index+1 >= len(runes) || runes[index+1] != '=' {
				return nil, invalid(current)
			}
			tok.Type = EqualEqual
			tok.Lexeme = "=="
			column += 2
			index += 2

		default:
			return nil, invalid(current)
		}

		tokens = append(tokens, tok)
	}

	tokens = append(tokens, Token{Type: EOF, Line: line, Column: column})
	return tokens, nil
}

// isIdentRune reports whether r may continue an identifier.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || isDigit(r) || r == '_'
}

// isDigit reports whether r is an ASCII digit. Unicode digits are not part
// of the grammar.
func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
