package expr

import "fmt"

// ParseError is returned when the token stream does not match the grammar.
type ParseError struct {
	// Expected describes what the parser was looking for.
	Expected string

	// Got is the token actually encountered.
	Got Token
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, got %s at column %d", e.Expected, e.Got, e.Got.Column)
}

// ParseOperation parses an operation expression:
//
//	operation := term EOF
//	term      := IDENT '(' term (',' term)* ')' | IDENT | number
//
// An operation may not contain "==".
func ParseOperation(source string) (Node, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	node, err := p.term()
	if err != nil {
		return nil, err
	}
	if err := p.expect(EOF, "end of input"); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseAssertion parses an assertion expression:
//
//	assertion := term '==' number EOF
//
// The right-hand side must be a literal; an integer literal is widened to
// float64.
func ParseAssertion(source string) (*Assert, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	if err := p.expect(EqualEqual, "'=='"); err != nil {
		return nil, err
	}

	want := p.peek()
	var value float64
	switch want.Type {
	case IntLiteral:
		value = float64(want.Int)
	case FloatLiteral:
		value = want.Float
	default:
		return nil, &ParseError{Expected: "numeric literal", Got: want}
	}
	p.advance()

	if err := p.expect(EOF, "end of input"); err != nil {
		return nil, err
	}

	return &Assert{
		Left:       left,
		Want:       value,
		WantLexeme: want.Lexeme,
		Column:     left.Pos(),
	}, nil
}

// parser is a recursive-descent parser over a lexed token stream.
// The stream always ends with an EOF token, so peek never runs off the end.
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

// expect consumes a token of the given type or fails with a ParseError.
func (p *parser) expect(t TokenType, expected string) error {
	if p.peek().Type != t {
		return &ParseError{Expected: expected, Got: p.peek()}
	}
	p.advance()
	return nil
}

// term parses one term: a call, a bare identifier, or a numeric literal.
func (p *parser) term() (Node, error) {
	tok := p.peek()

	switch tok.Type {
	case Identifier:
		p.advance()
		if p.peek().Type != LeftParen {
			return &Ident{Name: tok.Lexeme, Column: tok.Column}, nil
		}
		return p.callArgs(tok)

	case IntLiteral:
		p.advance()
		return &IntLit{Value: tok.Int, Column: tok.Column}, nil

	case FloatLiteral:
		p.advance()
		return &FloatLit{Value: tok.Float, Lexeme: tok.Lexeme, Column: tok.Column}, nil

	default:
		return nil, &ParseError{Expected: "identifier or literal", Got: tok}
	}
}

// callArgs parses the parenthesized argument list of a call whose function
// name token has already been consumed. The list must be non-empty.
func (p *parser) callArgs(fn Token) (Node, error) {
	// Consume '('
	p.advance()

	call := &Call{Func: fn.Lexeme, Column: fn.Column}

	// The grammar has no zero-argument calls.
	if p.peek().Type == RightParen {
		return nil, &ParseError{Expected: "argument", Got: p.peek()}
	}

	for {
		arg, err := p.term()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		if p.peek().Type != Comma {
			break
		}
		p.advance()
	}

	if err := p.expect(RightParen, "')'"); err != nil {
		return nil, err
	}

	return call, nil
}
