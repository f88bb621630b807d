package predicate

import "strings"

const (
	rolePrefix = "@"

	tokenAnd    = "and"
	tokenOr     = "or"
	tokenNot    = "not"
	tokenLParen = "("
	tokenRParen = ")"
)

// Parse turns an expression into a Predicate.
// Any failure is reported as a *SyntaxError wrapping ErrInvalidExpression.
//
// Grammar:
//
//	expression = unary { ( "and" | "or" ) unary }
//	unary      = "not" unary | "(" expression ")" | "@" name
func Parse(expression string) (Predicate, error) {
	tokens := strings.Fields(expression)
	if len(tokens) == 0 {
		return nil, &SyntaxError{Reason: "empty expression"}
	}

	for i, tok := range tokens {
		if !isKnownToken(tok) {
			return nil, &SyntaxError{Pos: i, Token: tok, Reason: "unrecognized token"}
		}
	}

	p := &parser{tokens: tokens}
	root, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.pos < len(p.tokens) {
		return nil, p.fail("unexpected token")
	}

	return root, nil
}

func isKnownToken(tok string) bool {
	switch tok {
	case tokenAnd, tokenOr, tokenNot, tokenLParen, tokenRParen:
		return true
	}
	return strings.HasPrefix(tok, rolePrefix) && len(tok) > len(rolePrefix)
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *parser) fail(reason string) *SyntaxError {
	return &SyntaxError{Pos: p.pos, Token: p.peek(), Reason: reason}
}

func (p *parser) expression() (Predicate, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		if op != tokenAnd && op != tokenOr {
			return left, nil
		}
		p.pos++

		right, err := p.unary()
		if err != nil {
			return nil, err
		}

		if op == tokenAnd {
			left = &And{Left: left, Right: right}
		} else {
			left = &Or{Left: left, Right: right}
		}
	}
}

func (p *parser) unary() (Predicate, error) {
	tok := p.peek()
	switch {
	case tok == "":
		return nil, p.fail("unexpected end of expression")

	case tok == tokenNot:
		p.pos++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Not{Operand: operand}, nil

	case tok == tokenLParen:
		p.pos++
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.peek() != tokenRParen {
			return nil, p.fail("missing closing parenthesis")
		}
		p.pos++
		return inner, nil

	case strings.HasPrefix(tok, rolePrefix):
		p.pos++
		return &Role{Tag: strings.TrimPrefix(tok, rolePrefix)}, nil

	default:
		return nil, p.fail("unexpected token")
	}
}
