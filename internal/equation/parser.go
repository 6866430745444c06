package equation

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"fmt"
	"strings"
)

// ParseError describes a failure to parse an equation string. Parse errors
// are recoverable; callers attach them to the owning counter and the
// validator reports them later.
type ParseError struct {
	Source string // the original equation text
	Offset int    // byte offset of the failure
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at offset %d in %q", e.Msg, e.Offset, e.Source)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenName
	tokenNumber
	tokenOperator // + - * /
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

type parser struct {
	source string
	tokens []token
	pos    int
}

// Parse converts an equation string into an AST. It never panics; any
// malformed input is reported as a *ParseError.
func Parse(source string) (Node, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}

	p := &parser{source: source, tokens: tokens}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, p.errorf(tok, "unexpected %q after expression", tok.text)
	}

	return node, nil
}

func lex(source string) ([]token, error) {
	var tokens []token

	i := 0
	for i < len(source) {
		c := source[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{tokenOperator, string(c), i})
			i++

		case c == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++

		case c == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++

		case c == ',':
			tokens = append(tokens, token{tokenComma, ",", i})
			i++

		case isDigit(c):
			start := i
			for i < len(source) && isDigit(source[i]) {
				i++
			}
			if i < len(source) && source[i] == '.' {
				i++
				if i >= len(source) || !isDigit(source[i]) {
					return nil, &ParseError{source, i, "malformed number"}
				}
				for i < len(source) && isDigit(source[i]) {
					i++
				}
			}
			tokens = append(tokens, token{tokenNumber, source[start:i], start})

		case isNameStart(c):
			start := i
			for i < len(source) && isNameByte(source[i]) {
				i++
			}
			tokens = append(tokens, token{tokenName, source[start:i], start})

		default:
			return nil, &ParseError{source, i, fmt.Sprintf("unexpected character %q", c)}
		}
	}

	tokens = append(tokens, token{tokenEOF, "", len(source)})
	return tokens, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &ParseError{p.source, tok.offset, fmt.Sprintf(format, args...)}
}

// expr := term (('+'|'-') term)*
func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: tok.text, Prec: PrecAdditive, Left: left, Right: right}
	}
}

// term := factor (('*'|'/') factor)*
func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: tok.text, Prec: PrecMultiplicative, Left: left, Right: right}
	}
}

// factor := NUMBER | NAME | NAME '(' expr (',' expr)* ')' | '(' expr ')'
func (p *parser) parseFactor() (Node, error) {
	tok := p.next()

	switch tok.kind {
	case tokenNumber:
		return &Literal{Value: tok.text}, nil

	case tokenName:
		if p.peek().kind != tokenLParen {
			return &Name{Ident: tok.text}, nil
		}
		return p.parseCall(tok)

	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, p.errorf(closing, "expected ')'")
		}
		return inner, nil

	case tokenEOF:
		return nil, p.errorf(tok, "unexpected end of equation")

	default:
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
}

func (p *parser) parseCall(name token) (Node, error) {
	p.next() // consume '('

	var args []Node
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		tok := p.next()
		if tok.kind == tokenComma {
			continue
		}
		if tok.kind == tokenRParen {
			break
		}
		return nil, p.errorf(tok, "expected ',' or ')' in %s() arguments", name.text)
	}

	// The min/max built-ins reduce over their arguments so need at least two
	fname := strings.ToLower(name.text)
	if (fname == "min" || fname == "max") && len(args) < 2 {
		return nil, p.errorf(name, "%s() requires at least two arguments", name.text)
	}

	return &Call{Func: name.text, Args: args}, nil
}
