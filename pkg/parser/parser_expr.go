package parser

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/portugo/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
// Precedence levels:
//
//	precedenceNone       = 0
//	precedenceOr         = 1  (ou)
//	precedenceAnd        = 2  (e)
//	precedenceNot        = 3  (nao)
//	precedenceComparison = 4  (==, !=, <, >, <=, >=)
//	precedenceAddition   = 5  (+, -)
//	precedenceMultiply   = 6  (*, /, %)
//	precedenceUnary      = 7  (-)
const (
	precedenceNone = iota
	precedenceOr
	precedenceAnd
	precedenceNot
	precedenceComparison
	precedenceAddition
	precedenceMultiply
	precedenceUnary
)

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() Expr {
	return p.parseExpressionWithPrecedence(precedenceNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for {
		prec := infixPrecedence(p.token.Type)
		if prec < minPrecedence {
			break
		}
		op := p.token.Type
		p.nextToken()
		right := p.parseExpressionWithPrecedence(prec + 1)
		if right == nil {
			return nil
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left
}

// infixPrecedence returns the precedence of t as an infix operator, or 0.
func infixPrecedence(t token.TokenType) int {
	switch t {
	case token.OU:
		return precedenceOr
	case token.E:
		return precedenceAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		return precedenceComparison
	case token.PLUS, token.MINUS:
		return precedenceAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precedenceMultiply
	default:
		return precedenceNone
	}
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() Expr {
	switch p.token.Type {
	case token.NAO:
		pos := p.token.Pos
		p.nextToken()
		x := p.parseExpressionWithPrecedence(precedenceNot)
		if x == nil {
			return nil
		}
		return &UnaryExpr{Start: pos, Op: token.NAO, X: x}

	case token.MINUS:
		pos := p.token.Pos
		p.nextToken()
		x := p.parseExpressionWithPrecedence(precedenceUnary)
		if x == nil {
			return nil
		}
		return &UnaryExpr{Start: pos, Op: token.MINUS, X: x}

	default:
		return p.parsePrimary()
	}
}

// parsePrimary parses literals, identifiers, calls and parenthesised expressions.
func (p *Parser) parsePrimary() Expr {
	tok := p.token
	switch tok.Type {
	case token.INT:
		p.nextToken()
		v, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.addErrorAt(tok.Pos, fmt.Sprintf(ErrInvalidNumber, tok.Literal))
			return nil
		}
		return &IntLit{Start: tok.Pos, Value: v}

	case token.REAL:
		p.nextToken()
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addErrorAt(tok.Pos, fmt.Sprintf(ErrInvalidNumber, tok.Literal))
			return nil
		}
		return &RealLit{Start: tok.Pos, Value: v}

	case token.STRING:
		p.nextToken()
		return &StringLit{Start: tok.Pos, Value: tok.Literal}

	case token.CHAR:
		p.nextToken()
		return &CharLit{Start: tok.Pos, Value: []rune(tok.Literal)[0]}

	case token.VERDADEIRO, token.FALSO:
		p.nextToken()
		return &BoolLit{Start: tok.Pos, Value: tok.Type == token.VERDADEIRO}

	case token.IDENT:
		p.nextToken()
		ident := &Ident{Start: tok.Pos, Name: tok.Literal}
		if p.check(token.LPAREN) {
			return p.parseCall(ident)
		}
		if p.check(token.LBRACKET) {
			p.addError(ErrVectorUnsupported)
			return nil
		}
		return ident

	case token.LPAREN:
		p.nextToken()
		x := p.parseExpression()
		if x == nil {
			return nil
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		return x

	default:
		p.addError(fmt.Sprintf(ErrExpectedExpr, describe(tok)))
		return nil
	}
}

// parseCall parses "(" [expr {"," expr}] ")" after a function name.
func (p *Parser) parseCall(fn *Ident) Expr {
	call := &CallExpr{Func: fn}
	p.nextToken() // (
	if p.match(token.RPAREN) {
		return call
	}
	for {
		arg := p.parseExpression()
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if !p.match(token.COMMA) {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		return nil
	}
	return call
}
