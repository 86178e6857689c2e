// Package parser provides parsing of Portugol source text into an AST.
//
// # Usage
//
//	var diags diag.Collector
//	prog, err := parser.Parse(src, diags.Report)
//	if err != nil {
//	    // diags.Diagnostics() holds every syntax problem found
//	}
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for a Portugol subset:
//
//	program   → "programa" "{" { global } "}"
//	global    → var_decl | func_decl
//	var_decl  → ["const"] type ident ["=" expr] { "," ident ["=" expr] }
//	func_decl → "funcao" [type] ident "(" [param {"," param}] ")" block
//	block     → "{" { statement } "}"
//
// Statements are described in parser_stmt.go and expressions in parser_expr.go.
// Lexical and syntax errors are reported through an ErrorListener as they are
// found; the parser recovers at the next statement boundary and keeps going.
package parser

import (
	"fmt"

	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/token"
)

// ErrorListener receives every syntax diagnostic as it is found.
type ErrorListener func(diag.Diagnostic)

// Parser parses Portugol into an AST.
type Parser struct {
	lexer    *Lexer
	token    token.Token // current token
	peek     token.Token // lookahead token
	errors   []error
	listener ErrorListener
	lexSeen  int
	lastErr  token.Position
}

// NewParser creates a new parser for the given source.
// listener may be nil.
func NewParser(src string, listener ErrorListener) *Parser {
	p := &Parser{
		lexer:    NewLexer(src),
		listener: listener,
	}
	// Read two tokens to initialize current and peek
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses src and returns the program.
// Every syntax problem is passed to listener; the first one is also returned
// as the error, together with the partially built program.
func Parse(src string, listener ErrorListener) (*Program, error) {
	p := NewParser(src, listener)
	prog := p.ParseProgram()
	if len(p.errors) > 0 {
		return prog, p.errors[0]
	}
	return prog, nil
}

// Errors returns all errors found so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.lexer.NextToken()
	p.drainLexErrors()
}

// drainLexErrors reports lexer errors in the order they were produced.
func (p *Parser) drainLexErrors() {
	for ; p.lexSeen < len(p.lexer.Errors); p.lexSeen++ {
		e := p.lexer.Errors[p.lexSeen]
		p.record(e, e.Diagnostic())
	}
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, quote(t), describe(p.token)))
	return false
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.addErrorAt(p.token.Pos, msg)
}

func (p *Parser) addErrorAt(pos token.Position, msg string) {
	// ILLEGAL tokens were already reported by the lexer.
	if p.token.Type == token.ILLEGAL && pos == p.token.Pos {
		return
	}
	e := &ParseError{Pos: pos, Message: msg}
	p.record(e, e.Diagnostic())
}

func (p *Parser) record(err error, d diag.Diagnostic) {
	// One report per position keeps cascades out of the listing.
	pos := token.Position{Line: d.Line, Column: d.Column}
	if len(p.errors) > 0 && pos == p.lastErr {
		return
	}
	p.lastErr = pos
	p.errors = append(p.errors, err)
	if p.listener != nil {
		p.listener(d)
	}
}

// synchronize skips tokens until a plausible statement boundary.
func (p *Parser) synchronize(line int) {
	for !p.check(token.EOF) {
		if p.check(token.RBRACE) || p.token.Pos.Line > line {
			return
		}
		p.nextToken()
	}
}

func quote(t token.TokenType) string {
	if t.IsKeyword() || len(t.String()) <= 2 {
		return "'" + t.String() + "'"
	}
	return t.String()
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return tok.Type.String()
	case token.IDENT, token.INT, token.REAL:
		return fmt.Sprintf("'%s'", tok.Literal)
	case token.STRING:
		return fmt.Sprintf("%q", tok.Literal)
	default:
		return quote(tok.Type)
	}
}

// ---------- Declarations ----------

// ParseProgram parses a whole source file.
func (p *Parser) ParseProgram() *Program {
	prog := &Program{Start: p.token.Pos}

	if !p.check(token.PROGRAMA) {
		p.addError(ErrMissingProgram)
		return prog
	}
	p.nextToken()
	if !p.expect(token.LBRACE) {
		return prog
	}

	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		before := p.token
		switch {
		case p.check(token.FUNCAO):
			if fn := p.parseFuncDecl(); fn != nil {
				prog.Funcs = append(prog.Funcs, fn)
			}
		case p.check(token.CONST) || p.token.Type.IsType():
			prog.Globals = append(prog.Globals, p.parseVarDecls()...)
		default:
			p.addError(fmt.Sprintf(ErrUnexpectedInput, describe(p.token)))
			p.synchronize(p.token.Pos.Line)
		}
		if p.token == before {
			p.nextToken()
		}
	}

	p.expect(token.RBRACE)
	if !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedInput, describe(p.token)))
	}
	return prog
}

// parseType parses a type keyword.
func (p *Parser) parseType() (Type, bool) {
	if !p.token.Type.IsType() {
		p.addError(fmt.Sprintf(ErrExpectedType, describe(p.token)))
		return "", false
	}
	t := typeFromToken(p.token.Type)
	p.nextToken()
	return t, true
}

// parseVarDecls parses: ["const"] type ident ["=" expr] {"," ident ["=" expr]}
func (p *Parser) parseVarDecls() []*VarDecl {
	start := p.token.Pos
	isConst := p.match(token.CONST)
	typ, ok := p.parseType()
	if !ok {
		p.synchronize(start.Line)
		return nil
	}

	var decls []*VarDecl
	for {
		if !p.check(token.IDENT) {
			p.expect(token.IDENT)
			p.synchronize(start.Line)
			return decls
		}
		decl := &VarDecl{Start: p.token.Pos, Const: isConst, Type: typ, Name: p.token.Literal}
		p.nextToken()
		if p.check(token.LBRACKET) {
			p.addError(ErrVectorUnsupported)
			p.synchronize(start.Line)
			return decls
		}
		if p.match(token.ASSIGN) {
			decl.Init = p.parseExpression()
		}
		decls = append(decls, decl)
		if !p.match(token.COMMA) {
			return decls
		}
	}
}

// parseFuncDecl parses: "funcao" [type] ident "(" params ")" block
func (p *Parser) parseFuncDecl() *FuncDecl {
	start := p.token.Pos
	p.nextToken() // funcao

	fn := &FuncDecl{Start: start, Return: TypeVazio}
	if p.token.Type.IsType() {
		fn.Return, _ = p.parseType()
	}
	if !p.check(token.IDENT) {
		p.expect(token.IDENT)
		p.synchronize(start.Line)
		return nil
	}
	fn.Name = p.token.Literal
	p.nextToken()

	if !p.expect(token.LPAREN) {
		p.synchronize(start.Line)
		return nil
	}
	if !p.check(token.RPAREN) {
		for {
			param := &Param{Start: p.token.Pos}
			typ, ok := p.parseType()
			if !ok {
				break
			}
			param.Type = typ
			if !p.check(token.IDENT) {
				p.expect(token.IDENT)
				break
			}
			param.Name = p.token.Literal
			p.nextToken()
			fn.Params = append(fn.Params, param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if !p.expect(token.RPAREN) {
		p.synchronize(start.Line)
	}
	fn.Body = p.parseBlock()
	return fn
}
