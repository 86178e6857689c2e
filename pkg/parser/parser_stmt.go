package parser

import (
	"fmt"

	"github.com/leapstack-labs/portugo/pkg/token"
)

// Statement grammar:
//
//	statement → var_decl | if | while | do_while | for | "pare" | return
//	          | block | simple
//	if        → "se" "(" expr ")" block ["senao" (if | block)]
//	while     → "enquanto" "(" expr ")" block
//	do_while  → "faca" block "enquanto" "(" expr ")"
//	for       → "para" "(" [var_decl | simple] ";" [expr] ";" [simple] ")" block
//	return    → "retorne" [expr]
//	simple    → ident assign_op expr | ident ("++" | "--") | call

// parseBlock parses a braced statement list.
func (p *Parser) parseBlock() *Block {
	block := &Block{Start: p.token.Pos}
	if !p.expect(token.LBRACE) {
		p.synchronize(block.Start.Line)
		return block
	}

	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		before := p.token
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if p.token == before {
			p.nextToken()
		}
	}

	p.expect(token.RBRACE)
	return block
}

// parseStatement parses a single statement. It returns nil on error.
func (p *Parser) parseStatement() Stmt {
	switch {
	case p.check(token.CONST) || p.token.Type.IsType():
		decls := p.parseVarDecls()
		if len(decls) == 0 {
			return nil
		}
		return &DeclStmt{Decls: decls}
	case p.check(token.SE):
		return p.parseIf()
	case p.check(token.ENQUANTO):
		return p.parseWhile()
	case p.check(token.FACA):
		return p.parseDoWhile()
	case p.check(token.PARA):
		return p.parseFor()
	case p.check(token.PARE):
		stmt := &BreakStmt{Start: p.token.Pos}
		p.nextToken()
		return stmt
	case p.check(token.RETORNE):
		return p.parseReturn()
	case p.check(token.LBRACE):
		return p.parseBlock()
	case p.check(token.SEMICOLON):
		p.nextToken()
		return nil
	case p.check(token.IDENT):
		line := p.token.Pos.Line
		stmt := p.parseSimpleStatement()
		if stmt == nil {
			p.synchronize(line)
		}
		return stmt
	default:
		line := p.token.Pos.Line
		p.addError(fmt.Sprintf(ErrUnexpectedInput, describe(p.token)))
		p.synchronize(line)
		return nil
	}
}

// parseSimpleStatement parses assignments, increments and calls.
func (p *Parser) parseSimpleStatement() Stmt {
	if p.check(token.IDENT) {
		switch {
		case p.peek.Type.IsAssign():
			target := &Ident{Start: p.token.Pos, Name: p.token.Literal}
			p.nextToken()
			op := p.token.Type
			p.nextToken()
			value := p.parseExpression()
			if value == nil {
				return nil
			}
			return &AssignStmt{Target: target, Op: op, Value: value}
		case p.checkPeek(token.INC) || p.checkPeek(token.DEC):
			target := &Ident{Start: p.token.Pos, Name: p.token.Literal}
			p.nextToken()
			op := p.token.Type
			p.nextToken()
			return &IncDecStmt{Target: target, Op: op}
		}
	}

	start := p.token.Pos
	expr := p.parseExpression()
	if expr == nil {
		return nil
	}
	if _, ok := expr.(*CallExpr); !ok {
		p.addErrorAt(start, ErrNotStatement)
		return nil
	}
	return &ExprStmt{X: expr}
}

// parseCondition parses "(" expr ")".
func (p *Parser) parseCondition() Expr {
	if !p.expect(token.LPAREN) {
		return nil
	}
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	return cond
}

func (p *Parser) parseIf() Stmt {
	stmt := &IfStmt{Start: p.token.Pos}
	p.nextToken() // se
	stmt.Cond = p.parseCondition()
	stmt.Then = p.parseBlock()

	if p.match(token.SENAO) {
		if p.check(token.SE) {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	if stmt.Cond == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhile() Stmt {
	stmt := &WhileStmt{Start: p.token.Pos}
	p.nextToken() // enquanto
	stmt.Cond = p.parseCondition()
	stmt.Body = p.parseBlock()
	if stmt.Cond == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDoWhile() Stmt {
	stmt := &DoWhileStmt{Start: p.token.Pos}
	p.nextToken() // faca
	stmt.Body = p.parseBlock()
	if !p.expect(token.ENQUANTO) {
		return nil
	}
	stmt.Cond = p.parseCondition()
	if stmt.Cond == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseFor() Stmt {
	stmt := &ForStmt{Start: p.token.Pos}
	p.nextToken() // para
	if !p.expect(token.LPAREN) {
		return nil
	}

	if !p.check(token.SEMICOLON) {
		if p.check(token.CONST) || p.token.Type.IsType() {
			if decls := p.parseVarDecls(); len(decls) > 0 {
				stmt.Init = &DeclStmt{Decls: decls}
			}
		} else {
			stmt.Init = p.parseSimpleStatement()
		}
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	if !p.check(token.SEMICOLON) {
		stmt.Cond = p.parseExpression()
	}
	if !p.expect(token.SEMICOLON) {
		return nil
	}

	if !p.check(token.RPAREN) {
		stmt.Step = p.parseSimpleStatement()
	}
	if !p.expect(token.RPAREN) {
		return nil
	}

	stmt.Body = p.parseBlock()
	return stmt
}

func (p *Parser) parseReturn() Stmt {
	stmt := &ReturnStmt{Start: p.token.Pos}
	p.nextToken() // retorne
	if !p.check(token.RBRACE) && !p.check(token.EOF) && p.token.Pos.Line == stmt.Start.Line {
		stmt.Value = p.parseExpression()
	}
	return stmt
}
