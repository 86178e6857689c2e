// Package checker performs static checking of parsed Portugol programs.
//
// Every problem found is a diagnostic; none of them stops the check. Types
// flow through expressions so that a single mistake is reported once: an
// expression whose type could not be determined is compatible with anything.
package checker

import (
	"errors"

	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/parser"
	"github.com/leapstack-labs/portugo/pkg/token"
)

// ErrNilProgram is returned when Check is given no program.
var ErrNilProgram = errors.New("checker: nil program")

// unknown marks an expression whose type could not be determined.
const unknown parser.Type = ""

// Builtin describes a library function available to every program.
type Builtin struct {
	Name string
	// Arity is the number of arguments, or -1 when variadic.
	Arity  int
	Return parser.Type
}

// Builtins lists the library functions known to the checker.
var Builtins = map[string]Builtin{
	"escreva": {Name: "escreva", Arity: -1, Return: parser.TypeVazio},
	"leia":    {Name: "leia", Arity: -1, Return: parser.TypeVazio},
	"limpa":   {Name: "limpa", Arity: 0, Return: parser.TypeVazio},
}

type symbol struct {
	typ      parser.Type
	constant bool
}

type scope map[string]*symbol

// Checker holds the state of a single check.
type Checker struct {
	diags  diag.Collector
	funcs  map[string]*parser.FuncDecl
	scopes []scope
	loops  int
	fn     *parser.FuncDecl
}

// Check checks prog and returns its diagnostics in discovery order.
func Check(prog *parser.Program) ([]diag.Diagnostic, error) {
	if prog == nil {
		return nil, ErrNilProgram
	}
	c := &Checker{funcs: make(map[string]*parser.FuncDecl)}
	c.checkProgram(prog)
	return c.diags.Diagnostics(), nil
}

func (c *Checker) errorf(pos token.Position, format string, args ...any) {
	c.diags.Report(diag.New(pos.Line, pos.Column, format, args...))
}

// ---------- Scopes ----------

func (c *Checker) push() { c.scopes = append(c.scopes, scope{}) }
func (c *Checker) pop()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) declare(pos token.Position, name string, sym *symbol) {
	current := c.scopes[len(c.scopes)-1]
	if _, exists := current[name]; exists {
		c.errorf(pos, MsgRedeclaredVar, name)
		return
	}
	current[name] = sym
}

func (c *Checker) lookup(name string) *symbol {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i][name]; ok {
			return sym
		}
	}
	return nil
}

// ---------- Declarations ----------

func (c *Checker) checkProgram(prog *parser.Program) {
	for _, fn := range prog.Funcs {
		if _, ok := Builtins[fn.Name]; ok {
			c.errorf(fn.Start, MsgBuiltinRedeclared, fn.Name)
			continue
		}
		if _, exists := c.funcs[fn.Name]; exists {
			c.errorf(fn.Start, MsgRedeclaredFunc, fn.Name)
			continue
		}
		c.funcs[fn.Name] = fn
	}

	c.push() // globals
	for _, decl := range prog.Globals {
		c.checkVarDecl(decl)
	}
	for _, fn := range prog.Funcs {
		c.checkFunc(fn)
	}
	c.pop()

	if _, ok := c.funcs["inicio"]; !ok {
		c.errorf(prog.Start, MsgMissingInicio)
	}
}

func (c *Checker) checkVarDecl(decl *parser.VarDecl) {
	if decl.Type == parser.TypeVazio {
		c.errorf(decl.Start, MsgVoidVar, decl.Name)
	}
	if decl.Init != nil {
		c.checkAssignable(decl.Init.Pos(), decl.Name, decl.Type, c.expr(decl.Init))
	} else if decl.Const {
		c.errorf(decl.Start, MsgConstNoInit, decl.Name)
	}
	c.declare(decl.Start, decl.Name, &symbol{typ: decl.Type, constant: decl.Const})
}

func (c *Checker) checkFunc(fn *parser.FuncDecl) {
	c.fn = fn
	defer func() { c.fn = nil }()

	c.push()
	defer c.pop()
	for _, param := range fn.Params {
		if param.Type == parser.TypeVazio {
			c.errorf(param.Start, MsgVoidVar, param.Name)
		}
		c.declare(param.Start, param.Name, &symbol{typ: param.Type})
	}
	// Parameters and the outermost body share a scope.
	if fn.Body != nil {
		for _, stmt := range fn.Body.Stmts {
			c.stmt(stmt)
		}
	}
}

// ---------- Statements ----------

func (c *Checker) block(b *parser.Block) {
	if b == nil {
		return
	}
	c.push()
	defer c.pop()
	for _, stmt := range b.Stmts {
		c.stmt(stmt)
	}
}

func (c *Checker) loopBody(b *parser.Block) {
	c.loops++
	c.block(b)
	c.loops--
}

func (c *Checker) stmt(s parser.Stmt) {
	switch s := s.(type) {
	case *parser.Block:
		c.block(s)
	case *parser.DeclStmt:
		for _, decl := range s.Decls {
			c.checkVarDecl(decl)
		}
	case *parser.ExprStmt:
		c.expr(s.X)
	case *parser.AssignStmt:
		c.assign(s)
	case *parser.IncDecStmt:
		sym := c.target(s.Target)
		if sym != nil && !isNumeric(sym.typ) {
			c.errorf(s.Target.Start, MsgOperand, s.Op, sym.typ)
		}
	case *parser.IfStmt:
		c.condition(s.Cond)
		c.block(s.Then)
		if s.Else != nil {
			c.stmt(s.Else)
		}
	case *parser.WhileStmt:
		c.condition(s.Cond)
		c.loopBody(s.Body)
	case *parser.DoWhileStmt:
		c.loopBody(s.Body)
		c.condition(s.Cond)
	case *parser.ForStmt:
		c.push()
		if s.Init != nil {
			c.stmt(s.Init)
		}
		if s.Cond != nil {
			c.condition(s.Cond)
		}
		if s.Step != nil {
			c.stmt(s.Step)
		}
		c.loopBody(s.Body)
		c.pop()
	case *parser.BreakStmt:
		if c.loops == 0 {
			c.errorf(s.Start, MsgBreakOutsideLoop)
		}
	case *parser.ReturnStmt:
		c.checkReturn(s)
	}
}

// target resolves an assignment target, reporting undeclared names and constants.
func (c *Checker) target(id *parser.Ident) *symbol {
	sym := c.lookup(id.Name)
	if sym == nil {
		c.undeclaredVar(id)
		return nil
	}
	if sym.constant {
		c.errorf(id.Start, MsgConstAssign, id.Name)
	}
	return sym
}

func (c *Checker) assign(s *parser.AssignStmt) {
	sym := c.target(s.Target)
	value := c.expr(s.Value)
	if sym == nil {
		return
	}

	if s.Op == token.ASSIGN {
		c.checkAssignable(s.Value.Pos(), s.Target.Name, sym.typ, value)
		return
	}
	result := c.arithmetic(s.Target.Start, compoundOp(s.Op), sym.typ, value)
	c.checkAssignable(s.Value.Pos(), s.Target.Name, sym.typ, result)
}

func (c *Checker) condition(e parser.Expr) {
	if e == nil {
		return
	}
	if t := c.expr(e); t != unknown && t != parser.TypeLogico {
		c.errorf(e.Pos(), MsgCondition, t)
	}
}

func (c *Checker) checkReturn(s *parser.ReturnStmt) {
	if c.fn == nil {
		return
	}
	name, want := c.fn.Name, c.fn.Return
	if s.Value == nil {
		if want != parser.TypeVazio {
			c.errorf(s.Start, MsgReturnMissing, name, want)
		}
		return
	}
	got := c.expr(s.Value)
	switch {
	case want == parser.TypeVazio:
		c.errorf(s.Value.Pos(), MsgReturnInVoid, name)
	case !assignable(want, got):
		c.errorf(s.Value.Pos(), MsgReturnType, name, want, got)
	}
}

func (c *Checker) checkAssignable(pos token.Position, name string, dst, src parser.Type) {
	if !assignable(dst, src) {
		c.errorf(pos, MsgAssignType, src, name, dst)
	}
}

// assignable reports whether a value of type src may be stored in dst.
// inteiro widens to real and caracter widens to cadeia.
func assignable(dst, src parser.Type) bool {
	switch {
	case src == unknown || dst == unknown || dst == src:
		return true
	case dst == parser.TypeReal && src == parser.TypeInteiro:
		return true
	case dst == parser.TypeCadeia && src == parser.TypeCaracter:
		return true
	}
	return false
}

func isNumeric(t parser.Type) bool {
	return t == parser.TypeInteiro || t == parser.TypeReal
}

func isText(t parser.Type) bool {
	return t == parser.TypeCadeia || t == parser.TypeCaracter
}

func compoundOp(op token.TokenType) token.TokenType {
	switch op {
	case token.PLUS_ASSIGN:
		return token.PLUS
	case token.MINUS_ASSIGN:
		return token.MINUS
	case token.STAR_ASSIGN:
		return token.STAR
	default:
		return token.SLASH
	}
}

// ---------- Expressions ----------

// expr returns the type of e, reporting problems found inside it.
func (c *Checker) expr(e parser.Expr) parser.Type {
	switch e := e.(type) {
	case *parser.IntLit:
		return parser.TypeInteiro
	case *parser.RealLit:
		return parser.TypeReal
	case *parser.StringLit:
		return parser.TypeCadeia
	case *parser.CharLit:
		return parser.TypeCaracter
	case *parser.BoolLit:
		return parser.TypeLogico
	case *parser.Ident:
		sym := c.lookup(e.Name)
		if sym == nil {
			c.undeclaredVar(e)
			return unknown
		}
		return sym.typ
	case *parser.UnaryExpr:
		return c.unary(e)
	case *parser.BinaryExpr:
		return c.binary(e)
	case *parser.CallExpr:
		return c.call(e)
	default:
		return unknown
	}
}

func (c *Checker) unary(e *parser.UnaryExpr) parser.Type {
	t := c.expr(e.X)
	if e.Op == token.NAO {
		if t != unknown && t != parser.TypeLogico {
			c.errorf(e.Start, MsgOperand, e.Op, t)
		}
		return parser.TypeLogico
	}
	if t != unknown && !isNumeric(t) {
		c.errorf(e.Start, MsgOperand, e.Op, t)
		return unknown
	}
	return t
}

func (c *Checker) binary(e *parser.BinaryExpr) parser.Type {
	left, right := c.expr(e.Left), c.expr(e.Right)
	pos := e.Pos()

	switch e.Op {
	case token.E, token.OU:
		if (left != unknown && left != parser.TypeLogico) || (right != unknown && right != parser.TypeLogico) {
			c.errorf(pos, MsgOperands, e.Op, left, right)
		}
		return parser.TypeLogico

	case token.EQ, token.NE:
		if left != unknown && right != unknown && !canCompare(left, right) {
			c.errorf(pos, MsgOperands, e.Op, left, right)
		}
		return parser.TypeLogico

	case token.LT, token.GT, token.LE, token.GE:
		if left != unknown && right != unknown && (!canCompare(left, right) || left == parser.TypeLogico) {
			c.errorf(pos, MsgOperands, e.Op, left, right)
		}
		return parser.TypeLogico

	default:
		return c.arithmetic(pos, e.Op, left, right)
	}
}

// canCompare reports whether values of the two types may be compared.
func canCompare(a, b parser.Type) bool {
	return a == b || (isNumeric(a) && isNumeric(b)) || (isText(a) && isText(b))
}

// arithmetic types the arithmetic operators. A cadeia on either side of +
// concatenates.
func (c *Checker) arithmetic(pos token.Position, op token.TokenType, left, right parser.Type) parser.Type {
	if left == unknown || right == unknown {
		return unknown
	}
	if op == token.PLUS && (left == parser.TypeCadeia || right == parser.TypeCadeia) {
		if left == parser.TypeVazio || right == parser.TypeVazio {
			c.errorf(pos, MsgOperands, op, left, right)
			return unknown
		}
		return parser.TypeCadeia
	}
	if !isNumeric(left) || !isNumeric(right) {
		c.errorf(pos, MsgOperands, op, left, right)
		return unknown
	}
	if op == token.PERCENT && (left != parser.TypeInteiro || right != parser.TypeInteiro) {
		c.errorf(pos, MsgOperands, op, left, right)
		return unknown
	}
	if left == parser.TypeReal || right == parser.TypeReal {
		return parser.TypeReal
	}
	return parser.TypeInteiro
}

func (c *Checker) call(e *parser.CallExpr) parser.Type {
	name := e.Func.Name
	if b, ok := Builtins[name]; ok {
		return c.builtinCall(e, b)
	}

	fn, ok := c.funcs[name]
	if !ok {
		c.errorf(e.Func.Start, MsgUndeclaredFunc+"%s", name, didYouMean(name, c.functionNames()))
		for _, arg := range e.Args {
			c.expr(arg)
		}
		return unknown
	}

	if len(e.Args) != len(fn.Params) {
		c.errorf(e.Func.Start, MsgArgCount, name, len(fn.Params), len(e.Args))
	}
	for i, arg := range e.Args {
		got := c.expr(arg)
		if i < len(fn.Params) && !assignable(fn.Params[i].Type, got) {
			c.errorf(arg.Pos(), MsgArgType, i+1, name, fn.Params[i].Type, got)
		}
	}
	return fn.Return
}

func (c *Checker) builtinCall(e *parser.CallExpr, b Builtin) parser.Type {
	if b.Arity >= 0 && len(e.Args) != b.Arity {
		c.errorf(e.Func.Start, MsgArgCount, b.Name, b.Arity, len(e.Args))
	}

	for _, arg := range e.Args {
		if b.Name == "leia" {
			id, ok := arg.(*parser.Ident)
			if !ok {
				c.errorf(arg.Pos(), MsgReadArgument)
				continue
			}
			c.target(id)
			continue
		}
		if t := c.expr(arg); t == parser.TypeVazio {
			if call, ok := arg.(*parser.CallExpr); ok {
				c.errorf(arg.Pos(), MsgVoidValue, call.Func.Name)
			}
		}
	}
	return b.Return
}
