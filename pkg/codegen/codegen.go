// Package codegen translates checked Portugol programs into Starlark.
//
// The generated module relies on predeclared runtime functions supplied by
// the runner: escreva, leia, limpa and the arithmetic helpers _soma, _div and
// _mod, which implement Portugol semantics for +, / and %.
//
// Layout of the generated module:
//
//	_g = {}                  # globals, so functions can reassign them
//	def f_<name>(v_<param>): # one per funcao
//	_g["v_<name>"] = <init>  # global declarations, in source order
//	f_inicio()
package codegen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.starlark.net/syntax"

	"github.com/leapstack-labs/portugo/pkg/parser"
	"github.com/leapstack-labs/portugo/pkg/token"
)

// ErrNilProgram is returned when Generate is given no program.
var ErrNilProgram = errors.New("codegen: nil program")

const indentUnit = "    "

type local struct {
	name string
	typ  parser.Type
}

// Generator holds the state of a single translation.
type Generator struct {
	buf     strings.Builder
	depth   int
	globals map[string]parser.Type
	funcs   map[string]*parser.FuncDecl
	scopes  []map[string]local
	names   map[string]int // per-function count of each local name
	fn      *parser.FuncDecl
}

// Generate translates prog into Starlark source.
func Generate(prog *parser.Program) (string, error) {
	if prog == nil {
		return "", ErrNilProgram
	}
	g := &Generator{
		globals: make(map[string]parser.Type),
		funcs:   make(map[string]*parser.FuncDecl),
	}
	return g.program(prog), nil
}

// ---------- Output ----------

func (g *Generator) line(format string, args ...any) {
	for range g.depth {
		g.buf.WriteString(indentUnit)
	}
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *Generator) indented(fn func()) {
	g.depth++
	mark := g.buf.Len()
	fn()
	if g.buf.Len() == mark {
		g.line("pass")
	}
	g.depth--
}

// ---------- Names ----------

func (g *Generator) push() { g.scopes = append(g.scopes, map[string]local{}) }
func (g *Generator) pop()  { g.scopes = g.scopes[:len(g.scopes)-1] }

// declare binds a local and returns its Starlark name. Starlark locals are
// function-wide, so a name shadowed by an inner block gets a numeric suffix.
func (g *Generator) declare(name string, typ parser.Type) string {
	target := "v_" + name
	if n := g.names[name]; n > 0 {
		target = fmt.Sprintf("v_%s_%d", name, n)
	}
	g.names[name]++
	g.scopes[len(g.scopes)-1][name] = local{name: target, typ: typ}
	return target
}

// resolve returns the Starlark expression for a variable and its type.
func (g *Generator) resolve(name string) (string, parser.Type) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if l, ok := g.scopes[i][name]; ok {
			return l.name, l.typ
		}
	}
	if typ, ok := g.globals[name]; ok {
		return globalRef(name), typ
	}
	// Undeclared names are left for the runtime to reject.
	return "v_" + name, ""
}

func globalRef(name string) string {
	return fmt.Sprintf("_g[%q]", "v_"+name)
}

// ---------- Program ----------

func (g *Generator) program(prog *parser.Program) string {
	// Global types are known up front; functions read globals at call time.
	for _, decl := range prog.Globals {
		g.globals[decl.Name] = decl.Type
	}
	for _, fn := range prog.Funcs {
		g.funcs[fn.Name] = fn
	}

	g.line("_g = {}")
	for _, fn := range prog.Funcs {
		g.buf.WriteByte('\n')
		g.function(fn)
	}

	if len(prog.Globals) > 0 {
		g.buf.WriteByte('\n')
	}
	for _, decl := range prog.Globals {
		g.line("%s = %s", globalRef(decl.Name), g.initValue(decl.Type, decl.Init))
	}

	if prog.Func("inicio") != nil {
		g.buf.WriteByte('\n')
		g.line("f_inicio()")
	}
	return g.buf.String()
}

func (g *Generator) function(fn *parser.FuncDecl) {
	g.fn = fn
	g.names = make(map[string]int)
	g.push()
	defer func() {
		g.pop()
		g.fn = nil
	}()

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = g.declare(p.Name, p.Type)
	}
	g.line("def f_%s(%s):", fn.Name, strings.Join(params, ", "))
	g.indented(func() {
		for i, p := range fn.Params {
			if p.Type == parser.TypeReal {
				g.line("%s = float(%s)", params[i], params[i])
			}
		}
		if fn.Body != nil {
			g.stmts(fn.Body.Stmts)
		}
	})
}

// initValue renders a declaration initialiser, or the type's zero value.
func (g *Generator) initValue(typ parser.Type, init parser.Expr) string {
	if init == nil {
		return zeroValue(typ)
	}
	return convert(typ, g.expr(init))
}

func zeroValue(typ parser.Type) string {
	switch typ {
	case parser.TypeReal:
		return "0.0"
	case parser.TypeCadeia, parser.TypeCaracter:
		return `""`
	case parser.TypeLogico:
		return "False"
	case parser.TypeInteiro:
		return "0"
	default:
		return "None"
	}
}

// convert widens inteiro values stored in real variables.
func convert(typ parser.Type, value string) string {
	if typ == parser.TypeReal {
		return "float(" + value + ")"
	}
	return value
}

// ---------- Statements ----------

func (g *Generator) stmts(list []parser.Stmt) {
	for _, s := range list {
		g.stmt(s)
	}
}

func (g *Generator) block(b *parser.Block) {
	g.indented(func() {
		if b == nil {
			return
		}
		g.push()
		g.stmts(b.Stmts)
		g.pop()
	})
}

func (g *Generator) stmt(s parser.Stmt) {
	switch s := s.(type) {
	case *parser.Block:
		g.push()
		g.stmts(s.Stmts)
		g.pop()

	case *parser.DeclStmt:
		for _, decl := range s.Decls {
			// The initialiser is rendered before the name is bound.
			value := g.initValue(decl.Type, decl.Init)
			g.line("%s = %s", g.declare(decl.Name, decl.Type), value)
		}

	case *parser.ExprStmt:
		if call, ok := s.X.(*parser.CallExpr); ok && call.Func.Name == "leia" {
			g.read(call)
			return
		}
		g.line("%s", g.expr(s.X))

	case *parser.AssignStmt:
		target, typ := g.resolve(s.Target.Name)
		value := g.expr(s.Value)
		switch s.Op {
		case token.PLUS_ASSIGN:
			value = fmt.Sprintf("_soma(%s, %s)", target, value)
		case token.MINUS_ASSIGN:
			value = fmt.Sprintf("%s - %s", target, value)
		case token.STAR_ASSIGN:
			value = fmt.Sprintf("%s * %s", target, value)
		case token.SLASH_ASSIGN:
			value = fmt.Sprintf("_div(%s, %s)", target, value)
		}
		g.line("%s = %s", target, convert(typ, value))

	case *parser.IncDecStmt:
		target, _ := g.resolve(s.Target.Name)
		op := "+="
		if s.Op == token.DEC {
			op = "-="
		}
		g.line("%s %s 1", target, op)

	case *parser.IfStmt:
		g.ifChain(s, "if")

	case *parser.WhileStmt:
		g.line("while %s:", g.expr(s.Cond))
		g.block(s.Body)

	case *parser.DoWhileStmt:
		g.line("while True:")
		g.indented(func() {
			g.push()
			if s.Body != nil {
				g.stmts(s.Body.Stmts)
			}
			g.pop()
			g.line("if not (%s):", g.expr(s.Cond))
			g.indented(func() { g.line("break") })
		})

	case *parser.ForStmt:
		g.push()
		if s.Init != nil {
			g.stmt(s.Init)
		}
		cond := "True"
		if s.Cond != nil {
			cond = g.expr(s.Cond)
		}
		g.line("while %s:", cond)
		g.indented(func() {
			g.push()
			if s.Body != nil {
				g.stmts(s.Body.Stmts)
			}
			g.pop()
			if s.Step != nil {
				g.stmt(s.Step)
			}
		})
		g.pop()

	case *parser.BreakStmt:
		g.line("break")

	case *parser.ReturnStmt:
		if s.Value == nil {
			g.line("return")
			return
		}
		value := g.expr(s.Value)
		if g.fn != nil {
			value = convert(g.fn.Return, value)
		}
		g.line("return %s", value)
	}
}

func (g *Generator) ifChain(s *parser.IfStmt, keyword string) {
	g.line("%s %s:", keyword, g.expr(s.Cond))
	g.block(s.Then)
	switch els := s.Else.(type) {
	case nil:
	case *parser.IfStmt:
		g.ifChain(els, "elif")
	case *parser.Block:
		g.line("else:")
		g.block(els)
	}
}

// read expands leia(a, b) into one typed read per variable.
func (g *Generator) read(call *parser.CallExpr) {
	for _, arg := range call.Args {
		id, ok := arg.(*parser.Ident)
		if !ok {
			continue
		}
		target, typ := g.resolve(id.Name)
		g.line("%s = leia(%q)", target, string(typ))
	}
}

// ---------- Expressions ----------

func (g *Generator) expr(e parser.Expr) string {
	switch e := e.(type) {
	case *parser.IntLit:
		return strconv.FormatInt(e.Value, 10)
	case *parser.RealLit:
		s := strconv.FormatFloat(e.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case *parser.StringLit:
		return syntax.Quote(e.Value, false)
	case *parser.CharLit:
		return syntax.Quote(string(e.Value), false)
	case *parser.BoolLit:
		if e.Value {
			return "True"
		}
		return "False"
	case *parser.Ident:
		name, _ := g.resolve(e.Name)
		return name
	case *parser.UnaryExpr:
		if e.Op == token.NAO {
			return "not " + g.operand(e.X)
		}
		return "-" + g.operand(e.X)
	case *parser.BinaryExpr:
		if helper, ok := helperOps[e.Op]; ok {
			return fmt.Sprintf("%s(%s, %s)", helper, g.expr(e.Left), g.expr(e.Right))
		}
		return fmt.Sprintf("%s %s %s", g.operand(e.Left), binaryOps[e.Op], g.operand(e.Right))
	case *parser.CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = g.expr(a)
		}
		name := e.Func.Name
		if _, user := g.funcs[name]; user {
			name = "f_" + name
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))
	default:
		return "None"
	}
}

// operand renders a sub-expression, parenthesised when it is compound.
func (g *Generator) operand(e parser.Expr) string {
	s := g.expr(e)
	switch e := e.(type) {
	case *parser.UnaryExpr:
		return "(" + s + ")"
	case *parser.BinaryExpr:
		if _, helper := helperOps[e.Op]; !helper {
			return "(" + s + ")"
		}
	}
	return s
}

// helperOps are rendered as calls to runtime helpers.
var helperOps = map[token.TokenType]string{
	token.PLUS:    "_soma",
	token.SLASH:   "_div",
	token.PERCENT: "_mod",
}

var binaryOps = map[token.TokenType]string{
	token.MINUS: "-",
	token.STAR:  "*",
	token.EQ:    "==",
	token.NE:    "!=",
	token.LT:    "<",
	token.GT:    ">",
	token.LE:    "<=",
	token.GE:    ">=",
	token.E:     "and",
	token.OU:    "or",
}
