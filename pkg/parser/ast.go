package parser

import "github.com/leapstack-labs/portugo/pkg/token"

// Type is a primitive Portugol type.
type Type string

// Primitive types.
const (
	TypeInteiro  Type = "inteiro"
	TypeReal     Type = "real"
	TypeCadeia   Type = "cadeia"
	TypeCaracter Type = "caracter"
	TypeLogico   Type = "logico"
	TypeVazio    Type = "vazio"
)

// typeFromToken maps a type keyword to its Type.
func typeFromToken(t token.TokenType) Type {
	switch t {
	case token.INTEIRO:
		return TypeInteiro
	case token.REAL_TYPE:
		return TypeReal
	case token.CADEIA:
		return TypeCadeia
	case token.CARACTER:
		return TypeCaracter
	case token.LOGICO:
		return TypeLogico
	default:
		return TypeVazio
	}
}

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Start   token.Position
	Globals []*VarDecl
	Funcs   []*FuncDecl
}

// Pos returns the position of the program keyword.
func (p *Program) Pos() token.Position { return p.Start }

// Func returns the function declared with name, or nil.
func (p *Program) Func(name string) *FuncDecl {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// VarDecl declares a single variable or constant.
type VarDecl struct {
	Start token.Position
	Const bool
	Type  Type
	Name  string
	Init  Expr // nil when not initialised
}

// FuncDecl declares a function.
type FuncDecl struct {
	Start  token.Position
	Name   string
	Return Type
	Params []*Param
	Body   *Block
}

// Param is a function parameter.
type Param struct {
	Start token.Position
	Type  Type
	Name  string
}

func (d *VarDecl) Pos() token.Position  { return d.Start }
func (d *FuncDecl) Pos() token.Position { return d.Start }
func (p *Param) Pos() token.Position    { return p.Start }

// ---------- Statements ----------

// Block is a braced statement list.
type Block struct {
	Start token.Position
	Stmts []Stmt
}

// DeclStmt wraps one or more local declarations.
type DeclStmt struct {
	Decls []*VarDecl
}

// ExprStmt is an expression evaluated for its side effects (a call).
type ExprStmt struct {
	X Expr
}

// AssignStmt assigns to a variable: x = v, x += v, ...
type AssignStmt struct {
	Target *Ident
	Op     token.TokenType
	Value  Expr
}

// IncDecStmt is x++ or x--.
type IncDecStmt struct {
	Target *Ident
	Op     token.TokenType
}

// IfStmt is se/senao. Else is nil, a *Block or an *IfStmt.
type IfStmt struct {
	Start token.Position
	Cond  Expr
	Then  *Block
	Else  Stmt
}

// WhileStmt is enquanto.
type WhileStmt struct {
	Start token.Position
	Cond  Expr
	Body  *Block
}

// DoWhileStmt is faca { } enquanto (cond).
type DoWhileStmt struct {
	Start token.Position
	Body  *Block
	Cond  Expr
}

// ForStmt is para (init; cond; step). Any clause may be nil.
type ForStmt struct {
	Start token.Position
	Init  Stmt
	Cond  Expr
	Step  Stmt
	Body  *Block
}

// BreakStmt is pare.
type BreakStmt struct {
	Start token.Position
}

// ReturnStmt is retorne with an optional value.
type ReturnStmt struct {
	Start token.Position
	Value Expr
}

func (s *Block) Pos() token.Position       { return s.Start }
func (s *DeclStmt) Pos() token.Position    { return s.Decls[0].Start }
func (s *ExprStmt) Pos() token.Position    { return s.X.Pos() }
func (s *AssignStmt) Pos() token.Position  { return s.Target.Start }
func (s *IncDecStmt) Pos() token.Position  { return s.Target.Start }
func (s *IfStmt) Pos() token.Position      { return s.Start }
func (s *WhileStmt) Pos() token.Position   { return s.Start }
func (s *DoWhileStmt) Pos() token.Position { return s.Start }
func (s *ForStmt) Pos() token.Position     { return s.Start }
func (s *BreakStmt) Pos() token.Position   { return s.Start }
func (s *ReturnStmt) Pos() token.Position  { return s.Start }

func (*Block) stmtNode()       {}
func (*DeclStmt) stmtNode()    {}
func (*ExprStmt) stmtNode()    {}
func (*AssignStmt) stmtNode()  {}
func (*IncDecStmt) stmtNode()  {}
func (*IfStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()   {}
func (*DoWhileStmt) stmtNode() {}
func (*ForStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()  {}

// ---------- Expressions ----------

// Ident is a variable reference.
type Ident struct {
	Start token.Position
	Name  string
}

// IntLit is an integer literal.
type IntLit struct {
	Start token.Position
	Value int64
}

// RealLit is a real literal.
type RealLit struct {
	Start token.Position
	Value float64
}

// StringLit is a cadeia literal.
type StringLit struct {
	Start token.Position
	Value string
}

// CharLit is a caracter literal.
type CharLit struct {
	Start token.Position
	Value rune
}

// BoolLit is verdadeiro or falso.
type BoolLit struct {
	Start token.Position
	Value bool
}

// UnaryExpr is -x or nao x.
type UnaryExpr struct {
	Start token.Position
	Op    token.TokenType
	X     Expr
}

// BinaryExpr is a binary operation.
type BinaryExpr struct {
	Op    token.TokenType
	Left  Expr
	Right Expr
}

// CallExpr is a function call.
type CallExpr struct {
	Func *Ident
	Args []Expr
}

func (e *Ident) Pos() token.Position      { return e.Start }
func (e *IntLit) Pos() token.Position     { return e.Start }
func (e *RealLit) Pos() token.Position    { return e.Start }
func (e *StringLit) Pos() token.Position  { return e.Start }
func (e *CharLit) Pos() token.Position    { return e.Start }
func (e *BoolLit) Pos() token.Position    { return e.Start }
func (e *UnaryExpr) Pos() token.Position  { return e.Start }
func (e *BinaryExpr) Pos() token.Position { return e.Left.Pos() }
func (e *CallExpr) Pos() token.Position   { return e.Func.Start }

func (*Ident) exprNode()      {}
func (*IntLit) exprNode()     {}
func (*RealLit) exprNode()    {}
func (*StringLit) exprNode()  {}
func (*CharLit) exprNode()    {}
func (*BoolLit) exprNode()    {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
