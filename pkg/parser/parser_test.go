package parser_test

import (
	"testing"

	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/parser"
	"github.com/leapstack-labs/portugo/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *parser.Program {
	t.Helper()
	var diags diag.Collector
	prog, err := parser.Parse(src, diags.Report)
	require.NoError(t, err)
	require.Zero(t, diags.Len())
	return prog
}

// body parses src wrapped in an inicio function and returns its statements.
func body(t *testing.T, stmts string) []parser.Stmt {
	t.Helper()
	prog := mustParse(t, "programa {\n\tfuncao inicio() {\n"+stmts+"\n\t}\n}\n")
	fn := prog.Func("inicio")
	require.NotNil(t, fn)
	return fn.Body.Stmts
}

// ---------- Declarations ----------

func TestParseProgram(t *testing.T) {
	src := `programa {
	const real PI = 3.14
	inteiro a, b = 2

	funcao inteiro soma(inteiro x, inteiro y) {
		retorne x + y
	}

	funcao inicio() {
		escreva(soma(a, b))
	}
}`
	prog := mustParse(t, src)

	require.Len(t, prog.Globals, 3)
	assert.True(t, prog.Globals[0].Const)
	assert.Equal(t, parser.TypeReal, prog.Globals[0].Type)
	assert.Equal(t, "PI", prog.Globals[0].Name)
	assert.Equal(t, "a", prog.Globals[1].Name)
	assert.Nil(t, prog.Globals[1].Init)
	assert.Equal(t, "b", prog.Globals[2].Name)
	init, ok := prog.Globals[2].Init.(*parser.IntLit)
	require.True(t, ok)
	assert.Equal(t, int64(2), init.Value)
	assert.Equal(t, token.Position{Line: 3, Column: 17, Offset: 49}, init.Start)

	require.Len(t, prog.Funcs, 2)
	soma := prog.Func("soma")
	require.NotNil(t, soma)
	assert.Equal(t, parser.TypeInteiro, soma.Return)
	require.Len(t, soma.Params, 2)
	assert.Equal(t, "y", soma.Params[1].Name)

	inicio := prog.Func("inicio")
	require.NotNil(t, inicio)
	assert.Equal(t, parser.TypeVazio, inicio.Return)
	assert.Empty(t, inicio.Params)
	require.Len(t, inicio.Body.Stmts, 1)

	assert.Nil(t, prog.Func("outra"))
}

func TestParseKeywordsIgnoreAccents(t *testing.T) {
	stmts := body(t, `
		lógico ok = verdadeiro
		se (ok) { escreva("sim") } senão { escreva("não") }
		faça { ok = falso } enquanto (ok)`)

	require.Len(t, stmts, 3)
	decl, ok := stmts[0].(*parser.DeclStmt)
	require.True(t, ok)
	assert.Equal(t, parser.TypeLogico, decl.Decls[0].Type)

	ifStmt, ok := stmts[1].(*parser.IfStmt)
	require.True(t, ok)
	assert.IsType(t, &parser.Block{}, ifStmt.Else)

	_, ok = stmts[2].(*parser.DoWhileStmt)
	assert.True(t, ok)
}

// ---------- Statements ----------

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want any
	}{
		{name: "assign", src: "x = 1", want: &parser.AssignStmt{}},
		{name: "compound assign", src: "x += 1", want: &parser.AssignStmt{}},
		{name: "increment", src: "x++", want: &parser.IncDecStmt{}},
		{name: "decrement", src: "x--", want: &parser.IncDecStmt{}},
		{name: "call", src: "escreva(1, 2)", want: &parser.ExprStmt{}},
		{name: "while", src: "enquanto (x < 3) { x++ }", want: &parser.WhileStmt{}},
		{name: "do while", src: "faca { x++ } enquanto (x < 3)", want: &parser.DoWhileStmt{}},
		{name: "for", src: "para (inteiro i = 0; i < 3; i++) { pare }", want: &parser.ForStmt{}},
		{name: "empty for", src: "para (;;) { pare }", want: &parser.ForStmt{}},
		{name: "nested block", src: "{ x = 1 }", want: &parser.Block{}},
		{name: "return", src: "retorne", want: &parser.ReturnStmt{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := body(t, tt.src)
			require.Len(t, stmts, 1)
			assert.IsType(t, tt.want, stmts[0])
		})
	}
}

func TestParseElseIfChain(t *testing.T) {
	stmts := body(t, `
		se (x == 1) {
			escreva("um")
		} senao se (x == 2) {
			escreva("dois")
		} senao {
			escreva("outro")
		}`)

	require.Len(t, stmts, 1)
	first := stmts[0].(*parser.IfStmt)
	second, ok := first.Else.(*parser.IfStmt)
	require.True(t, ok)
	assert.IsType(t, &parser.Block{}, second.Else)
}

func TestParseFor(t *testing.T) {
	stmts := body(t, "para (i = 10; i > 0; i -= 2) { escreva(i) }")

	require.Len(t, stmts, 1)
	loop := stmts[0].(*parser.ForStmt)
	assert.IsType(t, &parser.AssignStmt{}, loop.Init)
	assert.IsType(t, &parser.BinaryExpr{}, loop.Cond)
	step := loop.Step.(*parser.AssignStmt)
	assert.Equal(t, token.MINUS_ASSIGN, step.Op)
	assert.Len(t, loop.Body.Stmts, 1)
}

func TestParseReturnValueOnSameLine(t *testing.T) {
	stmts := body(t, "retorne\n\t\tescreva(1)")

	require.Len(t, stmts, 2)
	ret := stmts[0].(*parser.ReturnStmt)
	assert.Nil(t, ret.Value)

	stmts = body(t, "retorne x * 2")
	require.Len(t, stmts, 1)
	assert.NotNil(t, stmts[0].(*parser.ReturnStmt).Value)
}

// ---------- Expressions ----------

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{name: "multiplication binds tighter", expr: "1 + 2 * 3", want: "(1 + (2 * 3))"},
		{name: "left associative", expr: "1 - 2 - 3", want: "((1 - 2) - 3)"},
		{name: "parentheses", expr: "(1 + 2) * 3", want: "((1 + 2) * 3)"},
		{name: "unary minus", expr: "-a * 2", want: "((-a) * 2)"},
		{name: "comparison over arithmetic", expr: "a + 1 < b * 2", want: "((a + 1) < (b * 2))"},
		{name: "e binds tighter than ou", expr: "a ou b e c", want: "(a ou (b e c))"},
		{name: "nao over e", expr: "nao a e b", want: "((nao a) e b)"},
		{name: "nao over comparison", expr: "nao a == b", want: "(nao (a == b))"},
		{name: "modulo", expr: "a % 2 == 0", want: "((a % 2) == 0)"},
		{name: "call arguments", expr: "f(a + 1, g())", want: "f((a + 1), g())"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := body(t, "x = "+tt.expr)
			require.Len(t, stmts, 1)
			assign := stmts[0].(*parser.AssignStmt)
			assert.Equal(t, tt.want, render(assign.Value))
		})
	}
}

func TestParseLiterals(t *testing.T) {
	stmts := body(t, `escreva(42, 2.5, "olá\n", 'a', verdadeiro, falso)`)

	call := stmts[0].(*parser.ExprStmt).X.(*parser.CallExpr)
	require.Len(t, call.Args, 6)
	assert.Equal(t, int64(42), call.Args[0].(*parser.IntLit).Value)
	assert.InDelta(t, 2.5, call.Args[1].(*parser.RealLit).Value, 1e-9)
	assert.Equal(t, "olá\n", call.Args[2].(*parser.StringLit).Value)
	assert.Equal(t, 'a', call.Args[3].(*parser.CharLit).Value)
	assert.True(t, call.Args[4].(*parser.BoolLit).Value)
	assert.False(t, call.Args[5].(*parser.BoolLit).Value)
}

// ---------- Errors ----------

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []diag.Diagnostic
	}{
		{
			name: "missing programa",
			src:  "funcao inicio() {}",
			want: []diag.Diagnostic{
				{Message: "o código deve começar com 'programa'", Line: 1, Column: 1},
			},
		},
		{
			name: "missing expression",
			src:  "programa {\n\tfuncao inicio() {\n\t\tx = 1 +\n\t}\n}",
			want: []diag.Diagnostic{
				{Message: "era esperada uma expressão, mas foi encontrado '}'", Line: 4, Column: 2},
			},
		},
		{
			name: "recovers on next line",
			src:  "programa {\n\tfuncao inicio() {\n\t\tescreva(1\n\t\tinteiro = 2\n\t}\n}",
			want: []diag.Diagnostic{
				{Message: "era esperado ')', mas foi encontrado 'inteiro'", Line: 4, Column: 3},
				{Message: "era esperado identificador, mas foi encontrado '='", Line: 4, Column: 11},
			},
		},
		{
			name: "illegal character reported once",
			src:  "programa {\n\tfuncao inicio() {\n\t\tx = @\n\t}\n}",
			want: []diag.Diagnostic{
				{Message: `caractere inválido "@"`, Line: 3, Column: 7},
			},
		},
		{
			name: "vectors",
			src:  "programa {\n\tinteiro v[3]\n}",
			want: []diag.Diagnostic{
				{Message: "vetores e matrizes não são suportados", Line: 2, Column: 11},
			},
		},
		{
			name: "expression statement",
			src:  "programa {\n\tfuncao inicio() {\n\t\tx + 1\n\t}\n}",
			want: []diag.Diagnostic{
				{Message: "a expressão não pode ser usada como instrução", Line: 3, Column: 3},
			},
		},
		{
			name: "unclosed program",
			src:  "programa {\n\tfuncao inicio() {\n\t}\n",
			want: []diag.Diagnostic{
				{Message: "era esperado '}', mas foi encontrado fim do arquivo", Line: 4, Column: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var diags diag.Collector
			_, err := parser.Parse(tt.src, diags.Report)
			require.Error(t, err)
			assert.Equal(t, tt.want, diags.Diagnostics())
		})
	}
}

func TestParseReturnsFirstError(t *testing.T) {
	src := "programa {\n\tfuncao inicio() {\n\t\tescreva(1\n\t\tinteiro = 2\n\t}\n}"
	p := parser.NewParser(src, nil)
	p.ParseProgram()

	require.Len(t, p.Errors(), 2)
	_, err := parser.Parse(src, nil)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 4, perr.Pos.Line)
	assert.Equal(t, 3, perr.Pos.Column)
}
