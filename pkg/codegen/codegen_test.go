package codegen_test

import (
	"testing"

	"github.com/leapstack-labs/portugo/pkg/codegen"
	"github.com/leapstack-labs/portugo/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src, nil)
	require.NoError(t, err)
	out, err := codegen.Generate(prog)
	require.NoError(t, err)
	return out
}

func inicio(stmts string) string {
	return "programa {\n\tfuncao inicio() {\n" + stmts + "\n\t}\n}\n"
}

func TestGenerate_Program(t *testing.T) {
	src := `programa {
	inteiro total = 0
	funcao inteiro dobro(inteiro n) {
		retorne n * 2
	}
	funcao inicio() {
		inteiro x
		leia(x)
		total = dobro(x) + 1
		escreva("total: ", total, "\n")
	}
}`
	want := `_g = {}

def f_dobro(v_n):
    return v_n * 2

def f_inicio():
    v_x = 0
    v_x = leia("inteiro")
    _g["v_total"] = _soma(f_dobro(v_x), 1)
    escreva("total: ", _g["v_total"], "\n")

_g["v_total"] = 0

f_inicio()
`
	assert.Equal(t, want, generate(t, src))
}

func TestGenerate_Statements(t *testing.T) {
	tests := []struct {
		name  string
		stmts string
		want  string
	}{
		{
			name:  "do while",
			stmts: "inteiro i = 0\nfaca {\ni++\n} enquanto (i < 3)",
			want: `    v_i = 0
    while True:
        v_i += 1
        if not (v_i < 3):
            break
`,
		},
		{
			name:  "for",
			stmts: "para (inteiro i = 0; i < 3; i++) { escreva(i) }",
			want: `    v_i = 0
    while v_i < 3:
        escreva(v_i)
        v_i += 1
`,
		},
		{
			name:  "for without clauses",
			stmts: "para (;;) { pare }",
			want: `    while True:
        break
`,
		},
		{
			name:  "if chain",
			stmts: "inteiro x = 2\nse (x == 1) { escreva(1) } senao se (x == 2) { } senao { escreva(3) }",
			want: `    v_x = 2
    if v_x == 1:
        escreva(1)
    elif v_x == 2:
        pass
    else:
        escreva(3)
`,
		},
		{
			name:  "shadowed local",
			stmts: "inteiro x = 1\nse (verdadeiro) {\ncadeia x = \"a\"\nescreva(x)\n}\nescreva(x)",
			want: `    v_x = 1
    if True:
        v_x_1 = "a"
        escreva(v_x_1)
    escreva(v_x)
`,
		},
		{
			name:  "real widening",
			stmts: "real r = 1\nr = 2\nr /= 2",
			want: `    v_r = float(1)
    v_r = float(2)
    v_r = float(_div(v_r, 2))
`,
		},
		{
			name:  "compound assignment",
			stmts: "cadeia s\ns += \"!\"\ninteiro n = 3\nn -= 1\nn *= 2\nn--",
			want: `    v_s = ""
    v_s = _soma(v_s, "!")
    v_n = 3
    v_n = v_n - 1
    v_n = v_n * 2
    v_n -= 1
`,
		},
		{
			name:  "multiple reads",
			stmts: "real a\ncadeia b\nleia(a, b)",
			want: `    v_a = 0.0
    v_b = ""
    v_a = leia("real")
    v_b = leia("cadeia")
`,
		},
		{
			name:  "empty body",
			stmts: "",
			want:  "    pass\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, inicio(tt.stmts))
			want := "_g = {}\n\ndef f_inicio():\n" + tt.want + "\nf_inicio()\n"
			assert.Equal(t, want, out)
		})
	}
}

func TestGenerate_Expressions(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{expr: "1 + 2 * 3", want: "_soma(1, 2 * 3)"},
		{expr: "(1 + 2) * 3", want: "_soma(1, 2) * 3"},
		{expr: "a / b % c", want: "_mod(_div(v_a, v_b), v_c)"},
		{expr: "nao a e b", want: "(not v_a) and v_b"},
		{expr: "nao (a == b)", want: "not (v_a == v_b)"},
		{expr: "-a - -b", want: "(-v_a) - (-v_b)"},
		{expr: "-(a + b)", want: "-_soma(v_a, v_b)"},
		{expr: "a < b ou c >= d", want: "(v_a < v_b) or (v_c >= v_d)"},
		{expr: "2.0 * 1.5", want: "2.0 * 1.5"},
		{expr: `'c' == "c"`, want: `"c" == "c"`},
		{expr: `"diz \"oi\""`, want: `"diz \"oi\""`},
		{expr: "verdadeiro != falso", want: "True != False"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			out := generate(t, inicio("x = "+tt.expr))
			assert.Contains(t, out, "    v_x = "+tt.want+"\n")
		})
	}
}

func TestGenerate_Functions(t *testing.T) {
	src := `programa {
	funcao real metade(real v) {
		retorne v / 2
	}
	funcao vazio nada() {
		retorne
	}
	funcao inicio() {
		escreva(metade(3))
		nada()
	}
}`
	out := generate(t, src)

	assert.Contains(t, out, "def f_metade(v_v):\n    v_v = float(v_v)\n    return float(_div(v_v, 2))\n")
	assert.Contains(t, out, "def f_nada():\n    return\n")
	assert.Contains(t, out, "    escreva(f_metade(3))\n    f_nada()\n")
}

func TestGenerate_WithoutInicio(t *testing.T) {
	out := generate(t, "programa {\n\tinteiro x = 1\n}")
	assert.Equal(t, "_g = {}\n\n_g[\"v_x\"] = 1\n", out)
}

func TestGenerate_NilProgram(t *testing.T) {
	_, err := codegen.Generate(nil)
	require.ErrorIs(t, err, codegen.ErrNilProgram)
}
