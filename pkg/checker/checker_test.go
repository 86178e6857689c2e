package checker_test

import (
	"testing"

	"github.com/leapstack-labs/portugo/pkg/checker"
	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check(t *testing.T, src string) []diag.Diagnostic {
	t.Helper()
	prog, err := parser.Parse(src, nil)
	require.NoError(t, err)
	diags, err := checker.Check(prog)
	require.NoError(t, err)
	return diags
}

// inicio wraps statements in a program with an inicio function.
func inicio(stmts string) string {
	return "programa {\n\tfuncao inicio() {\n" + stmts + "\n\t}\n}\n"
}

func messages(diags []diag.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func TestCheck_ValidPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "hello",
			src:  inicio(`escreva("Olá, mundo!\n")`),
		},
		{
			name: "widening",
			src: inicio(`
				real r = 1
				cadeia s = 'a'
				r += 2
				s = s + 1 + verdadeiro`),
		},
		{
			name: "functions and recursion",
			src: `programa {
				funcao inteiro fat(inteiro n) {
					se (n <= 1) { retorne 1 }
					retorne n * fat(n - 1)
				}
				funcao inicio() {
					escreva(fat(5))
				}
			}`,
		},
		{
			name: "globals visible in functions",
			src: `programa {
				inteiro contador = 0
				funcao inicio() {
					contador++
					escreva(contador)
				}
			}`,
		},
		{
			name: "loops and leia",
			src: inicio(`
				inteiro n
				leia(n)
				para (inteiro i = 0; i < n; i++) {
					se (i % 2 == 0) { pare }
				}
				faca { n-- } enquanto (n > 0 e nao falso)`),
		},
		{
			name: "shadowing in inner block",
			src: inicio(`
				inteiro x = 1
				se (verdadeiro) { cadeia x = "oi" }`),
		},
		{
			name: "text comparison",
			src:  inicio(`logico igual = "a" == 'a'`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, check(t, tt.src))
		})
	}
}

func TestCheck_Diagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "missing inicio",
			src:  "programa {\n\tfuncao outra() {}\n}",
			want: []string{"o programa não possui a função 'inicio'"},
		},
		{
			name: "undeclared variable",
			src:  inicio("escreva(x)"),
			want: []string{"a variável 'x' não foi declarada"},
		},
		{
			name: "redeclaration",
			src:  inicio("inteiro x\n\t\treal x"),
			want: []string{"a variável 'x' já foi declarada neste escopo"},
		},
		{
			name: "parameter redeclared in body",
			src:  "programa {\n\tfuncao f(inteiro a) { inteiro a }\n\tfuncao inicio() { f(1) }\n}",
			want: []string{"a variável 'a' já foi declarada neste escopo"},
		},
		{
			name: "undeclared function",
			src:  inicio("calcula(1)"),
			want: []string{"a função 'calcula' não foi declarada"},
		},
		{
			name: "argument count",
			src:  "programa {\n\tfuncao f(inteiro a) {}\n\tfuncao inicio() { f(1, 2) }\n}",
			want: []string{"a função 'f' espera 1 argumento(s), mas recebeu 2"},
		},
		{
			name: "argument type",
			src:  "programa {\n\tfuncao f(inteiro a) {}\n\tfuncao inicio() { f(\"um\") }\n}",
			want: []string{"o argumento 1 da função 'f' deve ser do tipo inteiro, mas é do tipo cadeia"},
		},
		{
			name: "constant assignment",
			src:  "programa {\n\tconst inteiro MAX = 3\n\tfuncao inicio() { MAX = 4 }\n}",
			want: []string{"não é possível alterar o valor da constante 'MAX'"},
		},
		{
			name: "constant increment",
			src:  "programa {\n\tconst inteiro MAX = 3\n\tfuncao inicio() { MAX++ }\n}",
			want: []string{"não é possível alterar o valor da constante 'MAX'"},
		},
		{
			name: "constant read",
			src:  "programa {\n\tconst inteiro MAX = 3\n\tfuncao inicio() { leia(MAX) }\n}",
			want: []string{"não é possível alterar o valor da constante 'MAX'"},
		},
		{
			name: "type mismatch",
			src:  inicio(`inteiro x = "dez"`),
			want: []string{"não é possível atribuir um valor do tipo cadeia a 'x', que é do tipo inteiro"},
		},
		{
			name: "real does not narrow",
			src:  inicio("inteiro x = 2.5"),
			want: []string{"não é possível atribuir um valor do tipo real a 'x', que é do tipo inteiro"},
		},
		{
			name: "non logico condition",
			src:  inicio("enquanto (1) { pare }"),
			want: []string{"a condição deve ser do tipo logico, mas é do tipo inteiro"},
		},
		{
			name: "break outside loop",
			src:  inicio("pare"),
			want: []string{"o comando 'pare' só pode ser usado dentro de um laço"},
		},
		{
			name: "return value in vazio",
			src:  inicio("retorne 1"),
			want: []string{"a função 'inicio' é do tipo vazio e não pode retornar um valor"},
		},
		{
			name: "missing return value",
			src:  "programa {\n\tfuncao inteiro f() { retorne }\n\tfuncao inicio() { f() }\n}",
			want: []string{"a função 'f' deve retornar um valor do tipo inteiro"},
		},
		{
			name: "modulo on real",
			src:  inicio("real r = 2.5 % 2"),
			want: []string{"o operador '%' não pode ser aplicado aos tipos real e inteiro"},
		},
		{
			name: "unary nao on number",
			src:  inicio("logico b = nao 1"),
			want: []string{"o operador 'nao' não pode ser aplicado ao tipo inteiro"},
		},
		{
			name: "leia with expression",
			src:  inicio("leia(1 + 2)"),
			want: []string{"a função 'leia' só aceita variáveis como argumentos"},
		},
		{
			name: "uninitialised constant",
			src:  "programa {\n\tconst inteiro MAX\n\tfuncao inicio() {}\n}",
			want: []string{"a constante 'MAX' deve ser inicializada"},
		},
		{
			name: "builtin redeclared",
			src:  "programa {\n\tfuncao escreva() {}\n\tfuncao inicio() {}\n}",
			want: []string{"'escreva' é uma função da biblioteca e não pode ser redeclarada"},
		},
		{
			name: "unknown types do not cascade",
			src:  inicio("inteiro y = x + 1 * 2"),
			want: []string{"a variável 'x' não foi declarada"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(check(t, tt.src)))
		})
	}
}

func TestCheck_Suggestions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "misspelled variable",
			src:  inicio("inteiro contador = 0\n\t\tcontdor++"),
			want: "a variável 'contdor' não foi declarada (você quis dizer 'contador'?)",
		},
		{
			name: "misspelled builtin",
			src:  inicio(`escrava("oi")`),
			want: "a função 'escrava' não foi declarada (você quis dizer 'escreva'?)",
		},
		{
			name: "misspelled user function",
			src:  "programa {\n\tfuncao somar() {}\n\tfuncao inicio() { soma() }\n}",
			want: "a função 'soma' não foi declarada (você quis dizer 'somar'?)",
		},
		{
			name: "nothing close",
			src:  inicio("inteiro total\n\t\tx = 1"),
			want: "a variável 'x' não foi declarada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, []string{tt.want}, messages(check(t, tt.src)))
		})
	}
}

func TestCheck_Positions(t *testing.T) {
	diags := check(t, inicio("\t\tescreva(x)\n\t\tpare"))

	require.Len(t, diags, 2)
	assert.Equal(t, diag.Diagnostic{Message: "a variável 'x' não foi declarada", Line: 3, Column: 11}, diags[0])
	assert.Equal(t, 4, diags[1].Line)
	assert.Equal(t, 3, diags[1].Column)
}

func TestCheck_NilProgram(t *testing.T) {
	_, err := checker.Check(nil)
	require.ErrorIs(t, err, checker.ErrNilProgram)
}
