package starlark

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"

	"github.com/leapstack-labs/portugo/pkg/parser"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		value starlark.Value
		want  string
	}{
		{starlark.String("olá"), "olá"},
		{starlark.MakeInt(-42), "-42"},
		{starlark.Float(2.5), "2.5"},
		{starlark.Float(3), "3.0"},
		{starlark.Float(1e21), "1000000000000000000000.0"},
		{starlark.Float(math.Inf(-1)), "-Infinito"},
		{starlark.True, "verdadeiro"},
		{starlark.False, "falso"},
		{starlark.None, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(tt.value), "Format(%s)", tt.value)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		kind parser.Type
		text string
		want starlark.Value
	}{
		{name: "inteiro", kind: parser.TypeInteiro, text: " 42 ", want: starlark.MakeInt(42)},
		{name: "negative inteiro", kind: parser.TypeInteiro, text: "-7", want: starlark.MakeInt(-7)},
		{name: "real with point", kind: parser.TypeReal, text: "2.5", want: starlark.Float(2.5)},
		{name: "real with comma", kind: parser.TypeReal, text: "2,5", want: starlark.Float(2.5)},
		{name: "real from integer text", kind: parser.TypeReal, text: "3", want: starlark.Float(3)},
		{name: "logico", kind: parser.TypeLogico, text: "Verdadeiro", want: starlark.True},
		{name: "logico falso", kind: parser.TypeLogico, text: "falso", want: starlark.False},
		{name: "caracter takes first rune", kind: parser.TypeCaracter, text: "ção", want: starlark.String("ç")},
		{name: "cadeia keeps spaces", kind: parser.TypeCadeia, text: " a b ", want: starlark.String(" a b ")},
		{name: "cadeia drops carriage return", kind: parser.TypeCadeia, text: "linha\r", want: starlark.String("linha")},
		{name: "unknown kind reads cadeia", kind: "", text: "x", want: starlark.String("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.kind, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		kind parser.Type
		text string
	}{
		{parser.TypeInteiro, "2.5"},
		{parser.TypeInteiro, ""},
		{parser.TypeReal, "abc"},
		{parser.TypeLogico, "sim"},
		{parser.TypeCaracter, ""},
	}

	for _, tt := range tests {
		_, err := Parse(tt.kind, tt.text)
		var inputErr *InputError
		require.ErrorAs(t, err, &inputErr, "%s %q", tt.kind, tt.text)
		assert.Equal(t, tt.kind, inputErr.Kind)
	}

	_, err := Parse(parser.TypeInteiro, "dez")
	assert.EqualError(t, err, "o valor 'dez' não é válido para o tipo inteiro")
}
