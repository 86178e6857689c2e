package starlark

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/portugo/pkg/parser"
	"github.com/leapstack-labs/portugo/pkg/token"
)

// Format renders v the way escreva prints it.
func Format(v starlark.Value) string {
	switch v := v.(type) {
	case starlark.String:
		return string(v)
	case starlark.Bool:
		if v {
			return "verdadeiro"
		}
		return "falso"
	case starlark.Float:
		return formatReal(float64(v))
	case starlark.NoneType:
		return ""
	default:
		return v.String()
	}
}

func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinito"
	case math.IsInf(f, -1):
		return "-Infinito"
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// InputError reports text that cannot be read as the requested type.
type InputError struct {
	Kind parser.Type
	Text string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("o valor '%s' não é válido para o tipo %s", e.Text, e.Kind)
}

// Parse converts a line typed by the user into a value of kind. An unknown
// kind reads the line as cadeia.
func Parse(kind parser.Type, text string) (starlark.Value, error) {
	text = strings.TrimSuffix(text, "\r")
	trimmed := strings.TrimSpace(text)

	switch kind {
	case parser.TypeInteiro:
		n, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return nil, &InputError{Kind: kind, Text: text}
		}
		return starlark.MakeInt64(n), nil

	case parser.TypeReal:
		f, err := strconv.ParseFloat(strings.Replace(trimmed, ",", ".", 1), 64)
		if err != nil {
			return nil, &InputError{Kind: kind, Text: text}
		}
		return starlark.Float(f), nil

	case parser.TypeLogico:
		switch token.Fold(trimmed) {
		case "verdadeiro":
			return starlark.True, nil
		case "falso":
			return starlark.False, nil
		}
		return nil, &InputError{Kind: kind, Text: text}

	case parser.TypeCaracter:
		if text == "" {
			return nil, &InputError{Kind: kind, Text: text}
		}
		r, _ := utf8.DecodeRuneInString(text)
		return starlark.String(string(r)), nil

	default:
		return starlark.String(text), nil
	}
}

// typeName names a runtime value by its Portugol type.
func typeName(v starlark.Value) string {
	switch v.(type) {
	case starlark.Int:
		return string(parser.TypeInteiro)
	case starlark.Float:
		return string(parser.TypeReal)
	case starlark.String:
		return string(parser.TypeCadeia)
	case starlark.Bool:
		return string(parser.TypeLogico)
	case starlark.NoneType:
		return string(parser.TypeVazio)
	default:
		return v.Type()
	}
}
