package starlark

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/portugo/pkg/event"
	"github.com/leapstack-labs/portugo/pkg/parser"
)

var errDivisionByZero = errors.New("divisão por zero")

// predeclaredNames lists the globals every generated module may reference.
var predeclaredNames = map[string]bool{
	"escreva": true,
	"leia":    true,
	"limpa":   true,
	"_soma":   true,
	"_div":    true,
	"_mod":    true,
}

// predeclared returns the runtime library bound to r.
func (r *Runner) predeclared() starlark.StringDict {
	return starlark.StringDict{
		"escreva": starlark.NewBuiltin("escreva", r.escreva),
		"leia":    starlark.NewBuiltin("leia", r.leia),
		"limpa":   starlark.NewBuiltin("limpa", r.limpa),
		"_soma":   binaryBuiltin("_soma", Add),
		"_div":    binaryBuiltin("_div", Div),
		"_mod":    binaryBuiltin("_mod", Mod),
	}
}

func (r *Runner) escreva(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: argumentos nomeados não são suportados", b.Name())
	}
	var sb strings.Builder
	for _, arg := range args {
		sb.WriteString(Format(arg))
	}
	if sb.Len() > 0 {
		r.output.Publish(sb.String())
	}
	return starlark.None, nil
}

func (r *Runner) leia(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var kind string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0, &kind); err != nil {
		return nil, err
	}
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	return Parse(parser.Type(kind), line)
}

func (r *Runner) limpa(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	r.events.Publish(event.Clear{})
	return starlark.None, nil
}

func binaryBuiltin(name string, op func(x, y starlark.Value) (starlark.Value, error)) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var x, y starlark.Value
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &x, &y); err != nil {
			return nil, err
		}
		return op(x, y)
	})
}

// Add implements Portugol +. A cadeia on either side concatenates the
// printed forms of both operands.
func Add(x, y starlark.Value) (starlark.Value, error) {
	_, xs := x.(starlark.String)
	_, ys := y.(starlark.String)
	if xs || ys {
		return starlark.String(Format(x) + Format(y)), nil
	}
	if !isNumber(x) || !isNumber(y) {
		return nil, invalidOperation("+", x, y)
	}
	return starlark.Binary(syntax.PLUS, x, y)
}

// Div implements Portugol /. Two inteiro operands give an inteiro quotient
// truncated toward zero.
func Div(x, y starlark.Value) (starlark.Value, error) {
	if xi, yi, ok := bothInts(x, y); ok {
		if yi.Sign() == 0 {
			return nil, errDivisionByZero
		}
		return starlark.MakeBigInt(new(big.Int).Quo(xi, yi)), nil
	}
	xf, yf, err := bothFloats("/", x, y)
	if err != nil {
		return nil, err
	}
	if yf == 0 {
		return nil, errDivisionByZero
	}
	return starlark.Float(xf / yf), nil
}

// Mod implements Portugol %. The result takes the sign of the dividend.
func Mod(x, y starlark.Value) (starlark.Value, error) {
	if xi, yi, ok := bothInts(x, y); ok {
		if yi.Sign() == 0 {
			return nil, errDivisionByZero
		}
		return starlark.MakeBigInt(new(big.Int).Rem(xi, yi)), nil
	}
	xf, yf, err := bothFloats("%", x, y)
	if err != nil {
		return nil, err
	}
	if yf == 0 {
		return nil, errDivisionByZero
	}
	return starlark.Float(math.Mod(xf, yf)), nil
}

func isNumber(v starlark.Value) bool {
	switch v.(type) {
	case starlark.Int, starlark.Float:
		return true
	}
	return false
}

func bothInts(x, y starlark.Value) (*big.Int, *big.Int, bool) {
	xi, ok := x.(starlark.Int)
	if !ok {
		return nil, nil, false
	}
	yi, ok := y.(starlark.Int)
	if !ok {
		return nil, nil, false
	}
	return xi.BigInt(), yi.BigInt(), true
}

func bothFloats(op string, x, y starlark.Value) (float64, float64, error) {
	if !isNumber(x) || !isNumber(y) {
		return 0, 0, invalidOperation(op, x, y)
	}
	xf, _ := starlark.AsFloat(x)
	yf, _ := starlark.AsFloat(y)
	return xf, yf, nil
}

func invalidOperation(op string, x, y starlark.Value) error {
	return fmt.Errorf("a operação '%s' não é válida entre %s e %s", op, typeName(x), typeName(y))
}
