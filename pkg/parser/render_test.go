package parser_test

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/portugo/pkg/parser"
)

// render prints an expression fully parenthesised.
func render(e parser.Expr) string {
	switch e := e.(type) {
	case *parser.Ident:
		return e.Name
	case *parser.IntLit:
		return strconv.FormatInt(e.Value, 10)
	case *parser.RealLit:
		return strconv.FormatFloat(e.Value, 'f', -1, 64)
	case *parser.StringLit:
		return strconv.Quote(e.Value)
	case *parser.CharLit:
		return strconv.QuoteRune(e.Value)
	case *parser.BoolLit:
		if e.Value {
			return "verdadeiro"
		}
		return "falso"
	case *parser.UnaryExpr:
		if e.Op.IsKeyword() {
			return fmt.Sprintf("(%s %s)", e.Op, render(e.X))
		}
		return fmt.Sprintf("(%s%s)", e.Op, render(e.X))
	case *parser.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", render(e.Left), e.Op, render(e.Right))
	case *parser.CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = render(a)
		}
		return fmt.Sprintf("%s(%s)", e.Func.Name, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("<%T>", e)
	}
}
