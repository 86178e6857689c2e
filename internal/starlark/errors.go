package starlark

import (
	"errors"
	"strings"

	"go.starlark.net/starlark"
)

// ErrEmptyProgram is returned when there is no code to run.
var ErrEmptyProgram = errors.New("no generated code to run")

// Cancellation reasons, shown to the user as the runtime error message.
const (
	reasonDestroyed = "a execução foi interrompida"
	reasonSteps     = "o programa excedeu o limite de passos de execução"
	reasonDepth     = "o programa excedeu o limite de chamadas aninhadas (recursão infinita?)"
)

const cancelledPrefix = "Starlark computation cancelled: "

// translations rewrite interpreter messages the runtime library cannot
// prevent. Messages that match none are shown as they are.
var translations = []struct {
	prefix  string
	message string
}{
	{prefix: "float division by zero", message: "divisão por zero"},
	{prefix: "integer division by zero", message: "divisão por zero"},
	{prefix: "integer modulo by zero", message: "divisão por zero"},
	{prefix: "invalid call of non-function", message: "chamada de algo que não é uma função"},
}

// RuntimeError is a failure of the running program.
type RuntimeError struct {
	Message   string
	Backtrace string
	err       error
}

func (e *RuntimeError) Error() string  { return e.Message }
func (e *RuntimeError) Unwrap() error { return e.err }

func newRuntimeError(err error) *RuntimeError {
	rerr := &RuntimeError{Message: err.Error(), err: err}
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		rerr.Message = evalErr.Msg
		rerr.Backtrace = evalErr.Backtrace()
	}
	rerr.Message = translate(strings.TrimPrefix(rerr.Message, cancelledPrefix))
	return rerr
}

func translate(msg string) string {
	for _, t := range translations {
		if strings.HasPrefix(msg, t.prefix) {
			return t.message
		}
	}
	return msg
}
