package parser

import (
	"fmt"

	"github.com/leapstack-labs/portugo/pkg/diag"
	"github.com/leapstack-labs/portugo/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Diagnostic converts the error to a diagnostic record.
func (e *ParseError) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{Message: e.Message, Line: e.Pos.Line, Column: e.Pos.Column}
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Diagnostic converts the error to a diagnostic record.
func (e *LexError) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{Message: e.Message, Line: e.Pos.Line, Column: e.Pos.Column}
}

// Common error messages
const (
	ErrUnexpectedToken    = "era esperado %s, mas foi encontrado %s"
	ErrUnexpectedInput    = "%s inesperado"
	ErrUnterminatedString = "cadeia não finalizada"
	ErrUnterminatedChar   = "caracter não finalizado"
	ErrUnterminatedBlock  = "comentário de bloco não finalizado"
	ErrInvalidNumber      = "número inválido %q"
	ErrIllegalChar        = "caractere inválido %q"
	ErrExpectedExpr       = "era esperada uma expressão, mas foi encontrado %s"
	ErrExpectedType       = "era esperado um tipo, mas foi encontrado %s"
	ErrVectorUnsupported  = "vetores e matrizes não são suportados"
	ErrMissingProgram     = "o código deve começar com 'programa'"
	ErrNotStatement       = "a expressão não pode ser usada como instrução"
)
