// Package token defines the lexical tokens of the Portugol language.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // token.TokenType reads clearly at call sites
type TokenType int32

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier
	INT    // 123
	REAL   // 4.5
	STRING // "texto"
	CHAR   // 'a'

	// Operators
	ASSIGN       // =
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	STAR_ASSIGN  // *=
	SLASH_ASSIGN // /=
	PLUS         // +
	MINUS        // -
	STAR         // *
	SLASH        // /
	PERCENT      // %
	INC          // ++
	DEC          // --
	EQ           // ==
	NE           // !=
	LT           // <
	GT           // >
	LE           // <=
	GE           // >=

	// Delimiters
	COMMA     // ,
	SEMICOLON // ;
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]

	keywordStart

	// Keywords
	PROGRAMA
	FUNCAO
	CONST
	INTEIRO
	REAL_TYPE
	CADEIA
	CARACTER
	LOGICO
	VAZIO
	SE
	SENAO
	ENQUANTO
	FACA
	PARA
	PARE
	RETORNE
	E
	OU
	NAO
	VERDADEIRO
	FALSO

	keywordEnd
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsType reports whether t names a primitive type.
func (t TokenType) IsType() bool {
	switch t {
	case INTEIRO, REAL_TYPE, CADEIA, CARACTER, LOGICO, VAZIO:
		return true
	}
	return false
}

// IsAssign reports whether t is an assignment operator.
func (t TokenType) IsAssign() bool {
	switch t {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN:
		return true
	}
	return false
}

var tokenNames = map[TokenType]string{
	EOF:     "fim do arquivo",
	ILLEGAL: "caractere inválido",

	IDENT:  "identificador",
	INT:    "número inteiro",
	REAL:   "número real",
	STRING: "cadeia",
	CHAR:   "caracter",

	ASSIGN:       "=",
	PLUS_ASSIGN:  "+=",
	MINUS_ASSIGN: "-=",
	STAR_ASSIGN:  "*=",
	SLASH_ASSIGN: "/=",
	PLUS:         "+",
	MINUS:        "-",
	STAR:         "*",
	SLASH:        "/",
	PERCENT:      "%",
	INC:          "++",
	DEC:          "--",
	EQ:           "==",
	NE:           "!=",
	LT:           "<",
	GT:           ">",
	LE:           "<=",
	GE:           ">=",

	COMMA:     ",",
	SEMICOLON: ";",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",

	PROGRAMA:   "programa",
	FUNCAO:     "funcao",
	CONST:      "const",
	INTEIRO:    "inteiro",
	REAL_TYPE:  "real",
	CADEIA:     "cadeia",
	CARACTER:   "caracter",
	LOGICO:     "logico",
	VAZIO:      "vazio",
	SE:         "se",
	SENAO:      "senao",
	ENQUANTO:   "enquanto",
	FACA:       "faca",
	PARA:       "para",
	PARE:       "pare",
	RETORNE:    "retorne",
	E:          "e",
	OU:         "ou",
	NAO:        "nao",
	VERDADEIRO: "verdadeiro",
	FALSO:      "falso",
}

// Token is a lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
