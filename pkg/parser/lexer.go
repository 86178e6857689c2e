package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/portugo/pkg/token"
)

// Lexer tokenizes Portugol source text.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based, in runes)

	// Errors found while scanning, in source order.
	Errors []*LexError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) {
	l.Errors = append(l.Errors, &LexError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	tok := token.Token{Pos: pos}

	switch l.ch {
	case 0:
		if l.pos >= len(l.input) {
			tok.Type = token.EOF
			return tok
		}
		l.errorf(pos, ErrIllegalChar, string(l.ch))
		tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
	case '+':
		tok = l.either(pos, '+', token.INC, '=', token.PLUS_ASSIGN, token.PLUS)
	case '-':
		tok = l.either(pos, '-', token.DEC, '=', token.MINUS_ASSIGN, token.MINUS)
	case '*':
		tok = l.either(pos, '=', token.STAR_ASSIGN, 0, 0, token.STAR)
	case '/':
		tok = l.either(pos, '=', token.SLASH_ASSIGN, 0, 0, token.SLASH)
	case '%':
		tok.Type, tok.Literal = token.PERCENT, "%"
	case '=':
		tok = l.either(pos, '=', token.EQ, 0, 0, token.ASSIGN)
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.NE, "!="
		} else {
			l.errorf(pos, ErrIllegalChar, "!")
			tok.Type, tok.Literal = token.ILLEGAL, "!"
		}
	case '<':
		tok = l.either(pos, '=', token.LE, 0, 0, token.LT)
	case '>':
		tok = l.either(pos, '=', token.GE, 0, 0, token.GT)
	case ',':
		tok.Type, tok.Literal = token.COMMA, ","
	case ';':
		tok.Type, tok.Literal = token.SEMICOLON, ";"
	case '(':
		tok.Type, tok.Literal = token.LPAREN, "("
	case ')':
		tok.Type, tok.Literal = token.RPAREN, ")"
	case '{':
		tok.Type, tok.Literal = token.LBRACE, "{"
	case '}':
		tok.Type, tok.Literal = token.RBRACE, "}"
	case '[':
		tok.Type, tok.Literal = token.LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = token.RBRACKET, "]"
	case '"':
		return l.readString(pos)
	case '\'':
		return l.readCharLiteral(pos)
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Literal: ident, Pos: pos}
		}
		if isDigit(l.ch) {
			return l.readNumber(pos)
		}
		l.errorf(pos, ErrIllegalChar, string(l.ch))
		tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
	}

	l.readChar()
	return tok
}

// either resolves one- and two-character operators sharing a first char.
// The current char is consumed by the caller's trailing readChar.
func (l *Lexer) either(pos token.Position, next1 rune, t1 token.TokenType, next2 rune, t2 token.TokenType, single token.TokenType) token.Token {
	first := string(l.ch)
	switch p := l.peekChar(); {
	case next1 != 0 && p == next1:
		l.readChar()
		return token.Token{Type: t1, Literal: first + string(p), Pos: pos}
	case next2 != 0 && p == next2:
		l.readChar()
		return token.Token{Type: t2, Literal: first + string(p), Pos: pos}
	}
	return token.Token{Type: single, Literal: first, Pos: pos}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			pos := l.currentPos()
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.ch == 0 && l.pos >= len(l.input) {
					l.errorf(pos, ErrUnterminatedBlock)
					return
				}
				l.readChar()
			}
			l.readChar()
			l.readChar()
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber(pos token.Position) token.Token {
	start := l.pos
	typ := token.INT
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		typ = token.REAL
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if isLetter(l.ch) {
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		lit := l.input[start:l.pos]
		l.errorf(pos, ErrInvalidNumber, lit)
		return token.Token{Type: token.ILLEGAL, Literal: lit, Pos: pos}
	}
	return token.Token{Type: typ, Literal: l.input[start:l.pos], Pos: pos}
}

func (l *Lexer) readString(pos token.Position) token.Token {
	var sb strings.Builder
	l.readChar() // opening quote
	for l.ch != '"' {
		if l.ch == '\n' || (l.ch == 0 && l.pos >= len(l.input)) {
			l.errorf(pos, ErrUnterminatedString)
			return token.Token{Type: token.ILLEGAL, Literal: sb.String(), Pos: pos}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(unescape(l.ch))
		} else {
			sb.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar() // closing quote
	return token.Token{Type: token.STRING, Literal: sb.String(), Pos: pos}
}

func (l *Lexer) readCharLiteral(pos token.Position) token.Token {
	l.readChar() // opening quote
	ch := l.ch
	if ch == '\'' || ch == '\n' || ch == 0 {
		l.errorf(pos, ErrUnterminatedChar)
		return token.Token{Type: token.ILLEGAL, Literal: "'", Pos: pos}
	}
	if ch == '\\' {
		l.readChar()
		ch = unescape(l.ch)
	}
	if ch == 0 {
		l.errorf(pos, ErrUnterminatedChar)
		return token.Token{Type: token.ILLEGAL, Literal: "'", Pos: pos}
	}
	l.readChar()
	if l.ch != '\'' {
		l.errorf(pos, ErrUnterminatedChar)
		return token.Token{Type: token.ILLEGAL, Literal: string(ch), Pos: pos}
	}
	l.readChar() // closing quote
	return token.Token{Type: token.CHAR, Literal: string(ch), Pos: pos}
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return ch
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}
