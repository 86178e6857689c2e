package token

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var keywords = func() map[string]TokenType {
	m := make(map[string]TokenType, keywordEnd-keywordStart)
	for t := keywordStart + 1; t < keywordEnd; t++ {
		m[tokenNames[t]] = t
	}
	return m
}()

// Fold lowercases s and strips diacritics, so "Senão" folds to "senao".
func Fold(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(folder, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(out)
}

// LookupIdent returns the keyword token for ident, or IDENT.
// Keywords match regardless of accents: "lógico" and "logico" are the same word.
func LookupIdent(ident string) TokenType {
	if t, ok := keywords[ident]; ok {
		return t
	}
	if t, ok := keywords[Fold(ident)]; ok {
		return t
	}
	return IDENT
}
