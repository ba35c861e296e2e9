// Package formula handles cost formulas as flat text with embedded
// parameter-name tokens. Nothing here evaluates a formula.
package formula

import (
	"github.com/pluqqy/proposal-cli/pkg/models"
)

// Token is an identifier-shaped run inside formula text. Offsets are rune
// indices; End is exclusive.
type Token struct {
	Start int
	End   int
	Text  string
	// Param is set when Text exactly matches a selected parameter name
	Param bool
}

// Tokenize returns every identifier run in text. A run of identifier
// characters that starts with a digit (a number literal such as 2e3) is
// free text and yields no token.
func Tokenize(text string, names []string) []Token {
	return tokenizeRunes([]rune(text), nameSet(names))
}

func tokenizeRunes(rs []rune, names map[string]bool) []Token {
	var tokens []Token
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case models.IsIdentStart(r):
			start := i
			for i < len(rs) && models.IsIdentPart(rs[i]) {
				i++
			}
			word := string(rs[start:i])
			tokens = append(tokens, Token{Start: start, End: i, Text: word, Param: names[word]})
		case models.IsIdentPart(r):
			for i < len(rs) && models.IsIdentPart(rs[i]) {
				i++
			}
		default:
			i++
		}
	}
	return tokens
}

// ParamTokens returns only the tokens that are atomic parameter tokens
func ParamTokens(text string, names []string) []Token {
	var out []Token
	for _, tok := range Tokenize(text, names) {
		if tok.Param {
			out = append(out, tok)
		}
	}
	return out
}

// References returns the distinct parameter names used in text, in order of
// first appearance
func References(text string, names []string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, tok := range ParamTokens(text, names) {
		if !seen[tok.Text] {
			seen[tok.Text] = true
			refs = append(refs, tok.Text)
		}
	}
	return refs
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func clampCaret(caret, n int) int {
	if caret < 0 {
		return 0
	}
	if caret > n {
		return n
	}
	return caret
}
