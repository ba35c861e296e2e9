package formula

import (
	"strings"
	"unicode"
)

// segmentDelimiters end an expression segment
const segmentDelimiters = "+-*/()="

// Segment returns the rune offset where the expression segment under the
// caret starts (after leading spaces) and the query text up to the caret.
// The query is empty when the caret sits right after whitespace.
func Segment(text string, caret int) (start int, query string) {
	rs := []rune(text)
	caret = clampCaret(caret, len(rs))
	return segmentRunes(rs, caret)
}

func segmentRunes(rs []rune, caret int) (int, string) {
	start := 0
	for i := caret - 1; i >= 0; i-- {
		if strings.ContainsRune(segmentDelimiters, rs[i]) {
			start = i + 1
			break
		}
	}
	for start < caret && unicode.IsSpace(rs[start]) {
		start++
	}
	if start == caret || unicode.IsSpace(rs[caret-1]) {
		return caret, ""
	}
	return start, string(rs[start:caret])
}

// Suggest returns the selected parameter names matching the segment under
// the caret, in the order given by names. Names already used as complete
// tokens elsewhere in the text are left out unless the query is a prefix of
// them.
func Suggest(text string, caret int, names []string) []string {
	rs := []rune(text)
	caret = clampCaret(caret, len(rs))
	start, query := segmentRunes(rs, caret)
	if query == "" {
		return nil
	}

	used := make(map[string]bool)
	for _, tok := range tokenizeRunes(rs, nameSet(names)) {
		if !tok.Param {
			continue
		}
		// the token being typed is not "elsewhere"
		if tok.End >= start && tok.Start <= caret {
			continue
		}
		used[tok.Text] = true
	}

	lowerQuery := strings.ToLower(query)
	var out []string
	for _, name := range names {
		lowerName := strings.ToLower(name)
		if !strings.Contains(lowerName, lowerQuery) {
			continue
		}
		if used[name] && !strings.HasPrefix(lowerName, lowerQuery) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Accept replaces the segment under the caret with name and returns the new
// text and caret, which lands right after the inserted name.
func Accept(text string, caret int, name string) (string, int) {
	rs := []rune(text)
	caret = clampCaret(caret, len(rs))
	start, _ := segmentRunes(rs, caret)

	out := make([]rune, 0, len(rs)+len(name))
	out = append(out, rs[:start]...)
	out = append(out, []rune(name)...)
	out = append(out, rs[caret:]...)
	return string(out), start + len([]rune(name))
}
