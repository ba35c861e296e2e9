package formula

// InsertText inserts s at the caret
func InsertText(text string, caret int, s string) (string, int) {
	rs := []rune(text)
	caret = clampCaret(caret, len(rs))
	ins := []rune(s)

	out := make([]rune, 0, len(rs)+len(ins))
	out = append(out, rs[:caret]...)
	out = append(out, ins...)
	out = append(out, rs[caret:]...)
	return string(out), caret + len(ins)
}

// Backspace deletes backwards from the caret. A parameter name ending at the
// caret is removed whole; anything else loses one rune.
func Backspace(text string, caret int, names []string) (string, int) {
	rs := []rune(text)
	caret = clampCaret(caret, len(rs))
	if caret == 0 {
		return text, 0
	}

	start := caret - 1
	for _, tok := range tokenizeRunes(rs, nameSet(names)) {
		if tok.Param && tok.End == caret {
			start = tok.Start
			break
		}
	}
	return string(append(rs[:start:start], rs[caret:]...)), start
}

// Delete deletes forward from the caret. A parameter name starting at the
// caret is removed whole; anything else loses one rune.
func Delete(text string, caret int, names []string) (string, int) {
	rs := []rune(text)
	caret = clampCaret(caret, len(rs))
	if caret == len(rs) {
		return text, caret
	}

	end := caret + 1
	for _, tok := range tokenizeRunes(rs, nameSet(names)) {
		if tok.Param && tok.Start == caret {
			end = tok.End
			break
		}
	}
	return string(append(rs[:caret:caret], rs[end:]...)), caret
}
