package formula

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/proposal-cli/pkg/editable"
)

// MaxVisibleSuggestions caps how many suggestions are shown and navigable
const MaxVisibleSuggestions = 6

// NameSource returns the selected parameter names in catalog order
type NameSource func() []string

// Editor is an editable field for formula text that tracks the caret and
// offers parameter-name completion
type Editor struct {
	*editable.Field

	names NameSource
	caret int

	suggestions             []string
	suggestionCursor        int
	hasNavigatedSuggestions bool
}

// NewEditor creates a formula editor. Formula fields are single-line.
func NewEditor(cfg editable.Config, names NameSource) *Editor {
	cfg.Multiline = false
	if names == nil {
		names = func() []string { return nil }
	}
	return &Editor{
		Field: editable.New(cfg),
		names: names,
	}
}

// EnterEdit starts editing with the caret at the end of the text
func (e *Editor) EnterEdit() bool {
	if !e.Field.EnterEdit() {
		return false
	}
	e.caret = len([]rune(e.Text()))
	e.clearSuggestions()
	return true
}

// Text returns the draft while editing, otherwise the committed value
func (e *Editor) Text() string {
	if draft, ok := e.Draft(); ok {
		return draft
	}
	return e.Value()
}

// Caret returns the caret position as a rune offset
func (e *Editor) Caret() int { return e.caret }

// SetCaret moves the caret and refreshes suggestions
func (e *Editor) SetCaret(pos int) {
	if !e.IsEditing() {
		return
	}
	e.caret = clampCaret(pos, len([]rune(e.Text())))
	e.refresh()
}

// Suggestions returns the current completion candidates
func (e *Editor) Suggestions() []string {
	if !e.IsEditing() {
		return nil
	}
	return e.suggestions
}

// ShowSuggestions reports whether the completion list is open
func (e *Editor) ShowSuggestions() bool { return len(e.Suggestions()) > 0 }

// SuggestionCursor returns the highlighted suggestion index
func (e *Editor) SuggestionCursor() int { return e.suggestionCursor }

// Type inserts text at the caret
func (e *Editor) Type(s string) {
	if !e.IsEditing() {
		return
	}
	text, caret := InsertText(e.Text(), e.caret, s)
	e.apply(text, caret)
}

// Backspace deletes backwards, removing whole parameter names
func (e *Editor) Backspace() {
	if !e.IsEditing() {
		return
	}
	text, caret := Backspace(e.Text(), e.caret, e.names())
	e.apply(text, caret)
}

// Delete deletes forwards, removing whole parameter names
func (e *Editor) Delete() {
	if !e.IsEditing() {
		return
	}
	text, caret := Delete(e.Text(), e.caret, e.names())
	e.apply(text, caret)
}

// AcceptSuggestion inserts the suggestion at index i
func (e *Editor) AcceptSuggestion(i int) bool {
	if !e.IsEditing() || i < 0 || i >= len(e.suggestions) {
		return false
	}
	text, caret := Accept(e.Text(), e.caret, e.suggestions[i])
	e.UpdateDraft(text)
	e.caret = caret
	e.clearSuggestions()
	return true
}

// HandleKey routes a key press. Enter accepts a suggestion while the list is
// open and commits otherwise.
func (e *Editor) HandleKey(msg tea.KeyMsg) (bool, error) {
	switch e.Mode() {
	case editable.ModeIdle:
		return false, nil
	case editable.ModeSaving:
		return true, nil
	}

	switch msg.String() {
	case editable.Shortcuts.Cancel.Get():
		if e.ShowSuggestions() {
			e.clearSuggestions()
			return true, nil
		}
		e.Cancel()
		e.clearSuggestions()
		return true, nil

	case editable.Shortcuts.Commit.Get():
		if e.ShowSuggestions() {
			idx := 0
			if e.hasNavigatedSuggestions {
				idx = e.suggestionCursor
			}
			e.AcceptSuggestion(idx)
			return true, nil
		}
		err := e.Commit()
		if err == nil {
			e.clearSuggestions()
		}
		return true, err

	case editable.Shortcuts.AcceptSuggest.Get():
		if !e.ShowSuggestions() {
			return false, nil
		}
		e.AcceptSuggestion(e.suggestionCursor)
		return true, nil

	case "up":
		if e.ShowSuggestions() && e.suggestionCursor > 0 {
			e.suggestionCursor--
			e.hasNavigatedSuggestions = true
		}
		return true, nil

	case "down":
		if e.ShowSuggestions() && e.suggestionCursor < e.visibleSuggestions()-1 {
			e.suggestionCursor++
			e.hasNavigatedSuggestions = true
		}
		return true, nil

	case "left":
		e.SetCaret(e.caret - 1)
		return true, nil

	case "right":
		e.SetCaret(e.caret + 1)
		return true, nil

	case "home", "ctrl+a":
		e.SetCaret(0)
		return true, nil

	case "end", "ctrl+e":
		e.SetCaret(len([]rune(e.Text())))
		return true, nil

	case "backspace":
		e.Backspace()
		return true, nil

	case "delete":
		e.Delete()
		return true, nil
	}

	switch msg.Type {
	case tea.KeySpace:
		e.Type(" ")
		return true, nil
	case tea.KeyRunes:
		e.Type(string(msg.Runes))
		return true, nil
	}

	return false, nil
}

// OutsideInteraction commits like the plain field and closes suggestions
func (e *Editor) OutsideInteraction() error {
	err := e.Field.OutsideInteraction()
	if !e.IsEditing() {
		e.clearSuggestions()
	}
	return err
}

func (e *Editor) apply(text string, caret int) {
	e.UpdateDraft(text)
	e.caret = caret
	e.refresh()
}

func (e *Editor) refresh() {
	e.suggestions = Suggest(e.Text(), e.caret, e.names())
	e.suggestionCursor = 0
	e.hasNavigatedSuggestions = false
}

func (e *Editor) clearSuggestions() {
	e.suggestions = nil
	e.suggestionCursor = 0
	e.hasNavigatedSuggestions = false
}

func (e *Editor) visibleSuggestions() int {
	if len(e.suggestions) > MaxVisibleSuggestions {
		return MaxVisibleSuggestions
	}
	return len(e.suggestions)
}
