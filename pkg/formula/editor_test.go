package formula

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/proposal-cli/pkg/editable"
)

func staticNames(names ...string) NameSource {
	return func() []string { return names }
}

func press(t *testing.T, e *Editor, msgs ...tea.KeyMsg) {
	t.Helper()
	for _, msg := range msgs {
		_, err := e.HandleKey(msg)
		require.NoError(t, err)
	}
}

func typeKeys(t *testing.T, e *Editor, s string) {
	t.Helper()
	for _, r := range s {
		if r == ' ' {
			press(t, e, tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		press(t, e, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

var (
	keyEnter     = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc       = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab       = tea.KeyMsg{Type: tea.KeyTab}
	keyDown      = tea.KeyMsg{Type: tea.KeyDown}
	keyUp        = tea.KeyMsg{Type: tea.KeyUp}
	keyLeft      = tea.KeyMsg{Type: tea.KeyLeft}
	keyHome      = tea.KeyMsg{Type: tea.KeyHome}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
	keyDelete    = tea.KeyMsg{Type: tea.KeyDelete}
)

func TestEditor_AuthoringScenario(t *testing.T) {
	var saved []string
	e := NewEditor(editable.Config{
		Name: "formula",
		OnSave: func(value string, done func(error)) {
			saved = append(saved, value)
			done(nil)
		},
	}, staticNames("area"))

	require.True(t, e.EnterEdit())
	typeKeys(t, e, "are")
	assert.Equal(t, []string{"area"}, e.Suggestions())

	// enter with the list open accepts instead of committing
	press(t, e, keyEnter)
	assert.True(t, e.IsEditing())
	assert.Equal(t, "area", e.Text())
	assert.Equal(t, 4, e.Caret())
	assert.False(t, e.ShowSuggestions())

	typeKeys(t, e, " * 2")
	assert.Equal(t, "area * 2", e.Text())

	for _, want := range []string{"area * ", "area *", "area ", "area"} {
		press(t, e, keyBackspace)
		assert.Equal(t, want, e.Text())
	}

	press(t, e, keyBackspace)
	assert.Equal(t, "", e.Text())
	assert.Equal(t, 0, e.Caret())

	press(t, e, keyEnter)
	assert.Equal(t, editable.ModeIdle, e.Mode())
	assert.Empty(t, saved, "ending where we started saves nothing")
}

func TestEditor_SuggestionNavigation(t *testing.T) {
	e := NewEditor(editable.Config{Name: "formula"}, staticNames("area", "wallArea", "rate"))
	e.EnterEdit()

	typeKeys(t, e, "a")
	require.Equal(t, []string{"area", "wallArea", "rate"}, e.Suggestions())

	press(t, e, keyDown, keyDown, keyDown)
	assert.Equal(t, 2, e.SuggestionCursor(), "cursor stops at the last entry")
	press(t, e, keyUp)
	assert.Equal(t, 1, e.SuggestionCursor())

	press(t, e, keyEnter)
	assert.Equal(t, "wallArea", e.Text())
	assert.True(t, e.IsEditing())
}

func TestEditor_TabAccepts(t *testing.T) {
	e := NewEditor(editable.Config{Name: "formula"}, staticNames("laborRate"))
	e.EnterEdit()

	typeKeys(t, e, "2 * lab")
	press(t, e, keyTab)
	assert.Equal(t, "2 * laborRate", e.Text())

	handled, err := e.HandleKey(keyTab)
	assert.False(t, handled, "tab without suggestions falls through")
	assert.NoError(t, err)
}

func TestEditor_EscapeClosesListFirst(t *testing.T) {
	e := NewEditor(editable.Config{Name: "formula", Value: "1"}, staticNames("area"))
	e.EnterEdit()

	typeKeys(t, e, " + ar")
	require.True(t, e.ShowSuggestions())

	press(t, e, keyEsc)
	assert.False(t, e.ShowSuggestions())
	assert.True(t, e.IsEditing())

	press(t, e, keyEsc)
	assert.Equal(t, editable.ModeIdle, e.Mode())
	assert.Equal(t, "1", e.Text())
}

func TestEditor_CaretMovementAndForwardDelete(t *testing.T) {
	e := NewEditor(editable.Config{Name: "formula", Value: "area * 2"}, staticNames("area"))
	e.EnterEdit()
	assert.Equal(t, 8, e.Caret())

	press(t, e, keyHome)
	assert.Equal(t, 0, e.Caret())
	press(t, e, keyDelete)
	assert.Equal(t, " * 2", e.Text())

	press(t, e, tea.KeyMsg{Type: tea.KeyEnd}, keyLeft)
	assert.Equal(t, 3, e.Caret())
	typeKeys(t, e, "1")
	assert.Equal(t, " * 12", e.Text())
}

func TestEditor_SessionCommitClosesSuggestions(t *testing.T) {
	var saved []string
	s := editable.NewSession(true, nil)
	e := NewEditor(editable.Config{
		Name: "formula",
		OnSave: func(value string, done func(error)) {
			saved = append(saved, value)
			done(nil)
		},
	}, staticNames("area"))
	other := editable.New(editable.Config{Name: "title"})
	s.Attach(e.Field, other)

	e.EnterEdit()
	typeKeys(t, e, "ar")
	require.True(t, e.ShowSuggestions())

	require.True(t, other.EnterEdit())
	assert.Equal(t, []string{"ar"}, saved)
	assert.False(t, e.ShowSuggestions())
	assert.Nil(t, e.Suggestions())
}

func TestEditor_IdleIgnoresKeys(t *testing.T) {
	e := NewEditor(editable.Config{Name: "formula"}, nil)
	handled, err := e.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.False(t, handled)
	assert.NoError(t, err)
	assert.False(t, e.Multiline())
}

func TestEditor_SuggestionsCappedForNavigation(t *testing.T) {
	names := []string{"a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8"}
	e := NewEditor(editable.Config{Name: "formula"}, staticNames(names...))
	e.EnterEdit()
	typeKeys(t, e, "a")
	require.Len(t, e.Suggestions(), 8)

	for i := 0; i < 10; i++ {
		press(t, e, keyDown)
	}
	assert.Equal(t, MaxVisibleSuggestions-1, e.SuggestionCursor())
}
