package editable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ExclusiveCommitsPrevious(t *testing.T) {
	rec := &saveRecorder{}
	s := NewSession(true, nil)
	title := New(Config{Name: "title", Value: "a", OnSave: rec.save})
	desc := New(Config{Name: "description", Value: "x", OnSave: rec.save})
	s.Attach(title, desc)

	require.True(t, title.EnterEdit())
	title.UpdateDraft("b")
	assert.Same(t, title, s.Active())

	require.True(t, desc.EnterEdit())
	assert.Equal(t, ModeIdle, title.Mode())
	assert.Equal(t, []string{"b"}, rec.values)
	assert.Same(t, desc, s.Active())
}

func TestSession_InvalidDraftBlocksActivation(t *testing.T) {
	s := NewSession(true, nil)
	markup := New(Config{Name: "markup", Value: "10", Validate: Number})
	title := New(Config{Name: "title"})
	s.Attach(markup, title)

	markup.EnterEdit()
	markup.UpdateDraft("ten")

	assert.False(t, title.EnterEdit())
	assert.True(t, markup.IsEditing())
	assert.Same(t, markup, s.Active())
}

func TestSession_NonExclusiveMovesHandler(t *testing.T) {
	s := NewSession(false, nil)
	a := New(Config{Name: "a"})
	b := New(Config{Name: "b"})
	s.Attach(a, b)

	a.EnterEdit()
	b.EnterEdit()
	assert.True(t, a.IsEditing())
	assert.True(t, b.IsEditing())
	assert.Same(t, b, s.Active(), "only one outside handler is registered")

	b.UpdateDraft("typed")
	require.NoError(t, s.PointerOutside())
	assert.Equal(t, "typed", b.Value())
	assert.True(t, a.IsEditing())
	assert.Nil(t, s.Active())
}

func TestSession_NonExclusiveReenterReclaimsHandler(t *testing.T) {
	rec := &saveRecorder{}
	s := NewSession(false, nil)
	a := New(Config{Name: "a", Value: "old", OnSave: rec.save})
	b := New(Config{Name: "b", OnSave: rec.save})
	s.Attach(a, b)

	require.True(t, a.EnterEdit())
	a.UpdateDraft("new")
	require.True(t, b.EnterEdit())
	assert.Equal(t, []*Field{a}, s.Open())

	b.UpdateDraft("other")
	require.NoError(t, b.Commit())
	assert.Nil(t, s.Active())

	require.True(t, a.EnterEdit())
	assert.Same(t, a, s.Active())
	assert.Empty(t, s.Open())
	draft, ok := a.Draft()
	assert.True(t, ok)
	assert.Equal(t, "new", draft, "re-entering keeps the draft")

	require.NoError(t, s.PointerOutside())
	assert.False(t, a.IsEditing())
	assert.Equal(t, "new", a.Value())
	assert.Equal(t, []string{"other", "new"}, rec.values)
}

func TestSession_CommitAllReachesOpenFields(t *testing.T) {
	tests := []struct {
		name      string
		exclusive bool
	}{
		{name: "exclusive", exclusive: true},
		{name: "non-exclusive", exclusive: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.exclusive, nil)
			a := New(Config{Name: "a"})
			b := New(Config{Name: "b"})
			s.Attach(a, b)

			a.EnterEdit()
			a.UpdateDraft("first")
			b.EnterEdit()
			b.UpdateDraft("second")
			b.SuppressNextOutside()

			require.NoError(t, s.CommitAll())
			assert.Equal(t, "first", a.Value())
			assert.Equal(t, "second", b.Value())
			assert.False(t, a.IsEditing())
			assert.False(t, b.IsEditing())
			assert.Nil(t, s.Active())
			assert.Empty(t, s.Open())
		})
	}
}

func TestSession_CommitAllKeepsInvalidDraftOpen(t *testing.T) {
	s := NewSession(false, nil)
	a := New(Config{Name: "a", Value: "10", Validate: Number})
	b := New(Config{Name: "b"})
	s.Attach(a, b)

	a.EnterEdit()
	a.UpdateDraft("ten")
	b.EnterEdit()
	b.UpdateDraft("kept")

	err := s.CommitAll()
	require.Error(t, err)
	assert.Equal(t, "kept", b.Value())
	assert.True(t, a.IsEditing())
	assert.Equal(t, []*Field{a}, s.Open())
}

func TestSession_ReleaseOnCancel(t *testing.T) {
	s := NewSession(true, nil)
	a := New(Config{Name: "a"})
	s.Attach(a)

	a.EnterEdit()
	a.Cancel()
	assert.Nil(t, s.Active())
	assert.NoError(t, s.PointerOutside())
}

func TestShortcutKey_For(t *testing.T) {
	key := ShortcutKey{Mac: "alt+enter", Windows: "alt+s", Default: "ctrl+s"}

	assert.Equal(t, "alt+enter", key.For(OSMac))
	assert.Equal(t, "alt+s", key.For(OSWindows))
	assert.Equal(t, "ctrl+s", key.For(OSLinux))
	assert.Equal(t, "ctrl+s", key.For(OSUnknown))
}

func TestFormatShortcut(t *testing.T) {
	assert.Equal(t, "M-enter", formatShortcut("alt+enter", OSLinux))
	assert.Equal(t, "⌥enter", formatShortcut("alt+enter", OSMac))
	assert.Equal(t, "^o", formatShortcut("ctrl+o", OSMac))
	assert.Equal(t, OSMac, osFromGOOS("darwin"))
	assert.Equal(t, OSUnknown, osFromGOOS("plan9"))
}
