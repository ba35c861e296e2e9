// Package editable turns a display value into a click-to-edit control with
// commit, cancel and outside-interaction semantics.
package editable

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Mode represents where a field is in its edit lifecycle
type Mode int

const (
	ModeIdle Mode = iota
	ModeEditing
	ModeSaving
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeEditing:
		return "editing"
	case ModeSaving:
		return "saving"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Validator rejects a draft before it is committed
type Validator func(value string) error

// SaveFunc receives a committed value. The field stays in ModeSaving until
// done is called; calling done before returning is allowed.
type SaveFunc func(value string, done func(err error))

// ValidationError is returned by Commit when the draft is rejected
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validation errors shared by the stock validators
var (
	ErrRequired  = errors.New("value is required")
	ErrNotNumber = errors.New("value must be a number")
)

// Required rejects blank values
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrRequired
	}
	return nil
}

// Number rejects values that do not parse as a decimal number
func Number(value string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
		return ErrNotNumber
	}
	return nil
}

// Config describes a field
type Config struct {
	Name      string
	Value     string
	Multiline bool
	Validate  Validator
	OnSave    SaveFunc

	// CommitKey overrides the platform-modified Enter used by multi-line fields
	CommitKey string
}

// View is what the presentation layer renders for a field
type View struct {
	Name      string
	Value     string
	Draft     string
	IsEditing bool
	IsSaving  bool
	Error     string
}

// Field is the inline edit state machine for one value
type Field struct {
	name      string
	multiline bool
	commitKey string
	validate  Validator
	onSave    SaveFunc

	mode      Mode
	committed string
	draft     string

	validationErr error
	saveErr       error

	suppressOutside bool
	saveSeq         uint64
	session         *Session
}

// New creates an idle field
func New(cfg Config) *Field {
	commitKey := cfg.CommitKey
	if commitKey == "" {
		commitKey = Shortcuts.CommitMultiline.Get()
	}
	return &Field{
		name:      cfg.Name,
		multiline: cfg.Multiline,
		commitKey: commitKey,
		validate:  cfg.Validate,
		onSave:    cfg.OnSave,
		committed: cfg.Value,
	}
}

// Name returns the field name
func (f *Field) Name() string { return f.name }

// Mode returns the current mode
func (f *Field) Mode() Mode { return f.mode }

// Value returns the committed value
func (f *Field) Value() string { return f.committed }

// Multiline reports whether Enter inserts a newline
func (f *Field) Multiline() bool { return f.multiline }

// Draft returns the draft and whether one exists
func (f *Field) Draft() (string, bool) {
	if f.mode != ModeEditing {
		return "", false
	}
	return f.draft, true
}

// CommitKey returns the key that commits a multi-line draft
func (f *Field) CommitKey() string { return f.commitKey }

// IsEditing reports whether the field is in ModeEditing
func (f *Field) IsEditing() bool { return f.mode == ModeEditing }

// IsSaving reports whether the field waits on its save callback
func (f *Field) IsSaving() bool { return f.mode == ModeSaving }

// Err returns the validation error, falling back to the last save error
func (f *Field) Err() error {
	if f.validationErr != nil {
		return f.validationErr
	}
	return f.saveErr
}

// SetOnSave replaces the save callback
func (f *Field) SetOnSave(fn SaveFunc) { f.onSave = fn }

// SetValue replaces the committed value from outside an edit (e.g. a reload).
// It is ignored while editing or saving.
func (f *Field) SetValue(value string) bool {
	if f.mode != ModeIdle {
		return false
	}
	f.committed = value
	return true
}

// EnterEdit moves an idle field into ModeEditing with the draft seeded from
// the committed value.
func (f *Field) EnterEdit() bool {
	switch f.mode {
	case ModeEditing:
		// re-entering takes the outside-commit handler back
		return f.session == nil || f.session.claim(f)
	case ModeSaving:
		return false
	}

	if f.session != nil && !f.session.claim(f) {
		return false
	}

	f.mode = ModeEditing
	f.draft = f.committed
	f.validationErr = nil
	f.suppressOutside = false
	return true
}

// UpdateDraft replaces the draft text
func (f *Field) UpdateDraft(text string) bool {
	if f.mode != ModeEditing {
		return false
	}
	f.draft = text
	f.validationErr = nil
	return true
}

// Commit promotes the draft. An unchanged draft returns the field to idle
// without requesting a save.
func (f *Field) Commit() error {
	if f.mode != ModeEditing {
		return nil
	}

	if f.validate != nil {
		if err := f.validate(f.draft); err != nil {
			f.validationErr = &ValidationError{Field: f.name, Err: err}
			return f.validationErr
		}
	}

	value := f.draft
	f.draft = ""
	f.validationErr = nil
	f.release()

	if value == f.committed {
		f.mode = ModeIdle
		return nil
	}

	f.committed = value
	if f.onSave == nil {
		f.mode = ModeIdle
		return nil
	}

	f.mode = ModeSaving
	f.saveSeq++
	seq := f.saveSeq
	f.onSave(value, func(err error) {
		f.resolve(seq, err)
	})
	return nil
}

// resolve ends a save; later calls for the same save are ignored
func (f *Field) resolve(seq uint64, err error) {
	if f.mode != ModeSaving || seq != f.saveSeq {
		return
	}
	f.mode = ModeIdle
	f.saveErr = err
}

// Cancel discards the draft. It is refused while saving.
func (f *Field) Cancel() bool {
	if f.mode != ModeEditing {
		return false
	}
	f.draft = ""
	f.validationErr = nil
	f.mode = ModeIdle
	f.release()
	return true
}

// SuppressNextOutside makes the next outside interaction a no-op. The cancel
// control sets it on pointer-down so its own click does not commit.
func (f *Field) SuppressNextOutside() {
	if f.mode == ModeEditing {
		f.suppressOutside = true
	}
}

// OutsideInteraction handles a pointer or focus event outside the edit surface
func (f *Field) OutsideInteraction() error {
	if f.suppressOutside {
		f.suppressOutside = false
		return nil
	}
	if f.mode != ModeEditing {
		return nil
	}
	return f.Commit()
}

// HandleKey routes a key press to the field. Keys are swallowed while saving.
func (f *Field) HandleKey(msg tea.KeyMsg) (bool, error) {
	switch f.mode {
	case ModeIdle:
		return false, nil
	case ModeSaving:
		return true, nil
	}

	key := msg.String()
	switch {
	case key == Shortcuts.Cancel.Get():
		f.Cancel()
		return true, nil
	case !f.multiline && key == Shortcuts.Commit.Get():
		return true, f.Commit()
	case f.multiline && key == f.commitKey:
		return true, f.Commit()
	case f.multiline && key == "enter":
		f.UpdateDraft(f.draft + "\n")
		return true, nil
	case key == "backspace":
		if r := []rune(f.draft); len(r) > 0 {
			f.UpdateDraft(string(r[:len(r)-1]))
		}
		return true, nil
	case msg.Type == tea.KeySpace:
		f.UpdateDraft(f.draft + " ")
		return true, nil
	case msg.Type == tea.KeyRunes:
		f.UpdateDraft(f.draft + string(msg.Runes))
		return true, nil
	}

	return false, nil
}

// View returns the render state
func (f *Field) View() View {
	v := View{
		Name:      f.name,
		Value:     f.committed,
		IsEditing: f.mode == ModeEditing,
		IsSaving:  f.mode == ModeSaving,
	}
	if f.mode == ModeEditing {
		v.Draft = f.draft
	}
	if err := f.Err(); err != nil {
		v.Error = err.Error()
	}
	return v
}

func (f *Field) release() {
	if f.session != nil {
		f.session.release(f)
	}
}
