package editable

import (
	"errors"
	"log/slog"
	"slices"
)

// Session tracks the field that currently owns the outside-commit handler.
// Only one field holds it at a time; with exclusive editing, activating a
// second field first commits the one being edited. Without it the earlier
// field stays open until it is re-entered or flushed with CommitAll.
type Session struct {
	exclusive bool
	active    *Field
	// fields left editing after another field took the handler
	open   []*Field
	logger *slog.Logger
}

// NewSession creates a document-level editing session
func NewSession(exclusive bool, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{exclusive: exclusive, logger: logger}
}

// Attach binds fields to the session
func (s *Session) Attach(fields ...*Field) {
	for _, f := range fields {
		f.session = s
	}
}

// Active returns the field holding the outside-commit handler, if any
func (s *Session) Active() *Field {
	return s.active
}

// PointerOutside delivers an outside interaction to the active field
func (s *Session) PointerOutside() error {
	if s.active == nil {
		return nil
	}
	return s.active.OutsideInteraction()
}

// Open returns the fields still editing without the handler
func (s *Session) Open() []*Field {
	return slices.Clone(s.open)
}

// CommitAll commits the active field and every field left editing behind it.
// Document flush and quit use it so no draft is stranded.
func (s *Session) CommitAll() error {
	var errs []error
	if s.active != nil {
		s.active.suppressOutside = false
		errs = append(errs, s.active.OutsideInteraction())
	}
	for _, f := range s.Open() {
		f.suppressOutside = false
		errs = append(errs, f.OutsideInteraction())
	}
	return errors.Join(errs...)
}

// claim registers f as the outside-commit handler
func (s *Session) claim(f *Field) bool {
	prev := s.active
	s.forget(f)
	if prev == nil || prev == f {
		s.active = f
		return true
	}

	if s.exclusive && prev.IsEditing() {
		// the new activation is itself an interaction outside prev
		prev.suppressOutside = false
		if err := prev.OutsideInteraction(); err != nil {
			s.logger.Debug("activation blocked by invalid draft",
				"field", prev.Name(),
				"requested", f.Name(),
				"error", err)
			return false
		}
	}
	if prev.IsEditing() {
		s.open = append(s.open, prev)
	}

	s.active = f
	return true
}

func (s *Session) release(f *Field) {
	if s.active == f {
		s.active = nil
	}
	s.forget(f)
}

func (s *Session) forget(f *Field) {
	s.open = slices.DeleteFunc(s.open, func(o *Field) bool { return o == f })
}
