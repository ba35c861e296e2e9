// Package store is the persistence collaborator behind autosave. Records are
// flat string maps grouped by kind; updates merge partial payloads.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrValidation  = errors.New("invalid record")
	ErrUnavailable = errors.New("store unavailable")
)

// Fields is a record payload keyed by field name
type Fields map[string]string

// Clone returns a copy of f
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge copies every field of partial into f
func (f Fields) Merge(partial Fields) {
	for k, v := range partial {
		f[k] = v
	}
}

// Diff returns the fields of next that differ from or are missing in prev
func Diff(prev, next Fields) Fields {
	out := Fields{}
	for k, v := range next {
		if old, ok := prev[k]; !ok || old != v {
			out[k] = v
		}
	}
	return out
}

// Record is a stored payload
type Record struct {
	Kind      string    `json:"kind" yaml:"kind"`
	ID        string    `json:"id" yaml:"id"`
	Fields    Fields    `json:"fields" yaml:"fields"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// RecordStore is what the synchronizer writes through
type RecordStore interface {
	CreateRecord(ctx context.Context, kind string, fields Fields) (string, error)
	UpdateRecord(ctx context.Context, kind, id string, partial Fields) error
}

// Reader loads stored records
type Reader interface {
	GetRecord(ctx context.Context, kind, id string) (Record, error)
	ListRecords(ctx context.Context, kind string) ([]Record, error)
}

// Store is a full backend
type Store interface {
	RecordStore
	Reader
	Close() error
}

// Error is the structured failure returned by every backend
type Error struct {
	Op   string
	Kind string
	ID   string
	Err  error
}

func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s/%s: %v", e.Op, e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var kindPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateKind(op, kind string) error {
	if !kindPattern.MatchString(kind) {
		return &Error{Op: op, Kind: kind, Err: fmt.Errorf("%w: kind must match %s", ErrValidation, kindPattern)}
	}
	return nil
}

func validateFields(op, kind, id string, fields Fields) error {
	if len(fields) == 0 {
		return &Error{Op: op, Kind: kind, ID: id, Err: fmt.Errorf("%w: empty payload", ErrValidation)}
	}
	return nil
}
