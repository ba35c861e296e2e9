package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FileStore keeps one YAML file per record under <root>/<kind>/<id>.yaml
type FileStore struct {
	mu   sync.Mutex
	root string
	now  func() time.Time
}

// NewFileStore creates a file store rooted at dir
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &Error{Op: "open", Kind: "file", Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	return &FileStore{root: dir, now: time.Now}, nil
}

// Root returns the store directory
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) CreateRecord(ctx context.Context, kind string, fields Fields) (string, error) {
	if err := validateKind("create", kind); err != nil {
		return "", err
	}
	if err := validateFields("create", kind, "", fields); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	rec := Record{Kind: kind, ID: id, Fields: fields.Clone(), UpdatedAt: s.now().UTC()}
	if err := s.write(rec); err != nil {
		return "", &Error{Op: "create", Kind: kind, ID: id, Err: err}
	}
	return id, nil
}

func (s *FileStore) UpdateRecord(ctx context.Context, kind, id string, partial Fields) error {
	if err := validateKind("update", kind); err != nil {
		return err
	}
	if err := validateFields("update", kind, id, partial); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(kind, id)
	if err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: err}
	}
	rec.Fields.Merge(partial)
	rec.UpdatedAt = s.now().UTC()
	if err := s.write(rec); err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: err}
	}
	return nil
}

func (s *FileStore) GetRecord(ctx context.Context, kind, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(kind, id)
	if err != nil {
		return Record{}, &Error{Op: "get", Kind: kind, ID: id, Err: err}
	}
	return rec, nil
}

func (s *FileStore) ListRecords(ctx context.Context, kind string) ([]Record, error) {
	if err := validateKind("list", kind); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(s.root, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, &Error{Op: "list", Kind: kind, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		rec, err := s.read(kind, strings.TrimSuffix(name, ".yaml"))
		if err != nil {
			return nil, &Error{Op: "list", Kind: kind, Err: err}
		}
		records = append(records, rec)
	}
	sortRecords(records)
	return records, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(kind, id string) string {
	return filepath.Join(s.root, kind, id+".yaml")
}

func (s *FileStore) read(kind, id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("%w: malformed id", ErrNotFound)
	}
	data, err := os.ReadFile(s.path(kind, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to parse record: %w", err)
	}
	if rec.Fields == nil {
		rec.Fields = Fields{}
	}
	return rec, nil
}

// write replaces the record file atomically
func (s *FileStore) write(rec Record) error {
	dir := filepath.Join(s.root, rec.Kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	final := s.path(rec.Kind, rec.ID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
