package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]map[string]Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) CreateRecord(ctx context.Context, kind string, fields Fields) (string, error) {
	if err := validateKind("create", kind); err != nil {
		return "", err
	}
	if err := validateFields("create", kind, "", fields); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &Error{Op: "create", Kind: kind, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if s.records[kind] == nil {
		s.records[kind] = make(map[string]Record)
	}
	s.records[kind][id] = Record{Kind: kind, ID: id, Fields: fields.Clone(), UpdatedAt: s.now()}
	return id, nil
}

func (s *MemoryStore) UpdateRecord(ctx context.Context, kind, id string, partial Fields) error {
	if err := validateKind("update", kind); err != nil {
		return err
	}
	if err := validateFields("update", kind, id, partial); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[kind][id]
	if !ok {
		return &Error{Op: "update", Kind: kind, ID: id, Err: ErrNotFound}
	}
	rec.Fields = rec.Fields.Clone()
	rec.Fields.Merge(partial)
	rec.UpdatedAt = s.now()
	s.records[kind][id] = rec
	return nil
}

func (s *MemoryStore) GetRecord(ctx context.Context, kind, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[kind][id]
	if !ok {
		return Record{}, &Error{Op: "get", Kind: kind, ID: id, Err: ErrNotFound}
	}
	rec.Fields = rec.Fields.Clone()
	return rec, nil
}

func (s *MemoryStore) ListRecords(ctx context.Context, kind string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records[kind]))
	for _, rec := range s.records[kind] {
		rec.Fields = rec.Fields.Clone()
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

func sortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.Before(records[j].UpdatedAt)
		}
		return records[i].ID < records[j].ID
	})
}
