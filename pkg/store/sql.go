package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // pure go sqlite driver
)

// Dialect selects placeholder and column types for SQLStore
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const (
	defaultPostgresDSN = "postgres://localhost/proposal?sslmode=disable"
	// fixed width so updated_at sorts lexically
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLStore keeps records in a single table with a JSON payload column
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at path
func NewSQLiteStore(path string) (*SQLStore, error) {
	if path == "" {
		path = "proposal.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, &Error{Op: "open", Kind: "sqlite", Err: fmt.Errorf("%w: create dirs: %v", ErrUnavailable, err)}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &Error{Op: "open", Kind: "sqlite", Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	// one connection keeps sqlite writers from tripping over each other
	db.SetMaxOpenConns(1)
	return newSQLStore(context.Background(), db, DialectSQLite)
}

// NewPostgresStore connects to Postgres through the pgx stdlib driver
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, &Error{Op: "open", Kind: "postgres", Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &Error{Op: "open", Kind: "postgres", Err: fmt.Errorf("%w: ping: %v", ErrUnavailable, err)}
	}
	return newSQLStore(ctx, db, DialectPostgres)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect, now: time.Now}
	if err := s.ensureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) ensureTable(ctx context.Context) error {
	payloadType := "TEXT"
	if s.dialect == DialectPostgres {
		payloadType = "JSONB"
	}
	ddl := `CREATE TABLE IF NOT EXISTS records (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		payload ` + payloadType + ` NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (kind, id)
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return &Error{Op: "open", Kind: string(s.dialect), Err: fmt.Errorf("%w: ensure records table: %v", ErrUnavailable, err)}
	}
	return nil
}

// DB exposes the underlying handle for tests
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) CreateRecord(ctx context.Context, kind string, fields Fields) (string, error) {
	if err := validateKind("create", kind); err != nil {
		return "", err
	}
	if err := validateFields("create", kind, "", fields); err != nil {
		return "", err
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return "", &Error{Op: "create", Kind: kind, Err: err}
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO records(kind, id, payload, updated_at) VALUES(?, ?, ?, ?)`),
		kind, id, string(payload), s.timestamp())
	if err != nil {
		return "", &Error{Op: "create", Kind: kind, ID: id, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	return id, nil
}

func (s *SQLStore) UpdateRecord(ctx context.Context, kind, id string, partial Fields) (retErr error) {
	if err := validateKind("update", kind); err != nil {
		return err
	}
	if err := validateFields("update", kind, id, partial); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	fields, err := s.loadFields(ctx, tx, kind, id)
	if err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: err}
	}
	fields.Merge(partial)

	payload, err := json.Marshal(fields)
	if err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: err}
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE records SET payload = ?, updated_at = ? WHERE kind = ? AND id = ?`),
		string(payload), s.timestamp(), kind, id); err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	if err := tx.Commit(); err != nil {
		return &Error{Op: "update", Kind: kind, ID: id, Err: fmt.Errorf("%w: commit: %v", ErrUnavailable, err)}
	}
	return nil
}

func (s *SQLStore) GetRecord(ctx context.Context, kind, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT payload, updated_at FROM records WHERE kind = ? AND id = ?`), kind, id)
	rec, err := scanRecord(row.Scan, kind, id)
	if err != nil {
		return Record{}, &Error{Op: "get", Kind: kind, ID: id, Err: err}
	}
	return rec, nil
}

func (s *SQLStore) ListRecords(ctx context.Context, kind string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, payload, updated_at FROM records WHERE kind = ? ORDER BY updated_at, id`), kind)
	if err != nil {
		return nil, &Error{Op: "list", Kind: kind, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	defer func() { _ = rows.Close() }()

	records := []Record{}
	for rows.Next() {
		var id string
		rec, err := scanRecord(func(dest ...any) error {
			return rows.Scan(append([]any{&id}, dest...)...)
		}, kind, "")
		if err != nil {
			return nil, &Error{Op: "list", Kind: kind, Err: err}
		}
		rec.ID = id
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: "list", Kind: kind, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	return records, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) loadFields(ctx context.Context, tx *sql.Tx, kind, id string) (Fields, error) {
	var payload string
	err := tx.QueryRowContext(ctx,
		s.rebind(`SELECT payload FROM records WHERE kind = ? AND id = ?`), kind, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	fields := Fields{}
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return fields, nil
}

func scanRecord(scan func(dest ...any) error, kind, id string) (Record, error) {
	var payload, updated string
	if err := scan(&payload, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	rec := Record{Kind: kind, ID: id, Fields: Fields{}}
	if err := json.Unmarshal([]byte(payload), &rec.Fields); err != nil {
		return Record{}, fmt.Errorf("decode payload: %w", err)
	}
	if t, err := time.Parse(timeLayout, updated); err == nil {
		rec.UpdatedAt = t
	}
	return rec, nil
}

func (s *SQLStore) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

// rebind rewrites ? placeholders to $n for postgres
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
