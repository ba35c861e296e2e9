// Package autosave reconciles committed values with the record store. Each
// logical record has its own debounce timer; writes for one record are
// serialized and the last committed value wins.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/proposal-cli/pkg/store"
)

// Status is where a record is in its write lifecycle
type Status int

const (
	StatusIdle Status = iota
	StatusQueued
	StatusInFlight
	StatusCommitted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusQueued:
		return "queued"
	case StatusInFlight:
		return "in-flight"
	case StatusCommitted:
		return "committed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// KindOf returns the store kind for a record key: the part before the first
// slash, so "term/2" is stored as kind "term".
func KindOf(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return key
}

// DebounceMsg fires when a record's quiet interval elapses
type DebounceMsg struct {
	Key string
	Gen uint64
}

// WriteResultMsg carries the outcome of one store call
type WriteResultMsg struct {
	Key     string
	ID      string
	Created bool
	Sent    store.Fields
	Err     error
}

// StatusMsg is emitted whenever a write settles. Failed writes carry Err and
// are meant to be shown to the user.
type StatusMsg struct {
	Key      string
	Status   Status
	RemoteID string
	Err      error
}

// Options configures a Synchronizer
type Options struct {
	// Debounce is the default quiet interval
	Debounce time.Duration
	// WriteTimeout bounds each store call; zero leaves it to the store
	WriteTimeout time.Duration
	Logger       *slog.Logger
	Metrics      *Metrics
}

type entry struct {
	key      string
	interval time.Duration

	remoteID string
	remote   store.Fields
	latest   store.Fields

	status        Status
	err           error
	lastAttemptAt time.Time

	gen      uint64
	queued   bool
	inflight bool
	waiting  bool
}

// Synchronizer owns the pending-write queue. Like the rest of the editing
// core it is driven from one event loop; only store calls run elsewhere.
type Synchronizer struct {
	store   store.RecordStore
	opts    Options
	entries map[string]*entry
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a synchronizer writing through rs
func New(rs store.RecordStore, opts Options) *Synchronizer {
	if opts.Debounce <= 0 {
		opts.Debounce = 1500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{
		store:   rs,
		opts:    opts,
		entries: make(map[string]*entry),
		logger:  logger,
		now:     time.Now,
	}
}

// SetInterval overrides the quiet interval for one record
func (s *Synchronizer) SetInterval(key string, d time.Duration) {
	s.get(key).interval = d
}

// Seed records what the store already holds for key, e.g. after loading a
// document. It does not schedule anything.
func (s *Synchronizer) Seed(key, remoteID string, fields store.Fields) {
	e := s.get(key)
	e.remoteID = remoteID
	e.remote = fields.Clone()
	e.latest = fields.Clone()
	if remoteID != "" {
		e.status = StatusCommitted
	}
}

// Submit hands the synchronizer the full committed payload of a record.
// Unchanged payloads are dropped; anything else (re)starts the record's
// debounce timer.
func (s *Synchronizer) Submit(key string, fields store.Fields) tea.Cmd {
	e := s.get(key)
	e.latest = fields.Clone()

	if e.inflight {
		// re-diffed once the in-flight write resolves
		e.gen++
		e.queued = true
		s.opts.Metrics.coalesced()
		return s.tick(e)
	}

	if e.remoteID != "" && len(store.Diff(e.remote, e.latest)) == 0 {
		e.gen++
		e.queued = false
		e.err = nil
		e.status = StatusCommitted
		s.opts.Metrics.skipped()
		s.logger.Debug("autosave skipped unchanged record", "record", key)
		return nil
	}

	if e.queued {
		s.opts.Metrics.coalesced()
	}
	e.gen++
	e.queued = true
	e.status = StatusQueued
	return s.tick(e)
}

// HandleMessage processes synchronizer messages. It reports whether msg
// belonged to the synchronizer.
func (s *Synchronizer) HandleMessage(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case DebounceMsg:
		e, ok := s.entries[msg.Key]
		if !ok || msg.Gen != e.gen || !e.queued {
			return true, nil
		}
		if e.inflight {
			e.waiting = true
			return true, nil
		}
		return true, s.flush(e)

	case WriteResultMsg:
		e, ok := s.entries[msg.Key]
		if !ok {
			return true, nil
		}
		return true, s.resolve(e, msg)
	}
	return false, nil
}

// Retry resubmits a failed record immediately
func (s *Synchronizer) Retry(key string) tea.Cmd {
	e, ok := s.entries[key]
	if !ok || e.status != StatusFailed || e.inflight {
		return nil
	}
	e.gen++
	e.queued = true
	return s.flush(e)
}

// FlushAll sends every queued record now instead of waiting for its timer
func (s *Synchronizer) FlushAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range s.entries {
		if !e.queued {
			continue
		}
		e.gen++
		if e.inflight {
			e.waiting = true
			continue
		}
		cmds = append(cmds, s.flush(e))
	}
	return tea.Batch(cmds...)
}

// Status returns the write status of a record
func (s *Synchronizer) Status(key string) Status {
	if e, ok := s.entries[key]; ok {
		return e.status
	}
	return StatusIdle
}

// IsSaving reports whether a change to key is not yet acknowledged
func (s *Synchronizer) IsSaving(key string) bool {
	e, ok := s.entries[key]
	return ok && (e.queued || e.inflight)
}

// Err returns the last write error of a record
func (s *Synchronizer) Err(key string) error {
	if e, ok := s.entries[key]; ok {
		return e.err
	}
	return nil
}

// RemoteID returns the store id of a record, if it has been created
func (s *Synchronizer) RemoteID(key string) string {
	if e, ok := s.entries[key]; ok {
		return e.remoteID
	}
	return ""
}

// LastAttempt returns when a write for key was last sent
func (s *Synchronizer) LastAttempt(key string) time.Time {
	if e, ok := s.entries[key]; ok {
		return e.lastAttemptAt
	}
	return time.Time{}
}

// Pending returns how many records have unacknowledged changes
func (s *Synchronizer) Pending() int {
	n := 0
	for _, e := range s.entries {
		if e.queued || e.inflight {
			n++
		}
	}
	return n
}

// Failed returns the keys of records whose last write failed
func (s *Synchronizer) Failed() []string {
	var keys []string
	for key, e := range s.entries {
		if e.status == StatusFailed {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *Synchronizer) get(key string) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{key: key}
		s.entries[key] = e
	}
	return e
}

func (s *Synchronizer) tick(e *entry) tea.Cmd {
	interval := e.interval
	if interval <= 0 {
		interval = s.opts.Debounce
	}
	key, gen := e.key, e.gen
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return DebounceMsg{Key: key, Gen: gen}
	})
}

// flush diffs the latest payload against the remote and starts a write
func (s *Synchronizer) flush(e *entry) tea.Cmd {
	e.queued = false
	e.waiting = false

	create := e.remoteID == ""
	var sent store.Fields
	if create {
		sent = e.latest.Clone()
	} else {
		sent = store.Diff(e.remote, e.latest)
	}
	if len(sent) == 0 {
		if !create {
			e.status = StatusCommitted
			e.err = nil
		}
		s.opts.Metrics.skipped()
		s.logger.Debug("autosave skipped unchanged record", "record", e.key)
		return nil
	}

	e.inflight = true
	e.status = StatusInFlight
	e.lastAttemptAt = s.now()
	s.opts.Metrics.started()

	rs, metrics, timeout := s.store, s.opts.Metrics, s.opts.WriteTimeout
	key, id, kind := e.key, e.remoteID, KindOf(e.key)
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		start := time.Now()
		res := WriteResultMsg{Key: key, ID: id, Created: create, Sent: sent}
		if create {
			res.ID, res.Err = rs.CreateRecord(ctx, kind, sent)
			metrics.write("create", res.Err, time.Since(start).Seconds())
		} else {
			res.Err = rs.UpdateRecord(ctx, kind, id, sent)
			metrics.write("update", res.Err, time.Since(start).Seconds())
		}
		return res
	}
}

func (s *Synchronizer) resolve(e *entry, msg WriteResultMsg) tea.Cmd {
	e.inflight = false

	if msg.Err != nil {
		e.err = msg.Err
		e.status = StatusFailed
		s.logger.Error("autosave write failed",
			"kind", KindOf(e.key),
			"record", e.key,
			"error", msg.Err)
	} else {
		if msg.Created {
			e.remoteID = msg.ID
			e.remote = store.Fields{}
		}
		if e.remote == nil {
			e.remote = store.Fields{}
		}
		e.remote.Merge(msg.Sent)
		e.err = nil
		e.status = StatusCommitted
		if e.queued {
			e.status = StatusQueued
		}
	}

	status := StatusMsg{Key: e.key, Status: e.status, RemoteID: e.remoteID, Err: e.err}
	notify := func() tea.Msg { return status }

	if e.waiting {
		return tea.Batch(notify, s.flush(e))
	}
	return notify
}
