package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/proposal-cli/pkg/store"
)

type call struct {
	op     string
	kind   string
	id     string
	fields store.Fields
}

type fakeStore struct {
	mu    sync.Mutex
	calls []call
	fail  error
	next  int
}

func (f *fakeStore) CreateRecord(ctx context.Context, kind string, fields store.Fields) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "create", kind: kind, fields: fields.Clone()})
	if f.fail != nil {
		return "", f.fail
	}
	f.next++
	return fmt.Sprintf("rec-%d", f.next), nil
}

func (f *fakeStore) UpdateRecord(ctx context.Context, kind, id string, partial store.Fields) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{op: "update", kind: kind, id: id, fields: partial.Clone()})
	return f.fail
}

func (f *fakeStore) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newTestSync(t *testing.T, fs *fakeStore) (*Synchronizer, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	return New(fs, Options{Debounce: time.Millisecond, Metrics: m}), m
}

// exec runs cmd and flattens batches into messages
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, exec(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// pump feeds the messages produced by cmds back into s until nothing is
// left and returns the messages s did not own
func pump(s *Synchronizer, cmds ...tea.Cmd) []tea.Msg {
	var queue []tea.Msg
	for _, c := range cmds {
		queue = append(queue, exec(c)...)
	}
	var unhandled []tea.Msg
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		handled, cmd := s.HandleMessage(msg)
		if !handled {
			unhandled = append(unhandled, msg)
			continue
		}
		queue = append(queue, exec(cmd)...)
	}
	return unhandled
}

func TestSynchronizer_CreateThenUpdate(t *testing.T) {
	fs := &fakeStore{}
	s, _ := newTestSync(t, fs)

	out := pump(s, s.Submit("client", store.Fields{"name": "Ada", "email": ""}))
	require.Len(t, fs.Calls(), 1)
	assert.Equal(t, call{op: "create", kind: "client", fields: store.Fields{"name": "Ada", "email": ""}}, fs.Calls()[0])
	assert.Equal(t, "rec-1", s.RemoteID("client"))
	assert.Equal(t, StatusCommitted, s.Status("client"))
	require.Len(t, out, 1)
	assert.Equal(t, StatusMsg{Key: "client", Status: StatusCommitted, RemoteID: "rec-1"}, out[0])

	pump(s, s.Submit("client", store.Fields{"name": "Ada", "email": "ada@example.com"}))
	calls := fs.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, call{op: "update", kind: "client", id: "rec-1", fields: store.Fields{"email": "ada@example.com"}}, calls[1],
		"only differing fields are sent")
}

func TestSynchronizer_DebounceCoalescing(t *testing.T) {
	fs := &fakeStore{}
	s, m := newTestSync(t, fs)
	s.Seed("term/0", "rec-9", store.Fields{"title": "Payment", "body": ""})

	c1 := s.Submit("term/0", store.Fields{"title": "Payment", "body": "N"})
	c2 := s.Submit("term/0", store.Fields{"title": "Payment", "body": "Ne"})
	c3 := s.Submit("term/0", store.Fields{"title": "Payment", "body": "Net 30"})
	assert.True(t, s.IsSaving("term/0"))
	assert.Equal(t, StatusQueued, s.Status("term/0"))

	pump(s, c1, c2, c3)

	calls := fs.Calls()
	require.Len(t, calls, 1, "three edits in one window produce one write")
	assert.Equal(t, "term", calls[0].kind)
	assert.Equal(t, "rec-9", calls[0].id)
	assert.Equal(t, store.Fields{"body": "Net 30"}, calls[0].fields)
	assert.False(t, s.IsSaving("term/0"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CoalescedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WritesTotal.WithLabelValues("update", "success")))
}

func TestSynchronizer_NoOpDiff(t *testing.T) {
	fs := &fakeStore{}
	s, m := newTestSync(t, fs)
	s.Seed("proposal", "p-1", store.Fields{"title": "Deck", "description": "Two rooms"})

	cmd := s.Submit("proposal", store.Fields{"title": "Deck", "description": "Two rooms"})
	assert.Nil(t, cmd)
	assert.Empty(t, fs.Calls())
	assert.Equal(t, StatusCommitted, s.Status("proposal"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedTotal))

	// a change that is reverted inside the window never reaches the store
	c1 := s.Submit("proposal", store.Fields{"title": "Deck 2", "description": "Two rooms"})
	c2 := s.Submit("proposal", store.Fields{"title": "Deck", "description": "Two rooms"})
	assert.Nil(t, c2)
	pump(s, c1)
	assert.Empty(t, fs.Calls())
	assert.False(t, s.IsSaving("proposal"))
}

func TestSynchronizer_SerializesInFlightWrites(t *testing.T) {
	fs := &fakeStore{}
	s, _ := newTestSync(t, fs)
	s.Seed("agreement", "a-1", store.Fields{"text": "v0"})

	// first write is started but its result is held back
	write1 := exec(s.Submit("agreement", store.Fields{"text": "v1"}))
	require.Len(t, write1, 1)
	_, w1 := s.HandleMessage(write1[0])
	require.NotNil(t, w1)
	assert.Equal(t, StatusInFlight, s.Status("agreement"))

	// a change during the write waits for it
	for _, msg := range exec(s.Submit("agreement", store.Fields{"text": "v2"})) {
		_, cmd := s.HandleMessage(msg)
		assert.Nil(t, cmd, "no second write while one is in flight")
	}
	res1 := exec(w1)
	require.Len(t, fs.Calls(), 1)

	pump(s, func() tea.Msg { return res1[0] })

	calls := fs.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, store.Fields{"text": "v1"}, calls[0].fields)
	assert.Equal(t, store.Fields{"text": "v2"}, calls[1].fields)
	assert.Equal(t, StatusCommitted, s.Status("agreement"))
}

func TestSynchronizer_InFlightChangeRevertedIsResent(t *testing.T) {
	fs := &fakeStore{}
	s, _ := newTestSync(t, fs)
	s.Seed("client", "c-1", store.Fields{"name": "A"})

	tick := exec(s.Submit("client", store.Fields{"name": "B"}))
	_, w1 := s.HandleMessage(tick[0])

	// back to the old remote value while B is on the wire
	tick2 := s.Submit("client", store.Fields{"name": "A"})
	require.NotNil(t, tick2)

	res := exec(w1)
	pump(s, tick2, func() tea.Msg { return res[0] })

	calls := fs.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, store.Fields{"name": "A"}, calls[1].fields, "last committed value wins")
}

func TestSynchronizer_FailureAndRetry(t *testing.T) {
	boom := &store.Error{Op: "update", Kind: "client", ID: "c-1", Err: store.ErrUnavailable}
	fs := &fakeStore{fail: boom}
	s, m := newTestSync(t, fs)
	s.Seed("client", "c-1", store.Fields{"name": "A"})

	out := pump(s, s.Submit("client", store.Fields{"name": "B"}))
	assert.Equal(t, StatusFailed, s.Status("client"))
	assert.ErrorIs(t, s.Err("client"), store.ErrUnavailable)
	assert.Equal(t, []string{"client"}, s.Failed())
	require.Len(t, out, 1)
	status := out[0].(StatusMsg)
	assert.Equal(t, StatusFailed, status.Status)
	assert.Error(t, status.Err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WritesTotal.WithLabelValues("update", "error")))
	assert.False(t, s.LastAttempt("client").IsZero())

	fs.mu.Lock()
	fs.fail = nil
	fs.mu.Unlock()

	pump(s, s.Retry("client"))
	assert.Equal(t, StatusCommitted, s.Status("client"))
	assert.NoError(t, s.Err("client"))
	calls := fs.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, store.Fields{"name": "B"}, calls[1].fields, "failed payload is re-diffed and re-sent")

	assert.Nil(t, s.Retry("client"), "nothing to retry")
}

func TestSynchronizer_FailureRetriedOnNextChange(t *testing.T) {
	fs := &fakeStore{fail: errors.New("offline")}
	s, _ := newTestSync(t, fs)

	pump(s, s.Submit("proposal", store.Fields{"title": "T"}))
	assert.Equal(t, StatusFailed, s.Status("proposal"))
	assert.Empty(t, s.RemoteID("proposal"))

	fs.mu.Lock()
	fs.fail = nil
	fs.mu.Unlock()

	pump(s, s.Submit("proposal", store.Fields{"title": "T2"}))
	calls := fs.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "create", calls[1].op)
	assert.Equal(t, store.Fields{"title": "T2"}, calls[1].fields)
	assert.Equal(t, StatusCommitted, s.Status("proposal"))
}

func TestSynchronizer_IndependentRecords(t *testing.T) {
	fs := &fakeStore{}
	s, _ := newTestSync(t, fs)
	s.Seed("client", "c-1", store.Fields{"name": "A"})
	s.Seed("agreement", "a-1", store.Fields{"text": "x"})

	c1 := exec(s.Submit("client", store.Fields{"name": "B"}))
	c2 := exec(s.Submit("agreement", store.Fields{"text": "y"}))
	_, w1 := s.HandleMessage(c1[0])
	_, w2 := s.HandleMessage(c2[0])
	require.NotNil(t, w1)
	require.NotNil(t, w2, "different records may be in flight together")
	assert.Equal(t, 2, s.Pending())

	pump(s, w1, w2)
	assert.Len(t, fs.Calls(), 2)
	assert.Equal(t, 0, s.Pending())
}

func TestSynchronizer_FlushAll(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, Options{Debounce: time.Hour})
	s.Seed("client", "c-1", store.Fields{"name": "A"})
	s.SetInterval("agreement", time.Hour)

	stale := s.Submit("client", store.Fields{"name": "B"})
	require.NotNil(t, stale)

	pump(s, s.FlushAll())
	require.Len(t, fs.Calls(), 1)
	assert.Equal(t, StatusCommitted, s.Status("client"))

	// the superseded timer is ignored when it finally fires
	handled, cmd := s.HandleMessage(DebounceMsg{Key: "client", Gen: 1})
	assert.True(t, handled)
	assert.Nil(t, cmd)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "term", KindOf("term/3"))
	assert.Equal(t, "element", KindOf("element/4:2"))
	assert.Equal(t, "client", KindOf("client"))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "in-flight", StatusInFlight.String())
	assert.Equal(t, "failed", StatusFailed.String())
}
