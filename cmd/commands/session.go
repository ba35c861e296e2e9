package commands

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pluqqy/proposal-cli/internal/cli"
	"github.com/pluqqy/proposal-cli/pkg/autosave"
	"github.com/pluqqy/proposal-cli/pkg/document"
	"github.com/pluqqy/proposal-cli/pkg/files"
	"github.com/pluqqy/proposal-cli/pkg/store"
)

// session is an opened proposal with the store it syncs to
type session struct {
	name     string
	doc      *document.Document
	store    store.Store
	registry *prometheus.Registry
	created  bool
}

// openSession opens a proposal for editing, creating it when missing
func openSession(ctx context.Context, cc *cli.CommandContext, name string) (*session, error) {
	settings, err := cc.LoadSettings()
	if err != nil {
		return nil, err
	}
	reg, err := cc.OpenCatalog()
	if err != nil {
		return nil, err
	}
	p, err := cc.LoadProposal(name, true)
	if err != nil {
		return nil, err
	}
	rs, err := cc.OpenStore(ctx)
	if err != nil {
		return nil, err
	}

	promReg := prometheus.NewRegistry()
	doc, err := document.Open(ctx, p, document.Options{
		Name:     name,
		Catalog:  reg,
		Store:    rs,
		Settings: settings,
		Logger:   cc.Logger,
		Metrics:  autosave.NewMetrics(promReg),
		Persist:  files.WriteProposal,
	})
	if err != nil {
		rs.Close()
		return nil, err
	}

	s := &session{name: name, doc: doc, store: rs, registry: promReg, created: p == nil}
	if s.created {
		if err := s.save(); err != nil {
			rs.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *session) save() error {
	if err := files.WriteProposal(s.name, s.doc.Proposal()); err != nil {
		return fmt.Errorf("failed to save proposal %q: %w", s.name, err)
	}
	return nil
}

// writeMetrics dumps the autosave metrics in the Prometheus text format
func (s *session) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// settle sends everything queued right away and processes write results
// until the document is quiet. Debounce timers are dropped; the flush
// supersedes them.
func (s *session) settle(logger *slog.Logger) []autosave.StatusMsg {
	_ = s.doc.Cmd()
	queue := runCmd(s.doc.Sync().FlushAll())

	var statuses []autosave.StatusMsg
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		if st, ok := msg.(autosave.StatusMsg); ok {
			statuses = append(statuses, st)
			logger.Debug("record settled", "record", st.Key, "status", st.Status.String())
		}
		queue = append(queue, runCmd(s.doc.Update(msg))...)
		_ = s.doc.Cmd()
	}
	return statuses
}

// runCmd executes cmd in place and flattens batches
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}
