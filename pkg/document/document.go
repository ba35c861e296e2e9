// Package document wires the editing core together for one proposal: inline
// fields, formula editors, the pricing engine and the autosave synchronizer.
package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/pluqqy/proposal-cli/pkg/autosave"
	"github.com/pluqqy/proposal-cli/pkg/catalog"
	"github.com/pluqqy/proposal-cli/pkg/editable"
	"github.com/pluqqy/proposal-cli/pkg/formula"
	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
	"github.com/pluqqy/proposal-cli/pkg/store"
)

var (
	ErrUnknownControl    = errors.New("no such field")
	ErrActivationRefused = errors.New("field cannot be edited right now")
	ErrUnknownElement    = errors.New("element is not in the catalog")
	ErrUnknownModule     = errors.New("module is not in the catalog")
	ErrUnknownParameter  = errors.New("parameter is not in the catalog")
)

// PersistFunc writes the local copy of a proposal
type PersistFunc func(name string, p *models.Proposal) error

// Options configures a Document
type Options struct {
	Name     string
	Catalog  *catalog.Registry
	Store    store.RecordStore
	Settings *models.Settings
	Logger   *slog.Logger
	Metrics  *autosave.Metrics
	Persist  PersistFunc
}

// Document is the editing state of one proposal
type Document struct {
	name     string
	proposal *models.Proposal
	catalog  *catalog.Registry
	engine   *pricing.Engine
	sync     *autosave.Synchronizer
	session  *editable.Session
	settings *models.Settings
	logger   *slog.Logger
	persist  PersistFunc

	controls map[string]*control
	order    []string
	byField  map[*editable.Field]*control

	pending []tea.Cmd
}

// Open builds a document around p. A nil proposal starts a new one. Known
// remote records are read back through the store when it can read, so the
// first sync only sends what actually differs.
func Open(ctx context.Context, p *models.Proposal, opts Options) (*Document, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("document needs a catalog")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("document needs a record store")
	}
	settings := opts.Settings
	if settings == nil {
		settings = models.DefaultSettings()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if p == nil {
		p = &models.Proposal{ID: uuid.NewString()}
	}
	if p.RemoteIDs == nil {
		p.RemoteIDs = make(map[string]string)
	}

	d := &Document{
		name:     opts.Name,
		proposal: p,
		catalog:  opts.Catalog,
		engine:   pricing.NewEngine(logger),
		session:  editable.NewSession(settings.Editor.Exclusive, logger),
		settings: settings,
		logger:   logger,
		persist:  opts.Persist,
		controls: make(map[string]*control),
		byField:  make(map[*editable.Field]*control),
	}
	d.sync = autosave.New(opts.Store, autosave.Options{
		Debounce:     settings.Sync.GroupDebounce,
		WriteTimeout: settings.Sync.WriteTimeout,
		Logger:       logger,
		Metrics:      opts.Metrics,
	})
	d.sync.SetInterval(RecordAgreement, settings.Sync.DocumentDebounce)

	if err := d.engine.Load(p.Elements, p.GlobalMarkup); err != nil {
		return nil, fmt.Errorf("failed to load cost records: %w", err)
	}
	d.engine.OnChange(d.costChanged)

	d.buildControls()
	d.seedRemote(ctx, opts.Store)
	for _, key := range d.recordKeys() {
		d.submitIfContent(key)
	}

	return d, nil
}

func (d *Document) seedRemote(ctx context.Context, rs store.RecordStore) {
	reader, canRead := rs.(store.Reader)
	for _, key := range d.recordKeys() {
		id := d.proposal.RemoteIDs[key]
		if id == "" {
			continue
		}
		if !canRead {
			d.sync.Seed(key, id, nil)
			continue
		}
		rec, err := reader.GetRecord(ctx, autosave.KindOf(key), id)
		if err != nil {
			// everything is re-sent as an update
			d.logger.Warn("could not read remote record", "record", key, "id", id, "error", err)
			d.sync.Seed(key, id, nil)
			continue
		}
		d.sync.Seed(key, id, rec.Fields)
	}
}

// Name returns the proposal file name
func (d *Document) Name() string { return d.name }

// Proposal returns the local proposal, with cost records and override state
// copied in from the pricing engine
func (d *Document) Proposal() *models.Proposal {
	d.proposal.Elements = d.engine.Records()
	d.proposal.GlobalMarkup = d.engine.GlobalOverride()
	return d.proposal
}

// Engine exposes the pricing engine for read access
func (d *Document) Engine() *pricing.Engine { return d.engine }

// Sync exposes the synchronizer for status queries
func (d *Document) Sync() *autosave.Synchronizer { return d.sync }

// Catalog returns the catalog the document prices from
func (d *Document) Catalog() *catalog.Registry { return d.catalog }

// Cmd returns the commands queued by recent changes and clears the queue
func (d *Document) Cmd() tea.Cmd {
	if len(d.pending) == 0 {
		return nil
	}
	cmds := d.pending
	d.pending = nil
	return tea.Batch(cmds...)
}

// Update routes synchronizer messages. Newly created remote records are
// remembered in the local proposal.
func (d *Document) Update(msg tea.Msg) tea.Cmd {
	if status, ok := msg.(autosave.StatusMsg); ok {
		if status.RemoteID != "" && d.proposal.RemoteIDs[status.Key] != status.RemoteID {
			d.proposal.RemoteIDs[status.Key] = status.RemoteID
			d.save()
		}
		return nil
	}
	if handled, cmd := d.sync.HandleMessage(msg); handled {
		return cmd
	}
	return nil
}

// Retry resubmits a failed record
func (d *Document) Retry(record string) tea.Cmd {
	return d.sync.Retry(record)
}

// RetryFailed resubmits every failed record
func (d *Document) RetryFailed() tea.Cmd {
	var cmds []tea.Cmd
	for _, key := range d.sync.Failed() {
		cmds = append(cmds, d.sync.Retry(key))
	}
	return tea.Batch(cmds...)
}

// Flush commits every open draft and sends every queued record now
func (d *Document) Flush() tea.Cmd {
	if err := d.session.CommitAll(); err != nil {
		d.logger.Debug("flush left an invalid draft uncommitted", "error", err)
	}
	return tea.Batch(d.Cmd(), d.sync.FlushAll())
}

// Summary prices the document
func (d *Document) Summary() pricing.Summary {
	return d.engine.Summarize(pricing.NameLookup{
		Module:  d.catalog.ModuleName,
		Element: d.catalog.ElementName,
	})
}

// ParameterNames returns the selected parameter names in catalog order
func (d *Document) ParameterNames() []string {
	return d.catalog.SelectedNames(d.proposal.SelectedParameters)
}

// Lint checks both formulas of a cost record
func (d *Document) Lint(key models.CostKey) (material, labor []formula.Issue) {
	rec, ok := d.engine.Record(key)
	if !ok {
		return nil, nil
	}
	names := d.ParameterNames()
	return formula.Lint(rec.Formula, names), formula.Lint(rec.LaborFormula, names)
}

func (d *Document) submit(key string) {
	fields, ok := d.recordFields(key)
	if !ok {
		return
	}
	if cmd := d.sync.Submit(key, fields); cmd != nil {
		d.pending = append(d.pending, cmd)
	}
}

// submitIfContent skips records that were never created and hold nothing
func (d *Document) submitIfContent(key string) {
	fields, ok := d.recordFields(key)
	if !ok {
		return
	}
	if d.sync.RemoteID(key) == "" && !hasContent(fields) {
		return
	}
	d.submit(key)
}

func (d *Document) save() {
	if d.persist == nil {
		return
	}
	if err := d.persist(d.name, d.Proposal()); err != nil {
		d.logger.Warn("failed to write local proposal", "name", d.name, "error", err)
	}
}

// costChanged mirrors engine changes into the markup fields and the sync
// queue
func (d *Document) costChanged(rec models.ElementCostRecord) {
	key := rec.Key()
	if c, ok := d.controls[elementControlID(key, pricing.FieldMarkup)]; ok {
		c.field.SetValue(formatNumber(rec.Markup))
	}
	d.submit(ElementRecord(key))
}
