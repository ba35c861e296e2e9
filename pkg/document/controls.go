package document

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pluqqy/proposal-cli/pkg/autosave"
	"github.com/pluqqy/proposal-cli/pkg/editable"
	"github.com/pluqqy/proposal-cli/pkg/formula"
	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
)

// control is one editable surface of the document
type control struct {
	id     string
	label  string
	record string
	field  *editable.Field
	editor *formula.Editor
	markup bool
}

// View is what the presentation layer renders for one control
type View struct {
	ID        string
	Label     string
	Record    string
	Value     string
	Draft     string
	Multiline bool
	CommitKey string
	IsEditing bool
	IsSaving  bool
	Error     string

	SyncStatus autosave.Status

	// formula editors only
	IsFormula        bool
	Caret            int
	Suggestions      []string
	SuggestionCursor int
}

// OverrideControl edits the global markup override value
const OverrideControl = "markup.override"

func elementControlID(key models.CostKey, field pricing.Field) string {
	return fmt.Sprintf("%s.%s", ElementRecord(key), field)
}

func (d *Document) buildControls() {
	p := d.proposal

	d.addField("title", "Title", RecordProposal, editable.Config{Value: p.Title, Validate: editable.Required},
		func(v string) { d.proposal.Title = v })
	d.addField("description", "Description", RecordProposal, editable.Config{Value: p.Description, Multiline: true},
		func(v string) { d.proposal.Description = v })

	client := []struct {
		id, label string
		ptr       *string
	}{
		{"client.name", "Client", &p.Client.Name},
		{"client.company", "Company", &p.Client.Company},
		{"client.email", "Email", &p.Client.Email},
		{"client.phone", "Phone", &p.Client.Phone},
		{"client.address", "Address", &p.Client.Address},
	}
	for _, c := range client {
		ptr := c.ptr
		d.addField(c.id, c.label, RecordClient, editable.Config{Value: *ptr},
			func(v string) { *ptr = v })
	}

	d.addField("agreement", "Service agreement", RecordAgreement, editable.Config{Value: p.ServiceAgreement, Multiline: true},
		func(v string) { d.proposal.ServiceAgreement = v })

	for i := range p.Terms {
		d.addTermControls(i)
	}

	d.register(&control{
		id:     OverrideControl,
		label:  "Global markup %",
		record: RecordProposal,
		field: editable.New(editable.Config{
			Name:     OverrideControl,
			Value:    formatNumber(d.engine.GlobalOverride().Value),
			Validate: editable.Number,
			OnSave: func(value string, done func(error)) {
				v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
				if err == nil {
					d.engine.SetGlobalOverride(d.engine.GlobalOverride().Enabled, v)
					d.submit(RecordProposal)
					d.save()
				}
				done(err)
			},
		}),
	})

	for _, rec := range d.engine.Records() {
		d.addElementControls(rec)
	}
}

func (d *Document) addTermControls(i int) {
	record := TermRecord(i)
	term := d.proposal.Terms[i]
	d.addField(record+".title", fmt.Sprintf("Term %d", i+1), record, editable.Config{Value: term.Title},
		func(v string) { d.proposal.Terms[i].Title = v })
	d.addField(record+".body", fmt.Sprintf("Term %d text", i+1), record, editable.Config{Value: term.Body, Multiline: true},
		func(v string) { d.proposal.Terms[i].Body = v })
}

func (d *Document) addElementControls(rec models.ElementCostRecord) {
	key := rec.Key()
	record := ElementRecord(key)
	name := fmt.Sprintf("#%d", rec.ElementID)
	if el, ok := d.catalog.Element(rec.ElementID); ok {
		name = el.Name
	}

	for _, f := range []struct {
		field pricing.Field
		label string
		value string
	}{
		{pricing.FieldFormula, name + " formula", rec.Formula},
		{pricing.FieldLaborFormula, name + " labor formula", rec.LaborFormula},
	} {
		field := f.field
		ed := formula.NewEditor(editable.Config{
			Name:  elementControlID(key, field),
			Value: f.value,
			OnSave: func(value string, done func(error)) {
				err := d.engine.UpdateField(key, field, value)
				if err == nil {
					d.save()
				}
				done(err)
			},
		}, d.ParameterNames)
		d.register(&control{
			id:     elementControlID(key, field),
			label:  f.label,
			record: record,
			field:  ed.Field,
			editor: ed,
		})
	}

	var markup *editable.Field
	markup = editable.New(editable.Config{
		Name:     elementControlID(key, pricing.FieldMarkup),
		Value:    formatNumber(rec.Markup),
		Validate: editable.Number,
		OnSave: func(value string, done func(error)) {
			err := d.engine.UpdateField(key, pricing.FieldMarkup, value)
			if err == nil {
				d.save()
			}
			done(err)
			// show the engine's value, normalized or unchanged on rejection
			if cur, ok := d.engine.Record(key); ok {
				markup.SetValue(formatNumber(cur.Markup))
			}
		},
	})
	d.register(&control{
		id:     elementControlID(key, pricing.FieldMarkup),
		label:  name + " markup %",
		record: record,
		field:  markup,
		markup: true,
	})
}

// addField registers a plain text control whose committed value is applied
// with set and then queued for sync
func (d *Document) addField(id, label, record string, cfg editable.Config, set func(string)) {
	cfg.Name = id
	if cfg.Multiline && d.settings.Editor.MultilineCommit != "" {
		cfg.CommitKey = d.settings.Editor.MultilineCommit
	}
	cfg.OnSave = func(value string, done func(error)) {
		set(value)
		d.submit(record)
		d.save()
		done(nil)
	}
	d.register(&control{id: id, label: label, record: record, field: editable.New(cfg)})
}

func (d *Document) register(c *control) {
	d.session.Attach(c.field)
	d.controls[c.id] = c
	d.byField[c.field] = c
	d.order = append(d.order, c.id)
}

func (d *Document) unregister(id string) {
	c, ok := d.controls[id]
	if !ok {
		return
	}
	if c.field.IsEditing() {
		c.field.Cancel()
	}
	delete(d.controls, id)
	delete(d.byField, c.field)
	for i, oid := range d.order {
		if oid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// ControlIDs returns every control in display order
func (d *Document) ControlIDs() []string {
	return append([]string(nil), d.order...)
}

// Active returns the id of the control holding the edit session
func (d *Document) Active() (string, bool) {
	c := d.active()
	if c == nil {
		return "", false
	}
	return c.id, true
}

func (d *Document) active() *control {
	f := d.session.Active()
	if f == nil || !f.IsEditing() {
		return nil
	}
	return d.byField[f]
}

// Activate puts a control into editing mode. Markup is locked while the
// global override is enabled.
func (d *Document) Activate(id string) error {
	c, ok := d.controls[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownControl, id)
	}
	if c.markup && d.engine.GlobalOverride().Enabled {
		return pricing.ErrMarkupLocked
	}

	var entered bool
	if c.editor != nil {
		entered = c.editor.EnterEdit()
	} else {
		entered = c.field.EnterEdit()
	}
	if !entered {
		return fmt.Errorf("%w: %s", ErrActivationRefused, id)
	}
	return nil
}

// HandleKey routes a key press to the control being edited
func (d *Document) HandleKey(msg tea.KeyMsg) (bool, error) {
	c := d.active()
	if c == nil {
		return false, nil
	}
	if c.editor != nil {
		return c.editor.HandleKey(msg)
	}
	return c.field.HandleKey(msg)
}

// CancelActive discards the active draft. The cancel action is itself an
// interaction outside the text surface, so the outside commit is suppressed
// first.
func (d *Document) CancelActive() bool {
	c := d.active()
	if c == nil {
		return false
	}
	c.field.SuppressNextOutside()
	_ = d.session.PointerOutside()
	return c.field.Cancel()
}

// CommitActive commits the active draft
func (d *Document) CommitActive() error {
	c := d.active()
	if c == nil {
		return nil
	}
	return c.field.Commit()
}

// PointerOutside delivers a click or focus change outside the active control
func (d *Document) PointerOutside() error {
	return d.session.PointerOutside()
}

// View returns the render state of one control
func (d *Document) View(id string) (View, bool) {
	c, ok := d.controls[id]
	if !ok {
		return View{}, false
	}

	fv := c.field.View()
	v := View{
		ID:         c.id,
		Label:      c.label,
		Record:     c.record,
		Value:      fv.Value,
		Draft:      fv.Draft,
		Multiline:  c.field.Multiline(),
		CommitKey:  c.field.CommitKey(),
		IsEditing:  fv.IsEditing,
		IsSaving:   fv.IsSaving || d.sync.IsSaving(c.record),
		Error:      fv.Error,
		SyncStatus: d.sync.Status(c.record),
	}
	if v.Error == "" {
		if err := d.sync.Err(c.record); err != nil {
			v.Error = err.Error()
		}
	}
	if c.editor != nil {
		v.IsFormula = true
		v.Caret = c.editor.Caret()
		v.Suggestions = c.editor.Suggestions()
		v.SuggestionCursor = c.editor.SuggestionCursor()
	}
	return v, true
}
