// Package pricing owns the element cost records of a proposal and the
// global markup override. Totals are derived on every read.
package pricing

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pluqqy/proposal-cli/pkg/models"
)

var (
	ErrUnknownRecord   = errors.New("no cost record for element in module")
	ErrDuplicateRecord = errors.New("element already added to module")
	ErrMarkupLocked    = errors.New("markup is controlled by the global override")
	ErrInvalidMarkup   = errors.New("markup must be a number")
	ErrUnknownField    = errors.New("unknown cost field")
)

// Field names a user-editable part of a cost record
type Field string

const (
	FieldFormula      Field = "formula"
	FieldLaborFormula Field = "labor_formula"
	FieldMarkup       Field = "markup"
)

// ChangeFunc is called after a record changes. It is not called for
// records that were removed.
type ChangeFunc func(rec models.ElementCostRecord)

// Engine holds the authoritative cost records. It is not safe for
// concurrent use; callers sequence mutations through one event loop.
type Engine struct {
	records []models.ElementCostRecord
	index   map[models.CostKey]int

	overrideEnabled bool
	overrideValue   float64
	snapshot        map[models.CostKey]float64

	onChange ChangeFunc
	logger   *slog.Logger
}

// NewEngine creates an empty engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		index:    make(map[models.CostKey]int),
		snapshot: make(map[models.CostKey]float64),
		logger:   logger,
	}
}

// Load replaces the engine state with persisted records and override. When
// the override is enabled, records without a persisted original snapshot
// their current markup.
func (e *Engine) Load(records []models.ElementCostRecord, override models.GlobalMarkup) error {
	e.records = nil
	e.index = make(map[models.CostKey]int, len(records))
	e.snapshot = make(map[models.CostKey]float64)
	e.overrideEnabled = false
	e.overrideValue = override.Value

	for _, rec := range records {
		key := rec.Key()
		if _, exists := e.index[key]; exists {
			return fmt.Errorf("load element %d in module %d: %w", key.ElementID, key.ModuleID, ErrDuplicateRecord)
		}
		e.index[key] = len(e.records)
		e.records = append(e.records, rec)
	}

	if override.Enabled {
		e.overrideEnabled = true
		originals := make(map[models.CostKey]float64, len(override.Originals))
		for _, o := range override.Originals {
			originals[models.CostKey{ElementID: o.ElementID, ModuleID: o.ModuleID}] = o.Markup
		}
		for i := range e.records {
			key := e.records[i].Key()
			if orig, ok := originals[key]; ok {
				e.snapshot[key] = orig
			} else {
				e.snapshot[key] = e.records[i].Markup
			}
			e.records[i].Markup = override.Value
		}
	}
	return nil
}

// OnChange registers the change listener
func (e *Engine) OnChange(fn ChangeFunc) { e.onChange = fn }

// AddElementToModule places a catalog element in a module. While the
// global override is enabled the new record takes the override value and
// gets no snapshot entry, so it keeps that markup when the override is
// disabled.
func (e *Engine) AddElementToModule(el models.Element, moduleID int) (models.ElementCostRecord, error) {
	key := models.CostKey{ElementID: el.ID, ModuleID: moduleID}
	if _, exists := e.index[key]; exists {
		return models.ElementCostRecord{}, fmt.Errorf("add element %d to module %d: %w", el.ID, moduleID, ErrDuplicateRecord)
	}

	rec := models.ElementCostRecord{
		ElementID:    el.ID,
		ModuleID:     moduleID,
		MaterialCost: el.MaterialCost,
		LaborCost:    el.LaborCost,
		Markup:       el.DefaultMarkup,
	}
	if e.overrideEnabled {
		rec.Markup = e.overrideValue
	}

	e.index[key] = len(e.records)
	e.records = append(e.records, rec)
	e.notify(rec)
	return rec, nil
}

// RemoveElementFromModule drops a record and its snapshot entry
func (e *Engine) RemoveElementFromModule(key models.CostKey) error {
	i, ok := e.index[key]
	if !ok {
		return e.unknown("remove", key)
	}

	e.records = append(e.records[:i], e.records[i+1:]...)
	delete(e.index, key)
	delete(e.snapshot, key)
	for j := i; j < len(e.records); j++ {
		e.index[e.records[j].Key()] = j
	}
	return nil
}

// UpdateField sets a formula or the markup of one record. Markup text must
// parse as a number; it is not clamped.
func (e *Engine) UpdateField(key models.CostKey, field Field, value string) error {
	i, ok := e.index[key]
	if !ok {
		return e.unknown("update", key)
	}

	rec := &e.records[i]
	switch field {
	case FieldFormula:
		rec.Formula = value
	case FieldLaborFormula:
		rec.LaborFormula = value
	case FieldMarkup:
		if e.overrideEnabled {
			return ErrMarkupLocked
		}
		markup, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidMarkup, value)
		}
		rec.Markup = markup
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	e.notify(*rec)
	return nil
}

// SetCosts records computed material and labor figures for one record
func (e *Engine) SetCosts(key models.CostKey, material, labor float64) error {
	i, ok := e.index[key]
	if !ok {
		return e.unknown("set costs", key)
	}
	rec := &e.records[i]
	if rec.MaterialCost == material && rec.LaborCost == labor {
		return nil
	}
	rec.MaterialCost = material
	rec.LaborCost = labor
	e.notify(*rec)
	return nil
}

// SetGlobalOverride applies the override state. Transitions are detected
// against the previous state: enabling snapshots every markup once, a value
// change while enabled reapplies without touching the snapshot, and
// disabling restores snapshotted markups and drains the snapshot.
func (e *Engine) SetGlobalOverride(enabled bool, value float64) {
	wasEnabled := e.overrideEnabled
	prevValue := e.overrideValue
	e.overrideEnabled = enabled
	e.overrideValue = value

	switch {
	case enabled && !wasEnabled:
		for i := range e.records {
			e.snapshot[e.records[i].Key()] = e.records[i].Markup
		}
		e.applyOverride()
	case enabled && wasEnabled:
		if value != prevValue {
			e.applyOverride()
		}
	case !enabled && wasEnabled:
		for i := range e.records {
			key := e.records[i].Key()
			orig, ok := e.snapshot[key]
			if !ok {
				continue
			}
			if e.records[i].Markup != orig {
				e.records[i].Markup = orig
				e.notify(e.records[i])
			}
		}
		e.snapshot = make(map[models.CostKey]float64)
	}
}

func (e *Engine) applyOverride() {
	for i := range e.records {
		if e.records[i].Markup == e.overrideValue {
			continue
		}
		e.records[i].Markup = e.overrideValue
		e.notify(e.records[i])
	}
}

// GlobalOverride returns the current override state with its snapshot in
// record order
func (e *Engine) GlobalOverride() models.GlobalMarkup {
	gm := models.GlobalMarkup{Enabled: e.overrideEnabled, Value: e.overrideValue}
	for _, rec := range e.records {
		if orig, ok := e.snapshot[rec.Key()]; ok {
			gm.Originals = append(gm.Originals, models.MarkupOriginal{
				ElementID: rec.ElementID,
				ModuleID:  rec.ModuleID,
				Markup:    orig,
			})
		}
	}
	return gm
}

// Snapshot returns a copy of the pre-override markups
func (e *Engine) Snapshot() map[models.CostKey]float64 {
	out := make(map[models.CostKey]float64, len(e.snapshot))
	for k, v := range e.snapshot {
		out[k] = v
	}
	return out
}

// Record returns one record by key
func (e *Engine) Record(key models.CostKey) (models.ElementCostRecord, bool) {
	i, ok := e.index[key]
	if !ok {
		return models.ElementCostRecord{}, false
	}
	return e.records[i], true
}

// Records returns a copy of all records in insertion order
func (e *Engine) Records() []models.ElementCostRecord {
	out := make([]models.ElementCostRecord, len(e.records))
	copy(out, e.records)
	return out
}

// ModuleRecords returns the records placed in one module
func (e *Engine) ModuleRecords(moduleID int) []models.ElementCostRecord {
	var out []models.ElementCostRecord
	for _, rec := range e.records {
		if rec.ModuleID == moduleID {
			out = append(out, rec)
		}
	}
	return out
}

// ModuleTotal sums the element totals of one module
func (e *Engine) ModuleTotal(moduleID int) float64 {
	return Sum(e.ModuleRecords(moduleID))
}

// GrandTotal sums every element total
func (e *Engine) GrandTotal() float64 {
	return Sum(e.records)
}

func (e *Engine) unknown(op string, key models.CostKey) error {
	e.logger.Warn("cost record not found",
		"op", op,
		"element_id", key.ElementID,
		"module_id", key.ModuleID)
	return fmt.Errorf("%s element %d in module %d: %w", op, key.ElementID, key.ModuleID, ErrUnknownRecord)
}

func (e *Engine) notify(rec models.ElementCostRecord) {
	if e.onChange != nil {
		e.onChange(rec)
	}
}
