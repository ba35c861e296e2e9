package pricing

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pluqqy/proposal-cli/pkg/models"
)

func key(el, mod int) models.CostKey {
	return models.CostKey{ElementID: el, ModuleID: mod}
}

func seeded(t *testing.T, markups map[models.CostKey]float64) *Engine {
	t.Helper()
	e := NewEngine(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	for _, k := range []models.CostKey{key(1, 10), key(2, 10), key(1, 20), key(3, 20)} {
		m, ok := markups[k]
		if !ok {
			continue
		}
		_, err := e.AddElementToModule(models.Element{ID: k.ElementID, Name: "el", DefaultMarkup: m, MaterialCost: 100, LaborCost: 50}, k.ModuleID)
		require.NoError(t, err)
	}
	return e
}

func markupsOf(e *Engine) map[models.CostKey]float64 {
	out := make(map[models.CostKey]float64)
	for _, rec := range e.Records() {
		out[rec.Key()] = rec.Markup
	}
	return out
}

func TestEngine_AddElementToModule(t *testing.T) {
	e := NewEngine(nil)
	el := models.Element{ID: 7, Name: "Drywall", MaterialCost: 12.5, LaborCost: 30, DefaultMarkup: 18}

	rec, err := e.AddElementToModule(el, 1)
	require.NoError(t, err)
	assert.Equal(t, models.ElementCostRecord{ElementID: 7, ModuleID: 1, MaterialCost: 12.5, LaborCost: 30, Markup: 18}, rec)

	// same element in another module is a distinct record
	_, err = e.AddElementToModule(el, 2)
	require.NoError(t, err)

	_, err = e.AddElementToModule(el, 1)
	assert.ErrorIs(t, err, ErrDuplicateRecord)
	assert.Len(t, e.Records(), 2)
}

func TestEngine_OverrideRoundTrip(t *testing.T) {
	original := map[models.CostKey]float64{
		key(1, 10): 12.5,
		key(2, 10): 0,
		key(1, 20): 33.333,
		key(3, 20): -5,
	}
	e := seeded(t, original)

	e.SetGlobalOverride(true, 15)
	for k, m := range markupsOf(e) {
		assert.Equal(t, 15.0, m, "record %v", k)
	}

	e.SetGlobalOverride(false, 15)
	assert.Equal(t, original, markupsOf(e))
	assert.Empty(t, e.Snapshot())
}

func TestEngine_OverrideReapplication(t *testing.T) {
	original := map[models.CostKey]float64{key(1, 10): 10, key(2, 10): 25}
	e := seeded(t, original)

	e.SetGlobalOverride(true, 15)
	e.SetGlobalOverride(true, 20)

	for _, m := range markupsOf(e) {
		assert.Equal(t, 20.0, m)
	}
	assert.Equal(t, original, e.Snapshot(), "snapshot keeps pre-override values")

	// repeating the enable edge must not re-snapshot overridden values
	e.SetGlobalOverride(true, 20)
	assert.Equal(t, original, e.Snapshot())

	e.SetGlobalOverride(false, 20)
	assert.Equal(t, original, markupsOf(e))
}

func TestEngine_ElementAddedWhileOverrideEnabled(t *testing.T) {
	e := seeded(t, map[models.CostKey]float64{key(1, 10): 10})
	e.SetGlobalOverride(true, 22)

	rec, err := e.AddElementToModule(models.Element{ID: 9, DefaultMarkup: 5}, 10)
	require.NoError(t, err)
	assert.Equal(t, 22.0, rec.Markup, "new elements inherit the override value")
	_, inSnapshot := e.Snapshot()[key(9, 10)]
	assert.False(t, inSnapshot)

	e.SetGlobalOverride(false, 22)
	got, _ := e.Record(key(9, 10))
	assert.Equal(t, 22.0, got.Markup, "no snapshot entry, markup is kept")
	got, _ = e.Record(key(1, 10))
	assert.Equal(t, 10.0, got.Markup)
}

func TestEngine_UpdateField(t *testing.T) {
	e := seeded(t, map[models.CostKey]float64{key(1, 10): 10})

	require.NoError(t, e.UpdateField(key(1, 10), FieldFormula, "area * 2"))
	require.NoError(t, e.UpdateField(key(1, 10), FieldLaborFormula, "hours * laborRate"))
	require.NoError(t, e.UpdateField(key(1, 10), FieldMarkup, " 250 "))

	rec, ok := e.Record(key(1, 10))
	require.True(t, ok)
	assert.Equal(t, "area * 2", rec.Formula)
	assert.Equal(t, "hours * laborRate", rec.LaborFormula)
	assert.Equal(t, 250.0, rec.Markup, "markup is not clamped")

	assert.ErrorIs(t, e.UpdateField(key(1, 10), FieldMarkup, "lots"), ErrInvalidMarkup)
	assert.ErrorIs(t, e.UpdateField(key(1, 10), Field("unit"), "m2"), ErrUnknownField)

	e.SetGlobalOverride(true, 5)
	assert.ErrorIs(t, e.UpdateField(key(1, 10), FieldMarkup, "30"), ErrMarkupLocked)
	require.NoError(t, e.UpdateField(key(1, 10), FieldFormula, "area"), "formulas stay editable")
}

func TestEngine_UnknownRecordIsLogged(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(slog.New(slog.NewTextHandler(&buf, nil)))

	err := e.UpdateField(key(4, 2), FieldFormula, "x")
	assert.ErrorIs(t, err, ErrUnknownRecord)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "element_id=4")
	assert.Contains(t, buf.String(), "module_id=2")

	assert.ErrorIs(t, e.RemoveElementFromModule(key(4, 2)), ErrUnknownRecord)
	assert.ErrorIs(t, e.SetCosts(key(4, 2), 1, 1), ErrUnknownRecord)
}

func TestEngine_RemoveDropsSnapshotEntry(t *testing.T) {
	e := seeded(t, map[models.CostKey]float64{key(1, 10): 10, key(2, 10): 20, key(1, 20): 30})
	e.SetGlobalOverride(true, 50)

	require.NoError(t, e.RemoveElementFromModule(key(2, 10)))
	assert.NotContains(t, e.Snapshot(), key(2, 10))

	// index stays consistent after removal from the middle
	require.NoError(t, e.UpdateField(key(1, 20), FieldFormula, "f"))
	rec, _ := e.Record(key(1, 20))
	assert.Equal(t, "f", rec.Formula)

	e.SetGlobalOverride(false, 50)
	assert.Equal(t, map[models.CostKey]float64{key(1, 10): 10, key(1, 20): 30}, markupsOf(e))
}

func TestEngine_OnChange(t *testing.T) {
	e := seeded(t, map[models.CostKey]float64{key(1, 10): 10, key(2, 10): 15})
	var changed []models.CostKey
	e.OnChange(func(rec models.ElementCostRecord) { changed = append(changed, rec.Key()) })

	e.SetGlobalOverride(true, 15)
	assert.Equal(t, []models.CostKey{key(1, 10)}, changed, "records already at the value are untouched")

	changed = nil
	require.NoError(t, e.SetCosts(key(2, 10), 100, 50))
	assert.Empty(t, changed, "unchanged costs do not notify")
	require.NoError(t, e.SetCosts(key(2, 10), 120, 50))
	assert.Equal(t, []models.CostKey{key(2, 10)}, changed)
}

func TestEngine_LoadRestoresOverride(t *testing.T) {
	e := seeded(t, map[models.CostKey]float64{key(1, 10): 10, key(2, 10): 20})
	e.SetGlobalOverride(true, 40)
	persisted := e.GlobalOverride()
	records := e.Records()

	loaded := NewEngine(nil)
	require.NoError(t, loaded.Load(records, persisted))
	assert.Equal(t, e.Snapshot(), loaded.Snapshot())

	loaded.SetGlobalOverride(false, 40)
	assert.Equal(t, map[models.CostKey]float64{key(1, 10): 10, key(2, 10): 20}, markupsOf(loaded))

	dup := []models.ElementCostRecord{{ElementID: 1, ModuleID: 1}, {ElementID: 1, ModuleID: 1}}
	assert.ErrorIs(t, NewEngine(nil).Load(dup, models.GlobalMarkup{}), ErrDuplicateRecord)
}
