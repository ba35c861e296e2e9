package document

import (
	"fmt"

	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/pricing"
)

// AddElement places a catalog element in a module
func (d *Document) AddElement(elementID, moduleID int) (models.ElementCostRecord, error) {
	el, ok := d.catalog.Element(elementID)
	if !ok {
		return models.ElementCostRecord{}, fmt.Errorf("%w: %d", ErrUnknownElement, elementID)
	}
	if _, ok := d.catalog.Module(moduleID); !ok {
		return models.ElementCostRecord{}, fmt.Errorf("%w: %d", ErrUnknownModule, moduleID)
	}

	rec, err := d.engine.AddElementToModule(el, moduleID)
	if err != nil {
		return models.ElementCostRecord{}, err
	}
	d.addElementControls(rec)
	d.submit(RecordProposal)
	d.save()
	return rec, nil
}

// ElementControlID returns the id of the control editing one field of a
// cost record
func ElementControlID(key models.CostKey, field pricing.Field) string {
	return elementControlID(key, field)
}

// RemoveElement drops a cost record and its controls. The remote element
// record is left in place; the proposal record's element list no longer
// names it.
func (d *Document) RemoveElement(key models.CostKey) error {
	if err := d.engine.RemoveElementFromModule(key); err != nil {
		return err
	}
	for _, f := range []pricing.Field{pricing.FieldFormula, pricing.FieldLaborFormula, pricing.FieldMarkup} {
		d.unregister(elementControlID(key, f))
	}
	d.submit(RecordProposal)
	d.save()
	return nil
}

// SetGlobalOverride enables, changes or disables the global markup override
func (d *Document) SetGlobalOverride(enabled bool, value float64) {
	// a markup draft would fight the override
	if c := d.active(); c != nil && c.markup && enabled {
		d.CancelActive()
	}
	d.engine.SetGlobalOverride(enabled, value)
	if c, ok := d.controls[OverrideControl]; ok {
		c.field.SetValue(formatNumber(value))
	}
	d.submit(RecordProposal)
	d.save()
}

// ToggleGlobalOverride flips the override, keeping its value
func (d *Document) ToggleGlobalOverride() {
	gm := d.engine.GlobalOverride()
	d.SetGlobalOverride(!gm.Enabled, gm.Value)
}

// SetCosts stores evaluated material and labor figures for a record
func (d *Document) SetCosts(key models.CostKey, material, labor float64) error {
	if err := d.engine.SetCosts(key, material, labor); err != nil {
		return err
	}
	d.save()
	return nil
}

// SelectParameter makes a catalog parameter available to formulas
func (d *Document) SelectParameter(id int) error {
	if _, ok := d.catalog.Parameter(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownParameter, id)
	}
	for _, sel := range d.proposal.SelectedParameters {
		if sel == id {
			return nil
		}
	}
	d.proposal.SelectedParameters = append(d.proposal.SelectedParameters, id)
	d.submit(RecordProposal)
	d.save()
	return nil
}

// DeselectParameter removes a parameter from the selection. Formulas that
// use its name keep the text, which becomes free text.
func (d *Document) DeselectParameter(id int) {
	sel := d.proposal.SelectedParameters
	for i, existing := range sel {
		if existing == id {
			d.proposal.SelectedParameters = append(sel[:i:i], sel[i+1:]...)
			d.submit(RecordProposal)
			d.save()
			return
		}
	}
}

// AddTerm appends a term section and returns the id of its title control
func (d *Document) AddTerm(title string) string {
	d.proposal.Terms = append(d.proposal.Terms, models.TermSection{Title: title})
	i := len(d.proposal.Terms) - 1
	d.addTermControls(i)
	d.submitIfContent(TermRecord(i))
	d.save()
	return TermRecord(i) + ".title"
}
