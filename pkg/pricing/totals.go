package pricing

import (
	"fmt"

	"github.com/pluqqy/proposal-cli/pkg/models"
)

// ElementTotal is (material + labor) * (1 + markup/100)
func ElementTotal(rec models.ElementCostRecord) float64 {
	return (rec.MaterialCost + rec.LaborCost) * (1 + rec.Markup/100)
}

// Sum adds up the element totals of records
func Sum(records []models.ElementCostRecord) float64 {
	var total float64
	for _, rec := range records {
		total += ElementTotal(rec)
	}
	return total
}

// Line is one priced element in a summary
type Line struct {
	ElementID int     `json:"element_id" yaml:"element_id"`
	Element   string  `json:"element" yaml:"element"`
	Material  float64 `json:"material" yaml:"material"`
	Labor     float64 `json:"labor" yaml:"labor"`
	Markup    float64 `json:"markup" yaml:"markup"`
	Total     float64 `json:"total" yaml:"total"`
}

// ModuleSummary groups priced lines under a module
type ModuleSummary struct {
	ModuleID int     `json:"module_id" yaml:"module_id"`
	Module   string  `json:"module" yaml:"module"`
	Lines    []Line  `json:"lines" yaml:"lines"`
	Total    float64 `json:"total" yaml:"total"`
}

// Summary is the priced view of a proposal
type Summary struct {
	Modules    []ModuleSummary     `json:"modules" yaml:"modules"`
	Override   models.GlobalMarkup `json:"global_markup" yaml:"global_markup"`
	GrandTotal float64             `json:"grand_total" yaml:"grand_total"`
}

// Summarize prices every record, grouped by module in first-seen order.
// Names come from the catalog; unknown ids render as "#<id>".
func (e *Engine) Summarize(names NameLookup) Summary {
	s := Summary{Override: models.GlobalMarkup{Enabled: e.overrideEnabled, Value: e.overrideValue}}
	pos := make(map[int]int)
	for _, rec := range e.records {
		i, ok := pos[rec.ModuleID]
		if !ok {
			i = len(s.Modules)
			pos[rec.ModuleID] = i
			s.Modules = append(s.Modules, ModuleSummary{
				ModuleID: rec.ModuleID,
				Module:   names.moduleName(rec.ModuleID),
			})
		}
		line := Line{
			ElementID: rec.ElementID,
			Element:   names.elementName(rec.ElementID),
			Material:  rec.MaterialCost,
			Labor:     rec.LaborCost,
			Markup:    rec.Markup,
			Total:     ElementTotal(rec),
		}
		s.Modules[i].Lines = append(s.Modules[i].Lines, line)
		s.Modules[i].Total += line.Total
	}
	s.GrandTotal = e.GrandTotal()
	return s
}

// NameLookup resolves display names for summaries
type NameLookup struct {
	Module  func(id int) (string, bool)
	Element func(id int) (string, bool)
}

func (n NameLookup) moduleName(id int) string {
	return lookup(n.Module, id)
}

func (n NameLookup) elementName(id int) string {
	return lookup(n.Element, id)
}

func lookup(fn func(int) (string, bool), id int) string {
	if fn != nil {
		if name, ok := fn(id); ok {
			return name
		}
	}
	return fmt.Sprintf("#%d", id)
}
