// Package search filters the catalog with small field queries such as
// `type:element unit:sqft` or `cost:>100 NOT name:tile`.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pluqqy/proposal-cli/pkg/models"
)

// ItemType is the kind of catalog entry
type ItemType string

const (
	ItemTypeModule    ItemType = "module"
	ItemTypeElement   ItemType = "element"
	ItemTypeParameter ItemType = "parameter"
)

// Item is one searchable catalog entry
type Item struct {
	Type ItemType `json:"type" yaml:"type"`
	ID   int      `json:"id" yaml:"id"`
	Name string   `json:"name" yaml:"name"`
	Unit string   `json:"unit,omitempty" yaml:"unit,omitempty"`
	Kind string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Cost is material plus labor for elements
	Cost float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
	Text string  `json:"text,omitempty" yaml:"text,omitempty"`
}

// Result is a matching item with its relevance score
type Result struct {
	Item  Item    `json:"item" yaml:"item"`
	Score float64 `json:"score" yaml:"score"`
}

// Engine holds an index over one catalog
type Engine struct {
	items     []Item
	typeIndex map[ItemType][]int
	parser    *Parser
}

// NewEngine indexes every module, element and parameter of c
func NewEngine(c models.Catalog) *Engine {
	e := &Engine{
		typeIndex: make(map[ItemType][]int),
		parser:    NewParser(),
	}
	for _, m := range c.Modules {
		e.add(Item{Type: ItemTypeModule, ID: m.ID, Name: m.Name})
	}
	for _, el := range c.Elements {
		e.add(Item{
			Type: ItemTypeElement,
			ID:   el.ID,
			Name: el.Name,
			Unit: el.Unit,
			Cost: el.MaterialCost + el.LaborCost,
		})
	}
	for _, p := range c.Parameters {
		e.add(Item{Type: ItemTypeParameter, ID: p.ID, Name: p.Name, Kind: string(p.Kind), Text: p.Text})
	}
	return e
}

func (e *Engine) add(item Item) {
	e.typeIndex[item.Type] = append(e.typeIndex[item.Type], len(e.items))
	e.items = append(e.items, item)
}

// Search returns the items matching query, best first. An empty query
// matches everything in catalog order.
func (e *Engine) Search(queryStr string) ([]Result, error) {
	query, err := e.parser.Parse(queryStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	var results []Result
	for i, item := range e.items {
		if !e.matches(item, query) {
			continue
		}
		results = append(results, Result{Item: e.items[i], Score: score(item, query)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// Match reports which ids of one item type satisfy query
func (e *Engine) Match(queryStr string, typ ItemType) (map[int]bool, error) {
	query, err := e.parser.Parse(queryStr)
	if err != nil {
		return nil, err
	}
	ids := make(map[int]bool)
	for _, idx := range e.typeIndex[typ] {
		if e.matches(e.items[idx], query) {
			ids[e.items[idx].ID] = true
		}
	}
	return ids, nil
}

func (e *Engine) matches(item Item, query *Query) bool {
	if len(query.Conditions) == 0 {
		return true
	}
	result := evaluate(item, query.Conditions[0])
	for i := 1; i < len(query.Conditions); i++ {
		next := evaluate(item, query.Conditions[i])
		switch query.Logic[i-1] {
		case OperatorOR:
			result = result || next
		default:
			result = result && next
		}
	}
	return result
}

func evaluate(item Item, c Condition) bool {
	var ok bool
	switch c.Field {
	case FieldItemType:
		ok = string(item.Type) == c.Value
	case FieldKind:
		ok = strings.ToLower(item.Kind) == c.Value
	case FieldUnit:
		ok = strings.ToLower(item.Unit) == c.Value
	case FieldName:
		ok = strings.Contains(strings.ToLower(item.Name), c.Value)
	case FieldCost:
		if item.Type != ItemTypeElement {
			return false
		}
		if c.Operator == OperatorGreaterThan {
			ok = item.Cost > c.Number
		} else {
			ok = item.Cost < c.Number
		}
	case FieldText:
		ok = strings.Contains(strings.ToLower(item.Name), c.Value) ||
			strings.Contains(strings.ToLower(item.Unit), c.Value) ||
			strings.Contains(strings.ToLower(item.Text), c.Value)
	}
	if c.Negate {
		return !ok
	}
	return ok
}

// score boosts exact and prefix name matches
func score(item Item, query *Query) float64 {
	s := 1.0
	name := strings.ToLower(item.Name)
	for _, c := range query.Conditions {
		if c.Negate || (c.Field != FieldName && c.Field != FieldText) {
			continue
		}
		switch {
		case name == c.Value:
			s += 2.0
		case strings.HasPrefix(name, c.Value):
			s += 1.0
		}
	}
	return s
}
