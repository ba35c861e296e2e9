package document

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pluqqy/proposal-cli/pkg/models"
	"github.com/pluqqy/proposal-cli/pkg/store"
)

// Sync record keys. Term and element records are keyed per item.
const (
	RecordProposal  = "proposal"
	RecordClient    = "client"
	RecordAgreement = "agreement"
)

// TermRecord returns the sync key of the term section at index i
func TermRecord(i int) string {
	return fmt.Sprintf("term/%d", i)
}

// ElementRecord returns the sync key of a cost record
func ElementRecord(key models.CostKey) string {
	return fmt.Sprintf("element/%d:%d", key.ElementID, key.ModuleID)
}

func parseTermRecord(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "term/")
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	return i, err == nil && i >= 0
}

func parseElementRecord(key string) (models.CostKey, bool) {
	rest, ok := strings.CutPrefix(key, "element/")
	if !ok {
		return models.CostKey{}, false
	}
	elem, mod, ok := strings.Cut(rest, ":")
	if !ok {
		return models.CostKey{}, false
	}
	e, err1 := strconv.Atoi(elem)
	m, err2 := strconv.Atoi(mod)
	if err1 != nil || err2 != nil {
		return models.CostKey{}, false
	}
	return models.CostKey{ElementID: e, ModuleID: m}, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// recordKeys lists every sync record of the document
func (d *Document) recordKeys() []string {
	keys := []string{RecordProposal, RecordClient, RecordAgreement}
	for i := range d.proposal.Terms {
		keys = append(keys, TermRecord(i))
	}
	for _, rec := range d.engine.Records() {
		keys = append(keys, ElementRecord(rec.Key()))
	}
	return keys
}

// recordFields builds the full payload of one sync record from local state
func (d *Document) recordFields(key string) (store.Fields, bool) {
	p := d.proposal
	switch key {
	case RecordProposal:
		override := d.engine.GlobalOverride()
		return store.Fields{
			"title":          p.Title,
			"description":    p.Description,
			"markup_enabled": strconv.FormatBool(override.Enabled),
			"markup_value":   formatNumber(override.Value),
			"parameters":     joinInts(p.SelectedParameters),
			"elements":       d.elementList(),
		}, true
	case RecordClient:
		return store.Fields{
			"name":    p.Client.Name,
			"company": p.Client.Company,
			"email":   p.Client.Email,
			"phone":   p.Client.Phone,
			"address": p.Client.Address,
		}, true
	case RecordAgreement:
		return store.Fields{"text": p.ServiceAgreement}, true
	}

	if i, ok := parseTermRecord(key); ok {
		if i >= len(p.Terms) {
			return nil, false
		}
		return store.Fields{
			"position": strconv.Itoa(i),
			"title":    p.Terms[i].Title,
			"body":     p.Terms[i].Body,
		}, true
	}

	if ck, ok := parseElementRecord(key); ok {
		rec, found := d.engine.Record(ck)
		if !found {
			return nil, false
		}
		return store.Fields{
			"element_id":    strconv.Itoa(rec.ElementID),
			"module_id":     strconv.Itoa(rec.ModuleID),
			"formula":       rec.Formula,
			"labor_formula": rec.LaborFormula,
			"material_cost": formatNumber(rec.MaterialCost),
			"labor_cost":    formatNumber(rec.LaborCost),
			"markup":        formatNumber(rec.Markup),
		}, true
	}

	return nil, false
}

func (d *Document) elementList() string {
	recs := d.engine.Records()
	parts := make([]string, len(recs))
	for i, rec := range recs {
		parts[i] = fmt.Sprintf("%d:%d", rec.ElementID, rec.ModuleID)
	}
	return strings.Join(parts, ",")
}

func joinInts(ids []int) string {
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

func hasContent(fields store.Fields) bool {
	for _, v := range fields {
		if v != "" {
			return true
		}
	}
	return false
}
