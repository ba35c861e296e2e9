package models

// ParameterKind distinguishes numeric parameters from free-text ones
type ParameterKind string

const (
	ParameterKindNumber ParameterKind = "number"
	ParameterKindText   ParameterKind = "text"
)

// Module is a catalog grouping elements can be added to
type Module struct {
	ID   int    `yaml:"id" json:"id" validate:"gt=0"`
	Name string `yaml:"name" json:"name" validate:"required"`
}

// Element is a priced catalog item
type Element struct {
	ID            int     `yaml:"id" json:"id" validate:"gt=0"`
	Name          string  `yaml:"name" json:"name" validate:"required"`
	Unit          string  `yaml:"unit,omitempty" json:"unit,omitempty"`
	MaterialCost  float64 `yaml:"material_cost" json:"material_cost" validate:"gte=0"`
	LaborCost     float64 `yaml:"labor_cost" json:"labor_cost" validate:"gte=0"`
	DefaultMarkup float64 `yaml:"default_markup" json:"default_markup"`
}

// Parameter is a named value formulas may reference by name
type Parameter struct {
	ID     int           `yaml:"id" json:"id" validate:"gt=0"`
	Name   string        `yaml:"name" json:"name" validate:"required,paramname"`
	Kind   ParameterKind `yaml:"kind" json:"kind" validate:"oneof=number text"`
	Number float64       `yaml:"number,omitempty" json:"number,omitempty"`
	Text   string        `yaml:"text,omitempty" json:"text,omitempty"`
}

// Catalog is the read-only set of modules, elements and parameters
type Catalog struct {
	Modules    []Module    `yaml:"modules" json:"modules" validate:"dive"`
	Elements   []Element   `yaml:"elements" json:"elements" validate:"dive"`
	Parameters []Parameter `yaml:"parameters" json:"parameters" validate:"dive"`
}

// CostKey identifies an element placed in a module
type CostKey struct {
	ElementID int `yaml:"element_id" json:"element_id"`
	ModuleID  int `yaml:"module_id" json:"module_id"`
}

// ElementCostRecord holds the pricing inputs for one element in one module
type ElementCostRecord struct {
	ElementID    int     `yaml:"element_id" json:"element_id"`
	ModuleID     int     `yaml:"module_id" json:"module_id"`
	Formula      string  `yaml:"formula" json:"formula"`
	LaborFormula string  `yaml:"labor_formula" json:"labor_formula"`
	MaterialCost float64 `yaml:"material_cost" json:"material_cost"`
	LaborCost    float64 `yaml:"labor_cost" json:"labor_cost"`
	Markup       float64 `yaml:"markup" json:"markup"`
}

// Key returns the record's identity
func (r ElementCostRecord) Key() CostKey {
	return CostKey{ElementID: r.ElementID, ModuleID: r.ModuleID}
}

// ClientInfo is the client block printed on a proposal
type ClientInfo struct {
	Name    string `yaml:"name" json:"name"`
	Company string `yaml:"company" json:"company"`
	Email   string `yaml:"email" json:"email"`
	Phone   string `yaml:"phone" json:"phone"`
	Address string `yaml:"address" json:"address"`
}

// TermSection is one titled section of contract terms
type TermSection struct {
	Title string `yaml:"title" json:"title"`
	Body  string `yaml:"body" json:"body"`
}

// GlobalMarkup is the persisted state of the global markup override.
// Originals holds the pre-override markups while it is enabled.
type GlobalMarkup struct {
	Enabled   bool             `yaml:"enabled" json:"enabled"`
	Value     float64          `yaml:"value" json:"value"`
	Originals []MarkupOriginal `yaml:"originals,omitempty" json:"originals,omitempty"`
}

// MarkupOriginal is one snapshot entry of the global markup override
type MarkupOriginal struct {
	ElementID int     `yaml:"element_id" json:"element_id"`
	ModuleID  int     `yaml:"module_id" json:"module_id"`
	Markup    float64 `yaml:"markup" json:"markup"`
}

// Proposal is the document a user authors
type Proposal struct {
	ID                 string              `yaml:"id,omitempty" json:"id,omitempty"`
	Title              string              `yaml:"title" json:"title"`
	Description        string              `yaml:"description" json:"description"`
	Client             ClientInfo          `yaml:"client" json:"client"`
	ServiceAgreement   string              `yaml:"service_agreement" json:"service_agreement"`
	Terms              []TermSection       `yaml:"terms" json:"terms"`
	SelectedParameters []int               `yaml:"selected_parameters" json:"selected_parameters"`
	Elements           []ElementCostRecord `yaml:"elements" json:"elements"`
	GlobalMarkup       GlobalMarkup        `yaml:"global_markup" json:"global_markup"`

	// RemoteIDs maps logical sync record names to persistence ids
	RemoteIDs map[string]string `yaml:"remote_ids,omitempty" json:"remote_ids,omitempty"`
}
