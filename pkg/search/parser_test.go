package search

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple words",
			input:    "tile floor",
			expected: []string{"tile", "floor"},
		},
		{
			name:     "field with quoted value",
			input:    `name:"base cabinets" unit:lf`,
			expected: []string{`name:"base cabinets"`, "unit:lf"},
		},
		{
			name:     "extra spaces",
			input:    "  tile   OR  vanity ",
			expected: []string{"tile", "OR", "vanity"},
		},
		{
			name:     "empty",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := parser.tokenize(tt.input)
			if len(tokens) != len(tt.expected) {
				t.Fatalf("tokenize(%q) = %q, want %q", tt.input, tokens, tt.expected)
			}
			for i := range tokens {
				if tokens[i] != tt.expected[i] {
					t.Errorf("token[%d] = %q, want %q", i, tokens[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParse(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name       string
		query      string
		conditions []Condition
		logic      []Operator
		wantErr    bool
	}{
		{
			name:  "free text",
			query: "Tile",
			conditions: []Condition{
				{Field: FieldText, Operator: OperatorContains, Value: "tile"},
			},
		},
		{
			name:  "implicit AND",
			query: "type:element unit:SQFT",
			conditions: []Condition{
				{Field: FieldItemType, Operator: OperatorEquals, Value: "element"},
				{Field: FieldUnit, Operator: OperatorEquals, Value: "sqft"},
			},
			logic: []Operator{OperatorAND},
		},
		{
			name:  "OR and NOT",
			query: `name:tile OR NOT name:"vanity"`,
			conditions: []Condition{
				{Field: FieldName, Operator: OperatorContains, Value: "tile"},
				{Field: FieldName, Operator: OperatorContains, Value: "vanity", Negate: true},
			},
			logic: []Operator{OperatorOR},
		},
		{
			name:  "cost comparison",
			query: "cost:>99.5",
			conditions: []Condition{
				{Field: FieldCost, Operator: OperatorGreaterThan, Value: ">99.5", Number: 99.5},
			},
		},
		{
			name:       "half typed field is ignored",
			query:      "name:",
			conditions: nil,
		},
		{name: "unknown field", query: "color:red", wantErr: true},
		{name: "bad cost", query: "cost:lots", wantErr: true},
		{name: "leading operator", query: "OR tile", wantErr: true},
		{name: "dangling NOT", query: "tile NOT", wantErr: true},
		{name: "dangling OR", query: "tile OR", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parser.Parse(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.query, err)
			}
			if len(q.Conditions) != len(tt.conditions) {
				t.Fatalf("got %d conditions, want %d: %+v", len(q.Conditions), len(tt.conditions), q.Conditions)
			}
			for i, c := range q.Conditions {
				if c != tt.conditions[i] {
					t.Errorf("condition[%d] = %+v, want %+v", i, c, tt.conditions[i])
				}
			}
			if len(q.Logic) != len(tt.logic) {
				t.Fatalf("got logic %v, want %v", q.Logic, tt.logic)
			}
			for i := range q.Logic {
				if q.Logic[i] != tt.logic[i] {
					t.Errorf("logic[%d] = %s, want %s", i, q.Logic[i], tt.logic[i])
				}
			}
		})
	}
}
