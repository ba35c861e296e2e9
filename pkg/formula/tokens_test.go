package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	names := []string{"area", "laborRate", "area_total"}

	tests := []struct {
		name   string
		text   string
		expect []Token
	}{
		{
			name: "params and free identifiers",
			text: "a_cost + laborRate",
			expect: []Token{
				{Start: 0, End: 6, Text: "a_cost"},
				{Start: 9, End: 18, Text: "laborRate", Param: true},
			},
		},
		{
			name: "longest name wins",
			text: "area_total*area",
			expect: []Token{
				{Start: 0, End: 10, Text: "area_total", Param: true},
				{Start: 11, End: 15, Text: "area", Param: true},
			},
		},
		{
			name:   "partial name is free text",
			text:   "area_tot",
			expect: []Token{{Start: 0, End: 8, Text: "area_tot"}},
		},
		{
			name:   "number literal hides trailing letters",
			text:   "2area + 1e3",
			expect: nil,
		},
		{
			name: "rune offsets after multibyte text",
			text: "€ area",
			expect: []Token{
				{Start: 2, End: 6, Text: "area", Param: true},
			},
		},
		{
			name:   "empty",
			text:   "",
			expect: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Tokenize(tt.text, names))
		})
	}
}

func TestReferences(t *testing.T) {
	names := []string{"area", "rate", "waste"}
	refs := References("area * rate + area * waste_pct", names)
	assert.Equal(t, []string{"area", "rate"}, refs)
}
