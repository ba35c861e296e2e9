package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		caret     int
		wantStart int
		wantQuery string
	}{
		{"whole text", "are", 3, 0, "are"},
		{"after operator", "area * ra", 9, 7, "ra"},
		{"after paren", "(lab", 4, 1, "lab"},
		{"caret mid text", "area + rate", 2, 0, "ar"},
		{"trailing space", "area ", 5, 5, ""},
		{"right after operator", "area *", 6, 6, ""},
		{"caret clamped", "abc", 10, 0, "abc"},
		{"empty", "", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, query := Segment(tt.text, tt.caret)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantQuery, query)
		})
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"area", "laborRate", "rate", "wallArea"}

	tests := []struct {
		name  string
		text  string
		caret int
		want  []string
	}{
		{"substring match in catalog order", "are", 3, []string{"area", "wallArea"}},
		{"case insensitive", "RATE", 4, []string{"laborRate", "rate"}},
		{"empty segment clears", "area * ", 7, nil},
		{"no match", "area * 2", 8, nil},
		{
			name:  "used elsewhere excluded when not a prefix",
			text:  "laborRate + ate",
			caret: 15,
			want:  []string{"rate"},
		},
		{
			name:  "used elsewhere kept when query is a prefix",
			text:  "laborRate + lab",
			caret: 15,
			want:  []string{"laborRate"},
		},
		{
			name:  "token being retyped stays suggestible",
			text:  "area",
			caret: 4,
			want:  []string{"area", "wallArea"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Suggest(tt.text, tt.caret, names))
		})
	}
}

func TestAccept(t *testing.T) {
	text, caret := Accept("are", 3, "area")
	assert.Equal(t, "area", text)
	assert.Equal(t, 4, caret)

	text, caret = Accept("area * lab + 2", 10, "laborRate")
	assert.Equal(t, "area * laborRate + 2", text)
	assert.Equal(t, 16, caret)

	text, caret = Accept("(wa", 3, "wallArea")
	assert.Equal(t, "(wallArea", text)
	assert.Equal(t, 9, caret)
}
