package models

import (
	"errors"
	"testing"
)

func TestValidateParameterName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"simple", "area", nil},
		{"camel case", "laborRate", nil},
		{"underscore prefix", "_base", nil},
		{"digits inside", "a_cost2", nil},
		{"empty", "", ErrEmptyParameterName},
		{"leading digit", "2area", ErrInvalidParameterName},
		{"space", "labor rate", ErrInvalidParameterName},
		{"operator", "a+b", ErrInvalidParameterName},
		{"too long", "a_very_long_parameter_name_that_keeps_going_and_going_past_the_limit", ErrParameterNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameterName(tt.input)
			if err != tt.wantErr {
				t.Errorf("ValidateParameterName(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateParameterNames(t *testing.T) {
	params := []Parameter{
		{ID: 1, Name: "area", Kind: ParameterKindNumber},
		{ID: 2, Name: "rate", Kind: ParameterKindNumber},
	}
	if err := ValidateParameterNames(params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params = append(params, Parameter{ID: 3, Name: "area", Kind: ParameterKindText})
	err := ValidateParameterNames(params)
	if !errors.Is(err, ErrDuplicateParameterName) {
		t.Errorf("expected duplicate name error, got %v", err)
	}
}

func TestParameterValue(t *testing.T) {
	num := Parameter{Name: "area", Kind: ParameterKindNumber, Number: 120}
	if got := num.Value(); got != "120" {
		t.Errorf("Value() = %q, want %q", got, "120")
	}

	text := Parameter{Name: "finish", Kind: ParameterKindText, Text: "matte"}
	if got := text.Value(); got != "matte" {
		t.Errorf("Value() = %q, want %q", got, "matte")
	}
}
