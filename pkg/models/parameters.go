package models

import (
	"errors"
	"fmt"
	"strconv"
)

// Parameter-related errors
var (
	ErrEmptyParameterName     = errors.New("parameter name cannot be empty")
	ErrParameterNameTooLong   = errors.New("parameter name cannot exceed 64 characters")
	ErrInvalidParameterName   = errors.New("parameter name must be a bare identifier")
	ErrDuplicateParameterName = errors.New("parameter name is already used")
)

// IsIdentStart reports whether r may begin a parameter name
func IsIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

// IsIdentPart reports whether r may continue a parameter name
func IsIdentPart(r rune) bool {
	return IsIdentStart(r) || (r >= '0' && r <= '9')
}

// ValidateParameterName checks that name is a bare identifier
func ValidateParameterName(name string) error {
	if name == "" {
		return ErrEmptyParameterName
	}

	if len(name) > 64 {
		return ErrParameterNameTooLong
	}

	for i, r := range name {
		if i == 0 && !IsIdentStart(r) {
			return ErrInvalidParameterName
		}
		if !IsIdentPart(r) {
			return ErrInvalidParameterName
		}
	}

	return nil
}

// ValidateParameterNames checks every name and that names are unique
func ValidateParameterNames(params []Parameter) error {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if err := ValidateParameterName(p.Name); err != nil {
			return fmt.Errorf("parameter %d %q: %w", p.ID, p.Name, err)
		}
		if seen[p.Name] {
			return fmt.Errorf("parameter %d %q: %w", p.ID, p.Name, ErrDuplicateParameterName)
		}
		seen[p.Name] = true
	}
	return nil
}

// Value renders the parameter value for display
func (p Parameter) Value() string {
	if p.Kind == ParameterKindText {
		return p.Text
	}
	return strconv.FormatFloat(p.Number, 'f', -1, 64)
}
