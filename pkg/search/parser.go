package search

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FieldType represents the field a condition looks at
type FieldType string

const (
	FieldItemType FieldType = "type"
	FieldName     FieldType = "name"
	FieldUnit     FieldType = "unit"
	FieldKind     FieldType = "kind"
	FieldCost     FieldType = "cost"
	FieldText     FieldType = "text"
)

// Operator represents a comparison or logical operator
type Operator string

const (
	OperatorEquals      Operator = "="
	OperatorContains    Operator = "contains"
	OperatorGreaterThan Operator = ">"
	OperatorLessThan    Operator = "<"
	OperatorAND         Operator = "AND"
	OperatorOR          Operator = "OR"
)

// Condition represents a single search condition
type Condition struct {
	Field    FieldType
	Operator Operator
	Value    string
	Number   float64
	Negate   bool
}

// Query represents a parsed search query
type Query struct {
	Conditions []Condition
	Logic      []Operator // between consecutive conditions
	Raw        string
}

// Parser handles parsing of catalog queries
type Parser struct {
	fieldPattern  *regexp.Regexp
	quotedPattern *regexp.Regexp
	costPattern   *regexp.Regexp
}

// NewParser creates a new query parser
func NewParser() *Parser {
	return &Parser{
		fieldPattern:  regexp.MustCompile(`^(\w+):(.*)$`),
		quotedPattern: regexp.MustCompile(`^"([^"]*)"$`),
		costPattern:   regexp.MustCompile(`^([<>])(\d+(?:\.\d+)?)$`),
	}
}

// Parse parses a query like `type:element unit:sqft tile OR name:"vanity"`
func (p *Parser) Parse(input string) (*Query, error) {
	query := &Query{Raw: input}
	if err := p.parseTokens(p.tokenize(input), query); err != nil {
		return nil, err
	}
	return query, nil
}

// tokenize splits the input on spaces outside double quotes
func (p *Parser) tokenize(input string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			current.WriteRune(r)
		case r == ' ' && !inQuotes:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func (p *Parser) parseTokens(tokens []string, query *Query) error {
	negate := false
	pendingOp := Operator("")

	for _, token := range tokens {
		switch strings.ToUpper(token) {
		case "AND", "OR":
			if len(query.Conditions) == 0 {
				return fmt.Errorf("unexpected operator %s at beginning of query", token)
			}
			pendingOp = Operator(strings.ToUpper(token))
			continue
		case "NOT":
			negate = true
			continue
		}

		cond, err := p.parseCondition(token)
		if err != nil {
			return err
		}
		if cond == nil {
			continue
		}
		cond.Negate = negate
		negate = false

		if len(query.Conditions) > 0 {
			if pendingOp == "" {
				pendingOp = OperatorAND
			}
			query.Logic = append(query.Logic, pendingOp)
		}
		pendingOp = ""
		query.Conditions = append(query.Conditions, *cond)
	}

	if negate {
		return fmt.Errorf("NOT operator requires a condition")
	}
	if pendingOp != "" {
		return fmt.Errorf("%s operator requires a condition", pendingOp)
	}
	return nil
}

// parseCondition parses one token. A field with an empty value, e.g. a
// half-typed "name:", yields no condition.
func (p *Parser) parseCondition(token string) (*Condition, error) {
	matches := p.fieldPattern.FindStringSubmatch(token)
	if len(matches) != 3 {
		return &Condition{Field: FieldText, Operator: OperatorContains, Value: strings.ToLower(p.unquote(token))}, nil
	}

	field := strings.ToLower(matches[1])
	value := p.unquote(matches[2])
	if value == "" {
		return nil, nil
	}

	cond := &Condition{Value: strings.ToLower(value)}
	switch FieldType(field) {
	case FieldItemType, FieldKind, FieldUnit:
		cond.Field = FieldType(field)
		cond.Operator = OperatorEquals
	case FieldName:
		cond.Field = FieldName
		cond.Operator = OperatorContains
	case FieldCost:
		cond.Field = FieldCost
		m := p.costPattern.FindStringSubmatch(value)
		if len(m) != 3 {
			return nil, fmt.Errorf("invalid cost value: %s (expected format: >100, <25.5)", value)
		}
		cond.Operator = Operator(m[1])
		cond.Number, _ = strconv.ParseFloat(m[2], 64)
	default:
		return nil, fmt.Errorf("unknown field: %s", field)
	}
	return cond, nil
}

// unquote removes surrounding quotes if present
func (p *Parser) unquote(s string) string {
	if matches := p.quotedPattern.FindStringSubmatch(s); len(matches) == 2 {
		return matches[1]
	}
	return s
}
