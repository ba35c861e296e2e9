package formula

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

// IssueKind classifies a lint finding
type IssueKind string

const (
	IssueSyntax  IssueKind = "syntax"
	IssueUnknown IssueKind = "unknown-parameter"
)

// Issue is an advisory finding about formula text. Issues never block a
// commit; formulas are evaluated elsewhere.
type Issue struct {
	Kind    IssueKind `json:"kind" yaml:"kind"`
	Name    string    `json:"name,omitempty" yaml:"name,omitempty"`
	Message string    `json:"message" yaml:"message"`
}

// Lint parses text as an arithmetic expression and reports syntax problems
// and identifiers that are not selected parameters.
func Lint(text string, names []string) []Issue {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tree, err := parser.Parse(text)
	if err != nil {
		return []Issue{{Kind: IssueSyntax, Message: firstLine(err.Error())}}
	}

	v := &identVisitor{callees: make(map[string]bool)}
	ast.Walk(&tree.Node, v)

	known := nameSet(names)
	seen := make(map[string]bool)
	var issues []Issue
	for _, id := range v.idents {
		if known[id] || v.callees[id] || seen[id] {
			continue
		}
		seen[id] = true
		issues = append(issues, Issue{
			Kind:    IssueUnknown,
			Name:    id,
			Message: fmt.Sprintf("%q is not a selected parameter", id),
		})
	}
	return issues
}

type identVisitor struct {
	idents  []string
	callees map[string]bool
}

func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.idents = append(v.idents, n.Value)
	case *ast.CallNode:
		if id, ok := n.Callee.(*ast.IdentifierNode); ok {
			v.callees[id.Value] = true
		}
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
