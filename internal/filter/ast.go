// Package filter parses the gateway's operator-rich query strings into a
// canonical filter AST (spec §4.3) and matches documents against it.
package filter

import "github.com/emergent-company/gatewayd/internal/schema"

// Op enumerates the comparison operators a Leaf node can carry.
type Op string

const (
	OpEq     Op = "eq"
	OpNe     Op = "ne"
	OpGt     Op = "gt"
	OpGte    Op = "gte"
	OpLt     Op = "lt"
	OpLte    Op = "lte"
	OpIn     Op = "in"
	OpNin    Op = "nin"
	OpRegex  Op = "regex"
	OpExists Op = "exists"
)

// AST is the closed sum type for a parsed filter expression (spec §3, §9
// design note on tagged unions): exactly one of Leaf/And/Or/Not/Nor is
// populated per node.
type AST struct {
	Leaf *Leaf
	And  []*AST
	Or   []*AST
	Not  *AST
	Nor  []*AST
}

// Leaf is a single field comparison.
type Leaf struct {
	Field string
	Op    Op
	Value schema.Value // scalar for most ops; List for in/nin
}

// IsEmpty reports whether this AST is the zero-value "match everything"
// node (spec §3: "Empty AST matches everything").
func (a *AST) IsEmpty() bool {
	if a == nil {
		return true
	}
	return a.Leaf == nil && a.And == nil && a.Or == nil && a.Not == nil && a.Nor == nil
}

// LeafNode builds an AST wrapping a single Leaf.
func LeafNode(field string, op Op, value schema.Value) *AST {
	return &AST{Leaf: &Leaf{Field: field, Op: op, Value: value}}
}

// AndNode builds a conjunction node.
func AndNode(children ...*AST) *AST {
	return &AST{And: children}
}

// OrNode builds a disjunction node.
func OrNode(children ...*AST) *AST {
	return &AST{Or: children}
}

// NotNode builds a negation node.
func NotNode(child *AST) *AST {
	return &AST{Not: child}
}

// NorNode builds a "not any of" node.
func NorNode(children ...*AST) *AST {
	return &AST{Nor: children}
}
