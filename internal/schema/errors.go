package schema

import "fmt"

// InvalidIdentifierError fires when a model or field name fails the
// `^[A-Za-z][A-Za-z0-9_]*$` check (spec §4.1). This is the sole defence
// against injection when model names reach a SQL-writing Store, so it is
// a fatal, non-recoverable parse error — never downgraded to a
// soft validation warning.
type InvalidIdentifierError struct {
	Kind  string // "model" or "field"
	Value string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("InvalidIdentifier: %s name %q is not a valid identifier", e.Kind, e.Value)
}

// UnresolvedRelationError fires when a relation's target does not name a
// model declared in the same schema (spec §4.1 resolution pass).
type UnresolvedRelationError struct {
	Model  string
	Field  string
	Target string
}

func (e *UnresolvedRelationError) Error() string {
	return fmt.Sprintf("UnresolvedRelation: %s.%s targets undeclared model %q", e.Model, e.Field, e.Target)
}

// ParseError wraps a lower-level grammar failure with the model/field
// context it occurred in.
type ParseError struct {
	Model string
	Field string
	Expr  string
	Msg   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schema: %s.%s (%q): %s", e.Model, e.Field, e.Expr, e.Msg)
}
