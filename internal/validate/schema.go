// Package validate compiles a parsed model into a JSON Schema and
// validates create/update payloads against it (spec §4.4).
package validate

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/emergent-company/gatewayd/internal/schema"
)

// BuildSchema translates a ParsedModel into a JSON Schema document for
// write operations. The primary key appears as an optional string (the
// system assigns it when absent); inverse relations are omitted
// entirely (read-only); server-managed meta fields never appear.
func BuildSchema(m *schema.ParsedModel) *jsonschema.Schema {
	props := make(map[string]*jsonschema.Schema, len(m.FieldOrder))
	var required []string

	for _, f := range m.OrderedFields() {
		if f.Relation != nil && f.Relation.Type == schema.RelationInverse {
			continue
		}
		props[f.Name] = fieldSchema(f)
		if f.Name == m.PrimaryKey {
			continue
		}
		if f.Required && f.Default == nil {
			required = append(required, f.Name)
		}
	}
	sort.Strings(required)

	return &jsonschema.Schema{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

func fieldSchema(f *schema.ParsedField) *jsonschema.Schema {
	if f.Array {
		return &jsonschema.Schema{Type: "array", Items: scalarSchema(f)}
	}
	return scalarSchema(f)
}

func scalarSchema(f *schema.ParsedField) *jsonschema.Schema {
	s := &jsonschema.Schema{}

	switch f.Type {
	case schema.TypeString, schema.TypeText, schema.TypeCUID, schema.TypeUUID:
		s.Type = "string"
	case schema.TypeNumber:
		s.Type = "number"
	case schema.TypeBoolean:
		s.Type = "boolean"
	case schema.TypeJSON:
		// any shape permitted
	case schema.TypeTimestamp, schema.TypeDate:
		s.Type = "string"
		s.Format = "date-time"
	case schema.TypeRelation:
		if f.Relation != nil && f.Relation.Many {
			s.Type = "array"
			s.Items = &jsonschema.Schema{Type: "string"}
		} else {
			s.Type = "string"
		}
	case schema.TypeVector:
		s.Type = "array"
		s.Items = &jsonschema.Schema{Type: "number"}
	}

	switch f.Format {
	case schema.FormatEmail:
		s.Format = "email"
	case schema.FormatURL:
		s.Format = "uri"
	}

	if len(f.Enum) > 0 {
		s.Enum = make([]any, len(f.Enum))
		for i, e := range f.Enum {
			s.Enum[i] = e
		}
	}

	if f.Default != nil {
		if b, err := json.Marshal(f.Default.Native()); err == nil {
			s.Default = b
		}
	}

	return s
}

// FieldError is one payload validation failure.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ModelValidator holds the per-field resolved schemas for one model,
// compiled once at schema-load time. Validating field by field (rather
// than the whole object at once) is what lets failures come back as a
// complete []FieldError instead of the first violation alone (spec
// §4.4: "reported as a list, never as the first failure alone").
type ModelValidator struct {
	model    *schema.ParsedModel
	fields   map[string]*jsonschema.Resolved
	required []string
}

// NewModelValidator compiles every writable field's schema for m.
func NewModelValidator(m *schema.ParsedModel) (*ModelValidator, error) {
	v := &ModelValidator{
		model:  m,
		fields: make(map[string]*jsonschema.Resolved, len(m.FieldOrder)),
	}
	for _, f := range m.OrderedFields() {
		if f.Relation != nil && f.Relation.Type == schema.RelationInverse {
			continue
		}
		resolved, err := fieldSchema(f).Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("validate: compiling %s.%s: %w", m.Name, f.Name, err)
		}
		v.fields[f.Name] = resolved
		if f.Name != m.PrimaryKey && f.Required && f.Default == nil {
			v.required = append(v.required, f.Name)
		}
	}
	sort.Strings(v.required)
	return v, nil
}

// Validate checks payload against the model. With partial=false (create)
// every required field must be present; with partial=true (update) all
// fields are optional but type violations still fail. The payload is
// expected to already be stripped of meta-prefixed keys.
func (v *ModelValidator) Validate(payload map[string]any, partial bool) []FieldError {
	var errs []FieldError

	if !partial {
		for _, name := range v.required {
			if _, ok := payload[name]; !ok {
				errs = append(errs, FieldError{Field: name, Message: "is required"})
			}
		}
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		resolved, known := v.fields[k]
		if !known {
			errs = append(errs, FieldError{Field: k, Message: "unknown field"})
			continue
		}
		if payload[k] == nil {
			continue
		}
		if err := resolved.Validate(payload[k]); err != nil {
			errs = append(errs, FieldError{Field: k, Message: err.Error()})
		}
	}
	return errs
}

// Validate is the one-shot form used by tests and by callers that don't
// hold a compiled ModelValidator.
func Validate(m *schema.ParsedModel, payload map[string]any) ([]FieldError, error) {
	v, err := NewModelValidator(m)
	if err != nil {
		return nil, err
	}
	return v.Validate(payload, false), nil
}

// ValidatePartial is the one-shot update-payload form.
func ValidatePartial(m *schema.ParsedModel, payload map[string]any) ([]FieldError, error) {
	v, err := NewModelValidator(m)
	if err != nil {
		return nil, err
	}
	return v.Validate(payload, true), nil
}
