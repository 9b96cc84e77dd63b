package schema

import "regexp"

// FieldType enumerates the normalised field kinds a ParsedField can take
// after DSL parsing (spec §3).
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeNumber    FieldType = "number"
	TypeBoolean   FieldType = "boolean"
	TypeJSON      FieldType = "json"
	TypeText      FieldType = "text"
	TypeTimestamp FieldType = "timestamp"
	TypeDate      FieldType = "date"
	TypeCUID      FieldType = "cuid"
	TypeUUID      FieldType = "uuid"
	TypeRelation  FieldType = "relation"
	TypeVector    FieldType = "vector"
)

// RelationDirection distinguishes a stored forward reference from a
// derived inverse one.
type RelationDirection string

const (
	RelationForward RelationDirection = "forward"
	RelationInverse RelationDirection = "inverse"
)

// Format annotates a string field with a semantic wire format.
type Format string

const (
	FormatURL      Format = "url"
	FormatEmail    Format = "email"
	FormatMarkdown Format = "markdown"
	FormatSlug     Format = "slug"
)

// Relation describes a forward or inverse relation field.
type Relation struct {
	Type         RelationDirection
	Target       string
	Many         bool
	InverseField string // optional
}

// VectorSpec describes a vector field's dimensionality.
type VectorSpec struct {
	Dimensions int
}

// ParsedField is a single column's full semantics (spec §3).
type ParsedField struct {
	Name     string
	Type     FieldType
	Required bool
	Unique   bool
	Indexed  bool
	Default  *Value

	Enum      []string
	Format    Format
	Precision int
	Scale     int
	Array     bool
	Vector    *VectorSpec
	Relation  *Relation
}

// ParsedModel is a single entity model (spec §3).
type ParsedModel struct {
	Name       string
	Singular   string
	Plural     string
	PrimaryKey string
	Fields     map[string]*ParsedField
	FieldOrder []string // declaration order, "id" field synthesised to the front if absent

	IDStrategy string // from $id metadata
	NameField  string // from $name metadata
}

// Field returns the named field, or nil.
func (m *ParsedModel) Field(name string) *ParsedField {
	return m.Fields[name]
}

// OrderedFields returns fields in declaration order (with the
// synthesised id field first, if one was synthesised).
func (m *ParsedModel) OrderedFields() []*ParsedField {
	out := make([]*ParsedField, 0, len(m.FieldOrder))
	for _, name := range m.FieldOrder {
		out = append(out, m.Fields[name])
	}
	return out
}

// StringFields returns the names of all string/text fields, used by the
// storage adapter's search() to build an OR-over-fields query.
func (m *ParsedModel) StringFields() []string {
	var out []string
	for _, name := range m.FieldOrder {
		f := m.Fields[name]
		if f.Type == TypeString || f.Type == TypeText {
			out = append(out, name)
		}
	}
	return out
}

// ParsedSchema is the full, ordered ModelName->ParsedModel mapping
// (spec §3). Every relation.target is guaranteed to resolve within it
// once Parse has returned successfully.
type ParsedSchema struct {
	Models     map[string]*ParsedModel
	ModelOrder []string
}

// Model returns the named model, or nil.
func (s *ParsedSchema) Model(name string) *ParsedModel {
	return s.Models[name]
}

// OrderedModels returns models in schema declaration order.
func (s *ParsedSchema) OrderedModels() []*ParsedModel {
	out := make([]*ParsedModel, 0, len(s.ModelOrder))
	for _, name := range s.ModelOrder {
		out = append(out, s.Models[name])
	}
	return out
}

// identifierPattern is the sole defence against injection when model or
// field names reach a SQL-writing Store: anything else is rejected at
// parse time with InvalidIdentifier.
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

func isValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}
