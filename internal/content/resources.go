package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emergent-company/gatewayd/internal/mcp"
	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/validate"
)

// --- gatewayd://models resource ---

// ModelCatalogResource exposes the full loaded schema as a reference
// resource. LLMs can read this to understand which collections exist
// before calling the REST surface.
type ModelCatalogResource struct {
	APIName string
	Schema  *schema.ParsedSchema
}

func (r *ModelCatalogResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "gatewayd://models",
		Name:        "Model Catalog",
		Description: "Every model this gateway serves: collection paths, primary keys, and field summaries",
		MimeType:    "text/markdown",
	}
}

func (r *ModelCatalogResource) Read() (*mcp.ResourcesReadResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s — Model Catalog\n\n", r.APIName)
	fmt.Fprintf(&b, "| Model | Collection | Primary key | Fields |\n")
	fmt.Fprintf(&b, "|---|---|---|---|\n")
	for _, m := range r.Schema.OrderedModels() {
		fmt.Fprintf(&b, "| %s | /%s | %s | %d |\n", m.Name, m.Plural, m.PrimaryKey, len(m.FieldOrder))
	}
	b.WriteString("\nRead gatewayd://models/{collection} for one model's full field reference.\n")

	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "gatewayd://models",
				MimeType: "text/markdown",
				Text:     b.String(),
			},
		},
	}, nil
}

// --- gatewayd://models/{collection} resources ---

// ModelResource exposes one model's field reference plus its write
// JSON Schema, one resource per collection.
type ModelResource struct {
	Model *schema.ParsedModel
}

// NewModelResource builds the reference resource for one model.
func NewModelResource(m *schema.ParsedModel) *ModelResource {
	return &ModelResource{Model: m}
}

func (r *ModelResource) uri() string {
	return "gatewayd://models/" + r.Model.Plural
}

func (r *ModelResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         r.uri(),
		Name:        r.Model.Name + " Reference",
		Description: fmt.Sprintf("Field reference and write schema for the %s collection (/%s)", r.Model.Name, r.Model.Plural),
		MimeType:    "text/markdown",
	}
}

func (r *ModelResource) Read() (*mcp.ResourcesReadResult, error) {
	m := r.Model

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", m.Name)
	fmt.Fprintf(&b, "Collection path: `/%s` — primary key: `%s`\n\n", m.Plural, m.PrimaryKey)
	fmt.Fprintf(&b, "| Field | Type | Required | Unique | Notes |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	for _, f := range m.OrderedFields() {
		fmt.Fprintf(&b, "| %s | %s | %v | %v | %s |\n", f.Name, f.Type, f.Required, f.Unique, fieldNotes(f))
	}

	if js, err := json.MarshalIndent(validate.BuildSchema(m), "", "  "); err == nil {
		b.WriteString("\n## Write schema\n\n```json\n")
		b.Write(js)
		b.WriteString("\n```\n")
	}

	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      r.uri(),
				MimeType: "text/markdown",
				Text:     b.String(),
			},
		},
	}, nil
}

func fieldNotes(f *schema.ParsedField) string {
	var notes []string
	if len(f.Enum) > 0 {
		notes = append(notes, "enum: "+strings.Join(f.Enum, "|"))
	}
	if f.Format != "" {
		notes = append(notes, "format: "+string(f.Format))
	}
	if f.Relation != nil {
		arrow := "->"
		if f.Relation.Type == schema.RelationInverse {
			arrow = "<-"
		}
		rel := arrow + " " + f.Relation.Target
		if f.Relation.Many {
			rel += "[]"
		}
		notes = append(notes, rel)
	}
	if f.Vector != nil {
		notes = append(notes, fmt.Sprintf("vector[%d]", f.Vector.Dimensions))
	}
	if f.Default != nil {
		notes = append(notes, "default: "+f.Default.String())
	}
	return strings.Join(notes, ", ")
}
