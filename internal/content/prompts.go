// Package content provides the MCP prompts and resources gatewayd
// derives from its loaded schema: a usage-guide prompt plus per-model
// reference resources.
package content

import (
	"fmt"
	"strings"

	"github.com/emergent-company/gatewayd/internal/mcp"
	"github.com/emergent-company/gatewayd/internal/schema"
)

// GuidePrompt walks a client through the gateway's REST conventions and
// the collections the loaded schema exposes. An optional "model"
// argument focuses the guide on one collection.
type GuidePrompt struct {
	APIName string
	Schema  *schema.ParsedSchema
}

func (p *GuidePrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "gateway-guide",
		Description: "Usage guide for this gateway: REST conventions, filter operators, and the available collections",
		Arguments: []mcp.PromptArgument{
			{
				Name:        "model",
				Description: "Focus the guide on one model (PascalCase name or plural collection)",
			},
		},
	}
}

func (p *GuidePrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	if want := arguments["model"]; want != "" {
		m := p.findModel(want)
		if m == nil {
			return nil, fmt.Errorf("unknown model %q", want)
		}
		return &mcp.PromptsGetResult{
			Description: "Usage guide for the " + m.Name + " collection",
			Messages: []mcp.PromptMessage{
				{Role: "user", Content: mcp.TextContent(p.modelGuide(m))},
			},
		}, nil
	}

	return &mcp.PromptsGetResult{
		Description: "Usage guide for " + p.APIName,
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(p.overviewGuide())},
		},
	}, nil
}

func (p *GuidePrompt) findModel(want string) *schema.ParsedModel {
	for _, m := range p.Schema.OrderedModels() {
		if m.Name == want || m.Plural == want || m.Singular == want {
			return m
		}
	}
	return nil
}

func (p *GuidePrompt) overviewGuide() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.APIName)
	b.WriteString(`This gateway serves a uniform REST surface for every collection below,
plus a matching {singular}.{verb} tool catalogue. The per-model tools
are route-only: call the REST endpoint they name, not tools/call.

## REST conventions

- GET /{collection}            list (filters, sort, limit/offset)
- GET /{collection}/$count     count with the same filters
- GET /{collection}/search?q=  search across string fields
- GET /{collection}/{id}       read one
- POST /{collection}           create (201)
- PUT|PATCH /{collection}/{id} update (partial)
- DELETE /{collection}/{id}    soft delete
- GET /{id}                    prefixed ids ("contact_...") dispatch globally

## Filters

Comparison: field.gt=10, field.lte=5, field.ne=x, field.in=a,b,
field.between=lo,hi, field.contains=text, field.exists=true.
Symbolic forms (amount>10000) and Mongo-style $and/$or/$not/$nor blocks
in a POST search body work too. Sort with sort=field.desc,other.asc.

## Collections

`)
	for _, m := range p.Schema.OrderedModels() {
		fmt.Fprintf(&b, "- %s at /%s (read gatewayd://models/%s for fields)\n", m.Name, m.Plural, m.Plural)
	}
	return b.String()
}

func (p *GuidePrompt) modelGuide(m *schema.ParsedModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Working with %s\n\n", m.Name)
	fmt.Fprintf(&b, "Collection path: /%s — id prefix: %s_\n\n", m.Plural, m.Singular)

	var required []string
	for _, f := range m.OrderedFields() {
		if f.Name != m.PrimaryKey && f.Required && f.Default == nil {
			required = append(required, f.Name)
		}
	}
	if len(required) > 0 {
		fmt.Fprintf(&b, "Create requires: %s.\n\n", strings.Join(required, ", "))
	}

	fmt.Fprintf(&b, "Examples:\n\n")
	fmt.Fprintf(&b, "- POST /%s with a JSON body to create\n", m.Plural)
	fmt.Fprintf(&b, "- GET /%s?limit=20 to list\n", m.Plural)
	if fields := m.StringFields(); len(fields) > 0 {
		fmt.Fprintf(&b, "- GET /%s/search?q=text searches %s\n", m.Plural, strings.Join(fields, ", "))
	}
	fmt.Fprintf(&b, "\nFull field reference: gatewayd://models/%s\n", m.Plural)
	return b.String()
}
