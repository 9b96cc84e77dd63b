package mcp

import (
	"encoding/json"

	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/validate"
)

// derivedVerbs are the six per-model tools the registry derives from
// a schema (spec §4.7 source 2). Each is route-only: discoverable via
// tools/list, but tools/call on it fails, pointing the caller at the
// matching REST path.
var derivedVerbs = []string{"create", "get", "list", "search", "update", "delete"}

// DeriveModelTools builds the `{singular}.{verb}` route-only tools for
// every model in s, prefixing each tool name with prefix (mcp.prefix
// from configuration; may be empty).
func DeriveModelTools(s *schema.ParsedSchema, prefix string) []Tool {
	var tools []Tool
	for _, m := range s.OrderedModels() {
		inputSchema := modelInputSchema(m)
		for _, verb := range derivedVerbs {
			name := prefix + m.Singular + "." + verb
			restPath := m.Singular + "/" + verb
			tools = append(tools, NewRouteOnlyTool(name, derivedDescription(m, verb), restPath, schemaFor(verb, inputSchema)))
		}
	}
	return tools
}

// modelInputSchema marshals the model's write schema once per model so
// every create/update-shaped tool can share it.
func modelInputSchema(m *schema.ParsedModel) json.RawMessage {
	b, err := json.Marshal(validate.BuildSchema(m))
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return b
}

// schemaFor returns the input schema appropriate to verb: create/update
// take the full model schema; get/delete take just an id; list/search
// take none (filters arrive as REST query params, not tool arguments).
func schemaFor(verb string, modelSchema json.RawMessage) json.RawMessage {
	switch verb {
	case "create", "update":
		return modelSchema
	case "get", "delete":
		return json.RawMessage(`{"type":"object","properties":{"id":{"type":"string"}},"required":["id"]}`)
	default:
		return json.RawMessage(`{"type":"object"}`)
	}
}

func derivedDescription(m *schema.ParsedModel, verb string) string {
	switch verb {
	case "create":
		return "Create a " + m.Singular + "."
	case "get":
		return "Fetch a single " + m.Singular + " by id."
	case "list":
		return "List " + m.Plural + "."
	case "search":
		return "Full-text search " + m.Plural + "."
	case "update":
		return "Update a " + m.Singular + "."
	case "delete":
		return "Delete a " + m.Singular + "."
	default:
		return ""
	}
}
