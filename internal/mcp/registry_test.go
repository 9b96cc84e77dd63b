package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/gatewayd/internal/schema"
)

func parsedSchema(t *testing.T) *schema.ParsedSchema {
	t.Helper()
	s, err := schema.Parse(schema.RawSchema{
		{Name: "User", Fields: []schema.RawField{{Name: "name", Expr: "string!"}}},
		{Name: "Contact", Fields: []schema.RawField{{Name: "name", Expr: "string!"}}},
	})
	require.NoError(t, err)
	return s
}

func echoTool(name string) Tool {
	return NewHandlerTool(name, "echo", json.RawMessage(`{"type":"object"}`), nil,
		func(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
			return &ToolsCallResult{Content: []ContentBlock{TextContent(name)}}, nil
		})
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewRouteOnlyTool("user.create", "derived", "user/create", json.RawMessage(`{}`)))
	reg.Register(echoTool("user.create"))

	tool := reg.Get("user.create")
	require.NotNil(t, tool)
	assert.False(t, tool.RouteOnly(), "the later handler tool replaced the derived one")

	// no duplicate listing
	count := 0
	for _, def := range reg.List() {
		if def.Name == "user.create" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDeriveModelTools(t *testing.T) {
	tools := DeriveModelTools(parsedSchema(t), "")
	require.Len(t, tools, 12, "6 verbs per model")

	names := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		names[tool.Name()] = tool
	}
	for _, want := range []string{"user.create", "user.get", "user.list", "user.search", "user.update", "user.delete", "contact.create"} {
		require.Contains(t, names, want)
	}

	uc := names["user.create"]
	assert.True(t, uc.RouteOnly())
	assert.Equal(t, "user/create", uc.RESTPath())
	assert.NotEmpty(t, uc.InputSchema())
}

func TestDeriveModelToolsPrefix(t *testing.T) {
	tools := DeriveModelTools(parsedSchema(t), "crm_")
	names := make(map[string]bool, len(tools))
	for _, tool := range tools {
		names[tool.Name()] = true
	}
	assert.True(t, names["crm_user.create"])
	assert.False(t, names["user.create"])
}

func TestBuildRegistryAggregation(t *testing.T) {
	configTool := echoTool("custom.report")
	fnTool := echoTool("user.create") // function-convention tool shadowing a derived one

	reg := BuildRegistry(parsedSchema(t), "", []Tool{configTool}, []Tool{fnTool})

	assert.NotNil(t, reg.Get("custom.report"))
	assert.NotNil(t, reg.Get("contact.list"))

	// function-convention tools register last, so they win
	assert.False(t, reg.Get("user.create").RouteOnly())
}
