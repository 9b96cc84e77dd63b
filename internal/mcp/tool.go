package mcp

import (
	"context"
	"encoding/json"
)

// ExecuteFunc backs a handler tool.
type ExecuteFunc func(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error)

// basicTool is the concrete Tool implementation shared by explicit
// config tools, function-convention tools, and derived per-model
// route-only tools (spec §4.7).
type basicTool struct {
	name         string
	description  string
	inputSchema  json.RawMessage
	outputSchema json.RawMessage
	routeOnly    bool
	restPath     string
	exec         ExecuteFunc
}

func (t *basicTool) Name() string                  { return t.name }
func (t *basicTool) Description() string           { return t.description }
func (t *basicTool) InputSchema() json.RawMessage  { return t.inputSchema }
func (t *basicTool) OutputSchema() json.RawMessage { return t.outputSchema }
func (t *basicTool) RouteOnly() bool               { return t.routeOnly }
func (t *basicTool) RESTPath() string              { return t.restPath }

func (t *basicTool) Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
	if t.routeOnly || t.exec == nil {
		return ErrorResult("tool \"" + t.name + "\" is route-only: use " + t.restPath + " over REST instead of tools/call"), nil
	}
	return t.exec(ctx, params)
}

// NewHandlerTool builds a tool backed by an explicit handler (config
// tools and function-convention tools, spec §4.7 sources 1 and 3).
func NewHandlerTool(name, description string, inputSchema, outputSchema json.RawMessage, exec ExecuteFunc) Tool {
	return &basicTool{
		name:         name,
		description:  description,
		inputSchema:  inputSchema,
		outputSchema: outputSchema,
		exec:         exec,
	}
}

// NewRouteOnlyTool builds a tool with no handler, listed for discovery
// only; tools/call on it fails with an instructive error naming
// restPath (spec §4.7 source 2, per-model derived tools).
func NewRouteOnlyTool(name, description, restPath string, inputSchema json.RawMessage) Tool {
	return &basicTool{
		name:        name,
		description: description,
		inputSchema: inputSchema,
		routeOnly:   true,
		restPath:    restPath,
	}
}
