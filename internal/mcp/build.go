package mcp

import "github.com/emergent-company/gatewayd/internal/schema"

// BuildRegistry aggregates the three tool sources named in spec §4.7,
// in order: explicit config tools, per-model derived tools, then
// function-convention tools. Registration order matters only for name
// collisions, since Registry.Register keeps the last writer.
func BuildRegistry(s *schema.ParsedSchema, prefix string, configTools, functionTools []Tool) *Registry {
	reg := NewRegistry()
	for _, t := range configTools {
		reg.Register(t)
	}
	for _, t := range DeriveModelTools(s, prefix) {
		reg.Register(t)
	}
	for _, t := range functionTools {
		reg.Register(t)
	}
	return reg
}
