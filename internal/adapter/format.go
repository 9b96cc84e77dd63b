package adapter

import (
	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/store"
)

// metaFieldNames are rewritten with the configured prefix on the way
// out to the wire; everything else in a Document is a user field and
// passes through at top level (spec §4.5 formatEntity).
var metaFieldNames = []string{
	"id", "type", "version", "createdAt", "updatedAt",
	"createdBy", "updatedBy", "deletedAt", "deletedBy", "context",
}

// FormatEntity converts a Store document into its external wire form:
// meta fields renamed under prefix, user fields left at top level, and
// soft-deleted meta omitted once already filtered by the caller.
func (a *Adapter) FormatEntity(doc store.Document, modelName string) map[string]any {
	out := make(map[string]any, len(doc))
	meta := make(map[string]bool, len(metaFieldNames))
	for _, f := range metaFieldNames {
		meta[f] = true
	}

	for k, v := range doc {
		if meta[k] {
			if v.IsNull() {
				continue
			}
			out[a.MetaPrefix+k] = v.Native()
			continue
		}
		out[k] = v.Native()
	}
	out[a.MetaPrefix+"type"] = modelName
	return out
}

// EntityToDocument is the inverse direction used at the storage
// boundary: a fully-resolved internal document (already carrying typed
// meta) rendered as a plain Value map for the Store. Kept distinct from
// FormatEntity per spec §4.5 ("one pass, no intermediate" on each side,
// not a single shared function for both directions).
func EntityToDocument(meta map[string]schema.Value, fields map[string]any) store.Document {
	doc := make(store.Document, len(meta)+len(fields))
	for k, v := range meta {
		doc[k] = v
	}
	for k, v := range fields {
		doc[k] = schema.FromNative(v)
	}
	return doc
}
