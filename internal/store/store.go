// Package store defines the Store collaborator the storage adapter
// drives (spec §4.5, §6) and a reference in-memory implementation used
// by tests and by `gatewayd serve --memory`.
package store

import (
	"context"
	"errors"

	"github.com/emergent-company/gatewayd/internal/filter"
	"github.com/emergent-company/gatewayd/internal/schema"
)

// ErrNotFound is returned by Get/Update when no live document matches
// the id (soft-deleted documents count as not found).
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned by Create when the given id already exists.
// SPEC_FULL.md resolves the open question in spec §9: a duplicate id is
// a conflict, never a silent overwrite.
var ErrConflict = errors.New("store: id already exists")

// Document is the stored representation of one record: system fields
// (id, type, version, createdAt, updatedAt, deletedAt, ...) plus every
// declared model field, keyed by bare name (no meta prefix — the
// adapter applies/strips that at its boundary). Values are the same
// tagged Value union the filter matcher operates on, so a Store can
// hand a document straight to filter.Matches.
type Document = filter.Document

// Val is a convenience re-export so store callers don't need a second
// import for literal construction.
type Val = schema.Value

// FindOptions bounds and orders a Find call.
type FindOptions struct {
	Limit  int
	Offset int
	Sort   []filter.SortKey
}

// FindResult is what Find returns: the page of items plus enough
// information for the router to build pagination links.
type FindResult struct {
	Items   []Document
	Total   int  // exact count matching ast, ignoring Limit/Offset
	HasMore bool // (Offset + len(Items)) < Total
}

// Store is the external persistence collaborator (spec §4.5, §6). Every
// method operates on one model's bare plural collection name; tenant
// isolation is guaranteed by handing each tenant its own Store instance
// (see StoreFactory), never by a tenant argument here.
//
// A field that was never set is an absent key in a Document; an
// explicit null is a present key holding a Null value. An $exists:false
// filter therefore matches only the absent key, never a stored null.
type Store interface {
	// Find returns the page of live (non-soft-deleted) documents
	// matching ast, ordered per opts.Sort.
	Find(ctx context.Context, collection string, ast *filter.AST, opts FindOptions) (FindResult, error)

	// Count returns the exact number of live documents matching ast.
	Count(ctx context.Context, collection string, ast *filter.AST) (int, error)

	// Get returns a single live document by id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create inserts data as a new document. The Store assigns id (if
	// absent), version=1, createdAt, updatedAt. Returns ErrConflict if
	// data's id is already in use by a live or soft-deleted document.
	Create(ctx context.Context, collection string, data Document) (Document, error)

	// Update applies a partial $set to the live document at id,
	// bumping version and updatedAt. Returns ErrNotFound if absent.
	Update(ctx context.Context, collection, id string, set Document) (Document, error)

	// Delete soft-deletes the live document at id (setting deletedAt)
	// and returns the number of documents affected (0 or 1).
	Delete(ctx context.Context, collection, id string) (int, error)
}

// StoreFactory hands back the Store scoped to one tenant. The empty
// string denotes the root (no-tenant) scope.
type StoreFactory interface {
	ForTenant(tenant string) Store
}
