// Package adapter translates model-level operations onto the Store
// collaborator (spec §4.5): stripping and injecting system fields,
// honouring soft-delete, and building the search-over-string-fields
// query.
package adapter

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/emergent-company/gatewayd/internal/filter"
	"github.com/emergent-company/gatewayd/internal/gwerr"
	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/store"
)

// RequestContext carries the per-request audit fields the adapter
// stamps onto created/updated documents (spec §3 RequestContext).
type RequestContext struct {
	UserID    string
	RequestID string
	Tenant    string
	BaseURL   string
	Ray       string // edge request id, when fronted by a CDN
	Colo      string // edge colo code, when fronted by a CDN
}

// IDGenerator mints an id for a new document of the given model.
// Returning "" defers assignment to the Store.
type IDGenerator interface {
	NewID(m *schema.ParsedModel) string
}

// Adapter is the thin translator between a ParsedModel's operations and
// a tenant's Store.
type Adapter struct {
	MetaPrefix string      // "$" (default) or "_"
	IDs        IDGenerator // optional; nil means the Store assigns ids
}

// New returns an Adapter using the given meta prefix ("$" if empty).
func New(metaPrefix string) *Adapter {
	if metaPrefix == "" {
		metaPrefix = "$"
	}
	return &Adapter{MetaPrefix: metaPrefix}
}

// systemFieldNames are additionally stripped from client input even
// when supplied bare, without a meta prefix; the server is sole
// authority on these values (spec §4.5).
var systemFieldNames = map[string]bool{
	"version": true, "deletedAt": true, "deletedBy": true,
	"createdAt": true, "updatedAt": true, "createdBy": true, "updatedBy": true,
	"type": true, "context": true,
}

// StripSystemFields removes every meta-prefixed key from input (both
// "$" and the legacy "_" prefix, regardless of which one is configured)
// plus the bare system field names, silently (spec §4.5). The one
// exception is the user-supplied logical id: a "$id"/"_id" key is
// honoured by folding it onto the bare "id" key.
func (a *Adapter) StripSystemFields(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for k, v := range input {
		if strings.HasPrefix(k, "$") || strings.HasPrefix(k, "_") {
			bare := strings.TrimLeft(k, "$_")
			if bare == "id" {
				if _, present := input["id"]; !present {
					out["id"] = v
				}
			}
			continue
		}
		if systemFieldNames[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// Create strips system fields from data, derives a display name when
// "name" is missing (see deriveName), and creates the document via s
// (spec §4.5).
func (a *Adapter) Create(ctx context.Context, s store.Store, m *schema.ParsedModel, rc RequestContext, data map[string]any) (store.Document, error) {
	clean := a.StripSystemFields(data)
	deriveName(m, clean)
	a.generatePrimaryKey(m, clean)

	doc := toDocument(clean)
	doc["type"] = schema.Str(m.Name)
	if rc.UserID != "" {
		doc["createdBy"] = schema.Str(rc.UserID)
		doc["updatedBy"] = schema.Str(rc.UserID)
	}
	if ctxObj := requestContextMeta(rc); len(ctxObj) > 0 {
		doc["context"] = schema.Obj(ctxObj)
	}

	created, err := s.Create(ctx, m.Plural, doc)
	if err != nil {
		if err == store.ErrConflict {
			return nil, gwerr.New(gwerr.CodeConflict, "id already exists")
		}
		return nil, gwerr.Internal(err)
	}
	return created, nil
}

// Get fetches a document by id, falling back to a filtered find on the
// user-facing id field when the Store's own id lookup misses (spec
// §4.5: "honour user-supplied ids distinct from internal ids").
func (a *Adapter) Get(ctx context.Context, s store.Store, m *schema.ParsedModel, id string) (store.Document, error) {
	doc, err := s.Get(ctx, m.Plural, id)
	if err == nil {
		return doc, nil
	}
	if err != store.ErrNotFound {
		return nil, gwerr.Internal(err)
	}

	res, ferr := s.Find(ctx, m.Plural, filter.LeafNode("id", filter.OpEq, schema.Str(id)), store.FindOptions{Limit: 1})
	if ferr != nil {
		return nil, gwerr.Internal(ferr)
	}
	if len(res.Items) == 0 {
		return nil, gwerr.NotFound("not found")
	}
	return res.Items[0], nil
}

// Update wraps patch as a $set, stamps updatedBy, and retries via the
// user-id fallback on a miss (spec §4.5).
func (a *Adapter) Update(ctx context.Context, s store.Store, m *schema.ParsedModel, rc RequestContext, id string, patch map[string]any) (store.Document, error) {
	clean := a.StripSystemFields(patch)
	delete(clean, "id")
	set := toDocument(clean)
	if rc.UserID != "" {
		set["updatedBy"] = schema.Str(rc.UserID)
	}

	updated, err := s.Update(ctx, m.Plural, id, set)
	if err == nil {
		return updated, nil
	}
	if err != store.ErrNotFound {
		return nil, gwerr.Internal(err)
	}

	// user-id fallback: resolve the internal id, then retry.
	existing, gerr := a.Get(ctx, s, m, id)
	if gerr != nil {
		return nil, gerr
	}
	internalID, _ := existing["id"].AsString()
	updated, err = s.Update(ctx, m.Plural, internalID, set)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, gwerr.NotFound("not found")
		}
		return nil, gwerr.Internal(err)
	}
	return updated, nil
}

// Delete soft-deletes by id, retrying via the user-id fallback on a
// miss (spec §4.5).
func (a *Adapter) Delete(ctx context.Context, s store.Store, m *schema.ParsedModel, id string) error {
	n, err := s.Delete(ctx, m.Plural, id)
	if err != nil {
		return gwerr.Internal(err)
	}
	if n > 0 {
		return nil
	}

	existing, gerr := a.Get(ctx, s, m, id)
	if gerr != nil {
		return gerr
	}
	internalID, _ := existing["id"].AsString()
	n, err = s.Delete(ctx, m.Plural, internalID)
	if err != nil {
		return gwerr.Internal(err)
	}
	if n == 0 {
		return gwerr.NotFound("not found")
	}
	return nil
}

// Find lists documents matching ast (spec §4.5/§4.6).
func (a *Adapter) Find(ctx context.Context, s store.Store, m *schema.ParsedModel, ast *filter.AST, opts store.FindOptions) (store.FindResult, error) {
	res, err := s.Find(ctx, m.Plural, ast, opts)
	if err != nil {
		return store.FindResult{}, gwerr.Internal(err)
	}
	return res, nil
}

// Count returns the exact number of documents matching ast.
func (a *Adapter) Count(ctx context.Context, s store.Store, m *schema.ParsedModel, ast *filter.AST) (int, error) {
	n, err := s.Count(ctx, m.Plural, ast)
	if err != nil {
		return 0, gwerr.Internal(err)
	}
	return n, nil
}

// Search builds an OR over every string/text field of m, ANDed with the
// caller's where clause, and forwards to Find (spec §4.5).
func (a *Adapter) Search(ctx context.Context, s store.Store, m *schema.ParsedModel, query string, where *filter.AST, opts store.FindOptions) (store.FindResult, error) {
	fields := m.StringFields()
	if len(fields) == 0 || query == "" {
		return a.Find(ctx, s, m, where, opts)
	}

	pattern := "(?i)" + query
	var disjuncts []*filter.AST
	for _, f := range fields {
		disjuncts = append(disjuncts, filter.LeafNode(f, filter.OpRegex, schema.Str(pattern)))
	}
	searchAST := filter.OrNode(disjuncts...)

	combined := searchAST
	if where != nil && !where.IsEmpty() {
		combined = filter.AndNode(searchAST, where)
	}
	return a.Find(ctx, s, m, combined, opts)
}

func toDocument(m map[string]any) store.Document {
	out := make(store.Document, len(m))
	for k, v := range m {
		out[k] = schema.FromNative(v)
	}
	return out
}

// requestContextMeta renders the audit context stored under the
// document's "context" meta field.
func requestContextMeta(rc RequestContext) map[string]schema.Value {
	out := map[string]schema.Value{}
	if rc.RequestID != "" {
		out["requestId"] = schema.Str(rc.RequestID)
	}
	if rc.Ray != "" {
		out["ray"] = schema.Str(rc.Ray)
	}
	if rc.Colo != "" {
		out["colo"] = schema.Str(rc.Colo)
	}
	return out
}

// generatePrimaryKey fills a primary key the client didn't supply:
// uuid-typed keys get a real UUID, and a configured IDGenerator (the
// sqid factory) mints prefixed ids. Otherwise the key is left for the
// Store to assign, matching the Store contract's "create assigns $id"
// clause.
func (a *Adapter) generatePrimaryKey(m *schema.ParsedModel, clean map[string]any) {
	if _, ok := clean[m.PrimaryKey]; ok {
		return
	}
	pk := m.Field(m.PrimaryKey)
	if pk != nil && pk.Type == schema.TypeUUID {
		clean[m.PrimaryKey] = uuid.NewString()
		return
	}
	if a.IDs != nil {
		if id := a.IDs.NewID(m); id != "" {
			clean[m.PrimaryKey] = id
		}
	}
}

// deriveName sets clean["name"] from the model's NameField, or the
// first present of subject/title/description, falling back to the
// model name itself, when "name" isn't already supplied (spec §4.5).
func deriveName(m *schema.ParsedModel, clean map[string]any) {
	if _, ok := clean["name"]; ok {
		return
	}
	candidates := []string{m.NameField, "subject", "title", "description"}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if v, ok := clean[c]; ok {
			clean["name"] = v
			return
		}
	}
	clean["name"] = m.Name
}
