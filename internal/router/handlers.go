package router

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/emergent-company/gatewayd/internal/adapter"
	"github.com/emergent-company/gatewayd/internal/auth"
	"github.com/emergent-company/gatewayd/internal/envelope"
	"github.com/emergent-company/gatewayd/internal/filter"
	"github.com/emergent-company/gatewayd/internal/gwerr"
	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/store"
	"github.com/emergent-company/gatewayd/internal/validate"
)

// requestContext builds an adapter.RequestContext from the resolved
// tenant and identity (spec §3 RequestContext).
func (rt *Router) requestContext(r *http.Request) adapter.RequestContext {
	rc := adapter.RequestContext{
		Tenant:    TenantFrom(r.Context()),
		RequestID: requestIDFrom(r),
		BaseURL:   homeURL(r),
		Ray:       r.Header.Get("cf-ray"),
		Colo:      r.Header.Get("cf-colo"),
	}
	if id := auth.IdentityFrom(r.Context()); id != nil {
		rc.UserID = id.UserID
	}
	return rc
}

// pageOptions parses limit/offset query params clamped per spec §4.6,
// and the sort spec, into store.FindOptions.
func (rt *Router) pageOptions(r *http.Request, sortRaw string) store.FindOptions {
	q := r.URL.Query()
	limit := rt.cfg.PageSize
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > rt.cfg.MaxPageSize {
		limit = rt.cfg.MaxPageSize
	}

	offset := 0
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	var sortKeys []filter.SortKey
	if sortRaw != "" {
		sortKeys = filter.ParseSort(sortRaw)
	}

	return store.FindOptions{Limit: limit, Offset: offset, Sort: sortKeys}
}

func (rt *Router) parseFilter(r *http.Request) (*filter.ParseResult, error) {
	res, err := filter.ParseValues(r.URL.Query())
	if err != nil {
		return nil, gwerr.Wrap(gwerr.CodeBadRequest, "invalid query string", err)
	}
	return res, nil
}

func (rt *Router) handleList(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parsed, err := rt.parseFilter(r)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		opts := rt.pageOptions(r, parsed.SortRaw)

		res, err := rt.adapter.Find(r.Context(), rt.storeFor(r), m, parsed.AST, opts)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}

		items := make([]map[string]any, len(res.Items))
		for i, doc := range res.Items {
			items[i] = rt.adapter.FormatEntity(doc, m.Name)
		}

		self := selfURL(r)
		links := &envelope.Links{
			First: envelope.FirstLink(self),
			Next:  envelope.NextLink(self, opts.Offset, opts.Limit, res.Total),
			Prev:  envelope.PrevLink(self, opts.Offset, opts.Limit),
			Last:  envelope.LastLink(self, opts.Limit, res.Total),
		}
		meta := map[string]any{"total": res.Total, "limit": opts.Limit, "offset": opts.Offset}
		rt.writeSuccess(w, r, http.StatusOK, "data", items, meta, links)
	}
}

func (rt *Router) handleCount(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parsed, err := rt.parseFilter(r)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		n, err := rt.adapter.Count(r.Context(), rt.storeFor(r), m, parsed.AST)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		rt.writeSuccess(w, r, http.StatusOK, "data", map[string]any{"count": n}, nil, nil)
	}
}

func (rt *Router) handleSearch(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		parsed, err := rt.parseFilter(r)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		opts := rt.pageOptions(r, parsed.SortRaw)

		res, err := rt.adapter.Search(r.Context(), rt.storeFor(r), m, q, parsed.AST, opts)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}

		items := make([]map[string]any, len(res.Items))
		for i, doc := range res.Items {
			items[i] = rt.adapter.FormatEntity(doc, m.Name)
		}
		meta := map[string]any{"total": res.Total, "limit": opts.Limit, "offset": opts.Offset, "query": q}
		rt.writeSuccess(w, r, http.StatusOK, "data", items, meta, nil)
	}
}

// handleSearchBody is the POST form of search: the body may carry the
// query text plus a Mongo-style where block ($and/$or/$not/$nor), which
// the matcher accepts interchangeably with the query-string surface
// form (spec §4.3).
func (rt *Router) handleSearchBody(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Q     string         `json:"q"`
			Where map[string]any `json:"where"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				rt.writeError(w, r, gwerr.Wrap(gwerr.CodeBadRequest, "invalid JSON body", err))
				return
			}
		}

		where, err := filter.FromMongo(body.Where)
		if err != nil {
			rt.writeError(w, r, gwerr.Wrap(gwerr.CodeBadRequest, "invalid where clause", err))
			return
		}
		opts := rt.pageOptions(r, "")

		res, err := rt.adapter.Search(r.Context(), rt.storeFor(r), m, body.Q, where, opts)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}

		items := make([]map[string]any, len(res.Items))
		for i, doc := range res.Items {
			items[i] = rt.adapter.FormatEntity(doc, m.Name)
		}
		meta := map[string]any{"total": res.Total, "limit": opts.Limit, "offset": opts.Offset, "query": body.Q}
		rt.writeSuccess(w, r, http.StatusOK, "data", items, meta, nil)
	}
}

func (rt *Router) handleGet(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		doc, err := rt.adapter.Get(r.Context(), rt.storeFor(r), m, id)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		rt.writeSuccessActions(w, r, http.StatusOK, "data", rt.adapter.FormatEntity(doc, m.Name), nil, nil, entityActions(selfURL(r)))
	}
}

func (rt *Router) handleCreate(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			rt.writeError(w, r, gwerr.Wrap(gwerr.CodeBadRequest, "invalid JSON body", err))
			return
		}

		clean := rt.adapter.StripSystemFields(body)
		if fieldErrs := rt.validators[m.Name].Validate(clean, false); len(fieldErrs) > 0 {
			rt.writeError(w, r, gwerr.Validation(toGwerrFields(fieldErrs)))
			return
		}

		doc, err := rt.adapter.Create(r.Context(), rt.storeFor(r), m, rt.requestContext(r), body)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		rt.writeSuccess(w, r, http.StatusCreated, "data", rt.adapter.FormatEntity(doc, m.Name), nil, nil)
	}
}

func (rt *Router) handleReplace(m *schema.ParsedModel) http.HandlerFunc {
	return rt.handleWrite(m)
}

func (rt *Router) handleUpdate(m *schema.ParsedModel) http.HandlerFunc {
	return rt.handleWrite(m)
}

// handleWrite serves both PUT and PATCH. Update payloads are validated
// as partial (spec §4.4): required fields may be absent, but a present
// field's type violation still fails with VALIDATION_ERROR.
func (rt *Router) handleWrite(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			rt.writeError(w, r, gwerr.Wrap(gwerr.CodeBadRequest, "invalid JSON body", err))
			return
		}

		clean := rt.adapter.StripSystemFields(body)
		delete(clean, "id")
		if fieldErrs := rt.validators[m.Name].Validate(clean, true); len(fieldErrs) > 0 {
			rt.writeError(w, r, gwerr.Validation(toGwerrFields(fieldErrs)))
			return
		}

		doc, err := rt.adapter.Update(r.Context(), rt.storeFor(r), m, rt.requestContext(r), id, body)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		rt.writeSuccess(w, r, http.StatusOK, "data", rt.adapter.FormatEntity(doc, m.Name), nil, nil)
	}
}

func (rt *Router) handleDelete(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := rt.adapter.Delete(r.Context(), rt.storeFor(r), m, id); err != nil {
			rt.writeError(w, r, err)
			return
		}
		rt.writeSuccess(w, r, http.StatusOK, "data", map[string]any{"deleted": true, "id": id}, nil, nil)
	}
}

// handleRelation traverses a forward (to-one) or inverse (to-many)
// relation field (spec §4.6).
func (rt *Router) handleRelation(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		relName := chi.URLParam(r, "relation")

		f := m.Field(relName)
		if f == nil || f.Relation == nil {
			rt.writeError(w, r, gwerr.NotFound("no such relation: "+relName))
			return
		}
		target := rt.schema.Model(f.Relation.Target)
		if target == nil {
			rt.writeError(w, r, gwerr.New(gwerr.CodeInternal, "relation target model not found"))
			return
		}

		s := rt.storeFor(r)

		if f.Relation.Type == schema.RelationForward {
			doc, err := rt.adapter.Get(r.Context(), s, m, id)
			if err != nil {
				rt.writeError(w, r, err)
				return
			}
			refVal, ok := doc[relName]
			if !ok || refVal.IsNull() {
				rt.writeError(w, r, gwerr.NotFound("relation not set"))
				return
			}
			refID, _ := refVal.AsString()
			related, err := rt.adapter.Get(r.Context(), s, target, refID)
			if err != nil {
				rt.writeError(w, r, err)
				return
			}
			rt.writeSuccess(w, r, http.StatusOK, "data", rt.adapter.FormatEntity(related, target.Name), nil, nil)
			return
		}

		// Inverse: find every document in the target collection whose
		// forward field (InverseField) points back at id.
		inverseField := f.Relation.InverseField
		opts := rt.pageOptions(r, "")
		ast := filter.LeafNode(inverseField, filter.OpEq, schema.Str(id))
		res, err := rt.adapter.Find(r.Context(), s, target, ast, opts)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		items := make([]map[string]any, len(res.Items))
		for i, doc := range res.Items {
			items[i] = rt.adapter.FormatEntity(doc, target.Name)
		}
		meta := map[string]any{"total": res.Total, "limit": opts.Limit, "offset": opts.Offset}
		rt.writeSuccess(w, r, http.StatusOK, "data", items, meta, nil)
	}
}

func toGwerrFields(in []validate.FieldError) []gwerr.FieldError {
	out := make([]gwerr.FieldError, len(in))
	for i, f := range in {
		out[i] = gwerr.FieldError{Field: f.Field, Message: f.Message}
	}
	return out
}
