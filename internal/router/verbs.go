package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emergent-company/gatewayd/internal/gwerr"
	"github.com/emergent-company/gatewayd/internal/schema"
)

// handleVerb executes `POST /{plural}/:id/{verb}`: persists lastVerb
// and merges the request body into the entity (spec §4.6).
func (rt *Router) handleVerb(m *schema.ParsedModel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		verb := chi.URLParam(r, "verb")

		var body map[string]any
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				rt.writeError(w, r, gwerr.Wrap(gwerr.CodeBadRequest, "invalid JSON body", err))
				return
			}
		}
		if body == nil {
			body = map[string]any{}
		}
		body["lastVerb"] = verb

		doc, err := rt.adapter.Update(r.Context(), rt.storeFor(r), m, rt.requestContext(r), id, body)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}

		rt.writeSuccess(w, r, http.StatusOK, "data", rt.adapter.FormatEntity(doc, m.Name), map[string]any{"verb": verb}, nil)
	}
}

// handleGlobalDispatch resolves `GET|PUT|DELETE /:id` by splitting id
// on its prefix and re-dispatching into the owning model's handler
// (spec §4.6).
func (rt *Router) handleGlobalDispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	plural, ok := rt.prefixes.ResolveCollection(id)
	if !ok {
		rt.writeError(w, r, gwerr.NotFound("Unknown entity type prefix"))
		return
	}

	for _, m := range rt.schema.OrderedModels() {
		if m.Plural != plural {
			continue
		}
		switch r.Method {
		case http.MethodGet:
			rt.handleGet(m)(w, r)
		case http.MethodPut:
			rt.handleReplace(m)(w, r)
		case http.MethodDelete:
			rt.handleDelete(m)(w, r)
		default:
			rt.writeError(w, r, gwerr.New(gwerr.CodeMethodNotAllowed, "method not allowed"))
		}
		return
	}
	rt.writeError(w, r, gwerr.NotFound("Unknown entity type prefix"))
}
