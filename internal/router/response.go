package router

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/emergent-company/gatewayd/internal/auth"
	"github.com/emergent-company/gatewayd/internal/envelope"
	"github.com/emergent-company/gatewayd/internal/gwerr"
)

func (rt *Router) api() envelope.API {
	return envelope.API{Name: rt.cfg.APIName, Version: rt.cfg.APIVersion, Description: rt.cfg.APIDescription}
}

// selfURL reconstructs the fully-qualified request URL (spec §4.8:
// "links.self is the full request URL").
func selfURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// homeURL is baseUrl + "/" (spec §4.8).
func homeURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func (rt *Router) writeSuccess(w http.ResponseWriter, r *http.Request, status int, payloadKey string, payload any, meta map[string]any, links *envelope.Links) {
	rt.writeSuccessActions(w, r, status, payloadKey, payload, meta, links, nil)
}

func (rt *Router) writeSuccessActions(w http.ResponseWriter, r *http.Request, status int, payloadKey string, payload any, meta map[string]any, links *envelope.Links, actions map[string]envelope.Action) {
	env := envelope.NewSuccess(rt.api(), payloadKey, payload, selfURL(r), homeURL(r))
	env.Meta = meta
	env.Actions = actions
	if links != nil {
		links.Self = env.Links.Self
		links.Home = env.Links.Home
		env.Links = *links
	}
	if id := auth.IdentityFrom(r.Context()); id != nil {
		env.User = &envelope.User{ID: id.UserID, Email: id.Email, Name: id.Name}
	}
	rt.writeEnvelope(w, status, env)
}

// entityActions lists the follow-up operations available on a single
// entity (spec §4.8 actions block).
func entityActions(self string) map[string]envelope.Action {
	return map[string]envelope.Action{
		"update": {Method: http.MethodPut, Href: self},
		"patch":  {Method: http.MethodPatch, Href: self},
		"delete": {Method: http.MethodDelete, Href: self},
	}
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ge := gwerr.As(err)
	collection := strings.TrimPrefix(r.URL.Path, "/")
	if idx := strings.IndexByte(collection, '/'); idx >= 0 {
		collection = collection[:idx]
	}
	env := envelope.NewError(rt.api(), ge, selfURL(r), homeURL(r))
	env.Links = envelope.BuildErrorLinks(ge.Code, envelope.ErrorContext{Home: homeURL(r), Collection: collection})
	env.Links.Self = selfURL(r)
	rt.writeEnvelope(w, ge.Status(), env)
}

func (rt *Router) writeEnvelope(w http.ResponseWriter, status int, env *envelope.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func (rt *Router) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	rt.writeError(w, r, gwerr.NotFound("no such route"))
}

func (rt *Router) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	rt.writeError(w, r, gwerr.New(gwerr.CodeMethodNotAllowed, "method not allowed"))
}
