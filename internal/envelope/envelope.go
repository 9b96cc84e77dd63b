// Package envelope builds the gateway's uniform response shape (spec
// §4.8): api metadata, a keyed payload, pagination meta, hypermedia
// links, actions, and a normalised error block.
package envelope

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/emergent-company/gatewayd/internal/gwerr"
)

// API identifies the gateway instance in every response.
type API struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Links is the navigational block attached to every response.
type Links struct {
	Self       string `json:"self"`
	Home       string `json:"home"`
	First      string `json:"first,omitempty"`
	Prev       string `json:"prev,omitempty"`
	Next       string `json:"next,omitempty"`
	Last       string `json:"last,omitempty"`
	Collection string `json:"collection,omitempty"`
	Search     string `json:"search,omitempty"`
	Create     string `json:"create,omitempty"`
	Login      string `json:"login,omitempty"`
	Register   string `json:"register,omitempty"`
	Current    string `json:"current,omitempty"`
}

// Action describes one follow-up operation a client may take.
type Action struct {
	Method string `json:"method"`
	Href   string `json:"href"`
}

// User echoes the caller's identity when known.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ErrorBlock is the wire shape of a *gwerr.Error.
type ErrorBlock struct {
	Message        string             `json:"message"`
	Code           string             `json:"code"`
	Status         int                `json:"status"`
	Fields         []gwerr.FieldError `json:"fields,omitempty"`
	YourVersion    *int               `json:"yourVersion,omitempty"`
	CurrentVersion *int               `json:"currentVersion,omitempty"`
	Feature        string             `json:"feature,omitempty"`
	RetryAfter     *int               `json:"retryAfter,omitempty"`
}

// Envelope is the stable top-level response shape (spec §4.8). Payload
// holds the data/keyed-payload value and is marshaled under PayloadKey
// by MarshalJSON.
type Envelope struct {
	API        API
	PayloadKey string
	Payload    any
	Meta       map[string]any
	Links      Links
	Actions    map[string]Action
	User       *User
	Error      *ErrorBlock
}

// MarshalJSON inlines Payload under PayloadKey alongside the envelope's
// fixed fields, so a list response reads `{api, data, meta, links}` and
// a search-scoped one might read `{api, widgets, meta, links}`.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"api":   e.API,
		"links": e.Links,
	}
	if e.Error == nil {
		key := e.PayloadKey
		if key == "" {
			key = "data"
		}
		out[key] = e.Payload
	} else {
		out["error"] = e.Error
	}
	if e.Meta != nil {
		out["meta"] = e.Meta
	}
	if e.Actions != nil {
		out["actions"] = e.Actions
	}
	if e.User != nil {
		out["user"] = e.User
	}
	return json.Marshal(out)
}

// NewSuccess builds an envelope carrying a payload under the given key
// ("data" by default, or a semantic key like "widgets").
func NewSuccess(api API, payloadKey string, payload any, self, home string) *Envelope {
	if payloadKey == "" {
		payloadKey = "data"
	}
	return &Envelope{
		API:        api,
		PayloadKey: payloadKey,
		Payload:    payload,
		Links:      Links{Self: self, Home: home},
	}
}

// NewError builds an envelope for a failed request. The payload key is
// omitted entirely (spec §4.8: "Error responses omit the payload key").
func NewError(api API, err *gwerr.Error, self, home string) *Envelope {
	e := &Envelope{
		API:   api,
		Links: BuildErrorLinks(err.Code, ErrorContext{Home: home}),
		Error: &ErrorBlock{
			Message:        err.Message,
			Code:           string(err.Code),
			Status:         err.Status(),
			Fields:         err.Fields,
			YourVersion:    err.YourVersion,
			CurrentVersion: err.CurrentVersion,
			Feature:        err.Feature,
			RetryAfter:     err.RetryAfter,
		},
	}
	e.Links.Self = self
	return e
}

// ErrorContext is the information BuildErrorLinks needs to produce
// actionable, fully-qualified links.
type ErrorContext struct {
	Home       string
	Collection string // bare plural, for NOT_FOUND's collection/search/create links
}

// BuildErrorLinks is the pure function spec §4.8 calls for per-code
// actionable links (e.g. NOT_FOUND -> {home, collection, search,
// create}; UNAUTHORIZED -> {home, login, register}; CONFLICT ->
// {home, current}).
func BuildErrorLinks(code gwerr.Code, ctx ErrorContext) Links {
	l := Links{Home: ctx.Home}

	switch code {
	case gwerr.CodeNotFound:
		if ctx.Collection != "" {
			base := strings.TrimRight(ctx.Home, "/") + "/" + ctx.Collection
			l.Collection = base
			l.Search = base + "/search"
			l.Create = base
		}
	case gwerr.CodeUnauthorized, gwerr.CodeAuthRequired, gwerr.CodeInvalidToken:
		l.Login = strings.TrimRight(ctx.Home, "/") + "/login"
		l.Register = strings.TrimRight(ctx.Home, "/") + "/register"
	case gwerr.CodeConflict:
		if ctx.Collection != "" {
			l.Current = strings.TrimRight(ctx.Home, "/") + "/" + ctx.Collection
		}
	}
	return l
}

// NextLink builds the `next` pagination link: the same query string
// with offset advanced by limit (spec §4.6, §4.8).
func NextLink(selfURL string, offset, limit, total int) string {
	nextOffset := offset + limit
	if nextOffset >= total {
		return ""
	}
	return withOffset(selfURL, nextOffset)
}

// PrevLink builds the `prev` pagination link, or "" at the first page.
func PrevLink(selfURL string, offset, limit int) string {
	if offset <= 0 {
		return ""
	}
	prevOffset := offset - limit
	if prevOffset < 0 {
		prevOffset = 0
	}
	return withOffset(selfURL, prevOffset)
}

// FirstLink and LastLink bound a paginated collection.
func FirstLink(selfURL string) string { return withOffset(selfURL, 0) }

func LastLink(selfURL string, limit, total int) string {
	if limit <= 0 {
		return withOffset(selfURL, 0)
	}
	lastOffset := ((total - 1) / limit) * limit
	if lastOffset < 0 {
		lastOffset = 0
	}
	return withOffset(selfURL, lastOffset)
}

func withOffset(rawURL string, offset int) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String()
}
