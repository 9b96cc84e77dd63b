package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/emergent-company/gatewayd/internal/adapter"
	"github.com/emergent-company/gatewayd/internal/auth"
	"github.com/emergent-company/gatewayd/internal/schema"
	"github.com/emergent-company/gatewayd/internal/store"
	"github.com/emergent-company/gatewayd/internal/validate"
)

// Config holds the request-router's deployment-level options (spec §6).
type Config struct {
	BasePath    string
	PageSize    int
	MaxPageSize int
	BaseDomain  string

	APIName        string
	APIVersion     string
	APIDescription string

	Auth     auth.Config
	Verifier auth.Verifier
}

// Router owns the mounted chi.Mux for one loaded schema.
type Router struct {
	cfg        Config
	schema     *schema.ParsedSchema
	adapter    *adapter.Adapter
	stores     store.StoreFactory
	prefixes   PrefixTable
	validators map[string]*validate.ModelValidator
}

// New builds a Router for sch, serving data through stores (one Store
// per tenant) via ad. Payload validators are compiled here, once per
// schema load.
func New(cfg Config, sch *schema.ParsedSchema, ad *adapter.Adapter, stores store.StoreFactory) (*Router, error) {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.APIName == "" {
		cfg.APIName = "gatewayd"
	}

	prefixes := make(PrefixTable, len(sch.Models))
	validators := make(map[string]*validate.ModelValidator, len(sch.Models))
	for _, m := range sch.OrderedModels() {
		prefixes[m.Singular] = m.Plural
		v, err := validate.NewModelValidator(m)
		if err != nil {
			return nil, err
		}
		validators[m.Name] = v
	}

	return &Router{cfg: cfg, schema: sch, adapter: ad, stores: stores, prefixes: prefixes, validators: validators}, nil
}

// Mux builds the chi.Mux mounting every model's REST surface plus the
// global id-prefix dispatch route (spec §4.6).
func (rt *Router) Mux() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           int(12 * time.Hour / time.Second),
	}))
	r.Use(rt.logging)
	r.Use(rt.tenantMiddleware)
	r.Use(rt.authMiddleware)

	r.NotFound(rt.notFoundHandler)
	r.MethodNotAllowed(rt.methodNotAllowedHandler)

	base := chi.NewRouter()
	for _, m := range rt.schema.OrderedModels() {
		rt.mountModel(base, m)
	}
	base.Get("/{id}", rt.handleGlobalDispatch)
	base.Put("/{id}", rt.handleGlobalDispatch)
	base.Delete("/{id}", rt.handleGlobalDispatch)

	if rt.cfg.BasePath == "" || rt.cfg.BasePath == "/" {
		r.Mount("/", base)
	} else {
		r.Mount(rt.cfg.BasePath, base)
	}
	return r
}

func (rt *Router) mountModel(r chi.Router, m *schema.ParsedModel) {
	prefix := "/" + m.Plural

	r.Get(prefix, rt.handleList(m))
	r.Get(prefix+"/$count", rt.handleCount(m))
	r.Get(prefix+"/search", rt.handleSearch(m))
	r.Post(prefix+"/search", rt.handleSearchBody(m))
	r.Post(prefix, rt.handleCreate(m))

	r.Get(prefix+"/{id}", rt.handleGet(m))
	r.Put(prefix+"/{id}", rt.handleReplace(m))
	r.Patch(prefix+"/{id}", rt.handleUpdate(m))
	r.Delete(prefix+"/{id}", rt.handleDelete(m))

	r.Get(prefix+"/{id}/{relation}", rt.handleRelation(m))
	r.Post(prefix+"/{id}/{verb}", rt.handleVerb(m))
}

func (rt *Router) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()),
		)
	})
}
