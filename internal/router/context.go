package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/emergent-company/gatewayd/internal/auth"
	"github.com/emergent-company/gatewayd/internal/store"
)

type tenantKey struct{}

func withTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// TenantFrom returns the tenant resolved for this request, or "" for
// the root scope.
func TenantFrom(ctx context.Context) string {
	t, _ := ctx.Value(tenantKey{}).(string)
	return t
}

// tenantMiddleware resolves the tenant per spec §4.6 and rewrites
// r.URL.Path to the tenant-stripped remainder so downstream chi
// matching never sees the "/~slug" prefix.
func (rt *Router) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant, rest := ResolveTenant(r.URL.Path, r.Host, rt.cfg.BaseDomain)
		r.URL.Path = rest
		ctx := withTenant(r.Context(), tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authMiddleware resolves the caller identity per spec §6 and attaches
// it to the request context; failures under auth.ModeRequired are
// written immediately as an error envelope.
func (rt *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.Resolve(r.Context(), r, rt.cfg.Auth, rt.cfg.Verifier)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		ctx := auth.WithIdentity(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// storeFor resolves the tenant-scoped Store for this request.
func (rt *Router) storeFor(r *http.Request) store.Store {
	return rt.stores.ForTenant(TenantFrom(r.Context()))
}

func requestIDFrom(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
