// Package auth resolves the caller identity attached to a request
// (spec §6 auth header contract): a verified bearer JWT, a trusted CDN
// snippet header, or — gated behind a startup flag — an unverified JWT
// decode used only as a migration aid.
package auth

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v4"

	"github.com/emergent-company/gatewayd/internal/gwerr"
)

// Mode is the `auth.mode` configuration value.
type Mode string

const (
	ModeNone     Mode = "none"
	ModeOptional Mode = "optional"
	ModeRequired Mode = "required"
)

// Identity is the resolved caller, attached to the request context.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// Verifier validates a bearer token's signature and returns its claims.
// It is an external collaborator (spec §1): the gateway never knows how
// tokens are issued or which signing key/algorithm is in use.
type Verifier interface {
	Verify(ctx context.Context, token string) (jwt.MapClaims, error)
}

// Config is the subset of top-level configuration auth.Resolve needs.
type Config struct {
	Mode            Mode
	TrustSnippets   bool
	TrustUnverified bool
}

type contextKey struct{}

// WithIdentity attaches an Identity to ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the Identity attached to ctx, or nil.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}

// Resolve extracts the caller identity from r per spec §6's precedence:
// a trusted snippet header (if enabled) wins over the bearer token.
func Resolve(ctx context.Context, r *http.Request, cfg Config, verifier Verifier) (*Identity, error) {
	if cfg.TrustSnippets {
		if id := snippetIdentity(r); id != nil {
			return id, nil
		}
	}

	token := bearerToken(r)
	if token == "" {
		if cfg.Mode == ModeRequired {
			return nil, gwerr.New(gwerr.CodeAuthRequired, "missing bearer token")
		}
		return nil, nil
	}

	if verifier != nil {
		claims, err := verifier.Verify(ctx, token)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.CodeInvalidToken, "token verification failed", err)
		}
		return identityFromClaims(claims), nil
	}

	if cfg.TrustUnverified {
		claims, err := decodeUnverified(token)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.CodeInvalidToken, "could not decode token", err)
		}
		warnUnverified(token)
		return identityFromClaims(claims), nil
	}

	if cfg.Mode == ModeRequired {
		return nil, gwerr.New(gwerr.CodeAuthRequired, "no verifier configured and trustUnverified is disabled")
	}
	return nil, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func snippetIdentity(r *http.Request) *Identity {
	if r.Header.Get("x-snippet-auth-valid") != "true" {
		return nil
	}
	userID := r.Header.Get("x-snippet-user-id")
	if userID == "" {
		return nil
	}
	return &Identity{
		UserID: userID,
		Email:  r.Header.Get("x-snippet-user-email"),
		Name:   r.Header.Get("x-snippet-user-name"),
	}
}

func identityFromClaims(claims jwt.MapClaims) *Identity {
	id := &Identity{}
	if sub, ok := claims["sub"].(string); ok {
		id.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	return id
}

// decodeUnverified parses a JWT's claims without checking its signature.
func decodeUnverified(token string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
