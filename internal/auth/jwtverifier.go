package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// JWTVerifier verifies a bearer token's signature with a fixed HMAC
// secret. Production deployments that front a real identity provider
// supply their own Verifier (spec §1: "Authentication token verification
// internals" are an external collaborator) — this implementation exists
// for self-contained deployments and tests.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier builds a Verifier that checks HS256/HS384/HS512
// signatures against secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(ctx context.Context, token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
