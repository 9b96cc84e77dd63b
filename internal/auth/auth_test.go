package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/gatewayd/internal/gwerr"
)

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestResolveBearerVerified(t *testing.T) {
	v := NewJWTVerifier("s3cret")
	token := signedToken(t, "s3cret", jwt.MapClaims{"sub": "user_1", "email": "a@b.co", "name": "Alice"})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	id, err := Resolve(context.Background(), r, Config{Mode: ModeRequired}, v)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user_1", id.UserID)
	assert.Equal(t, "a@b.co", id.Email)
	assert.Equal(t, "Alice", id.Name)
}

func TestResolveBadSignature(t *testing.T) {
	v := NewJWTVerifier("s3cret")
	token := signedToken(t, "wrong", jwt.MapClaims{"sub": "user_1"})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	_, err := Resolve(context.Background(), r, Config{Mode: ModeRequired}, v)
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeInvalidToken, gwerr.As(err).Code)
}

func TestResolveMissingTokenRequired(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := Resolve(context.Background(), r, Config{Mode: ModeRequired}, nil)
	require.Error(t, err)
	assert.Equal(t, gwerr.CodeAuthRequired, gwerr.As(err).Code)
}

func TestResolveMissingTokenOptional(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	id, err := Resolve(context.Background(), r, Config{Mode: ModeOptional}, nil)
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestSnippetHeadersTrusted(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("x-snippet-auth-valid", "true")
	r.Header.Set("x-snippet-user-id", "user_7")
	r.Header.Set("x-snippet-user-email", "c@d.co")

	id, err := Resolve(context.Background(), r, Config{Mode: ModeRequired, TrustSnippets: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user_7", id.UserID)
	assert.Equal(t, "c@d.co", id.Email)
}

func TestSnippetHeadersIgnoredWhenUntrusted(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("x-snippet-auth-valid", "true")
	r.Header.Set("x-snippet-user-id", "user_7")

	_, err := Resolve(context.Background(), r, Config{Mode: ModeRequired, TrustSnippets: false}, nil)
	assert.Error(t, err, "snippet headers carry no weight unless trustSnippets is on")
}

func TestSnippetPrecedenceOverBearer(t *testing.T) {
	v := NewJWTVerifier("s3cret")
	token := signedToken(t, "s3cret", jwt.MapClaims{"sub": "bearer_user"})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("x-snippet-auth-valid", "true")
	r.Header.Set("x-snippet-user-id", "snippet_user")

	id, err := Resolve(context.Background(), r, Config{Mode: ModeRequired, TrustSnippets: true}, v)
	require.NoError(t, err)
	assert.Equal(t, "snippet_user", id.UserID)
}

func TestTrustUnverifiedDecodesClaims(t *testing.T) {
	token := signedToken(t, "whatever", jwt.MapClaims{"sub": "user_42"})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	// no verifier configured, but the migration flag is on
	id, err := Resolve(context.Background(), r, Config{Mode: ModeRequired, TrustUnverified: true}, nil)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user_42", id.UserID)
}

func TestNoVerifierNoTrustRejects(t *testing.T) {
	token := signedToken(t, "whatever", jwt.MapClaims{"sub": "user_42"})

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	_, err := Resolve(context.Background(), r, Config{Mode: ModeRequired}, nil)
	assert.Error(t, err)
}
