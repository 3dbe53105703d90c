// internal/adapters/in/http/middleware/middleware_test.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"

	authdom "talentagency/internal/domain/auth"
)

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*fbauth.Token, error) {
	if t, ok := f.tokens[idToken]; ok {
		return t, nil
	}
	return nil, errors.New("ID token has invalid signature")
}

func newAuth() *UserAuthMiddleware {
	return &UserAuthMiddleware{Verifier: fakeVerifier{tokens: map[string]*fbauth.Token{
		"user-token":  {UID: "user-1", Claims: map[string]any{"email": "ada@example.com", "name": "Ada"}},
		"admin-token": {UID: "admin-1", Claims: map[string]any{"email": "ops@example.com", "admin": true}},
		"role-token":  {UID: "admin-2", Claims: map[string]any{"role": "Admin"}},
	}}}
}

func echoIdentity(got *authdom.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func do(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequire(t *testing.T) {
	var got authdom.Identity
	h := newAuth().Require(echoIdentity(&got))

	rec := do(h, "user-token")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, authdom.Identity{UID: "user-1", Email: "ada@example.com", DisplayName: "Ada"}, got)

	assert.Equal(t, http.StatusUnauthorized, do(h, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, "forged").Code)
	assert.Contains(t, do(h, "").Body.String(), `"code":"unauthenticated"`)
}

func TestRequire_NotInitialized(t *testing.T) {
	var got authdom.Identity
	h := (&UserAuthMiddleware{}).Require(echoIdentity(&got))
	assert.Equal(t, http.StatusServiceUnavailable, do(h, "user-token").Code)
}

func TestOptional(t *testing.T) {
	var got authdom.Identity
	h := newAuth().Optional(echoIdentity(&got))

	do(h, "")
	assert.False(t, got.Authenticated())

	do(h, "forged")
	assert.False(t, got.Authenticated())

	do(h, "user-token")
	assert.Equal(t, "user-1", got.UID)
}

func TestRequireAdmin(t *testing.T) {
	var got authdom.Identity
	h := newAuth().RequireAdmin(echoIdentity(&got))

	assert.Equal(t, http.StatusForbidden, do(h, "user-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, "").Code)

	assert.Equal(t, http.StatusNoContent, do(h, "admin-token").Code)
	assert.True(t, got.IsAdmin)

	assert.Equal(t, http.StatusNoContent, do(h, "role-token").Code)
	assert.Equal(t, "admin-2", got.UID)
}

func TestCORS(t *testing.T) {
	h := CORS("https://agency.example, https://admin.agency.example/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/me/cart", nil)
	req.Header.Set("Origin", "https://admin.agency.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.agency.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/me/cart", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"internal"}`, rec.Body.String())
}
