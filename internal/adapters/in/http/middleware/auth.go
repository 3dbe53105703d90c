// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	authdom "talentagency/internal/domain/auth"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var ctxKeyIdentity = ctxKey{name: "identity"}

// WithIdentity stores id on ctx. Handlers read it back with IdentityFrom.
func WithIdentity(ctx context.Context, id authdom.Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFrom returns the caller identity, or Anonymous.
func IdentityFrom(ctx context.Context) authdom.Identity {
	if v, ok := ctx.Value(ctxKeyIdentity).(authdom.Identity); ok {
		return v
	}
	return authdom.Anonymous
}

// UserAuthMiddleware verifies "Authorization: Bearer <Firebase ID token>".
// The admin flag comes from the custom claim admin=true or role=admin.
type UserAuthMiddleware struct {
	Verifier TokenVerifier
}

// Require rejects requests without a valid token.
func (m *UserAuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, status, msg := m.resolve(r)
		if status != 0 {
			writeAuthError(w, status, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Optional attaches the identity when a valid token is present and otherwise
// continues anonymously.
func (m *UserAuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
			next.ServeHTTP(w, r)
			return
		}
		id, status, _ := m.resolve(r)
		if status != 0 {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin is Require plus the admin claim. Usecases check the flag again.
func (m *UserAuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFrom(r.Context()).IsAdmin {
			writeAuthError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (m *UserAuthMiddleware) resolve(r *http.Request) (authdom.Identity, int, string) {
	if m == nil || m.Verifier == nil {
		return authdom.Anonymous, http.StatusServiceUnavailable, "auth middleware not initialized"
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return authdom.Anonymous, http.StatusUnauthorized, "unauthorized: missing bearer token"
	}
	idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if idToken == "" {
		return authdom.Anonymous, http.StatusUnauthorized, "unauthorized: empty bearer token"
	}

	token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
	if err != nil {
		log.Printf("[user_auth] verify failed path=%s err=%v", r.URL.Path, err)
		return authdom.Anonymous, http.StatusUnauthorized, "invalid token"
	}
	uid := strings.TrimSpace(token.UID)
	if uid == "" {
		return authdom.Anonymous, http.StatusUnauthorized, "invalid uid in token"
	}

	return authdom.Identity{
		UID:         uid,
		Email:       claimString(token.Claims, "email"),
		DisplayName: claimString(token.Claims, "name"),
		IsAdmin:     isAdminClaim(token.Claims),
	}, 0, ""
}

func claimString(c map[string]any, key string) string {
	if v, ok := c[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func isAdminClaim(c map[string]any) bool {
	if v, ok := c["admin"].(bool); ok && v {
		return true
	}
	return strings.EqualFold(claimString(c, "role"), "admin")
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	code := "unauthenticated"
	switch status {
	case http.StatusForbidden:
		code = "forbidden"
	case http.StatusServiceUnavailable:
		code = "unavailable"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
