// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"talentagency/internal/adapters/in/http/middleware"
	authdom "talentagency/internal/domain/auth"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed", "code": "method_not_allowed"})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found", "code": "not_found"})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": strings.TrimSpace(msg), "code": "bad_request"})
}

// readJSON decodes at most 1MB and rejects unknown fields.
func readJSON(r *http.Request, dst any) error {
	if dst == nil {
		return errors.New("dst is nil")
	}
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)) // 1MB
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// maskUID: Firebase UID をそのまま出さない
func maskUID(uid string) string {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return ""
	}
	if len(uid) <= 6 {
		return "***"
	}
	return "***" + uid[len(uid)-6:]
}

func caller(r *http.Request) authdom.Identity {
	return middleware.IdentityFrom(r.Context())
}

// pathParts returns the non-empty segments after prefix.
// "/me/cart/items/p1" with prefix "/me/cart" -> ["items", "p1"]
func pathParts(path, prefix string) []string {
	rest := strings.TrimPrefix(strings.TrimRight(path, "/"), prefix)
	out := []string{}
	for _, s := range strings.Split(rest, "/") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
