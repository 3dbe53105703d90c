// internal/adapters/in/http/handlers/auth_handler.go
package handlers

import (
	"log"
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) http.Handler {
	return &AuthHandler{uc: uc}
}

// POST /auth/sign-up
// POST /auth/sign-in
func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/auth/sign-up":
		var in usecase.SignUpInput
		if err := readJSON(r, &in); err != nil {
			badRequest(w, "invalid json")
			return
		}
		uid, err := h.uc.SignUp(r.Context(), in)
		if err != nil {
			writeError(w, "auth_handler", err)
			return
		}
		log.Printf("[auth_handler] sign-up uid=%s", maskUID(uid))
		writeJSON(w, http.StatusCreated, map[string]string{"uid": uid})

	case "/auth/sign-in":
		var in usecase.SignInInput
		if err := readJSON(r, &in); err != nil {
			badRequest(w, "invalid json")
			return
		}
		sess, err := h.uc.SignIn(r.Context(), in)
		if err != nil {
			writeError(w, "auth_handler", err)
			return
		}
		writeJSON(w, http.StatusOK, sess)

	default:
		notFound(w)
	}
}
