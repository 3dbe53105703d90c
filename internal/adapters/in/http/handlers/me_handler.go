// internal/adapters/in/http/handlers/me_handler.go
package handlers

import (
	"net/http"

	usecase "talentagency/internal/application/usecase"
)

// MeHandler echoes the verified identity.
type MeHandler struct{}

func NewMeHandler() http.Handler { return MeHandler{} }

func (MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	who := caller(r)
	if !who.Authenticated() {
		writeError(w, "me_handler", usecase.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, who)
}
