// internal/adapters/in/http/handlers/checkout_handler.go
package handlers

import (
	"log"
	"net/http"

	usecase "talentagency/internal/application/usecase"
	checkoutdom "talentagency/internal/domain/checkout"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{uc: uc}
}

// POST /me/checkout
// POST /me/checkout/{ref}/success
// POST /me/checkout/{ref}/close
func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	who := caller(r)
	parts := pathParts(r.URL.Path, "/me/checkout")

	switch {
	case len(parts) == 0:
		var in usecase.DeliveryInput
		if err := readJSON(r, &in); err != nil {
			badRequest(w, "invalid json")
			return
		}
		sess, err := h.uc.Begin(r.Context(), who, in)
		if err != nil {
			writeError(w, "checkout_handler", err)
			return
		}
		log.Printf("[checkout_handler] begin uid=%s ref=%s amount=%d", maskUID(who.UID), sess.Reference, sess.Amount)
		writeJSON(w, http.StatusCreated, sess)

	case len(parts) == 2 && parts[1] == "success":
		res, err := h.uc.Complete(r.Context(), who, parts[0])
		h.writeResult(w, res, err)

	case len(parts) == 2 && parts[1] == "close":
		res, err := h.uc.Abandon(r.Context(), who, parts[0])
		h.writeResult(w, res, err)

	default:
		notFound(w)
	}
}

func (h *CheckoutHandler) writeResult(w http.ResponseWriter, res checkoutdom.Result, err error) {
	if err != nil {
		writeError(w, "checkout_handler", err)
		return
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	writeJSON(w, http.StatusOK, res)
}
