// internal/adapters/in/http/handlers/cart_handler.go
package handlers

import (
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
	productdom "talentagency/internal/domain/product"
)

type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) http.Handler {
	return &CartHandler{uc: uc}
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Kind      string `json:"kind"`
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

// /me/cart, /me/cart/items, /me/cart/items/{id}
func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(caller(r).UID)
	if uid == "" {
		writeError(w, "cart_handler", usecase.ErrUnauthenticated)
		return
	}
	ctx := r.Context()
	parts := pathParts(r.URL.Path, "/me/cart")

	var (
		view usecase.CartView
		err  error
	)
	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			view, err = h.uc.Load(ctx, uid)
		case http.MethodDelete:
			view, err = h.uc.ClearCart(ctx, uid)
		default:
			methodNotAllowed(w)
			return
		}

	case len(parts) == 1 && parts[0] == "items":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req addItemRequest
		if err := readJSON(r, &req); err != nil {
			badRequest(w, "invalid json")
			return
		}
		kind, kerr := productdom.ParseKind(req.Kind)
		if kerr != nil {
			writeError(w, "cart_handler", kerr)
			return
		}
		view, err = h.uc.AddToCart(ctx, uid, kind, req.ProductID)

	case len(parts) == 2 && parts[0] == "items":
		id := parts[1]
		switch r.Method {
		case http.MethodPatch:
			var req quantityRequest
			if err := readJSON(r, &req); err != nil {
				badRequest(w, "invalid json")
				return
			}
			view, err = h.uc.UpdateQuantity(ctx, uid, id, req.Delta)
		case http.MethodDelete:
			view, err = h.uc.RemoveFromCart(ctx, uid, id)
		default:
			methodNotAllowed(w)
			return
		}

	default:
		notFound(w)
		return
	}

	if err != nil {
		writeError(w, "cart_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
