// internal/adapters/in/http/handlers/wishlist_handler.go
package handlers

import (
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
	productdom "talentagency/internal/domain/product"
)

type WishlistHandler struct {
	uc *usecase.WishlistUsecase
}

func NewWishlistHandler(uc *usecase.WishlistUsecase) http.Handler {
	return &WishlistHandler{uc: uc}
}

// /me/wishlist, /me/wishlist/items, /me/wishlist/items/{id}
func (h *WishlistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(caller(r).UID)
	if uid == "" {
		writeError(w, "wishlist_handler", usecase.ErrUnauthenticated)
		return
	}
	ctx := r.Context()
	parts := pathParts(r.URL.Path, "/me/wishlist")

	var (
		view usecase.WishlistView
		err  error
	)
	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			view, err = h.uc.Load(ctx, uid)
		case http.MethodDelete:
			view, err = h.uc.ClearWishlist(ctx, uid)
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
			writeError(w, "wishlist_handler", kerr)
			return
		}
		view, err = h.uc.AddToWishlist(ctx, uid, kind, req.ProductID)

	case len(parts) == 2 && parts[0] == "items":
		id := parts[1]
		switch r.Method {
		case http.MethodGet:
			in, err := h.uc.IsInWishlist(ctx, uid, id)
			if err != nil {
				writeError(w, "wishlist_handler", err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"productId": id, "inWishlist": in})
			return
		case http.MethodDelete:
			view, err = h.uc.RemoveFromWishlist(ctx, uid, id)
		default:
			methodNotAllowed(w)
			return
		}

	default:
		notFound(w)
		return
	}

	if err != nil {
		writeError(w, "wishlist_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
