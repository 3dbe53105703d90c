// internal/adapters/in/http/handlers/order_handler.go
package handlers

import (
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
	orderdom "talentagency/internal/domain/order"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) http.Handler {
	return &OrderHandler{uc: uc}
}

type statusRequest struct {
	Status string `json:"status"`
}

// GET   /me/orders
// GET   /me/orders/{id}
// GET   /admin/orders
// PATCH /admin/orders/{id}/status
func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/me/orders" || strings.HasPrefix(path, "/me/orders/"):
		h.serveMine(w, r, pathParts(path, "/me/orders"))
	case path == "/admin/orders" || strings.HasPrefix(path, "/admin/orders/"):
		h.serveAdmin(w, r, pathParts(path, "/admin/orders"))
	default:
		notFound(w)
	}
}

func (h *OrderHandler) serveMine(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	switch len(parts) {
	case 0:
		orders, err := h.uc.GetUserOrders(r.Context(), caller(r))
		if err != nil {
			writeError(w, "order_handler", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": nonNilOrders(orders)})
	case 1:
		h.getOne(w, r, parts[0])
	default:
		notFound(w)
	}
}

func (h *OrderHandler) serveAdmin(w http.ResponseWriter, r *http.Request, parts []string) {
	switch {
	case len(parts) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		orders, err := h.uc.GetAllOrders(r.Context(), caller(r))
		if err != nil {
			writeError(w, "order_handler", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": nonNilOrders(orders)})

	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.getOne(w, r, parts[0])

	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPatch && r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		var req statusRequest
		if err := readJSON(r, &req); err != nil {
			badRequest(w, "invalid json")
			return
		}
		o, err := h.uc.UpdateOrderStatus(r.Context(), caller(r), parts[0], req.Status)
		if err != nil {
			writeError(w, "order_handler", err)
			return
		}
		writeJSON(w, http.StatusOK, o)

	default:
		notFound(w)
	}
}

// getOne answers 404 both for a missing order and for one the caller may not see.
func (h *OrderHandler) getOne(w http.ResponseWriter, r *http.Request, id string) {
	o, err := h.uc.GetOrder(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, "order_handler", err)
		return
	}
	if o == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func nonNilOrders(in []orderdom.Order) []orderdom.Order {
	if in == nil {
		return []orderdom.Order{}
	}
	return in
}
