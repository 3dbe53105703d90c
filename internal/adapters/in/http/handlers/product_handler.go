// internal/adapters/in/http/handlers/product_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	usecase "talentagency/internal/application/usecase"
	productdom "talentagency/internal/domain/product"
)

// CatalogLister is the read side served from memory.
type CatalogLister interface {
	List(ctx context.Context, f productdom.Filter) ([]productdom.Product, error)
	Subscribe() (<-chan []productdom.Product, func())
	Ready() bool
}

type ProductHandler struct {
	reader    CatalogLister
	uc        *usecase.CatalogUsecase
	heartbeat time.Duration
}

func NewProductHandler(reader CatalogLister, uc *usecase.CatalogUsecase) http.Handler {
	return &ProductHandler{reader: reader, uc: uc, heartbeat: 25 * time.Second}
}

func (h *ProductHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/shop/products")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 1 && parts[0] == "stream":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.stream(w, r)

	case len(parts) == 1:
		id := parts[0]
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodPut, http.MethodPatch:
			h.update(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			methodNotAllowed(w)
		}

	default:
		notFound(w)
	}
}

// filterFrom reads ?kind=&category=&inStock=
func filterFrom(r *http.Request) (productdom.Filter, error) {
	q := r.URL.Query()
	var f productdom.Filter
	if k := strings.TrimSpace(q.Get("kind")); k != "" {
		kind, err := productdom.ParseKind(k)
		if err != nil {
			return f, err
		}
		f.Kind = kind
	}
	f.Category = strings.TrimSpace(q.Get("category"))
	if v := strings.TrimSpace(q.Get("inStock")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("invalid inStock %q", v)
		}
		f.InStockOnly = b
	}
	return f, nil
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := h.reader.List(r.Context(), f)
	if err != nil {
		writeError(w, "product_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "live": h.reader.Ready()})
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.uc.Get(r.Context(), r.URL.Query().Get("kind"), id)
	if err != nil {
		writeError(w, "product_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var in usecase.ProductInput
	if err := readJSON(r, &in); err != nil {
		badRequest(w, "invalid json")
		return
	}
	p, err := h.uc.Create(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, "product_handler", err)
		return
	}
	log.Printf("[product_handler] created id=%s kind=%s", p.ID, p.Kind)
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var patch productdom.Patch
	if err := readJSON(r, &patch); err != nil {
		badRequest(w, "invalid json")
		return
	}
	p, err := h.uc.Update(r.Context(), caller(r), id, patch)
	if err != nil {
		writeError(w, "product_handler", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.uc.Delete(r.Context(), caller(r), id); err != nil {
		writeError(w, "product_handler", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// stream pushes the filtered catalog as server-sent events until the client leaves.
func (h *ProductHandler) stream(w http.ResponseWriter, r *http.Request) {
	f, err := filterFrom(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	rc := http.NewResponseController(w)
	// server の WriteTimeout を無効化
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Printf("[product_handler] stream flush unsupported err=%v", err)
		return
	}

	ctx := r.Context()
	updates, cancel := h.reader.Subscribe()
	defer cancel()

	send := func(items []productdom.Product) error {
		out := make([]productdom.Product, 0, len(items))
		for _, p := range items {
			if f.Match(p) {
				out = append(out, p)
			}
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: products\ndata: %s\n\n", b); err != nil {
			return err
		}
		return rc.Flush()
	}

	// listener がまだなら repository から初回分を送る
	if !h.reader.Ready() {
		items, err := h.reader.List(ctx, productdom.Filter{})
		if err != nil {
			log.Printf("[product_handler] stream initial list failed err=%v", err)
			items = []productdom.Product{}
		}
		if err := send(items); err != nil {
			return
		}
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case items, ok := <-updates:
			if !ok {
				return
			}
			if err := send(items); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
