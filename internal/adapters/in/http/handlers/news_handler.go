// internal/adapters/in/http/handlers/news_handler.go
package handlers

import (
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
	newsdom "talentagency/internal/domain/news"
)

type NewsHandler struct {
	uc *usecase.NewsUsecase
}

func NewNewsHandler(uc *usecase.NewsUsecase) http.Handler {
	return &NewsHandler{uc: uc}
}

type commentRequest struct {
	Body string `json:"body"`
}

func (h *NewsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case strings.HasPrefix(path, "/admin/news/posts"):
		h.serveAdmin(w, r, pathParts(path, "/admin/news/posts"))
	case strings.HasPrefix(path, "/news/posts"):
		h.servePosts(w, r, pathParts(path, "/news/posts"))
	case strings.HasPrefix(path, "/news/comments/"):
		parts := pathParts(path, "/news/comments")
		if len(parts) != 1 {
			notFound(w)
			return
		}
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		if err := h.uc.DeleteComment(r.Context(), caller(r), parts[0]); err != nil {
			writeError(w, "news_handler", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		notFound(w)
	}
}

// GET  /news/posts
// GET  /news/posts/{slug}
// GET  /news/posts/{id}/comments
// POST /news/posts/{id}/comments
func (h *NewsHandler) servePosts(w http.ResponseWriter, r *http.Request, parts []string) {
	ctx := r.Context()
	switch {
	case len(parts) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		posts, err := h.uc.ListPublished(ctx)
		if err != nil {
			writeError(w, "news_handler", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": nonNilPosts(posts)})

	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		p, err := h.uc.GetBySlug(ctx, caller(r), parts[0])
		if err != nil {
			writeError(w, "news_handler", err)
			return
		}
		writeJSON(w, http.StatusOK, p)

	case len(parts) == 2 && parts[1] == "comments":
		postID := parts[0]
		switch r.Method {
		case http.MethodGet:
			cs, err := h.uc.ListComments(ctx, postID)
			if err != nil {
				writeError(w, "news_handler", err)
				return
			}
			if cs == nil {
				cs = []newsdom.Comment{}
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": cs})
		case http.MethodPost:
			var req commentRequest
			if err := readJSON(r, &req); err != nil {
				badRequest(w, "invalid json")
				return
			}
			c, err := h.uc.AddComment(ctx, caller(r), postID, req.Body)
			if err != nil {
				writeError(w, "news_handler", err)
				return
			}
			writeJSON(w, http.StatusCreated, c)
		default:
			methodNotAllowed(w)
		}

	default:
		notFound(w)
	}
}

// GET    /admin/news/posts
// POST   /admin/news/posts
// PUT    /admin/news/posts/{id}
// DELETE /admin/news/posts/{id}
func (h *NewsHandler) serveAdmin(w http.ResponseWriter, r *http.Request, parts []string) {
	ctx := r.Context()
	who := caller(r)
	switch len(parts) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			posts, err := h.uc.ListAll(ctx, who)
			if err != nil {
				writeError(w, "news_handler", err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"items": nonNilPosts(posts)})
		case http.MethodPost:
			var in usecase.PostInput
			if err := readJSON(r, &in); err != nil {
				badRequest(w, "invalid json")
				return
			}
			p, err := h.uc.Create(ctx, who, in)
			if err != nil {
				writeError(w, "news_handler", err)
				return
			}
			writeJSON(w, http.StatusCreated, p)
		default:
			methodNotAllowed(w)
		}

	case 1:
		id := parts[0]
		switch r.Method {
		case http.MethodPut, http.MethodPatch:
			var patch newsdom.PostPatch
			if err := readJSON(r, &patch); err != nil {
				badRequest(w, "invalid json")
				return
			}
			p, err := h.uc.Update(ctx, who, id, patch)
			if err != nil {
				writeError(w, "news_handler", err)
				return
			}
			writeJSON(w, http.StatusOK, p)
		case http.MethodDelete:
			if err := h.uc.Delete(ctx, who, id); err != nil {
				writeError(w, "news_handler", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w)
		}

	default:
		notFound(w)
	}
}

func nonNilPosts(in []newsdom.Post) []newsdom.Post {
	if in == nil {
		return []newsdom.Post{}
	}
	return in
}
