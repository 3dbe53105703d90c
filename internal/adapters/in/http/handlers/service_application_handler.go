// internal/adapters/in/http/handlers/service_application_handler.go
package handlers

import (
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
	appdom "talentagency/internal/domain/serviceapp"
)

type ServiceApplicationHandler struct {
	uc *usecase.ServiceApplicationUsecase
}

func NewServiceApplicationHandler(uc *usecase.ServiceApplicationUsecase) http.Handler {
	return &ServiceApplicationHandler{uc: uc}
}

// POST /service-applications
// GET  /admin/service-applications
// GET  /admin/service-applications/{id}
func (h *ServiceApplicationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")

	if path == "/service-applications" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.submit(w, r)
		return
	}

	if !strings.HasPrefix(path, "/admin/service-applications") {
		notFound(w)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	parts := pathParts(path, "/admin/service-applications")
	switch len(parts) {
	case 0:
		apps, err := h.uc.List(r.Context(), caller(r))
		if err != nil {
			writeError(w, "service_app_handler", err)
			return
		}
		if apps == nil {
			apps = []appdom.Application{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": apps})
	case 1:
		a, err := h.uc.Get(r.Context(), caller(r), parts[0])
		if err != nil {
			writeError(w, "service_app_handler", err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	default:
		notFound(w)
	}
}

func (h *ServiceApplicationHandler) submit(w http.ResponseWriter, r *http.Request) {
	var in usecase.ServiceApplicationInput
	if err := readJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid json", Code: "bad_request"})
		return
	}
	app, err := h.uc.Submit(r.Context(), in)
	if err != nil {
		writeEnvelopeError(w, err, "We could not submit your application. Please try again later.")
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Your application has been received. Our team will contact you soon.",
		ID:      app.ID,
	})
}
