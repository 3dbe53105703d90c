// internal/adapters/in/http/handlers/image_handler.go
package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
)

// multipart overhead on top of the 10MB image limit
const maxUploadBody = 11 << 20

type ImageHandler struct {
	uc *usecase.ImageUsecase
}

func NewImageHandler(uc *usecase.ImageUsecase) http.Handler {
	return &ImageHandler{uc: uc}
}

// POST /uploads/images  (multipart: file, folder)
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSuffix(r.URL.Path, "/") != "/uploads/images" {
		notFound(w)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, "image_handler", usecase.ErrImageTooLarge)
			return
		}
		badRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(w, "failed to read file")
		return
	}

	res, err := h.uc.Upload(r.Context(), caller(r), r.FormValue("folder"), header.Filename, data)
	if err != nil {
		writeError(w, "image_handler", err)
		return
	}
	log.Printf("[image_handler] uploaded uid=%s type=%s size=%d", maskUID(caller(r).UID), res.ContentType, res.Size)
	writeJSON(w, http.StatusCreated, res)
}
