// internal/adapters/in/http/handlers/contact_handler.go
package handlers

import (
	"errors"
	"net/http"

	usecase "talentagency/internal/application/usecase"
)

// envelope is the {success, message} shape the public forms answer with.
type envelope struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Code    string               `json:"code,omitempty"`
	Fields  []usecase.FieldError `json:"fields,omitempty"`
	ID      string               `json:"id,omitempty"`
}

func writeEnvelopeError(w http.ResponseWriter, err error, fallback string) {
	status, code := statusFor(err)
	env := envelope{Success: false, Message: fallback, Code: code}
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		env.Message = "Please check the highlighted fields."
		env.Fields = ve.Fields
	}
	writeJSON(w, status, env)
}

type ContactHandler struct {
	uc *usecase.ContactUsecase
}

func NewContactHandler(uc *usecase.ContactUsecase) http.Handler {
	return &ContactHandler{uc: uc}
}

// POST /contact
func (h *ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var msg usecase.ContactMessage
	if err := readJSON(r, &msg); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid json", Code: "bad_request"})
		return
	}
	autoReplied, err := h.uc.Send(r.Context(), msg)
	if err != nil {
		writeEnvelopeError(w, err, "We could not send your message. Please try again later.")
		return
	}
	text := "Thanks for reaching out. We will get back to you shortly."
	if autoReplied {
		text += " A confirmation has been sent to your inbox."
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: text})
}
