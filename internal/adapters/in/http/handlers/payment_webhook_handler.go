// internal/adapters/in/http/handlers/payment_webhook_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	usecase "talentagency/internal/application/usecase"
	checkoutdom "talentagency/internal/domain/checkout"
)

const signatureHeader = "X-Paystack-Signature"

// SignatureVerifier checks the gateway's HMAC over the raw body.
type SignatureVerifier interface {
	VerifySignature(body []byte, signature string) error
}

// WebhookCompleter is satisfied by *usecase.CheckoutUsecase.
type WebhookCompleter interface {
	CompleteFromWebhook(ctx context.Context, reference string) (checkoutdom.Result, error)
}

type PaymentWebhookHandler struct {
	verifier  SignatureVerifier
	completer WebhookCompleter
}

func NewPaymentWebhookHandler(verifier SignatureVerifier, completer WebhookCompleter) http.Handler {
	return &PaymentWebhookHandler{verifier: verifier, completer: completer}
}

type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"data"`
}

// POST /webhooks/payment
//
// 200 tells the gateway to stop retrying; 5xx asks for a retry.
func (h *PaymentWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if h.verifier == nil || h.completer == nil {
		writeError(w, "payment_webhook", usecase.ErrCheckoutUnavailable)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		badRequest(w, "failed to read body")
		return
	}
	if err := h.verifier.VerifySignature(body, r.Header.Get(signatureHeader)); err != nil {
		log.Printf("[payment_webhook] signature rejected err=%v", err)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid signature", "code": "invalid_signature"})
		return
	}

	var ev webhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		badRequest(w, "invalid json")
		return
	}
	ref := strings.TrimSpace(ev.Data.Reference)
	if ev.Event != "charge.success" || ref == "" {
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "ignored": true})
		return
	}

	res, err := h.completer.CompleteFromWebhook(r.Context(), ref)
	switch {
	case err == nil:
		log.Printf("[payment_webhook] completed ref=%s order=%s warnings=%v", ref, res.OrderID, res.Warnings)
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "status": res.State, "orderId": res.OrderID})
	case errors.Is(err, checkoutdom.ErrNotFound),
		errors.Is(err, checkoutdom.ErrInvalidTransition),
		errors.Is(err, usecase.ErrPaymentNotConfirmed),
		errors.Is(err, usecase.ErrPaymentAmountMismatch):
		// 再送しても結果は変わらない
		log.Printf("[payment_webhook] ignored ref=%s err=%v", ref, err)
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "ignored": true})
	default:
		writeError(w, "payment_webhook", err)
	}
}
