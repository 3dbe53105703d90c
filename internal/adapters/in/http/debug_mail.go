package httpin

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"talentagency/internal/adapters/out/mail"
)

// NewMailDebugHandler sends one test email to the merchant inbox so operators
// can check SendGrid credentials without placing an order.
//
// POST /admin/debug/mail
func NewMailDebugHandler(client mail.EmailClient, from, fromName, to string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
			return
		}
		if client == nil || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "mail not configured", "code": "unavailable"})
			return
		}

		err := client.Send(r.Context(), mail.Message{
			FromName: fromName,
			From:     from,
			To:       to,
			Subject:  "Mail Debug Test",
			Text:     "This is a debug email sent at " + time.Now().UTC().Format(time.RFC3339) + ".",
		})
		if err != nil {
			log.Printf("[debug_mail] send failed err=%v", err)
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "code": "mail_delivery_failed"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sent": true, "to": to})
	})
}
