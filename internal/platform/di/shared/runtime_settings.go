// backend/internal/platform/di/shared/runtime_settings.go
package shared

import (
	"errors"
	"strings"

	appcfg "talentagency/internal/infra/config"
)

// RuntimeSettings is env/config-resolved runtime settings (normalized once).
// It contains only values, no external clients.
// Hard validation lives in runtime_settings_validate.go.
type RuntimeSettings struct {
	// Used by ImageUsecase (GCS)
	ImageBucket        string
	ImagePublicBaseURL string

	// Used by Mailer
	MailFrom      string
	MailFromName  string
	MerchantEmail string

	// Used by CheckoutUsecase / PaymentGatewayClient
	PaymentPublicKey string
	PaymentBaseURL   string
	PaymentCurrency  string

	// Used by OrderUsecase / order repository selection
	OrderStatusPolicy string
	OrderStore        string
	DatabaseURL       string

	CorsAllowedOrigin string
}

// ResolveRuntimeSettings resolves and normalizes runtime settings from cfg.
// It does not log; warnings are returned so the caller decides how to surface them.
func ResolveRuntimeSettings(cfg *appcfg.Config) (RuntimeSettings, []string, error) {
	if cfg == nil {
		return RuntimeSettings{}, nil, errors.New("shared.runtime_settings: cfg is nil")
	}

	var warns []string
	s := RuntimeSettings{
		ImageBucket:        strings.TrimSpace(cfg.ImageBucket),
		ImagePublicBaseURL: normalizeBaseURL(cfg.ImagePublicBaseURL),
		MailFrom:           strings.TrimSpace(cfg.MailFrom),
		MailFromName:       strings.TrimSpace(cfg.MailFromName),
		MerchantEmail:      strings.TrimSpace(cfg.MerchantEmail),
		PaymentPublicKey:   strings.TrimSpace(cfg.PaymentPublicKey),
		PaymentBaseURL:     normalizeBaseURL(cfg.PaymentBaseURL),
		PaymentCurrency:    strings.ToUpper(strings.TrimSpace(cfg.PaymentCurrency)),
		OrderStatusPolicy:  strings.ToLower(strings.TrimSpace(cfg.OrderStatusPolicy)),
		OrderStore:         strings.ToLower(strings.TrimSpace(cfg.OrderStore)),
		DatabaseURL:        strings.TrimSpace(cfg.DatabaseURL),
		CorsAllowedOrigin:  strings.TrimSpace(cfg.CorsAllowedOrigin),
	}

	if s.OrderStatusPolicy == "" {
		s.OrderStatusPolicy = "faithful"
	}
	if s.OrderStore == "" {
		s.OrderStore = "firestore"
	}

	if s.ImageBucket == "" {
		warns = append(warns, "IMAGE_BUCKET is empty (image uploads will fail)")
	}
	if s.MailFrom == "" {
		warns = append(warns, "MAIL_FROM is empty (outgoing mail will fail)")
	}
	if s.MerchantEmail == "" {
		warns = append(warns, "MERCHANT_EMAIL is empty (merchant order copies and form notifications are skipped)")
	}
	if s.PaymentPublicKey == "" {
		warns = append(warns, "PAYMENT_PUBLIC_KEY is empty (checkout widgets cannot open)")
	}
	if s.CorsAllowedOrigin == "*" {
		warns = append(warns, "CORS_ALLOWED_ORIGIN is * (any origin may call the API)")
	}

	return s, warns, nil
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" {
		return ""
	}
	return strings.TrimRight(u, "/")
}
