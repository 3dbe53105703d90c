// backend/internal/platform/di/shared/runtime_settings_validate.go
package shared

import (
	"fmt"
	"net/url"
	"strings"
)

var supportedCurrencies = map[string]struct{}{
	"NGN": {},
	"GHS": {},
	"ZAR": {},
	"KES": {},
	"USD": {},
}

// Validate fails fast for values that would cause undefined behavior.
// Optional features stay disabled when their settings are empty.
func (s RuntimeSettings) Validate() error {
	if _, ok := supportedCurrencies[s.PaymentCurrency]; !ok {
		return fmt.Errorf("shared.runtime_settings: unsupported PAYMENT_CURRENCY %q", s.PaymentCurrency)
	}

	switch s.OrderStatusPolicy {
	case "faithful", "strict":
	default:
		return fmt.Errorf("shared.runtime_settings: ORDER_STATUS_POLICY must be faithful or strict (got %q)", s.OrderStatusPolicy)
	}

	switch s.OrderStore {
	case "firestore":
	case "postgres":
		if s.DatabaseURL == "" {
			return fmt.Errorf("shared.runtime_settings: ORDER_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("shared.runtime_settings: ORDER_STORE must be firestore or postgres (got %q)", s.OrderStore)
	}

	// PaymentBaseURL は scheme://host[:port] のみ
	if err := validateBaseURL("PAYMENT_BASE_URL", s.PaymentBaseURL, false); err != nil {
		return err
	}
	// 画像の公開 URL は CDN のパスを許可する
	if err := validateBaseURL("IMAGE_PUBLIC_BASE_URL", s.ImagePublicBaseURL, true); err != nil {
		return err
	}

	// GCS bucket names cannot contain spaces.
	if strings.ContainsAny(s.ImageBucket, " \t\r\n") {
		return fmt.Errorf("shared.runtime_settings: IMAGE_BUCKET contains whitespace (got %q)", s.ImageBucket)
	}

	return nil
}

func validateBaseURL(key, u string, allowPath bool) error {
	if u == "" {
		return nil
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return fmt.Errorf("shared.runtime_settings: %s is not a URL: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("shared.runtime_settings: %s must start with http:// or https:// (got %q)", key, u)
	}
	if parsed.Host == "" {
		return fmt.Errorf("shared.runtime_settings: %s has no host (got %q)", key, u)
	}
	if !allowPath && strings.Trim(parsed.Path, "/") != "" {
		return fmt.Errorf("shared.runtime_settings: %s must not include a path (got %q)", key, u)
	}
	return nil
}
