// internal/adapters/out/http/payment_gateway_client.go
package httpout

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"talentagency/internal/application/usecase"
	"talentagency/internal/platform/breaker"
)

const DefaultPaymentBaseURL = "https://api.paystack.co"

var (
	ErrGatewayNotConfigured = errors.New("payment gateway: secret key is empty")
	ErrGatewayStatus        = errors.New("payment gateway: unexpected status")
	ErrTransactionNotFound  = errors.New("payment gateway: transaction not found")
	ErrBadSignature         = errors.New("payment gateway: invalid webhook signature")
)

// PaymentGatewayClient talks to a Paystack-style REST API:
//
//	GET {baseURL}/transaction/verify/{reference}
//	Authorization: Bearer {secretKey}
//
// Webhooks are signed with HMAC-SHA512(secretKey, rawBody) in hex.
type PaymentGatewayClient struct {
	baseURL   string
	secretKey string
	client    *http.Client
	cb        *gobreaker.CircuitBreaker[usecase.PaymentVerification]
}

var _ usecase.PaymentGateway = (*PaymentGatewayClient)(nil)

// baseURL example:
// - production: https://api.paystack.co
// - local: http://localhost:9090 (stub gateway)
func NewPaymentGatewayClient(baseURL, secretKey string) *PaymentGatewayClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultPaymentBaseURL
	}
	return &PaymentGatewayClient{
		baseURL:   baseURL,
		secretKey: strings.TrimSpace(secretKey),
		client:    &http.Client{Timeout: 10 * time.Second},
		cb:        breaker.New[usecase.PaymentVerification]("payment-gateway"),
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
		Amount    int    `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

// Verify implements usecase.PaymentGateway.
// An unknown reference is an error (not "unpaid") so callers can tell a typo
// from an abandoned payment.
func (c *PaymentGatewayClient) Verify(ctx context.Context, reference string) (usecase.PaymentVerification, error) {
	if c == nil || c.secretKey == "" {
		return usecase.PaymentVerification{}, ErrGatewayNotConfigured
	}
	reference = strings.TrimSpace(reference)

	return c.cb.Execute(func() (usecase.PaymentVerification, error) {
		return c.verify(ctx, reference)
	})
}

func (c *PaymentGatewayClient) verify(ctx context.Context, reference string) (usecase.PaymentVerification, error) {
	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return usecase.PaymentVerification{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return usecase.PaymentVerification{}, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	switch {
	case res.StatusCode == http.StatusNotFound:
		return usecase.PaymentVerification{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, reference)
	case res.StatusCode != http.StatusOK:
		return usecase.PaymentVerification{}, fmt.Errorf("%w: status=%d body=%s", ErrGatewayStatus, res.StatusCode, strings.TrimSpace(string(body)))
	}

	var vr verifyResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return usecase.PaymentVerification{}, fmt.Errorf("payment gateway: decode verify: %w", err)
	}
	if !vr.Status {
		return usecase.PaymentVerification{}, fmt.Errorf("%w: %s", ErrGatewayStatus, vr.Message)
	}

	ref := vr.Data.Reference
	if ref == "" {
		ref = reference
	}
	return usecase.PaymentVerification{
		Reference: ref,
		Paid:      strings.EqualFold(vr.Data.Status, "success"),
		Status:    vr.Data.Status,
		Amount:    vr.Data.Amount,
		Currency:  strings.ToUpper(vr.Data.Currency),
	}, nil
}

// VerifySignature checks the webhook signature header against the raw body.
func (c *PaymentGatewayClient) VerifySignature(body []byte, signature string) error {
	if c == nil || c.secretKey == "" {
		return ErrGatewayNotConfigured
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return ErrBadSignature
	}
	if !hmac.Equal(got, Sign(c.secretKey, body)) {
		return ErrBadSignature
	}
	return nil
}

// Sign returns HMAC-SHA512(secret, body).
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}
