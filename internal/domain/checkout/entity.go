// internal/domain/checkout/entity.go
package checkout

import (
	"errors"
	"strings"
	"time"

	orderdom "talentagency/internal/domain/order"
)

// IntentStatus is the durable state of one checkout attempt.
type IntentStatus string

const (
	StatusAwaitingPayment IntentStatus = "awaiting_payment"
	StatusAbandoned       IntentStatus = "abandoned"
	StatusPaid            IntentStatus = "paid"
	StatusFulfilled       IntentStatus = "fulfilled"
	// StatusFailed parks a paid intent whose bookkeeping kept failing.
	StatusFailed IntentStatus = "failed"
)

// MaxFinalizeAttempts bounds how often the sweeper retries a paid intent.
const MaxFinalizeAttempts = 10

var (
	ErrInvalidReference  = errors.New("checkout: invalid reference")
	ErrInvalidUserID     = errors.New("checkout: invalid userId")
	ErrInvalidEmail      = errors.New("checkout: invalid email")
	ErrInvalidAmount     = errors.New("checkout: invalid amount")
	ErrEmptyItems        = errors.New("checkout: no items")
	ErrInvalidTransition = errors.New("checkout: invalid transition")
	ErrNotFound          = errors.New("checkout: intent not found")
	ErrAlreadyExists     = errors.New("checkout: intent already exists")
)

// Intent is persisted before the payment widget opens and carries the frozen
// cart snapshot plus the bookkeeping progress after payment.
type Intent struct {
	Reference string `json:"reference"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`

	Amount   int    `json:"amount"`
	Currency string `json:"currency"`

	Delivery orderdom.Delivery   `json:"delivery"`
	Items    []orderdom.LineItem `json:"items"`

	Status IntentStatus `json:"status"`

	OrderID          string `json:"orderId,omitempty"`
	MerchantNotified bool   `json:"merchantNotified"`
	CustomerNotified bool   `json:"customerNotified"`
	CartCleared      bool   `json:"cartCleared"`
	Attempts         int    `json:"attempts"`
	LastError        string `json:"lastError,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewIntent(
	reference, userID, email string,
	currency string,
	delivery orderdom.Delivery,
	items []orderdom.LineItem,
	now time.Time,
) (Intent, error) {
	in := Intent{
		Reference: strings.TrimSpace(reference),
		UserID:    strings.TrimSpace(userID),
		Email:     strings.TrimSpace(email),
		Amount:    orderdom.SubtotalOf(items),
		Currency:  strings.ToUpper(strings.TrimSpace(currency)),
		Delivery:  delivery,
		Items:     cloneLines(items),
		Status:    StatusAwaitingPayment,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := in.validate(); err != nil {
		return Intent{}, err
	}
	return in, nil
}

// Abandon records the widget's closed callback. Only an attempt still waiting
// for payment can be abandoned.
func (in *Intent) Abandon(now time.Time) error {
	if in.Status != StatusAwaitingPayment {
		return ErrInvalidTransition
	}
	in.Status = StatusAbandoned
	in.touch(now)
	return nil
}

// MarkPaid records a gateway-confirmed payment. A verified payment is accepted
// even after a close callback, since the gateway is authoritative. Calling it on
// a paid or fulfilled intent is a no-op; a failed intent is reopened.
func (in *Intent) MarkPaid(now time.Time) {
	switch in.Status {
	case StatusPaid, StatusFulfilled:
		return
	}
	in.Status = StatusPaid
	in.touch(now)
}

func (in *Intent) RecordOrder(orderID string, now time.Time) {
	in.OrderID = strings.TrimSpace(orderID)
	in.touch(now)
}

// RecordAttempt bumps the attempt counter and keeps the last failure text.
func (in *Intent) RecordAttempt(lastErr string, now time.Time) {
	in.Attempts++
	in.LastError = strings.TrimSpace(lastErr)
	in.touch(now)
}

// TryFulfil moves a paid intent to fulfilled once the order exists and both
// notifications went out.
func (in *Intent) TryFulfil(now time.Time) bool {
	if in.Status != StatusPaid {
		return in.Status == StatusFulfilled
	}
	if in.OrderID == "" || !in.MerchantNotified || !in.CustomerNotified {
		return false
	}
	in.Status = StatusFulfilled
	in.LastError = ""
	in.touch(now)
	return true
}

// GiveUpIfExhausted moves a paid intent that used up MaxFinalizeAttempts to
// failed, which takes it out of the sweeper's query.
func (in *Intent) GiveUpIfExhausted(now time.Time) bool {
	if in.Status != StatusPaid || in.Attempts < MaxFinalizeAttempts {
		return false
	}
	in.Status = StatusFailed
	in.touch(now)
	return true
}

// NeedsFinalization reports whether bookkeeping after payment is still pending.
func (in Intent) NeedsFinalization() bool {
	return in.Status == StatusPaid
}

func (in Intent) IsTerminal() bool {
	return in.Status == StatusAbandoned || in.Status == StatusFulfilled || in.Status == StatusFailed
}

func (in *Intent) touch(now time.Time) {
	in.UpdatedAt = now.UTC()
}

func (in Intent) validate() error {
	if in.Reference == "" {
		return ErrInvalidReference
	}
	if in.UserID == "" {
		return ErrInvalidUserID
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return ErrInvalidEmail
	}
	if len(in.Items) == 0 {
		return ErrEmptyItems
	}
	if in.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func cloneLines(items []orderdom.LineItem) []orderdom.LineItem {
	out := make([]orderdom.LineItem, len(items))
	copy(out, items)
	return out
}
