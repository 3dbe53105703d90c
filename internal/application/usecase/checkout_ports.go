// internal/application/usecase/checkout_ports.go
package usecase

import (
	"context"
	"time"

	orderdom "talentagency/internal/domain/order"
)

// PaymentVerification is the gateway's answer for one reference.
type PaymentVerification struct {
	Reference string
	Paid      bool
	Status    string
	Amount    int
	Currency  string
}

// PaymentGateway confirms payments server side.
type PaymentGateway interface {
	Verify(ctx context.Context, reference string) (PaymentVerification, error)
}

// OrderNotifier sends the two post-payment emails.
type OrderNotifier interface {
	NotifyMerchant(ctx context.Context, o orderdom.Order) error
	NotifyCustomer(ctx context.Context, o orderdom.Order) error
}

// IdempotencyStore guards a key for ttl. MarkProcessed reports true only for
// the first caller; Release frees the key early.
type IdempotencyStore interface {
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
