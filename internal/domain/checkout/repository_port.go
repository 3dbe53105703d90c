// internal/domain/checkout/repository_port.go
package checkout

import (
	"context"
	"time"
)

// Repository persists intents under checkout-intents/{reference}.
type Repository interface {
	// Create fails with ErrAlreadyExists when the reference is taken.
	Create(ctx context.Context, in Intent) error
	// Get returns ErrNotFound when absent.
	Get(ctx context.Context, reference string) (Intent, error)
	Save(ctx context.Context, in Intent) error
	// ListStuck returns paid intents last touched before olderThan, oldest first.
	ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]Intent, error)
}
