// internal/domain/cart/repository_port.go
package cart

import "context"

// MutateFunc receives the stored row (nil when absent) and returns the row to
// store, or nil to delete it.
type MutateFunc func(cur *Item) (*Item, error)

// Repository persists cart rows under users/{uid}/cart/{productId}.
// Every write touches a single row; there is no replace-all path.
type Repository interface {
	ListItems(ctx context.Context, userID string) ([]Item, error)
	UpsertItem(ctx context.Context, userID string, it Item) error
	DeleteItem(ctx context.Context, userID, productID string) error
	DeleteAll(ctx context.Context, userID string) error

	// MutateItem runs fn as one atomic read-modify-write on a single row and
	// returns the stored result (nil when deleted).
	MutateItem(ctx context.Context, userID, productID string, fn MutateFunc) (*Item, error)
}
