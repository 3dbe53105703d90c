// internal/domain/order/repository_port.go
package order

import "context"

// Repository is the persistence port for orders. Both the Firestore and the
// Postgres adapters implement it.
type Repository interface {
	// Create assigns the id and stamps createdAt/updatedAt server side.
	Create(ctx context.Context, o Order) (Order, error)

	// GetByID returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (Order, error)

	// GetByPaymentReference returns ErrNotFound when no order carries ref.
	GetByPaymentReference(ctx context.Context, ref string) (Order, error)

	// ListByUser and ListAll return newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)

	// Update runs fn as one atomic read-modify-write of the order.
	Update(ctx context.Context, id string, fn func(o *Order) error) (Order, error)
}
