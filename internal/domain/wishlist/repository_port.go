// internal/domain/wishlist/repository_port.go
package wishlist

import "context"

// Repository persists rows under users/{uid}/wishlist/{productId}.
// The product id is the document id, which makes uniqueness a storage property too.
type Repository interface {
	ListItems(ctx context.Context, userID string) ([]Item, error)

	// CreateItem stores it unless a row for the product already exists.
	// created is false when it was already there.
	CreateItem(ctx context.Context, userID string, it Item) (created bool, err error)

	// UpdateItem overwrites an existing row. found is false when the row is
	// gone, in which case nothing is written.
	UpdateItem(ctx context.Context, userID string, it Item) (found bool, err error)

	DeleteItem(ctx context.Context, userID, productID string) error
	DeleteAll(ctx context.Context, userID string) error
}
