// internal/domain/product/repository_port.go
package product

import "context"

// Filter narrows catalog listings. Zero value lists everything.
type Filter struct {
	Kind        Kind
	Category    string
	InStockOnly bool
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Product) bool {
	if f.Kind != "" && p.Kind != f.Kind {
		return false
	}
	if f.Category != "" && !equalFold(p.Category, f.Category) {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	return true
}

// Repository is the persistence port for the catalog.
type Repository interface {
	// GetByID returns ErrNotFound when the document does not exist.
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context, f Filter) ([]Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Save(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id string) error
}

// Source resolves products of a single kind.
type Source interface {
	Kind() Kind
	GetByID(ctx context.Context, id string) (Product, error)
}

// Watcher streams full catalog snapshots until ctx is done.
// onChange receives the complete current list on every change.
type Watcher interface {
	Watch(ctx context.Context, onChange func([]Product)) error
}
