// internal/application/usecase/product_resolver.go
package usecase

import (
	"context"
	"errors"
	"strings"

	productdom "talentagency/internal/domain/product"
)

// ProductLookup resolves a (kind, id) reference stored on a cart or wishlist row.
type ProductLookup interface {
	Resolve(ctx context.Context, kind productdom.Kind, id string) (productdom.Product, error)
}

// kindSource serves one kind out of the shared catalog collection.
// A document whose kind tag differs is reported as not found.
type kindSource struct {
	kind productdom.Kind
	repo productdom.Repository
}

func NewKindSource(kind productdom.Kind, repo productdom.Repository) productdom.Source {
	return kindSource{kind: kind, repo: repo}
}

func (s kindSource) Kind() productdom.Kind { return s.kind }

func (s kindSource) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return productdom.Product{}, err
	}
	if p.Kind != s.kind {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

// ProductResolver dispatches lookups to the source registered for the kind.
type ProductResolver struct {
	sources map[productdom.Kind]productdom.Source
}

func NewProductResolver(sources ...productdom.Source) *ProductResolver {
	m := make(map[productdom.Kind]productdom.Source, len(sources))
	for _, s := range sources {
		if s == nil {
			continue
		}
		m[s.Kind()] = s
	}
	return &ProductResolver{sources: m}
}

// NewCatalogResolver registers a source for every known kind backed by repo.
func NewCatalogResolver(repo productdom.Repository) *ProductResolver {
	srcs := make([]productdom.Source, 0, len(productdom.Kinds))
	for _, k := range productdom.Kinds {
		srcs = append(srcs, NewKindSource(k, repo))
	}
	return NewProductResolver(srcs...)
}

// Resolve returns productdom.ErrNotFound when no source knows the id.
// Rows written before kinds were tagged carry an empty kind; those are tried
// against every source in order.
func (r *ProductResolver) Resolve(ctx context.Context, kind productdom.Kind, id string) (productdom.Product, error) {
	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}
	if r == nil || len(r.sources) == 0 {
		return productdom.Product{}, productdom.ErrNotFound
	}

	if kind != "" {
		src, ok := r.sources[kind]
		if !ok {
			return productdom.Product{}, productdom.ErrInvalidKind
		}
		return src.GetByID(ctx, pid)
	}

	for _, k := range productdom.Kinds {
		src, ok := r.sources[k]
		if !ok {
			continue
		}
		p, err := src.GetByID(ctx, pid)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, productdom.ErrNotFound) {
			return productdom.Product{}, err
		}
	}
	return productdom.Product{}, productdom.ErrNotFound
}
