// internal/application/usecase/catalog_usecase.go
package usecase

import (
	"context"
	"log"
	"strings"

	authdom "talentagency/internal/domain/auth"
	productdom "talentagency/internal/domain/product"
)

// ProductInput is the admin create payload.
type ProductInput struct {
	Kind        string `json:"kind" validate:"required,oneof=gadget laptop phone"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Price       int    `json:"price" validate:"gte=0"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	InStock     bool   `json:"inStock"`
	Category    string `json:"category" validate:"max=100"`
}

func (in *ProductInput) normalize() {
	in.Kind = strings.ToLower(strings.TrimSpace(in.Kind))
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Category = strings.TrimSpace(in.Category)
}

// CatalogUsecase covers point reads and admin writes on the catalog.
// Listings go through CatalogReader.
type CatalogUsecase struct {
	repo     productdom.Repository
	resolver ProductLookup
	clock    Clock
}

func NewCatalogUsecase(repo productdom.Repository, resolver ProductLookup, clock Clock) *CatalogUsecase {
	return &CatalogUsecase{repo: repo, resolver: resolver, clock: clockOrSystem(clock)}
}

// Get resolves through the kind's source when kind is given, otherwise by id alone.
func (uc *CatalogUsecase) Get(ctx context.Context, kind, id string) (productdom.Product, error) {
	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}
	if strings.TrimSpace(kind) == "" || uc.resolver == nil {
		return uc.repo.GetByID(ctx, pid)
	}
	k, err := productdom.ParseKind(kind)
	if err != nil {
		return productdom.Product{}, err
	}
	return uc.resolver.Resolve(ctx, k, pid)
}

func (uc *CatalogUsecase) Create(ctx context.Context, caller authdom.Identity, in ProductInput) (productdom.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return productdom.Product{}, err
	}
	in.normalize()
	if err := validateStruct(in); err != nil {
		return productdom.Product{}, err
	}
	p, err := productdom.New("", productdom.Kind(in.Kind), in.Name, in.Description, in.Price, in.ImageURL, in.InStock, in.Category, uc.clock.Now())
	if err != nil {
		return productdom.Product{}, err
	}
	created, err := uc.repo.Create(ctx, p)
	if err != nil {
		return productdom.Product{}, err
	}
	log.Printf("[catalog_uc] product created id=%s kind=%s by=%s", created.ID, created.Kind, maskUID(caller.UID))
	return created, nil
}

func (uc *CatalogUsecase) Update(ctx context.Context, caller authdom.Identity, id string, patch productdom.Patch) (productdom.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return productdom.Product{}, err
	}
	p, err := uc.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return productdom.Product{}, err
	}
	if err := p.Apply(patch, uc.clock.Now()); err != nil {
		return productdom.Product{}, err
	}
	return uc.repo.Save(ctx, p)
}

// Delete removes the product. Cart and wishlist rows referencing it turn
// unavailable on their next load.
func (uc *CatalogUsecase) Delete(ctx context.Context, caller authdom.Identity, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.ErrInvalidID
	}
	if err := uc.repo.Delete(ctx, pid); err != nil {
		return err
	}
	log.Printf("[catalog_uc] product deleted id=%s by=%s", pid, maskUID(caller.UID))
	return nil
}
