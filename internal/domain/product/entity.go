// internal/domain/product/entity.go
package product

import (
	"errors"
	"strings"
	"time"
)

// Kind tags which catalog line a product belongs to.
// Cart and wishlist rows store it so reconciliation can dispatch to the right source.
type Kind string

const (
	KindGadget Kind = "gadget"
	KindLaptop Kind = "laptop"
	KindPhone  Kind = "phone"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindGadget, KindLaptop, KindPhone}

var (
	ErrInvalidID          = errors.New("product: invalid id")
	ErrInvalidKind        = errors.New("product: invalid kind")
	ErrInvalidName        = errors.New("product: invalid name")
	ErrInvalidPrice       = errors.New("product: invalid price")
	ErrInvalidDescription = errors.New("product: description too long")
	ErrNotFound           = errors.New("product: not found")
)

const maxDescriptionLen = 5000

func (k Kind) Valid() bool {
	switch k {
	case KindGadget, KindLaptop, KindPhone:
		return true
	}
	return false
}

// ParseKind accepts the stored tag case-insensitively. Plural forms used by the
// storefront routes ("gadgets", "phones") are accepted too.
func ParseKind(s string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "s")
	k := Kind(v)
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Product is one catalog record. Price is held in minor currency units.
type Product struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int       `json:"price"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	InStock     bool      `json:"inStock"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// New builds a product. id may be empty when the repository assigns one.
func New(
	id string,
	kind Kind,
	name, description string,
	price int,
	imageURL string,
	inStock bool,
	category string,
	now time.Time,
) (Product, error) {
	p := Product{
		ID:          strings.TrimSpace(id),
		Kind:        kind,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		ImageURL:    strings.TrimSpace(imageURL),
		InStock:     inStock,
		Category:    strings.TrimSpace(category),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := p.validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int    `json:"price,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	InStock     *bool   `json:"inStock,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// Apply merges the patch and validates the result. On error p is unchanged.
func (p *Product) Apply(patch Patch, now time.Time) error {
	if p == nil {
		return ErrInvalidID
	}
	next := *p
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.InStock != nil {
		next.InStock = *patch.InStock
	}
	if patch.Category != nil {
		next.Category = strings.TrimSpace(*patch.Category)
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = now.UTC()
	*p = next
	return nil
}

func (p Product) validate() error {
	if !p.Kind.Valid() {
		return ErrInvalidKind
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if len([]rune(p.Description)) > maxDescriptionLen {
		return ErrInvalidDescription
	}
	return nil
}
