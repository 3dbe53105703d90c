// internal/domain/wishlist/entity.go
package wishlist

import (
	"errors"
	"strings"
	"time"

	productdom "talentagency/internal/domain/product"
)

var (
	ErrInvalidWishlist  = errors.New("wishlist: invalid")
	ErrInvalidProductID = errors.New("wishlist: invalid productId")
)

// Item is a saved product reference with cached display fields. No quantity.
type Item struct {
	ProductID string          `json:"productId"`
	Kind      productdom.Kind `json:"kind"`
	Name      string          `json:"name"`
	Price     int             `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Available bool            `json:"available"`
	AddedAt   time.Time       `json:"addedAt"`
}

func (it *Item) Refresh(p productdom.Product) {
	it.Kind = p.Kind
	it.Name = p.Name
	it.Price = p.Price
	it.ImageURL = p.ImageURL
	it.Available = true
}

func (it *Item) MarkUnavailable() {
	it.Available = false
}

func NewItem(p productdom.Product, now time.Time) (Item, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return Item{}, ErrInvalidProductID
	}
	it := Item{ProductID: id, AddedAt: now.UTC()}
	it.Refresh(p)
	return it, nil
}

// Wishlist holds at most one row per product id.
type Wishlist struct {
	UserID string `json:"userId"`
	Items  []Item `json:"items"`
}

// New builds a wishlist, dropping blank ids and keeping the first of any duplicates.
func New(userID string, items []Item) *Wishlist {
	out := make([]Item, 0, len(items))
	seen := map[string]struct{}{}
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.ProductID == "" {
			continue
		}
		if _, dup := seen[it.ProductID]; dup {
			continue
		}
		seen[it.ProductID] = struct{}{}
		out = append(out, it)
	}
	return &Wishlist{UserID: strings.TrimSpace(userID), Items: out}
}

// Contains is the membership predicate over the current rows.
func (w *Wishlist) Contains(productID string) bool {
	return w.find(productID) >= 0
}

// Add appends p unless already present. added is false on the no-op path.
func (w *Wishlist) Add(p productdom.Product, now time.Time) (it Item, added bool, err error) {
	if w == nil {
		return Item{}, false, ErrInvalidWishlist
	}
	if idx := w.find(p.ID); idx >= 0 {
		return w.Items[idx], false, nil
	}
	it, err = NewItem(p, now)
	if err != nil {
		return Item{}, false, err
	}
	w.Items = append(w.Items, it)
	return it, true, nil
}

func (w *Wishlist) Remove(productID string) bool {
	idx := w.find(productID)
	if idx < 0 {
		return false
	}
	w.Items = append(w.Items[:idx:idx], w.Items[idx+1:]...)
	return true
}

func (w *Wishlist) Clear() {
	if w != nil {
		w.Items = []Item{}
	}
}

func (w *Wishlist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.Items)
}

func (w *Wishlist) find(productID string) int {
	if w == nil {
		return -1
	}
	id := strings.TrimSpace(productID)
	for i := range w.Items {
		if w.Items[i].ProductID == id {
			return i
		}
	}
	return -1
}
