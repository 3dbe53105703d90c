// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"

	productdom "talentagency/internal/domain/product"
)

var (
	ErrInvalidCart      = errors.New("cart: invalid")
	ErrInvalidProductID = errors.New("cart: invalid productId")
	ErrInvalidQuantity  = errors.New("cart: invalid quantity")
)

// Item is one cart line: a product reference plus cached display fields.
// Quantity is always >= 1; a line that would drop to 0 is removed instead.
type Item struct {
	ProductID string          `json:"productId"`
	Kind      productdom.Kind `json:"kind"`
	Name      string          `json:"name"`
	Price     int             `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Quantity  int             `json:"quantity"`
	Available bool            `json:"available"`

	// Version increments on every write of this row.
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LineTotal is the cached price times quantity.
func (it Item) LineTotal() int {
	return it.Price * it.Quantity
}

// Refresh copies fresh catalog fields into the row and marks it available.
func (it *Item) Refresh(p productdom.Product) {
	it.Kind = p.Kind
	it.Name = p.Name
	it.Price = p.Price
	it.ImageURL = p.ImageURL
	it.Available = true
}

// MarkUnavailable keeps the cached fields so the user still sees what they picked.
func (it *Item) MarkUnavailable() {
	it.Available = false
}

// NewItem builds a fresh line with quantity 1 from a catalog product.
func NewItem(p productdom.Product, now time.Time) (Item, error) {
	it := Item{
		ProductID: strings.TrimSpace(p.ID),
		Quantity:  1,
		UpdatedAt: now.UTC(),
	}
	it.Refresh(p)
	if err := it.validate(); err != nil {
		return Item{}, err
	}
	return it, nil
}

func (it Item) validate() error {
	if strings.TrimSpace(it.ProductID) == "" {
		return ErrInvalidProductID
	}
	if it.Quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

// Cart is the in-memory view of one user's rows, in insertion order.
type Cart struct {
	UserID string `json:"userId"`
	Items  []Item `json:"items"`
}

// New creates a cart for userID. items can be nil (treated as empty).
// Rows with a blank productId or quantity < 1 are dropped and duplicates merged.
func New(userID string, items []Item) *Cart {
	return &Cart{
		UserID: strings.TrimSpace(userID),
		Items:  normalizeAndMerge(items),
	}
}

// Find returns the index of productID, or -1.
func (c *Cart) Find(productID string) int {
	if c == nil {
		return -1
	}
	id := strings.TrimSpace(productID)
	for i := range c.Items {
		if c.Items[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Add increments the line for p by one, or appends a new line with quantity 1.
// The returned item is the row as it now stands.
func (c *Cart) Add(p productdom.Product, now time.Time) (Item, error) {
	if c == nil {
		return Item{}, ErrInvalidCart
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return Item{}, ErrInvalidProductID
	}

	if idx := c.Find(id); idx >= 0 {
		it := &c.Items[idx]
		it.Quantity++
		it.Refresh(p)
		it.Version++
		it.UpdatedAt = now.UTC()
		return *it, nil
	}

	it, err := NewItem(p, now)
	if err != nil {
		return Item{}, err
	}
	it.Version = 1
	c.Items = append(c.Items, it)
	return it, nil
}

// ApplyDelta adds delta to the line's quantity. A line whose quantity falls to 0
// or below is removed, in which case removed is true. ok is false when the
// product is not in the cart.
func (c *Cart) ApplyDelta(productID string, delta int, now time.Time) (it Item, removed bool, ok bool) {
	idx := c.Find(productID)
	if idx < 0 {
		return Item{}, false, false
	}
	row := c.Items[idx]
	row.Quantity += delta
	if row.Quantity <= 0 {
		c.Items = removeIndex(c.Items, idx)
		return row, true, true
	}
	row.Version++
	row.UpdatedAt = now.UTC()
	c.Items[idx] = row
	return row, false, true
}

// Remove drops the line. Returns false when it was not present.
func (c *Cart) Remove(productID string) bool {
	idx := c.Find(productID)
	if idx < 0 {
		return false
	}
	c.Items = removeIndex(c.Items, idx)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	if c == nil {
		return
	}
	c.Items = []Item{}
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Total sums every line at its cached price, available or not.
func (c *Cart) Total() int {
	if c == nil {
		return 0
	}
	sum := 0
	for _, it := range c.Items {
		sum += it.LineTotal()
	}
	return sum
}

// Count sums quantities of every line.
func (c *Cart) Count() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// AvailableTotal sums only lines that resolved at the last reconciliation.
func (c *Cart) AvailableTotal() int {
	if c == nil {
		return 0
	}
	sum := 0
	for _, it := range c.Items {
		if it.Available {
			sum += it.LineTotal()
		}
	}
	return sum
}

func (c *Cart) AvailableCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		if it.Available {
			n += it.Quantity
		}
	}
	return n
}

// HasUnavailable reports whether any line failed to resolve.
func (c *Cart) HasUnavailable() bool {
	if c == nil {
		return false
	}
	for _, it := range c.Items {
		if !it.Available {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the lines.
func (c *Cart) Snapshot() []Item {
	if c == nil {
		return []Item{}
	}
	return cloneItems(c.Items)
}

// ============================================================
// helpers
// ============================================================

func normalizeAndMerge(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := map[string]int{}
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

func removeIndex(items []Item, idx int) []Item {
	out := make([]Item, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
