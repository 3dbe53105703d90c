// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	cartdom "talentagency/internal/domain/cart"
	productdom "talentagency/internal/domain/product"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// DefaultLookupConcurrency bounds parallel product lookups while reconciling.
const DefaultLookupConcurrency = 8

// CartView is the reconciled cart plus its derived totals.
// Synced is false when a write could not be persisted; the next Load
// reflects what is actually stored.
type CartView struct {
	Items          []cartdom.Item `json:"items"`
	Total          int            `json:"cartTotal"`
	Count          int            `json:"cartCount"`
	AvailableTotal int            `json:"availableCartTotal"`
	AvailableCount int            `json:"availableCartCount"`
	Synced         bool           `json:"synced"`
}

func newCartView(c *cartdom.Cart, synced bool) CartView {
	return CartView{
		Items:          c.Snapshot(),
		Total:          c.Total(),
		Count:          c.Count(),
		AvailableTotal: c.AvailableTotal(),
		AvailableCount: c.AvailableCount(),
		Synced:         synced,
	}
}

// CartUsecase coordinates cart operations.
type CartUsecase struct {
	repo        cartdom.Repository
	lookup      ProductLookup
	clock       Clock
	concurrency int
}

func NewCartUsecase(repo cartdom.Repository, lookup ProductLookup) *CartUsecase {
	return NewCartUsecaseWithClock(repo, lookup, nil)
}

// NewCartUsecaseWithClock is useful for tests.
func NewCartUsecaseWithClock(repo cartdom.Repository, lookup ProductLookup, clock Clock) *CartUsecase {
	return &CartUsecase{
		repo:        repo,
		lookup:      lookup,
		clock:       clockOrSystem(clock),
		concurrency: DefaultLookupConcurrency,
	}
}

// Load fetches the user's rows, re-resolves every product and writes refreshed
// display fields back. A failed lookup only degrades its own row.
func (uc *CartUsecase) Load(ctx context.Context, userID string) (CartView, error) {
	c, err := uc.loadCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}

	changed := reconcileRows(ctx, uc.lookup, uc.concurrency, len(c.Items),
		func(i int) (productdom.Kind, string) { return c.Items[i].Kind, c.Items[i].ProductID },
		func(i int, p productdom.Product) bool {
			before := c.Items[i]
			c.Items[i].Refresh(p)
			return before != c.Items[i]
		},
		func(i int) bool {
			was := c.Items[i].Available
			c.Items[i].MarkUnavailable()
			return was
		},
	)

	synced := true
	for _, i := range changed {
		if err := uc.writeBack(ctx, c.UserID, c.Items[i]); err != nil {
			log.Printf("[cart_uc] reconcile write-back failed uid=%s productId=%s err=%v", maskUID(c.UserID), c.Items[i].ProductID, err)
			synced = false
		}
	}
	return newCartView(c, synced), nil
}

// AddToCart increments the line for the product or appends it with quantity 1.
func (uc *CartUsecase) AddToCart(ctx context.Context, userID string, kind productdom.Kind, productID string) (CartView, error) {
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return CartView{}, ErrCartInvalidArgument
	}
	c, err := uc.loadCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	p, err := uc.lookup.Resolve(ctx, kind, pid)
	if err != nil {
		return CartView{}, err
	}

	now := uc.clock.Now()
	local, err := c.Add(p, now)
	if err != nil {
		return CartView{}, err
	}

	stored, err := uc.repo.MutateItem(ctx, c.UserID, pid, func(cur *cartdom.Item) (*cartdom.Item, error) {
		if cur == nil {
			fresh, err := cartdom.NewItem(p, now)
			if err != nil {
				return nil, err
			}
			fresh.Version = 1
			return &fresh, nil
		}
		next := *cur
		next.Quantity++
		next.Refresh(p)
		next.Version++
		next.UpdatedAt = now.UTC()
		return &next, nil
	})
	if err != nil {
		log.Printf("[cart_uc] add persist failed uid=%s productId=%s err=%v", maskUID(c.UserID), pid, err)
		return newCartView(c, false), nil
	}
	adoptStored(c, local.ProductID, stored)
	return newCartView(c, true), nil
}

// UpdateQuantity applies delta; a line that reaches zero or below is removed.
// An unknown product id is a no-op.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, userID, productID string, delta int) (CartView, error) {
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return CartView{}, ErrCartInvalidArgument
	}
	c, err := uc.loadCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	if delta == 0 {
		return newCartView(c, true), nil
	}

	now := uc.clock.Now()
	if _, _, ok := c.ApplyDelta(pid, delta, now); !ok {
		return newCartView(c, true), nil
	}

	stored, err := uc.repo.MutateItem(ctx, c.UserID, pid, func(cur *cartdom.Item) (*cartdom.Item, error) {
		if cur == nil {
			return nil, nil
		}
		next := *cur
		next.Quantity += delta
		if next.Quantity <= 0 {
			return nil, nil
		}
		next.Version++
		next.UpdatedAt = now.UTC()
		return &next, nil
	})
	if err != nil {
		log.Printf("[cart_uc] update persist failed uid=%s productId=%s delta=%d err=%v", maskUID(c.UserID), pid, delta, err)
		return newCartView(c, false), nil
	}
	adoptStored(c, pid, stored)
	return newCartView(c, true), nil
}

func (uc *CartUsecase) RemoveFromCart(ctx context.Context, userID, productID string) (CartView, error) {
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return CartView{}, ErrCartInvalidArgument
	}
	c, err := uc.loadCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	c.Remove(pid)

	if err := uc.repo.DeleteItem(ctx, c.UserID, pid); err != nil {
		log.Printf("[cart_uc] remove persist failed uid=%s productId=%s err=%v", maskUID(c.UserID), pid, err)
		return newCartView(c, false), nil
	}
	return newCartView(c, true), nil
}

func (uc *CartUsecase) ClearCart(ctx context.Context, userID string) (CartView, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return CartView{}, ErrUnauthenticated
	}
	c := cartdom.New(uid, nil)
	if err := uc.repo.DeleteAll(ctx, uid); err != nil {
		log.Printf("[cart_uc] clear persist failed uid=%s err=%v", maskUID(uid), err)
		return newCartView(c, false), nil
	}
	return newCartView(c, true), nil
}

// ============================================================
// helpers
// ============================================================

func (uc *CartUsecase) loadCart(ctx context.Context, userID string) (*cartdom.Cart, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	items, err := uc.repo.ListItems(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("cart_usecase: list items: %w", err)
	}
	return cartdom.New(uid, items), nil
}

// writeBack stores refreshed display fields without touching the quantity,
// so a concurrent increment from another session is kept.
func (uc *CartUsecase) writeBack(ctx context.Context, uid string, it cartdom.Item) error {
	now := uc.clock.Now()
	_, err := uc.repo.MutateItem(ctx, uid, it.ProductID, func(cur *cartdom.Item) (*cartdom.Item, error) {
		if cur == nil {
			return nil, nil
		}
		next := *cur
		next.Kind = it.Kind
		next.Name = it.Name
		next.Price = it.Price
		next.ImageURL = it.ImageURL
		next.Available = it.Available
		next.Version++
		next.UpdatedAt = now.UTC()
		return &next, nil
	})
	return err
}

// adoptStored replaces the local row with what the transaction stored.
func adoptStored(c *cartdom.Cart, productID string, stored *cartdom.Item) {
	idx := c.Find(productID)
	switch {
	case stored == nil && idx >= 0:
		c.Remove(productID)
	case stored != nil && idx >= 0:
		c.Items[idx] = *stored
	case stored != nil:
		c.Items = append(c.Items, *stored)
	}
}
