// internal/application/usecase/wishlist_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	productdom "talentagency/internal/domain/product"
	wishdom "talentagency/internal/domain/wishlist"
)

var ErrWishlistInvalidArgument = errors.New("wishlist_usecase: invalid argument")

type WishlistView struct {
	Items  []wishdom.Item `json:"items"`
	Count  int            `json:"count"`
	Synced bool           `json:"synced"`
}

func newWishlistView(w *wishdom.Wishlist, synced bool) WishlistView {
	items := make([]wishdom.Item, len(w.Items))
	copy(items, w.Items)
	return WishlistView{Items: items, Count: len(items), Synced: synced}
}

type WishlistUsecase struct {
	repo        wishdom.Repository
	lookup      ProductLookup
	clock       Clock
	concurrency int
}

func NewWishlistUsecase(repo wishdom.Repository, lookup ProductLookup, clock Clock) *WishlistUsecase {
	return &WishlistUsecase{
		repo:        repo,
		lookup:      lookup,
		clock:       clockOrSystem(clock),
		concurrency: DefaultLookupConcurrency,
	}
}

// Load reconciles every row against the catalog, same rule as the cart.
func (uc *WishlistUsecase) Load(ctx context.Context, userID string) (WishlistView, error) {
	w, err := uc.loadWishlist(ctx, userID)
	if err != nil {
		return WishlistView{}, err
	}

	changed := reconcileRows(ctx, uc.lookup, uc.concurrency, len(w.Items),
		func(i int) (productdom.Kind, string) { return w.Items[i].Kind, w.Items[i].ProductID },
		func(i int, p productdom.Product) bool {
			before := w.Items[i]
			w.Items[i].Refresh(p)
			return before != w.Items[i]
		},
		func(i int) bool {
			was := w.Items[i].Available
			w.Items[i].MarkUnavailable()
			return was
		},
	)

	synced := true
	gone := []string{}
	for _, i := range changed {
		found, err := uc.repo.UpdateItem(ctx, w.UserID, w.Items[i])
		if err != nil {
			log.Printf("[wishlist_uc] reconcile write-back failed uid=%s productId=%s err=%v", maskUID(w.UserID), w.Items[i].ProductID, err)
			synced = false
			continue
		}
		if !found {
			gone = append(gone, w.Items[i].ProductID)
		}
	}
	// removed by another session since ListItems
	for _, pid := range gone {
		w.Remove(pid)
	}
	return newWishlistView(w, synced), nil
}

// AddToWishlist is a no-op when the product is already saved.
func (uc *WishlistUsecase) AddToWishlist(ctx context.Context, userID string, kind productdom.Kind, productID string) (WishlistView, error) {
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return WishlistView{}, ErrWishlistInvalidArgument
	}
	w, err := uc.loadWishlist(ctx, userID)
	if err != nil {
		return WishlistView{}, err
	}
	if w.Contains(pid) {
		return newWishlistView(w, true), nil
	}
	p, err := uc.lookup.Resolve(ctx, kind, pid)
	if err != nil {
		return WishlistView{}, err
	}
	it, added, err := w.Add(p, uc.clock.Now())
	if err != nil {
		return WishlistView{}, err
	}
	if !added {
		return newWishlistView(w, true), nil
	}

	created, err := uc.repo.CreateItem(ctx, w.UserID, it)
	if err != nil {
		log.Printf("[wishlist_uc] add persist failed uid=%s productId=%s err=%v", maskUID(w.UserID), pid, err)
		return newWishlistView(w, false), nil
	}
	if !created {
		// another session saved it first; show the stored row
		stored, err := uc.loadWishlist(ctx, w.UserID)
		if err != nil {
			log.Printf("[wishlist_uc] add reload failed uid=%s productId=%s err=%v", maskUID(w.UserID), pid, err)
			return newWishlistView(w, true), nil
		}
		return newWishlistView(stored, true), nil
	}
	return newWishlistView(w, true), nil
}

func (uc *WishlistUsecase) RemoveFromWishlist(ctx context.Context, userID, productID string) (WishlistView, error) {
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return WishlistView{}, ErrWishlistInvalidArgument
	}
	w, err := uc.loadWishlist(ctx, userID)
	if err != nil {
		return WishlistView{}, err
	}
	w.Remove(pid)
	if err := uc.repo.DeleteItem(ctx, w.UserID, pid); err != nil {
		log.Printf("[wishlist_uc] remove persist failed uid=%s productId=%s err=%v", maskUID(w.UserID), pid, err)
		return newWishlistView(w, false), nil
	}
	return newWishlistView(w, true), nil
}

// IsInWishlist is a membership check over the stored rows.
func (uc *WishlistUsecase) IsInWishlist(ctx context.Context, userID, productID string) (bool, error) {
	w, err := uc.loadWishlist(ctx, userID)
	if err != nil {
		return false, err
	}
	return w.Contains(productID), nil
}

func (uc *WishlistUsecase) ClearWishlist(ctx context.Context, userID string) (WishlistView, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return WishlistView{}, ErrUnauthenticated
	}
	w := wishdom.New(uid, nil)
	if err := uc.repo.DeleteAll(ctx, uid); err != nil {
		log.Printf("[wishlist_uc] clear persist failed uid=%s err=%v", maskUID(uid), err)
		return newWishlistView(w, false), nil
	}
	return newWishlistView(w, true), nil
}

func (uc *WishlistUsecase) loadWishlist(ctx context.Context, userID string) (*wishdom.Wishlist, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	items, err := uc.repo.ListItems(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("wishlist_usecase: list items: %w", err)
	}
	return wishdom.New(uid, items), nil
}
