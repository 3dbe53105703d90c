// internal/adapters/out/firestore/wishlist_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	productdom "talentagency/internal/domain/product"
	wishdom "talentagency/internal/domain/wishlist"
)

// WishlistRepositoryFS stores users/{uid}/wishlist/{productId}.
type WishlistRepositoryFS struct {
	Client *firestore.Client
}

func NewWishlistRepositoryFS(client *firestore.Client) *WishlistRepositoryFS {
	return &WishlistRepositoryFS{Client: client}
}

func (r *WishlistRepositoryFS) col(uid string) *firestore.CollectionRef {
	return r.Client.Collection("users").Doc(uid).Collection("wishlist")
}

type wishlistItemDoc struct {
	ProductID string    `firestore:"productId"`
	Kind      string    `firestore:"kind"`
	Name      string    `firestore:"name"`
	Price     int       `firestore:"price"`
	ImageURL  string    `firestore:"imageUrl,omitempty"`
	Available bool      `firestore:"available"`
	AddedAt   time.Time `firestore:"addedAt"`
}

func (r *WishlistRepositoryFS) ListItems(ctx context.Context, userID string) ([]wishdom.Item, error) {
	uid, err := r.check(userID)
	if err != nil {
		return nil, err
	}
	it := r.col(uid).Documents(ctx)
	defer it.Stop()

	out := []wishdom.Item{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, wishlistItemFromSnapshot(snap))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

// CreateItem relies on Create failing with AlreadyExists, so two sessions
// adding the same product still leave one row.
func (r *WishlistRepositoryFS) CreateItem(ctx context.Context, userID string, item wishdom.Item) (bool, error) {
	uid, err := r.check(userID)
	if err != nil {
		return false, err
	}
	pid := strings.TrimSpace(item.ProductID)
	if pid == "" {
		return false, wishdom.ErrInvalidProductID
	}
	if _, err := r.col(uid).Doc(pid).Create(ctx, wishlistItemToDoc(item)); err != nil {
		if isAlreadyExists(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateItem uses Update, which fails with NotFound instead of recreating a
// row another session removed.
func (r *WishlistRepositoryFS) UpdateItem(ctx context.Context, userID string, item wishdom.Item) (bool, error) {
	uid, err := r.check(userID)
	if err != nil {
		return false, err
	}
	pid := strings.TrimSpace(item.ProductID)
	if pid == "" {
		return false, wishdom.ErrInvalidProductID
	}
	d := wishlistItemToDoc(item)
	_, err = r.col(uid).Doc(pid).Update(ctx, []firestore.Update{
		{Path: "kind", Value: d.Kind},
		{Path: "name", Value: d.Name},
		{Path: "price", Value: d.Price},
		{Path: "imageUrl", Value: d.ImageURL},
		{Path: "available", Value: d.Available},
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *WishlistRepositoryFS) DeleteItem(ctx context.Context, userID, productID string) error {
	uid, err := r.check(userID)
	if err != nil {
		return err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return wishdom.ErrInvalidProductID
	}
	_, err = r.col(uid).Doc(pid).Delete(ctx)
	return err
}

func (r *WishlistRepositoryFS) DeleteAll(ctx context.Context, userID string) error {
	uid, err := r.check(userID)
	if err != nil {
		return err
	}
	_, err = deleteAll(ctx, r.Client, r.col(uid).Query)
	return err
}

func (r *WishlistRepositoryFS) check(userID string) (string, error) {
	if r == nil || r.Client == nil {
		return "", errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", errors.New("wishlist_repository_fs: userID is empty")
	}
	return uid, nil
}

func wishlistItemToDoc(it wishdom.Item) wishlistItemDoc {
	return wishlistItemDoc{
		ProductID: strings.TrimSpace(it.ProductID),
		Kind:      string(it.Kind),
		Name:      it.Name,
		Price:     it.Price,
		ImageURL:  it.ImageURL,
		Available: it.Available,
		AddedAt:   it.AddedAt.UTC(),
	}
}

func wishlistItemFromSnapshot(snap *firestore.DocumentSnapshot) wishdom.Item {
	data := snap.Data()
	it := wishdom.Item{
		ProductID: snap.Ref.ID,
		Kind:      productdom.Kind(asString(data["kind"])),
		Name:      asString(data["name"]),
		Price:     asInt(data["price"]),
		ImageURL:  asString(data["imageUrl"]),
		Available: asBool(data["available"], true),
	}
	if t, ok := asTime(data["addedAt"]); ok {
		it.AddedAt = t.UTC()
	} else {
		it.AddedAt = snap.CreateTime.UTC()
	}
	return it
}
