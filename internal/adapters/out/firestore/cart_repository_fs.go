// internal/adapters/out/firestore/cart_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	cartdom "talentagency/internal/domain/cart"
	productdom "talentagency/internal/domain/product"
)

// CartRepositoryFS implements cart.Repository.
//
// Collection design:
// - users/{uid}/cart/{productId}
// - one document per line, so concurrent sessions never overwrite each other's lines
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col(uid string) *firestore.CollectionRef {
	return r.Client.Collection("users").Doc(uid).Collection("cart")
}

type cartItemDoc struct {
	ProductID string    `firestore:"productId"`
	Kind      string    `firestore:"kind"`
	Name      string    `firestore:"name"`
	Price     int       `firestore:"price"`
	ImageURL  string    `firestore:"imageUrl,omitempty"`
	Quantity  int       `firestore:"quantity"`
	Available bool      `firestore:"available"`
	Version   int64     `firestore:"version"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (r *CartRepositoryFS) ListItems(ctx context.Context, userID string) ([]cartdom.Item, error) {
	uid, err := r.check(userID)
	if err != nil {
		return nil, err
	}

	it := r.col(uid).Documents(ctx)
	defer it.Stop()

	type row struct {
		item    cartdom.Item
		created time.Time
	}
	var rows []row
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		item, created := cartItemFromSnapshot(snap)
		rows = append(rows, row{item: item, created: created})
	}

	// insertion order
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].created.Before(rows[j].created) })
	out := make([]cartdom.Item, 0, len(rows))
	for _, rw := range rows {
		out = append(out, rw.item)
	}
	return out, nil
}

func (r *CartRepositoryFS) UpsertItem(ctx context.Context, userID string, item cartdom.Item) error {
	_, err := r.MutateItem(ctx, userID, item.ProductID, func(*cartdom.Item) (*cartdom.Item, error) {
		return &item, nil
	})
	return err
}

func (r *CartRepositoryFS) DeleteItem(ctx context.Context, userID, productID string) error {
	uid, err := r.check(userID)
	if err != nil {
		return err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return cartdom.ErrInvalidProductID
	}
	_, err = r.col(uid).Doc(pid).Delete(ctx)
	return err
}

func (r *CartRepositoryFS) DeleteAll(ctx context.Context, userID string) error {
	uid, err := r.check(userID)
	if err != nil {
		return err
	}
	_, err = deleteAll(ctx, r.Client, r.col(uid).Query)
	return err
}

// MutateItem reads the row and writes fn's result in one transaction.
// createdAt of an existing row is preserved so list order stays stable.
func (r *CartRepositoryFS) MutateItem(ctx context.Context, userID, productID string, fn cartdom.MutateFunc) (*cartdom.Item, error) {
	uid, err := r.check(userID)
	if err != nil {
		return nil, err
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return nil, cartdom.ErrInvalidProductID
	}
	ref := r.col(uid).Doc(pid)

	var result *cartdom.Item
	err = r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		result = nil

		var (
			cur     *cartdom.Item
			created time.Time
		)
		snap, err := tx.Get(ref)
		switch {
		case err == nil && snap.Exists():
			item, c := cartItemFromSnapshot(snap)
			cur, created = &item, c
		case err != nil && !isNotFound(err):
			return err
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}
		if next == nil {
			if cur == nil {
				return nil
			}
			return tx.Delete(ref)
		}

		next.ProductID = pid
		if created.IsZero() {
			created = next.UpdatedAt
		}
		if err := tx.Set(ref, cartItemToDoc(*next, created)); err != nil {
			return err
		}
		out := *next
		result = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *CartRepositoryFS) check(userID string) (string, error) {
	if r == nil || r.Client == nil {
		return "", errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", errors.New("cart_repository_fs: userID is empty")
	}
	return uid, nil
}

func cartItemToDoc(it cartdom.Item, created time.Time) cartItemDoc {
	return cartItemDoc{
		ProductID: it.ProductID,
		Kind:      string(it.Kind),
		Name:      it.Name,
		Price:     it.Price,
		ImageURL:  it.ImageURL,
		Quantity:  it.Quantity,
		Available: it.Available,
		Version:   it.Version,
		CreatedAt: created.UTC(),
		UpdatedAt: it.UpdatedAt.UTC(),
	}
}

// cartItemFromSnapshot decodes leniently: rows written by older clients lack
// kind, version and available.
func cartItemFromSnapshot(snap *firestore.DocumentSnapshot) (cartdom.Item, time.Time) {
	data := snap.Data()
	it := cartdom.Item{
		ProductID: snap.Ref.ID,
		Kind:      productdom.Kind(asString(data["kind"])),
		Name:      asString(data["name"]),
		Price:     asInt(data["price"]),
		ImageURL:  asString(data["imageUrl"]),
		Quantity:  asInt(data["quantity"]),
		Available: asBool(data["available"], true),
		Version:   int64(asInt(data["version"])),
	}
	if t, ok := asTime(data["updatedAt"]); ok {
		it.UpdatedAt = t.UTC()
	}
	created, ok := asTime(data["createdAt"])
	if !ok {
		created = snap.CreateTime
	}
	return it, created.UTC()
}
