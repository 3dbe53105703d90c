// internal/adapters/out/firestore/order_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	orderdom "talentagency/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository on the "orders" collection.
// Listing by user needs the composite index (userId ASC, createdAt DESC).
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

// Create checks the payment reference inside the same transaction so a retried
// completion cannot produce a second order for one payment.
func (r *OrderRepositoryFS) Create(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	ref := r.col().NewDoc()
	o.ID = ref.ID

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if pr := strings.TrimSpace(o.PaymentReference); pr != "" {
			q := r.col().Where("paymentReference", "==", pr).Limit(1)
			docs, err := tx.Documents(q).GetAll()
			if err != nil {
				return err
			}
			if len(docs) > 0 {
				return orderdom.ErrDuplicatePaymentRef
			}
		}
		return tx.Create(ref, orderToDoc(o))
	})
	if err != nil {
		return orderdom.Order{}, err
	}
	return o, nil
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}
	return decodeOrder(snap)
}

func (r *OrderRepositoryFS) GetByPaymentReference(ctx context.Context, ref string) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	docs, err := r.col().Where("paymentReference", "==", ref).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return orderdom.Order{}, err
	}
	if len(docs) == 0 {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return decodeOrder(docs[0])
}

func (r *OrderRepositoryFS) ListByUser(ctx context.Context, userID string) ([]orderdom.Order, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return []orderdom.Order{}, nil
	}
	return r.list(ctx, r.col().Where("userId", "==", uid).OrderBy("createdAt", firestore.Desc))
}

func (r *OrderRepositoryFS) ListAll(ctx context.Context) ([]orderdom.Order, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	return r.list(ctx, r.col().OrderBy("createdAt", firestore.Desc))
}

// Update runs fn inside a transaction and writes the result back.
func (r *OrderRepositoryFS) Update(ctx context.Context, id string, fn func(o *orderdom.Order) error) (orderdom.Order, error) {
	if r.Client == nil {
		return orderdom.Order{}, errNilClient
	}
	id = strings.TrimSpace(id)
	ref := r.col().Doc(id)

	var out orderdom.Order
	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return orderdom.ErrNotFound
			}
			return err
		}
		o, err := decodeOrder(snap)
		if err != nil {
			return err
		}
		if err := fn(&o); err != nil {
			return err
		}
		out = o
		return tx.Set(ref, orderToDoc(o))
	})
	if err != nil {
		return orderdom.Order{}, err
	}
	return out, nil
}

func (r *OrderRepositoryFS) list(ctx context.Context, q firestore.Query) ([]orderdom.Order, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	out := []orderdom.Order{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		o, err := decodeOrder(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func decodeOrder(snap *firestore.DocumentSnapshot) (orderdom.Order, error) {
	var d orderDoc
	if err := snap.DataTo(&d); err != nil {
		return orderdom.Order{}, err
	}
	return orderFromDoc(snap.Ref.ID, d), nil
}
