// internal/adapters/out/firestore/checkout_intent_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	checkoutdom "talentagency/internal/domain/checkout"
)

// CheckoutIntentRepositoryFS keeps one document per payment reference in
// "checkout-intents". The sweeper query needs the composite index
// (status ASC, updatedAt ASC).
type CheckoutIntentRepositoryFS struct {
	Client *firestore.Client
}

func NewCheckoutIntentRepositoryFS(client *firestore.Client) *CheckoutIntentRepositoryFS {
	return &CheckoutIntentRepositoryFS{Client: client}
}

func (r *CheckoutIntentRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("checkout-intents")
}

type intentDoc struct {
	UserID           string        `firestore:"userId"`
	Email            string        `firestore:"email"`
	Amount           int           `firestore:"amount"`
	Currency         string        `firestore:"currency"`
	Delivery         deliveryDoc   `firestore:"delivery"`
	Items            []lineItemDoc `firestore:"items"`
	Status           string        `firestore:"status"`
	OrderID          string        `firestore:"orderId"`
	MerchantNotified bool          `firestore:"merchantNotified"`
	CustomerNotified bool          `firestore:"customerNotified"`
	CartCleared      bool          `firestore:"cartCleared"`
	Attempts         int           `firestore:"attempts"`
	LastError        string        `firestore:"lastError"`
	CreatedAt        time.Time     `firestore:"createdAt"`
	UpdatedAt        time.Time     `firestore:"updatedAt"`
}

func (r *CheckoutIntentRepositoryFS) Create(ctx context.Context, in checkoutdom.Intent) error {
	if r.Client == nil {
		return errNilClient
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		return checkoutdom.ErrInvalidReference
	}
	if _, err := r.col().Doc(ref).Create(ctx, intentToDoc(in)); err != nil {
		if isAlreadyExists(err) {
			return checkoutdom.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *CheckoutIntentRepositoryFS) Get(ctx context.Context, reference string) (checkoutdom.Intent, error) {
	if r.Client == nil {
		return checkoutdom.Intent{}, errNilClient
	}
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return checkoutdom.Intent{}, checkoutdom.ErrNotFound
	}
	snap, err := r.col().Doc(ref).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return checkoutdom.Intent{}, checkoutdom.ErrNotFound
		}
		return checkoutdom.Intent{}, err
	}
	return decodeIntent(snap)
}

func (r *CheckoutIntentRepositoryFS) Save(ctx context.Context, in checkoutdom.Intent) error {
	if r.Client == nil {
		return errNilClient
	}
	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		return checkoutdom.ErrInvalidReference
	}
	_, err := r.col().Doc(ref).Set(ctx, intentToDoc(in))
	return err
}

func (r *CheckoutIntentRepositoryFS) ListStuck(ctx context.Context, olderThan time.Time, limit int) ([]checkoutdom.Intent, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	q := r.col().
		Where("status", "==", string(checkoutdom.StatusPaid)).
		Where("updatedAt", "<", olderThan.UTC()).
		OrderBy("updatedAt", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	out := []checkoutdom.Intent{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		in, err := decodeIntent(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func intentToDoc(in checkoutdom.Intent) intentDoc {
	return intentDoc{
		UserID:           in.UserID,
		Email:            in.Email,
		Amount:           in.Amount,
		Currency:         in.Currency,
		Delivery:         deliveryToDoc(in.Delivery),
		Items:            lineItemsToDoc(in.Items),
		Status:           string(in.Status),
		OrderID:          in.OrderID,
		MerchantNotified: in.MerchantNotified,
		CustomerNotified: in.CustomerNotified,
		CartCleared:      in.CartCleared,
		Attempts:         in.Attempts,
		LastError:        in.LastError,
		CreatedAt:        in.CreatedAt.UTC(),
		UpdatedAt:        in.UpdatedAt.UTC(),
	}
}

func decodeIntent(snap *firestore.DocumentSnapshot) (checkoutdom.Intent, error) {
	var d intentDoc
	if err := snap.DataTo(&d); err != nil {
		return checkoutdom.Intent{}, err
	}
	return checkoutdom.Intent{
		Reference:        snap.Ref.ID,
		UserID:           d.UserID,
		Email:            d.Email,
		Amount:           d.Amount,
		Currency:         d.Currency,
		Delivery:         deliveryFromDoc(d.Delivery),
		Items:            lineItemsFromDoc(d.Items),
		Status:           checkoutdom.IntentStatus(d.Status),
		OrderID:          d.OrderID,
		MerchantNotified: d.MerchantNotified,
		CustomerNotified: d.CustomerNotified,
		CartCleared:      d.CartCleared,
		Attempts:         d.Attempts,
		LastError:        d.LastError,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}, nil
}
