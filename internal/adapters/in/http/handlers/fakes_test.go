package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"talentagency/internal/adapters/in/http/middleware"
	authdom "talentagency/internal/domain/auth"
	cartdom "talentagency/internal/domain/cart"
	orderdom "talentagency/internal/domain/order"
	productdom "talentagency/internal/domain/product"
)

var (
	alice = authdom.Identity{UID: "uid-alice-000001", Email: "alice@example.com"}
	bob   = authdom.Identity{UID: "uid-bob-000002", Email: "bob@example.com"}
	admin = authdom.Identity{UID: "uid-admin-000003", Email: "ops@example.com", IsAdmin: true}
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// do runs one request through h as who and returns the recorder.
func do(t *testing.T, h http.Handler, method, path string, body any, who authdom.Identity) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(middleware.WithIdentity(req.Context(), who))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func product(kind productdom.Kind, id string, price int) productdom.Product {
	return productdom.Product{
		ID:        id,
		Kind:      kind,
		Name:      "Product " + id,
		Price:     price,
		InStock:   true,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

// ------------------------------------------------------------
// product lookup
// ------------------------------------------------------------

type lookupStub map[string]productdom.Product

func (l lookupStub) Resolve(_ context.Context, _ productdom.Kind, id string) (productdom.Product, error) {
	p, ok := l[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

// ------------------------------------------------------------
// cart repository
// ------------------------------------------------------------

type cartStore struct {
	mu   sync.Mutex
	rows map[string][]cartdom.Item
}

func newCartStore() *cartStore { return &cartStore{rows: map[string][]cartdom.Item{}} }

func (s *cartStore) ListItems(_ context.Context, uid string) ([]cartdom.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cartdom.Item(nil), s.rows[uid]...), nil
}

func (s *cartStore) UpsertItem(_ context.Context, uid string, it cartdom.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(uid, it)
	return nil
}

func (s *cartStore) DeleteItem(_ context.Context, uid, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drop(uid, productID)
	return nil
}

func (s *cartStore) DeleteAll(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, uid)
	return nil
}

func (s *cartStore) MutateItem(_ context.Context, uid, productID string, fn cartdom.MutateFunc) (*cartdom.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cur *cartdom.Item
	for _, it := range s.rows[uid] {
		if it.ProductID == productID {
			c := it
			cur = &c
		}
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if next == nil {
		s.drop(uid, productID)
		return nil, nil
	}
	s.put(uid, *next)
	out := *next
	return &out, nil
}

func (s *cartStore) put(uid string, it cartdom.Item) {
	for i := range s.rows[uid] {
		if s.rows[uid][i].ProductID == it.ProductID {
			s.rows[uid][i] = it
			return
		}
	}
	s.rows[uid] = append(s.rows[uid], it)
}

func (s *cartStore) drop(uid, productID string) {
	rows := s.rows[uid]
	for i := range rows {
		if rows[i].ProductID == productID {
			s.rows[uid] = append(rows[:i:i], rows[i+1:]...)
			return
		}
	}
}

// ------------------------------------------------------------
// order repository
// ------------------------------------------------------------

type orderStore struct {
	mu     sync.Mutex
	orders []orderdom.Order
}

func (s *orderStore) Create(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = fmt.Sprintf("ord-%d", len(s.orders)+1)
	}
	s.orders = append(s.orders, o)
	return o, nil
}

func (s *orderStore) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (s *orderStore) GetByPaymentReference(_ context.Context, ref string) (orderdom.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.PaymentReference == ref {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (s *orderStore) ListByUser(_ context.Context, uid string) ([]orderdom.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []orderdom.Order{}
	for _, o := range s.orders {
		if o.UserID == uid {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *orderStore) ListAll(_ context.Context) ([]orderdom.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]orderdom.Order{}, s.orders...), nil
}

func (s *orderStore) Update(_ context.Context, id string, fn func(o *orderdom.Order) error) (orderdom.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		next := s.orders[i]
		if err := fn(&next); err != nil {
			return orderdom.Order{}, err
		}
		s.orders[i] = next
		return next, nil
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func storedOrder(id, uid string) orderdom.Order {
	return orderdom.Order{
		ID:     id,
		UserID: uid,
		Items: []orderdom.LineItem{
			{ProductID: "p1", Kind: productdom.KindPhone, Name: "Phone", Price: 1000, Quantity: 1},
		},
		Subtotal:         1000,
		Total:            1000,
		Currency:         "NGN",
		Status:           orderdom.StatusPending,
		PaymentReference: "AGY-" + id,
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
}
