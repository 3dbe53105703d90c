package handlers

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "talentagency/internal/application/usecase"
	authdom "talentagency/internal/domain/auth"
	checkoutdom "talentagency/internal/domain/checkout"
	productdom "talentagency/internal/domain/product"
)

type intentStore struct {
	mu   sync.Mutex
	rows map[string]checkoutdom.Intent
}

func (s *intentStore) Create(_ context.Context, in checkoutdom.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[in.Reference]; ok {
		return checkoutdom.ErrAlreadyExists
	}
	s.rows[in.Reference] = in
	return nil
}

func (s *intentStore) Get(_ context.Context, ref string) (checkoutdom.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.rows[ref]
	if !ok {
		return checkoutdom.Intent{}, checkoutdom.ErrNotFound
	}
	return in, nil
}

func (s *intentStore) Save(_ context.Context, in checkoutdom.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[in.Reference] = in
	return nil
}

func (s *intentStore) ListStuck(context.Context, time.Time, int) ([]checkoutdom.Intent, error) {
	return nil, nil
}

// paidGateway confirms every reference for the stored intent amount.
type paidGateway struct {
	intents *intentStore
	paid    bool
}

func (g *paidGateway) Verify(ctx context.Context, ref string) (usecase.PaymentVerification, error) {
	in, err := g.intents.Get(ctx, ref)
	if err != nil {
		return usecase.PaymentVerification{}, err
	}
	status := "abandoned"
	if g.paid {
		status = "success"
	}
	return usecase.PaymentVerification{Reference: ref, Paid: g.paid, Status: status, Amount: in.Amount, Currency: in.Currency}, nil
}

type checkoutFixture struct {
	h       http.Handler
	carts   *cartStore
	intents *intentStore
	orders  *orderStore
	gateway *paidGateway
}

func newCheckoutFixture(publicKey string) *checkoutFixture {
	f := &checkoutFixture{
		carts:   newCartStore(),
		intents: &intentStore{rows: map[string]checkoutdom.Intent{}},
		orders:  &orderStore{},
	}
	f.gateway = &paidGateway{intents: f.intents, paid: true}
	clock := usecase.ClockFunc(func() time.Time { return testNow })
	cartUC := usecase.NewCartUsecaseWithClock(f.carts, lookupStub{"p1": product(productdom.KindPhone, "p1", 2500)}, clock)
	orderUC := usecase.NewOrderUsecase(f.orders, nil, clock)
	uc := usecase.NewCheckoutUsecase(cartUC, f.intents, orderUC, f.gateway, nil, nil, clock, usecase.CheckoutConfig{PublicKey: publicKey})
	f.h = NewCheckoutHandler(uc)
	return f
}

var delivery = map[string]string{
	"name":    "Alice A",
	"email":   "alice@example.com",
	"phone":   "08012345678",
	"address": "1 Marina Road",
	"city":    "Lagos",
	"state":   "Lagos",
}

func (f *checkoutFixture) begin(t *testing.T) checkoutdom.Session {
	t.Helper()
	f.carts.rows[alice.UID] = nil
	cartH := NewCartHandler(usecase.NewCartUsecase(f.carts, lookupStub{"p1": product(productdom.KindPhone, "p1", 2500)}))
	rec := do(t, cartH, http.MethodPost, "/me/cart/items", map[string]string{"productId": "p1", "kind": "phone"}, alice)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, f.h, http.MethodPost, "/me/checkout", delivery, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[checkoutdom.Session](t, rec)
}

func TestCheckoutHandler_BeginAndComplete(t *testing.T) {
	f := newCheckoutFixture("pk_test_1")
	sess := f.begin(t)
	assert.Equal(t, 2500, sess.Amount)
	assert.Equal(t, "pk_test_1", sess.PublicKey)
	assert.NotEmpty(t, sess.Reference)

	rec := do(t, f.h, http.MethodPost, "/me/checkout/"+sess.Reference+"/success", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[checkoutdom.Result](t, rec)
	assert.Equal(t, checkoutdom.StateCompleted, res.State)
	assert.NotEmpty(t, res.OrderID)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, f.carts.rows[alice.UID])

	// a repeated callback answers the same order
	rec = do(t, f.h, http.MethodPost, "/me/checkout/"+sess.Reference+"/success", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, res.OrderID, decode[checkoutdom.Result](t, rec).OrderID)
	assert.Len(t, f.orders.orders, 1)
}

func TestCheckoutHandler_Close(t *testing.T) {
	f := newCheckoutFixture("pk_test_1")
	sess := f.begin(t)

	rec := do(t, f.h, http.MethodPost, "/me/checkout/"+sess.Reference+"/close", nil, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, f.orders.orders)
	assert.Len(t, f.carts.rows[alice.UID], 1)
}

func TestCheckoutHandler_UnpaidIsRejected(t *testing.T) {
	f := newCheckoutFixture("pk_test_1")
	sess := f.begin(t)
	f.gateway.paid = false

	rec := do(t, f.h, http.MethodPost, "/me/checkout/"+sess.Reference+"/success", nil, alice)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Empty(t, f.orders.orders)
}

func TestCheckoutHandler_Preconditions(t *testing.T) {
	f := newCheckoutFixture("pk_test_1")

	rec := do(t, f.h, http.MethodPost, "/me/checkout", delivery, authdom.Anonymous)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, f.h, http.MethodPost, "/me/checkout", delivery, alice)
	assert.Equal(t, http.StatusConflict, rec.Code)

	bad := map[string]string{"name": "Alice", "email": "not-an-email", "phone": "1", "address": "x", "city": "y", "state": "z"}
	rec = do(t, f.h, http.MethodPost, "/me/checkout", bad, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decode[errorBody](t, rec).Fields)

	rec = do(t, f.h, http.MethodGet, "/me/checkout", nil, alice)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	unconfigured := newCheckoutFixture("")
	rec = do(t, unconfigured.h, http.MethodPost, "/me/checkout", delivery, alice)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheckoutHandler_OtherUsersReference(t *testing.T) {
	f := newCheckoutFixture("pk_test_1")
	sess := f.begin(t)

	rec := do(t, f.h, http.MethodPost, "/me/checkout/"+sess.Reference+"/success", nil, bob)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
