package usecase

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	authdom "talentagency/internal/domain/auth"
	checkoutdom "talentagency/internal/domain/checkout"
	orderdom "talentagency/internal/domain/order"
	productdom "talentagency/internal/domain/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutHarness struct {
	now      time.Time
	carts    *memCartRepo
	lookup   *fakeLookup
	intents  *memIntentRepo
	orders   *memOrderRepo
	gateway  *fakeGateway
	notifier *fakeNotifier
	locks    *memLocks
	cartUC   *CartUsecase
	uc       *CheckoutUsecase
}

func newCheckoutHarness(t *testing.T) *checkoutHarness {
	t.Helper()
	h := &checkoutHarness{
		now:      testNow,
		carts:    newMemCartRepo(),
		intents:  newMemIntentRepo(),
		orders:   &memOrderRepo{},
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
		locks:    &memLocks{},
		lookup: newFakeLookup(
			testProduct(productdom.KindPhone, "p1", "Phone", 5000),
			testProduct(productdom.KindGadget, "g1", "Gadget", 1000),
		),
	}
	clock := ClockFunc(func() time.Time { return h.now })
	h.cartUC = NewCartUsecaseWithClock(h.carts, h.lookup, clock)
	orderUC := NewOrderUsecase(h.orders, nil, clock)
	h.uc = NewCheckoutUsecase(h.cartUC, h.intents, orderUC, h.gateway, h.notifier, h.locks, clock, CheckoutConfig{PublicKey: "pk_test_123"})

	seq := 0
	h.uc.newToken = func() string {
		seq++
		return fmt.Sprintf("abcdef%04d-ffff", seq)
	}
	return h
}

func (h *checkoutHarness) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, ref := range []struct {
		kind productdom.Kind
		id   string
	}{{productdom.KindPhone, "p1"}, {productdom.KindPhone, "p1"}, {productdom.KindGadget, "g1"}} {
		_, err := h.cartUC.AddToCart(ctx, testUID, ref.kind, ref.id)
		require.NoError(t, err)
	}
}

func deliveryInput() DeliveryInput {
	return DeliveryInput{
		Name:    " Ada Obi ",
		Email:   "ada@example.com",
		Phone:   "08031234567",
		Address: "12 Marina Rd",
		City:    "Lagos",
		State:   "Lagos",
	}
}

func (h *checkoutHarness) begin(t *testing.T) checkoutdom.Session {
	t.Helper()
	h.fillCart(t)
	s, err := h.uc.Begin(context.Background(), buyer, deliveryInput())
	require.NoError(t, err)
	return s
}

func TestCheckout_Begin(t *testing.T) {
	h := newCheckoutHarness(t)
	s := h.begin(t)

	assert.Equal(t, "pk_test_123", s.PublicKey)
	assert.Equal(t, 11000, s.Amount)
	assert.Equal(t, "NGN", s.Currency)
	assert.Equal(t, "buyer@example.com", s.Email)
	assert.Equal(t, checkoutdom.StateAwaitingPayment, s.State)
	assert.Regexp(t, regexp.MustCompile(`^AGY-\d+-[0-9A-F]{10}$`), s.Reference)
	assert.Equal(t, "Ada Obi", s.Metadata["customerName"])
	assert.Equal(t, "3", s.Metadata["itemCount"])

	in := h.intents.get(s.Reference)
	assert.Equal(t, checkoutdom.StatusAwaitingPayment, in.Status)
	assert.Len(t, in.Items, 2)
	assert.Equal(t, 0, h.gateway.calls)
}

func TestCheckout_Begin_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		h := newCheckoutHarness(t)
		h.fillCart(t)
		h.uc.cfg.PublicKey = ""
		_, err := h.uc.Begin(ctx, buyer, deliveryInput())
		assert.ErrorIs(t, err, ErrCheckoutUnavailable)
		assert.Equal(t, 0, h.intents.count())
	})

	t.Run("anonymous", func(t *testing.T) {
		h := newCheckoutHarness(t)
		_, err := h.uc.Begin(ctx, authdom.Anonymous, deliveryInput())
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("blank delivery field", func(t *testing.T) {
		h := newCheckoutHarness(t)
		h.fillCart(t)
		d := deliveryInput()
		d.City = "   "
		_, err := h.uc.Begin(ctx, buyer, d)
		require.ErrorIs(t, err, ErrValidation)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "city", ve.Fields[0].Field)
		assert.Equal(t, 0, h.intents.count())
	})

	t.Run("empty cart", func(t *testing.T) {
		h := newCheckoutHarness(t)
		_, err := h.uc.Begin(ctx, buyer, deliveryInput())
		assert.ErrorIs(t, err, ErrCartEmpty)
		assert.Equal(t, 0, h.intents.count())
	})

	t.Run("unavailable line", func(t *testing.T) {
		h := newCheckoutHarness(t)
		h.fillCart(t)
		h.lookup.remove("g1")
		_, err := h.uc.Begin(ctx, buyer, deliveryInput())
		assert.ErrorIs(t, err, ErrCartHasUnavailableItems)
		assert.Equal(t, 0, h.intents.count())
	})
}

func TestCheckout_Abandon_LeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)
	s := h.begin(t)
	before := h.carts.stored(testUID)

	res, err := h.uc.Abandon(ctx, buyer, s.Reference)
	require.NoError(t, err)
	assert.Equal(t, checkoutdom.StateAbandoned, res.State)

	assert.Equal(t, 0, h.orders.count())
	m, c := h.notifier.sent()
	assert.Zero(t, m)
	assert.Zero(t, c)
	assert.Equal(t, before, h.carts.stored(testUID))
	assert.Equal(t, checkoutdom.StatusAbandoned, h.intents.get(s.Reference).Status)

	// a second close is harmless
	_, err = h.uc.Abandon(ctx, buyer, s.Reference)
	require.NoError(t, err)
}

func TestCheckout_Complete(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")

	res, err := h.uc.Complete(ctx, buyer, s.Reference)
	require.NoError(t, err)
	assert.Equal(t, checkoutdom.StateCompleted, res.State)
	assert.Empty(t, res.Warnings)
	require.NotEmpty(t, res.OrderID)

	require.Equal(t, 1, h.orders.count())
	o := h.orders.orders[0]
	assert.Equal(t, res.OrderID, o.ID)
	assert.Equal(t, 11000, o.Total)
	assert.Equal(t, s.Reference, o.PaymentReference)
	assert.Equal(t, orderdom.StatusPending, o.Status)

	m, c := h.notifier.sent()
	assert.Equal(t, 1, m)
	assert.Equal(t, 1, c)
	assert.Empty(t, h.carts.stored(testUID))

	in := h.intents.get(s.Reference)
	assert.Equal(t, checkoutdom.StatusFulfilled, in.Status)
	assert.Equal(t, o.ID, in.OrderID)
}

func TestCheckout_Complete_Twice(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")

	first, err := h.uc.Complete(ctx, buyer, s.Reference)
	require.NoError(t, err)
	second, err := h.uc.CompleteFromWebhook(ctx, s.Reference)
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, h.orders.count())
	m, c := h.notifier.sent()
	assert.Equal(t, 1, m)
	assert.Equal(t, 1, c)
	assert.Equal(t, 1, h.gateway.calls)
}

func TestCheckout_Complete_Rejected(t *testing.T) {
	ctx := context.Background()

	t.Run("not paid", func(t *testing.T) {
		h := newCheckoutHarness(t)
		s := h.begin(t)
		_, err := h.uc.Complete(ctx, buyer, s.Reference)
		assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
		assert.Equal(t, 0, h.orders.count())
		assert.Len(t, h.carts.stored(testUID), 2)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		h := newCheckoutHarness(t)
		s := h.begin(t)
		h.gateway.approve(s.Reference, 100, "NGN")
		_, err := h.uc.Complete(ctx, buyer, s.Reference)
		assert.ErrorIs(t, err, ErrPaymentAmountMismatch)
		assert.Equal(t, 0, h.orders.count())
	})

	t.Run("gateway down", func(t *testing.T) {
		h := newCheckoutHarness(t)
		s := h.begin(t)
		h.gateway.err = errBoom
		_, err := h.uc.Complete(ctx, buyer, s.Reference)
		assert.ErrorIs(t, err, ErrPaymentVerification)
	})

	t.Run("someone else's reference", func(t *testing.T) {
		h := newCheckoutHarness(t)
		s := h.begin(t)
		h.gateway.approve(s.Reference, s.Amount, "NGN")
		_, err := h.uc.Complete(ctx, other, s.Reference)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, 0, h.orders.count())
	})

	t.Run("unknown reference", func(t *testing.T) {
		h := newCheckoutHarness(t)
		_, err := h.uc.Complete(ctx, buyer, "AGY-0-NOPE")
		assert.ErrorIs(t, err, checkoutdom.ErrNotFound)
	})
}

func TestCheckout_Complete_WarningsThenSweep(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")
	h.orders.createErr = errBoom

	res, err := h.uc.Complete(ctx, buyer, s.Reference)
	require.NoError(t, err)
	assert.Equal(t, checkoutdom.StateCompleted, res.State)
	assert.Equal(t, []string{WarnOrderNotSaved}, res.Warnings)
	assert.Empty(t, res.OrderID)

	// emails are built from the intent and still go out
	m, c := h.notifier.sent()
	assert.Equal(t, 1, m)
	assert.Equal(t, 1, c)
	assert.Equal(t, checkoutdom.StatusPaid, h.intents.get(s.Reference).Status)

	h.orders.createErr = nil
	h.now = h.now.Add(5 * time.Minute)
	sweeper := NewOutboxSweeper(h.uc, time.Minute, 2*time.Minute)
	assert.Equal(t, 1, sweeper.SweepOnce(ctx))

	in := h.intents.get(s.Reference)
	assert.Equal(t, checkoutdom.StatusFulfilled, in.Status)
	assert.NotEmpty(t, in.OrderID)
	assert.Equal(t, 1, h.orders.count())
	m, c = h.notifier.sent()
	assert.Equal(t, 1, m, "merchant is not emailed twice")
	assert.Equal(t, 1, c)

	// nothing left to sweep
	assert.Equal(t, 0, sweeper.SweepOnce(ctx))
}

func TestCheckout_Complete_NotificationWarnings(t *testing.T) {
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")
	h.notifier.customerErr = errBoom

	res, err := h.uc.Complete(context.Background(), buyer, s.Reference)
	require.NoError(t, err)
	assert.Equal(t, []string{WarnCustomerNotNotified}, res.Warnings)
	assert.NotEmpty(t, res.OrderID)
	assert.Empty(t, h.carts.stored(testUID))
}

func TestCheckout_Complete_LockHeld(t *testing.T) {
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")
	h.locks.held = map[string]bool{"checkout:complete:" + s.Reference: true}

	res, err := h.uc.Complete(context.Background(), buyer, s.Reference)
	require.NoError(t, err)
	assert.Equal(t, []string{WarnFinalizeInProgress}, res.Warnings)
	assert.Equal(t, 0, h.orders.count())
}

func TestCheckout_Complete_LockStoreDown(t *testing.T) {
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")
	h.locks.err = errBoom

	res, err := h.uc.Complete(context.Background(), buyer, s.Reference)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, h.orders.count())
}

func TestCheckout_Complete_ReusesExistingOrder(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")

	// a previous attempt wrote the order but died before saving the intent
	in := h.intents.get(s.Reference)
	prior, err := h.orders.Create(ctx, orderdom.Order{UserID: testUID, PaymentReference: s.Reference, Items: in.Items})
	require.NoError(t, err)

	res, err := h.uc.Complete(ctx, buyer, s.Reference)
	require.NoError(t, err)
	assert.Equal(t, prior.ID, res.OrderID)
	assert.Equal(t, 1, h.orders.count())
}

func TestCheckout_AbandonAfterPaid(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)
	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")
	_, err := h.uc.Complete(ctx, buyer, s.Reference)
	require.NoError(t, err)

	_, err = h.uc.Abandon(ctx, buyer, s.Reference)
	assert.ErrorIs(t, err, checkoutdom.ErrInvalidTransition)
}

func TestCheckout_PaidAfterAbandon(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)
	s := h.begin(t)
	_, err := h.uc.Abandon(ctx, buyer, s.Reference)
	require.NoError(t, err)

	// the gateway reports success later, e.g. via webhook
	h.gateway.approve(s.Reference, s.Amount, "NGN")
	res, err := h.uc.CompleteFromWebhook(ctx, s.Reference)
	require.NoError(t, err)
	assert.NotEmpty(t, res.OrderID)
	assert.Equal(t, checkoutdom.StatusFulfilled, h.intents.get(s.Reference).Status)
}

func TestOutboxSweeper_ExhaustedIntentsDoNotBlockNewerOnes(t *testing.T) {
	ctx := context.Background()
	h := newCheckoutHarness(t)

	old := h.now.Add(-time.Hour)
	for i := 0; i < sweepBatchSize+5; i++ {
		ref := fmt.Sprintf("AGY-OLD-%03d", i)
		h.intents.intents[ref] = checkoutdom.Intent{
			Reference: ref,
			UserID:    "u-old",
			Email:     "old@example.com",
			Amount:    1000,
			Currency:  "NGN",
			Items:     []orderdom.LineItem{{ProductID: "g1", Name: "Gadget", Price: 1000, Quantity: 1}},
			Status:    checkoutdom.StatusPaid,
			Attempts:  checkoutdom.MaxFinalizeAttempts,
			LastError: WarnOrderNotSaved,
			CreatedAt: old,
			UpdatedAt: old.Add(time.Duration(i) * time.Second),
		}
	}

	s := h.begin(t)
	h.gateway.approve(s.Reference, s.Amount, "NGN")
	h.orders.createErr = errBoom
	_, err := h.uc.Complete(ctx, buyer, s.Reference)
	require.NoError(t, err)
	require.Equal(t, checkoutdom.StatusPaid, h.intents.get(s.Reference).Status)

	h.orders.createErr = nil
	h.now = h.now.Add(5 * time.Minute)
	sweeper := NewOutboxSweeper(h.uc, time.Minute, 2*time.Minute)
	sweeper.SweepOnce(ctx)
	sweeper.SweepOnce(ctx)

	in := h.intents.get(s.Reference)
	assert.Equal(t, checkoutdom.StatusFulfilled, in.Status)
	assert.NotEmpty(t, in.OrderID)
	for i := 0; i < sweepBatchSize+5; i++ {
		assert.Equal(t, checkoutdom.StatusFailed, h.intents.get(fmt.Sprintf("AGY-OLD-%03d", i)).Status)
	}
	assert.Equal(t, 1, h.orders.count())

	// failed intents are no longer listed
	assert.Equal(t, 0, sweeper.SweepOnce(ctx))
}
