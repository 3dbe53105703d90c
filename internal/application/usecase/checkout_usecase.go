// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	authdom "talentagency/internal/domain/auth"
	checkoutdom "talentagency/internal/domain/checkout"
	"talentagency/internal/domain/common"
	orderdom "talentagency/internal/domain/order"

	"github.com/google/uuid"
)

var (
	ErrCheckoutUnavailable     = errors.New("checkout: payment gateway not configured")
	ErrCartEmpty               = errors.New("checkout: cart is empty")
	ErrCartHasUnavailableItems = errors.New("checkout: cart has unavailable items")
	ErrPaymentVerification     = errors.New("checkout: payment verification failed")
	ErrPaymentNotConfirmed     = errors.New("checkout: payment not confirmed")
	ErrPaymentAmountMismatch   = errors.New("checkout: paid amount does not match")
)

// Warning codes reported after a confirmed payment.
const (
	WarnOrderNotSaved       = "order_not_saved"
	WarnMerchantNotNotified = "merchant_notification_failed"
	WarnCustomerNotNotified = "customer_notification_failed"
	WarnCartNotCleared      = "cart_not_cleared"
	WarnFinalizeInProgress  = "finalization_in_progress"
	WarnIntentNotPersisted  = "intent_not_persisted"
)

const defaultCompletionLockTTL = 2 * time.Minute

// DeliveryInput is the checkout form. Every field must be non-blank.
type DeliveryInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=7,max=20"`
	Address string `json:"address" validate:"required,max=300"`
	City    string `json:"city" validate:"required,max=100"`
	State   string `json:"state" validate:"required,max=100"`
}

func (d *DeliveryInput) normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.City = strings.TrimSpace(d.City)
	d.State = strings.TrimSpace(d.State)
}

func (d DeliveryInput) toDomain() orderdom.Delivery {
	return orderdom.Delivery{
		Name:    d.Name,
		Email:   d.Email,
		Phone:   d.Phone,
		Address: d.Address,
		City:    d.City,
		State:   d.State,
	}
}

type CheckoutConfig struct {
	PublicKey         string
	Currency          string
	ReferencePrefix   string
	CompletionLockTTL time.Duration
}

// CheckoutUsecase sequences one checkout attempt: a durable intent before
// payment, gateway verification on success, then order, emails and cart clear.
type CheckoutUsecase struct {
	carts    *CartUsecase
	intents  checkoutdom.Repository
	orders   *OrderUsecase
	gateway  PaymentGateway
	notifier OrderNotifier
	locks    IdempotencyStore
	clock    Clock
	cfg      CheckoutConfig
	newToken func() string
}

func NewCheckoutUsecase(
	carts *CartUsecase,
	intents checkoutdom.Repository,
	orders *OrderUsecase,
	gateway PaymentGateway,
	notifier OrderNotifier,
	locks IdempotencyStore,
	clock Clock,
	cfg CheckoutConfig,
) *CheckoutUsecase {
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	if cfg.ReferencePrefix == "" {
		cfg.ReferencePrefix = "AGY"
	}
	if cfg.CompletionLockTTL <= 0 {
		cfg.CompletionLockTTL = defaultCompletionLockTTL
	}
	return &CheckoutUsecase{
		carts:    carts,
		intents:  intents,
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		locks:    locks,
		clock:    clockOrSystem(clock),
		cfg:      cfg,
		newToken: func() string { return uuid.NewString() },
	}
}

// Begin checks preconditions, freezes the cart into an intent and returns the
// payment widget configuration. Nothing is written when a precondition fails.
func (uc *CheckoutUsecase) Begin(ctx context.Context, caller authdom.Identity, delivery DeliveryInput) (checkoutdom.Session, error) {
	uid, err := requireUser(caller)
	if err != nil {
		return checkoutdom.Session{}, err
	}
	if strings.TrimSpace(uc.cfg.PublicKey) == "" || uc.gateway == nil {
		return checkoutdom.Session{}, ErrCheckoutUnavailable
	}
	delivery.normalize()
	if err := validateStruct(delivery); err != nil {
		return checkoutdom.Session{}, err
	}

	view, err := uc.carts.Load(ctx, uid)
	if err != nil {
		return checkoutdom.Session{}, err
	}
	if len(view.Items) == 0 {
		return checkoutdom.Session{}, ErrCartEmpty
	}
	lines := make([]orderdom.LineItem, 0, len(view.Items))
	for _, it := range view.Items {
		if !it.Available {
			return checkoutdom.Session{}, ErrCartHasUnavailableItems
		}
		lines = append(lines, orderdom.LineItem{
			ProductID: it.ProductID,
			Kind:      it.Kind,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}

	email := strings.TrimSpace(caller.Email)
	if email == "" {
		email = delivery.Email
	}

	now := uc.clock.Now()
	ref := uc.newReference(now)
	intent, err := checkoutdom.NewIntent(ref, uid, email, uc.cfg.Currency, delivery.toDomain(), lines, now)
	if err != nil {
		return checkoutdom.Session{}, err
	}
	if err := uc.intents.Create(ctx, intent); err != nil {
		return checkoutdom.Session{}, fmt.Errorf("checkout: persist intent: %w", err)
	}
	log.Printf("[checkout_uc] begin ref=%s uid=%s amount=%d items=%d", ref, maskUID(uid), intent.Amount, len(lines))

	return checkoutdom.Session{
		PublicKey: uc.cfg.PublicKey,
		Email:     email,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		Reference: ref,
		Metadata: map[string]string{
			"userId":        uid,
			"customerName":  delivery.Name,
			"phone":         delivery.Phone,
			"address":       delivery.Address,
			"city":          delivery.City,
			"state":         delivery.State,
			"itemCount":     strconv.Itoa(view.Count),
			"amountDisplay": common.FormatMinor(intent.Amount, intent.Currency),
		},
		State: checkoutdom.StateAwaitingPayment,
	}, nil
}

// Abandon handles the widget's closed callback. No order, no email, cart untouched.
func (uc *CheckoutUsecase) Abandon(ctx context.Context, caller authdom.Identity, reference string) (checkoutdom.Result, error) {
	intent, err := uc.ownedIntent(ctx, caller, reference)
	if err != nil {
		return checkoutdom.Result{}, err
	}
	if intent.Status == checkoutdom.StatusAbandoned {
		return checkoutdom.Result{State: checkoutdom.StateAbandoned, Reference: intent.Reference, Warnings: []string{}}, nil
	}
	if err := intent.Abandon(uc.clock.Now()); err != nil {
		return checkoutdom.Result{}, err
	}
	if err := uc.intents.Save(ctx, intent); err != nil {
		return checkoutdom.Result{}, err
	}
	log.Printf("[checkout_uc] abandoned ref=%s uid=%s", intent.Reference, maskUID(intent.UserID))
	return checkoutdom.Result{State: checkoutdom.StateAbandoned, Reference: intent.Reference, Warnings: []string{}}, nil
}

// Complete handles the widget's success callback for the caller's own intent.
func (uc *CheckoutUsecase) Complete(ctx context.Context, caller authdom.Identity, reference string) (checkoutdom.Result, error) {
	intent, err := uc.ownedIntent(ctx, caller, reference)
	if err != nil {
		return checkoutdom.Result{}, err
	}
	return uc.complete(ctx, intent)
}

// CompleteFromWebhook finishes an attempt whose browser callback never arrived.
// The signature has already been checked by the caller.
func (uc *CheckoutUsecase) CompleteFromWebhook(ctx context.Context, reference string) (checkoutdom.Result, error) {
	intent, err := uc.intents.Get(ctx, strings.TrimSpace(reference))
	if err != nil {
		return checkoutdom.Result{}, err
	}
	return uc.complete(ctx, intent)
}

// Sweep retries finalization of intents stuck in paid. Intents out of retries
// are moved to failed. It returns how many intents it finalized.
func (uc *CheckoutUsecase) Sweep(ctx context.Context, stuckAfter time.Duration, limit int) (int, error) {
	now := uc.clock.Now()
	stuck, err := uc.intents.ListStuck(ctx, now.Add(-stuckAfter), limit)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, in := range stuck {
		if ctx.Err() != nil {
			break
		}
		unlock, ok := uc.lock(ctx, in.Reference)
		if !ok {
			continue
		}
		intent := in
		if intent.GiveUpIfExhausted(now) {
			if err := uc.intents.Save(ctx, intent); err != nil {
				log.Printf("[checkout_uc] sweep give-up save failed ref=%s err=%v", intent.Reference, err)
			} else {
				log.Printf("[checkout_uc] sweep gave up ref=%s attempts=%d lastError=%s", intent.Reference, intent.Attempts, intent.LastError)
			}
			unlock()
			continue
		}
		warnings := uc.finalize(ctx, &intent)
		unlock()
		n++
		log.Printf("[checkout_uc] sweep ref=%s status=%s warnings=%v", intent.Reference, intent.Status, warnings)
	}
	return n, nil
}

// ============================================================
// internals
// ============================================================

func (uc *CheckoutUsecase) ownedIntent(ctx context.Context, caller authdom.Identity, reference string) (checkoutdom.Intent, error) {
	uid, err := requireUser(caller)
	if err != nil {
		return checkoutdom.Intent{}, err
	}
	ref := strings.TrimSpace(reference)
	if ref == "" {
		return checkoutdom.Intent{}, checkoutdom.ErrInvalidReference
	}
	intent, err := uc.intents.Get(ctx, ref)
	if err != nil {
		return checkoutdom.Intent{}, err
	}
	if intent.UserID != uid && !caller.IsAdmin {
		return checkoutdom.Intent{}, ErrForbidden
	}
	return intent, nil
}

func (uc *CheckoutUsecase) complete(ctx context.Context, intent checkoutdom.Intent) (checkoutdom.Result, error) {
	if intent.Status == checkoutdom.StatusFulfilled {
		return checkoutdom.Result{
			State:     checkoutdom.StateCompleted,
			Reference: intent.Reference,
			OrderID:   intent.OrderID,
			Warnings:  []string{},
		}, nil
	}

	if intent.Status != checkoutdom.StatusPaid {
		if err := uc.verify(ctx, intent); err != nil {
			return checkoutdom.Result{}, err
		}
	}

	// 決済は確定済み。ここから先の失敗は warnings に積むだけ。
	unlock, ok := uc.lock(ctx, intent.Reference)
	if !ok {
		return checkoutdom.Result{
			State:     checkoutdom.StateCompleted,
			Reference: intent.Reference,
			OrderID:   intent.OrderID,
			Warnings:  []string{WarnFinalizeInProgress},
		}, nil
	}
	defer unlock()

	// re-read under the lock so a concurrent webhook and browser callback do not both create orders
	if fresh, err := uc.intents.Get(ctx, intent.Reference); err == nil {
		intent = fresh
	}
	if intent.Status == checkoutdom.StatusFulfilled {
		return checkoutdom.Result{State: checkoutdom.StateCompleted, Reference: intent.Reference, OrderID: intent.OrderID, Warnings: []string{}}, nil
	}

	intent.MarkPaid(uc.clock.Now())
	warnings := uc.finalize(ctx, &intent)

	return checkoutdom.Result{
		State:     checkoutdom.StateCompleted,
		Reference: intent.Reference,
		OrderID:   intent.OrderID,
		Warnings:  warnings,
	}, nil
}

func (uc *CheckoutUsecase) verify(ctx context.Context, intent checkoutdom.Intent) error {
	v, err := uc.gateway.Verify(ctx, intent.Reference)
	if err != nil {
		log.Printf("[checkout_uc] verify failed ref=%s err=%v", intent.Reference, err)
		return fmt.Errorf("%w: %v", ErrPaymentVerification, err)
	}
	if !v.Paid {
		log.Printf("[checkout_uc] payment not confirmed ref=%s status=%s", intent.Reference, v.Status)
		return ErrPaymentNotConfirmed
	}
	if v.Amount != intent.Amount || (v.Currency != "" && !strings.EqualFold(v.Currency, intent.Currency)) {
		log.Printf("[checkout_uc] amount mismatch ref=%s expected=%d %s got=%d %s", intent.Reference, intent.Amount, intent.Currency, v.Amount, v.Currency)
		return ErrPaymentAmountMismatch
	}
	return nil
}

// finalize runs the post-payment steps that are still missing on the intent
// and persists the progress. Each failed step becomes a warning.
func (uc *CheckoutUsecase) finalize(ctx context.Context, intent *checkoutdom.Intent) []string {
	warnings := []string{}
	now := uc.clock.Now()

	if intent.OrderID == "" {
		if id, err := uc.ensureOrder(ctx, *intent); err != nil {
			log.Printf("[checkout_uc] order write failed ref=%s err=%v", intent.Reference, err)
			warnings = append(warnings, WarnOrderNotSaved)
		} else {
			intent.RecordOrder(id, now)
		}
	}

	snapshot := uc.orderSnapshot(*intent, now)
	if !intent.MerchantNotified && uc.notifier != nil {
		if err := uc.notifier.NotifyMerchant(ctx, snapshot); err != nil {
			log.Printf("[checkout_uc] merchant email failed ref=%s err=%v", intent.Reference, err)
			warnings = append(warnings, WarnMerchantNotNotified)
		} else {
			intent.MerchantNotified = true
		}
	}
	if !intent.CustomerNotified && uc.notifier != nil {
		if err := uc.notifier.NotifyCustomer(ctx, snapshot); err != nil {
			log.Printf("[checkout_uc] customer email failed ref=%s err=%v", intent.Reference, err)
			warnings = append(warnings, WarnCustomerNotNotified)
		} else {
			intent.CustomerNotified = true
		}
	}

	if !intent.CartCleared {
		view, err := uc.carts.ClearCart(ctx, intent.UserID)
		if err != nil || !view.Synced {
			warnings = append(warnings, WarnCartNotCleared)
		} else {
			intent.CartCleared = true
		}
	}

	intent.RecordAttempt(strings.Join(warnings, ","), now)
	if intent.TryFulfil(now) {
		log.Printf("[checkout_uc] fulfilled ref=%s orderId=%s", intent.Reference, intent.OrderID)
	} else if intent.GiveUpIfExhausted(now) {
		log.Printf("[checkout_uc] giving up ref=%s attempts=%d lastError=%s", intent.Reference, intent.Attempts, intent.LastError)
	}
	if err := uc.intents.Save(ctx, *intent); err != nil {
		log.Printf("[checkout_uc] intent save failed ref=%s err=%v", intent.Reference, err)
		warnings = append(warnings, WarnIntentNotPersisted)
	}
	return warnings
}

// ensureOrder reuses an order already written for the reference, e.g. when a
// previous attempt crashed between the order write and the intent save.
func (uc *CheckoutUsecase) ensureOrder(ctx context.Context, intent checkoutdom.Intent) (string, error) {
	existing, err := uc.orders.FindByPaymentReference(ctx, intent.Reference)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}
	return uc.orders.CreateOrder(ctx, CreateOrderInput{
		UserID:           intent.UserID,
		Items:            intent.Items,
		Delivery:         intent.Delivery,
		Subtotal:         intent.Amount,
		Tax:              0,
		Currency:         intent.Currency,
		PaymentReference: intent.Reference,
	})
}

// orderSnapshot is what the emails render, built from the intent so a failed
// order write does not block notifications.
func (uc *CheckoutUsecase) orderSnapshot(intent checkoutdom.Intent, now time.Time) orderdom.Order {
	return orderdom.Order{
		ID:               intent.OrderID,
		UserID:           intent.UserID,
		Items:            intent.Items,
		Delivery:         intent.Delivery,
		Subtotal:         intent.Amount,
		Tax:              0,
		Total:            intent.Amount,
		Currency:         intent.Currency,
		Status:           orderdom.StatusPending,
		PaymentReference: intent.Reference,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
}

// lock takes the completion guard for ref. When the store itself fails the
// attempt proceeds unguarded; the intent status still prevents a second order.
func (uc *CheckoutUsecase) lock(ctx context.Context, ref string) (func(), bool) {
	if uc.locks == nil {
		return func() {}, true
	}
	key := "checkout:complete:" + ref
	ok, err := uc.locks.MarkProcessed(ctx, key, uc.cfg.CompletionLockTTL)
	if err != nil {
		log.Printf("[checkout_uc] idempotency store unavailable ref=%s err=%v", ref, err)
		return func() {}, true
	}
	if !ok {
		return nil, false
	}
	return func() {
		if err := uc.locks.Release(context.WithoutCancel(ctx), key); err != nil {
			log.Printf("[checkout_uc] release lock failed ref=%s err=%v", ref, err)
		}
	}, true
}

func (uc *CheckoutUsecase) newReference(now time.Time) string {
	tok := strings.ReplaceAll(uc.newToken(), "-", "")
	if len(tok) > 10 {
		tok = tok[:10]
	}
	return fmt.Sprintf("%s-%d-%s", uc.cfg.ReferencePrefix, now.UnixMilli(), strings.ToUpper(tok))
}
