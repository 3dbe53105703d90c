// internal/application/usecase/order_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"strings"

	authdom "talentagency/internal/domain/auth"
	orderdom "talentagency/internal/domain/order"
)

// CreateOrderInput is assembled by the checkout flow from a frozen cart snapshot.
type CreateOrderInput struct {
	UserID           string
	Items            []orderdom.LineItem
	Delivery         orderdom.Delivery
	Subtotal         int
	Tax              int
	Currency         string
	PaymentReference string
}

type OrderUsecase struct {
	repo   orderdom.Repository
	policy orderdom.TransitionPolicy
	clock  Clock
}

func NewOrderUsecase(repo orderdom.Repository, policy orderdom.TransitionPolicy, clock Clock) *OrderUsecase {
	if policy == nil {
		policy = orderdom.AnyTransition{}
	}
	return &OrderUsecase{repo: repo, policy: policy, clock: clockOrSystem(clock)}
}

// CreateOrder inserts a pending order and returns its id.
func (uc *OrderUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (string, error) {
	o, err := orderdom.New("", in.UserID, in.Items, in.Delivery, in.Subtotal, in.Tax, in.Currency, in.PaymentReference, uc.clock.Now())
	if err != nil {
		return "", err
	}
	created, err := uc.repo.Create(ctx, o)
	if err != nil {
		return "", err
	}
	log.Printf("[order_uc] order created id=%s uid=%s total=%d ref=%s", created.ID, maskUID(created.UserID), created.Total, created.PaymentReference)
	return created.ID, nil
}

// FindByPaymentReference returns (nil, nil) when no order carries ref.
func (uc *OrderUsecase) FindByPaymentReference(ctx context.Context, ref string) (*orderdom.Order, error) {
	o, err := uc.repo.GetByPaymentReference(ctx, strings.TrimSpace(ref))
	if errors.Is(err, orderdom.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOrder returns (nil, nil) when absent. A non-admin asking for someone
// else's order gets the same answer, so existence is not leaked.
func (uc *OrderUsecase) GetOrder(ctx context.Context, caller authdom.Identity, id string) (*orderdom.Order, error) {
	uid, err := requireUser(caller)
	if err != nil {
		return nil, err
	}
	oid := strings.TrimSpace(id)
	if oid == "" {
		return nil, nil
	}
	o, err := uc.repo.GetByID(ctx, oid)
	if errors.Is(err, orderdom.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin && o.UserID != uid {
		return nil, nil
	}
	return &o, nil
}

// GetUserOrders lists the caller's orders, newest first.
func (uc *OrderUsecase) GetUserOrders(ctx context.Context, caller authdom.Identity) ([]orderdom.Order, error) {
	uid, err := requireUser(caller)
	if err != nil {
		return nil, err
	}
	return uc.repo.ListByUser(ctx, uid)
}

// GetAllOrders lists every order, newest first. Admin only.
func (uc *OrderUsecase) GetAllOrders(ctx context.Context, caller authdom.Identity) ([]orderdom.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return uc.repo.ListAll(ctx)
}

// UpdateOrderStatus moves an order inside the closed status set under the
// configured policy and records who did it. Admin only.
func (uc *OrderUsecase) UpdateOrderStatus(ctx context.Context, caller authdom.Identity, id, status string) (orderdom.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return orderdom.Order{}, err
	}
	next, err := orderdom.ParseStatus(status)
	if err != nil {
		return orderdom.Order{}, err
	}
	oid := strings.TrimSpace(id)
	if oid == "" {
		return orderdom.Order{}, orderdom.ErrNotFound
	}

	now := uc.clock.Now()
	updated, err := uc.repo.Update(ctx, oid, func(o *orderdom.Order) error {
		_, err := o.ChangeStatus(next, caller.UID, uc.policy, now)
		return err
	})
	if err != nil {
		return orderdom.Order{}, err
	}
	log.Printf("[order_uc] status updated id=%s status=%s policy=%s by=%s", oid, updated.Status, uc.policy.Name(), maskUID(caller.UID))
	return updated, nil
}

func (uc *OrderUsecase) PolicyName() string {
	return uc.policy.Name()
}
