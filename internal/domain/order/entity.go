// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	productdom "talentagency/internal/domain/product"
)

// ========================================
// Status
// ========================================

type Status string

const (
	StatusPending    Status = "pending"
	StatusInDelivery Status = "in-delivery"
	StatusDelivered  Status = "delivered"
)

// Statuses is the closed set, in lifecycle order.
var Statuses = []Status{StatusPending, StatusInDelivery, StatusDelivered}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInDelivery, StatusDelivered:
		return true
	}
	return false
}

// ParseStatus rejects anything outside the closed set.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func (s Status) rank() int {
	for i, v := range Statuses {
		if v == s {
			return i
		}
	}
	return -1
}

// ========================================
// Snapshot structs (stored in Order)
// ========================================

// LineItem is a frozen copy of the product at purchase time.
type LineItem struct {
	ProductID string          `json:"productId"`
	Kind      productdom.Kind `json:"kind,omitempty"`
	Name      string          `json:"name"`
	Price     int             `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

func (l LineItem) Amount() int {
	return l.Price * l.Quantity
}

// Delivery is where and to whom the order ships.
type Delivery struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
}

// StatusChange is one audit entry.
type StatusChange struct {
	From Status    `json:"from"`
	To   Status    `json:"to"`
	By   string    `json:"by"`
	At   time.Time `json:"at"`
}

// ========================================
// Entity
// ========================================

type Order struct {
	ID     string     `json:"id"`
	UserID string     `json:"userId"`
	Items  []LineItem `json:"items"`

	Delivery Delivery `json:"delivery"`

	Subtotal int    `json:"subtotal"`
	Tax      int    `json:"tax"`
	Total    int    `json:"total"`
	Currency string `json:"currency"`

	Status           Status         `json:"status"`
	PaymentReference string         `json:"paymentReference"`
	StatusHistory    []StatusChange `json:"statusHistory,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ========================================
// Errors
// ========================================

var (
	ErrInvalidUserID        = errors.New("order: invalid userId")
	ErrInvalidItems         = errors.New("order: invalid items")
	ErrInvalidItemSnapshot  = errors.New("order: invalid item snapshot")
	ErrInvalidDelivery      = errors.New("order: invalid delivery")
	ErrInvalidAmount        = errors.New("order: invalid amount")
	ErrInvalidStatus        = errors.New("order: invalid status")
	ErrTransitionNotAllowed = errors.New("order: status transition not allowed")
	ErrInvalidPaymentRef    = errors.New("order: invalid paymentReference")
	ErrNotFound             = errors.New("order: not found")
	ErrDuplicatePaymentRef  = errors.New("order: duplicate paymentReference")
)

// ========================================
// Constructors
// ========================================

// New builds a pending order. Total is fixed here as subtotal + tax and never
// recomputed afterwards.
func New(
	id string,
	userID string,
	items []LineItem,
	delivery Delivery,
	subtotal, tax int,
	currency string,
	paymentReference string,
	now time.Time,
) (Order, error) {
	o := Order{
		ID:               strings.TrimSpace(id),
		UserID:           strings.TrimSpace(userID),
		Items:            normalizeItems(items),
		Delivery:         normalizeDelivery(delivery),
		Subtotal:         subtotal,
		Tax:              tax,
		Total:            subtotal + tax,
		Currency:         strings.ToUpper(strings.TrimSpace(currency)),
		Status:           StatusPending,
		PaymentReference: strings.TrimSpace(paymentReference),
		StatusHistory:    []StatusChange{},
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// SubtotalOf sums line amounts.
func SubtotalOf(items []LineItem) int {
	sum := 0
	for _, it := range items {
		sum += it.Amount()
	}
	return sum
}

// ========================================
// Behavior
// ========================================

// ChangeStatus moves the order to next under policy and appends an audit entry.
// A self-transition is accepted and reports changed=false.
func (o *Order) ChangeStatus(next Status, by string, policy TransitionPolicy, now time.Time) (changed bool, err error) {
	if o == nil {
		return false, ErrNotFound
	}
	if !next.Valid() {
		return false, ErrInvalidStatus
	}
	if policy == nil {
		policy = AnyTransition{}
	}
	if o.Status == next {
		return false, nil
	}
	if !policy.Allow(o.Status, next) {
		return false, ErrTransitionNotAllowed
	}
	at := now.UTC()
	o.StatusHistory = append(o.StatusHistory, StatusChange{
		From: o.Status,
		To:   next,
		By:   strings.TrimSpace(by),
		At:   at,
	})
	o.Status = next
	o.UpdatedAt = at
	return true, nil
}

// ========================================
// Transition policies
// ========================================

type TransitionPolicy interface {
	Allow(from, to Status) bool
	Name() string
}

// AnyTransition allows every move inside the closed set, backwards included.
type AnyTransition struct{}

func (AnyTransition) Allow(from, to Status) bool { return to.Valid() }
func (AnyTransition) Name() string               { return "faithful" }

// ForwardOnly allows pending -> in-delivery -> delivered, skipping allowed, never backwards.
type ForwardOnly struct{}

func (ForwardOnly) Allow(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if !from.Valid() {
		return true
	}
	return to.rank() >= from.rank()
}
func (ForwardOnly) Name() string { return "strict" }

// PolicyByName maps the configured name to a policy. Unknown names fall back to AnyTransition.
func PolicyByName(name string) TransitionPolicy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strict", "forward", "forward-only":
		return ForwardOnly{}
	default:
		return AnyTransition{}
	}
}

// ========================================
// Validation
// ========================================

func (o Order) validate() error {
	if o.UserID == "" {
		return ErrInvalidUserID
	}
	if len(o.Items) == 0 {
		return ErrInvalidItems
	}
	for _, it := range o.Items {
		if it.ProductID == "" || it.Quantity <= 0 || it.Price < 0 {
			return ErrInvalidItemSnapshot
		}
	}
	if o.Subtotal < 0 || o.Tax < 0 {
		return ErrInvalidAmount
	}
	if o.Delivery.Name == "" || o.Delivery.Email == "" || o.Delivery.Phone == "" ||
		o.Delivery.Address == "" || o.Delivery.City == "" || o.Delivery.State == "" {
		return ErrInvalidDelivery
	}
	if o.PaymentReference == "" {
		return ErrInvalidPaymentRef
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// ========================================
// Helpers
// ========================================

func normalizeItems(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.Name = strings.TrimSpace(it.Name)
		it.ImageURL = strings.TrimSpace(it.ImageURL)
		out = append(out, it)
	}
	return out
}

func normalizeDelivery(d Delivery) Delivery {
	return Delivery{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Phone:   strings.TrimSpace(d.Phone),
		Address: strings.TrimSpace(d.Address),
		City:    strings.TrimSpace(d.City),
		State:   strings.TrimSpace(d.State),
	}
}
