package usecase

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	cartdom "talentagency/internal/domain/cart"
	checkoutdom "talentagency/internal/domain/checkout"
	orderdom "talentagency/internal/domain/order"
	productdom "talentagency/internal/domain/product"
	appdom "talentagency/internal/domain/serviceapp"
	wishdom "talentagency/internal/domain/wishlist"
)

var errBoom = errors.New("boom")

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() Clock {
	return ClockFunc(func() time.Time { return testNow })
}

func testProduct(kind productdom.Kind, id, name string, price int) productdom.Product {
	return productdom.Product{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Price:     price,
		ImageURL:  "https://img.example/" + id + ".png",
		InStock:   true,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

// ------------------------------------------------------------
// product lookup
// ------------------------------------------------------------

type fakeLookup struct {
	mu       sync.Mutex
	products map[string]productdom.Product
	errs     map[string]error
	calls    int
}

func newFakeLookup(ps ...productdom.Product) *fakeLookup {
	l := &fakeLookup{products: map[string]productdom.Product{}, errs: map[string]error{}}
	for _, p := range ps {
		l.products[p.ID] = p
	}
	return l
}

func (l *fakeLookup) Resolve(_ context.Context, _ productdom.Kind, id string) (productdom.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if err, ok := l.errs[id]; ok {
		return productdom.Product{}, err
	}
	p, ok := l.products[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (l *fakeLookup) set(p productdom.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.products[p.ID] = p
}

func (l *fakeLookup) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.products, id)
}

// ------------------------------------------------------------
// cart repository
// ------------------------------------------------------------

type memCartRepo struct {
	mu       sync.Mutex
	rows     map[string][]cartdom.Item
	listErr  error
	writeErr error
	writes   int
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{rows: map[string][]cartdom.Item{}}
}

func (m *memCartRepo) ListItems(_ context.Context, userID string) ([]cartdom.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]cartdom.Item, len(m.rows[userID]))
	copy(out, m.rows[userID])
	return out, nil
}

func (m *memCartRepo) UpsertItem(_ context.Context, userID string, it cartdom.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.put(userID, it)
	return nil
}

func (m *memCartRepo) DeleteItem(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.drop(userID, productID)
	return nil
}

func (m *memCartRepo) DeleteAll(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	delete(m.rows, userID)
	return nil
}

func (m *memCartRepo) MutateItem(_ context.Context, userID, productID string, fn cartdom.MutateFunc) (*cartdom.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	var cur *cartdom.Item
	for _, it := range m.rows[userID] {
		if it.ProductID == productID {
			c := it
			cur = &c
			break
		}
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	m.writes++
	if next == nil {
		m.drop(userID, productID)
		return nil, nil
	}
	m.put(userID, *next)
	out := *next
	return &out, nil
}

func (m *memCartRepo) put(userID string, it cartdom.Item) {
	for i := range m.rows[userID] {
		if m.rows[userID][i].ProductID == it.ProductID {
			m.rows[userID][i] = it
			return
		}
	}
	m.rows[userID] = append(m.rows[userID], it)
}

func (m *memCartRepo) drop(userID, productID string) {
	rows := m.rows[userID]
	for i := range rows {
		if rows[i].ProductID == productID {
			m.rows[userID] = append(rows[:i:i], rows[i+1:]...)
			return
		}
	}
}

func (m *memCartRepo) stored(userID string) []cartdom.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]cartdom.Item, len(m.rows[userID]))
	copy(out, m.rows[userID])
	return out
}

// ------------------------------------------------------------
// wishlist repository
// ------------------------------------------------------------

type memWishRepo struct {
	mu       sync.Mutex
	rows     map[string][]wishdom.Item
	writeErr error
	creates  int
}

func newMemWishRepo() *memWishRepo {
	return &memWishRepo{rows: map[string][]wishdom.Item{}}
}

func (m *memWishRepo) ListItems(_ context.Context, userID string) ([]wishdom.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wishdom.Item, len(m.rows[userID]))
	copy(out, m.rows[userID])
	return out, nil
}

func (m *memWishRepo) CreateItem(_ context.Context, userID string, it wishdom.Item) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return false, m.writeErr
	}
	for _, cur := range m.rows[userID] {
		if cur.ProductID == it.ProductID {
			return false, nil
		}
	}
	m.creates++
	m.rows[userID] = append(m.rows[userID], it)
	return true, nil
}

func (m *memWishRepo) UpdateItem(_ context.Context, userID string, it wishdom.Item) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return false, m.writeErr
	}
	for i := range m.rows[userID] {
		if m.rows[userID][i].ProductID == it.ProductID {
			m.rows[userID][i] = it
			return true, nil
		}
	}
	return false, nil
}

func (m *memWishRepo) DeleteItem(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	rows := m.rows[userID]
	for i := range rows {
		if rows[i].ProductID == productID {
			m.rows[userID] = append(rows[:i:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memWishRepo) DeleteAll(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.rows, userID)
	return nil
}

// ------------------------------------------------------------
// order repository
// ------------------------------------------------------------

type memOrderRepo struct {
	mu        sync.Mutex
	orders    []orderdom.Order
	createErr error
	seq       int
}

func (m *memOrderRepo) Create(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return orderdom.Order{}, m.createErr
	}
	for _, cur := range m.orders {
		if o.PaymentReference != "" && cur.PaymentReference == o.PaymentReference {
			return orderdom.Order{}, orderdom.ErrDuplicatePaymentRef
		}
	}
	m.seq++
	o.ID = "ord-" + strconv.Itoa(m.seq)
	m.orders = append(m.orders, o)
	return o, nil
}

func (m *memOrderRepo) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (m *memOrderRepo) GetByPaymentReference(_ context.Context, ref string) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.PaymentReference == ref {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (m *memOrderRepo) ListByUser(_ context.Context, userID string) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []orderdom.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sortNewest(out)
	return out, nil
}

func (m *memOrderRepo) ListAll(_ context.Context) ([]orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]orderdom.Order, len(m.orders))
	copy(out, m.orders)
	sortNewest(out)
	return out, nil
}

func (m *memOrderRepo) Update(_ context.Context, id string, fn func(o *orderdom.Order) error) (orderdom.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID != id {
			continue
		}
		next := m.orders[i]
		if err := fn(&next); err != nil {
			return orderdom.Order{}, err
		}
		m.orders[i] = next
		return next, nil
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (m *memOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func sortNewest(os []orderdom.Order) {
	sort.SliceStable(os, func(i, j int) bool { return os[i].CreatedAt.After(os[j].CreatedAt) })
}

// ------------------------------------------------------------
// checkout intents
// ------------------------------------------------------------

type memIntentRepo struct {
	mu        sync.Mutex
	intents   map[string]checkoutdom.Intent
	createErr error
	saveErr   error
	saves     int
}

func newMemIntentRepo() *memIntentRepo {
	return &memIntentRepo{intents: map[string]checkoutdom.Intent{}}
}

func (m *memIntentRepo) Create(_ context.Context, in checkoutdom.Intent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.intents[in.Reference]; ok {
		return checkoutdom.ErrAlreadyExists
	}
	m.intents[in.Reference] = in
	return nil
}

func (m *memIntentRepo) Get(_ context.Context, reference string) (checkoutdom.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.intents[reference]
	if !ok {
		return checkoutdom.Intent{}, checkoutdom.ErrNotFound
	}
	return in, nil
}

func (m *memIntentRepo) Save(_ context.Context, in checkoutdom.Intent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.intents[in.Reference] = in
	return nil
}

func (m *memIntentRepo) ListStuck(_ context.Context, olderThan time.Time, limit int) ([]checkoutdom.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []checkoutdom.Intent{}
	for _, in := range m.intents {
		if in.Status == checkoutdom.StatusPaid && in.UpdatedAt.Before(olderThan) {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memIntentRepo) get(ref string) checkoutdom.Intent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intents[ref]
}

func (m *memIntentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intents)
}

// ------------------------------------------------------------
// gateway / notifier / locks
// ------------------------------------------------------------

type fakeGateway struct {
	mu     sync.Mutex
	result map[string]PaymentVerification
	err    error
	calls  int
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (PaymentVerification, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return PaymentVerification{}, g.err
	}
	v, ok := g.result[reference]
	if !ok {
		return PaymentVerification{Reference: reference, Status: "abandoned"}, nil
	}
	return v, nil
}

func (g *fakeGateway) approve(ref string, amount int, currency string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result == nil {
		g.result = map[string]PaymentVerification{}
	}
	g.result[ref] = PaymentVerification{Reference: ref, Paid: true, Status: "success", Amount: amount, Currency: currency}
}

type fakeNotifier struct {
	mu          sync.Mutex
	merchant    []orderdom.Order
	customer    []orderdom.Order
	merchantErr error
	customerErr error

	contacts     []ContactMessage
	autoContacts []ContactMessage
	apps         []appdom.Application
	autoApps     []appdom.Application
	contactErr   error
	autoErr      error
}

func (n *fakeNotifier) NotifyMerchant(_ context.Context, o orderdom.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.merchantErr != nil {
		return n.merchantErr
	}
	n.merchant = append(n.merchant, o)
	return nil
}

func (n *fakeNotifier) NotifyCustomer(_ context.Context, o orderdom.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.customerErr != nil {
		return n.customerErr
	}
	n.customer = append(n.customer, o)
	return nil
}

func (n *fakeNotifier) NotifyContact(_ context.Context, msg ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.contactErr != nil {
		return n.contactErr
	}
	n.contacts = append(n.contacts, msg)
	return nil
}

func (n *fakeNotifier) AutoReplyContact(_ context.Context, msg ContactMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.autoErr != nil {
		return n.autoErr
	}
	n.autoContacts = append(n.autoContacts, msg)
	return nil
}

func (n *fakeNotifier) NotifyApplication(_ context.Context, a appdom.Application) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.contactErr != nil {
		return n.contactErr
	}
	n.apps = append(n.apps, a)
	return nil
}

func (n *fakeNotifier) AutoReplyApplication(_ context.Context, a appdom.Application) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.autoErr != nil {
		return n.autoErr
	}
	n.autoApps = append(n.autoApps, a)
	return nil
}

func (n *fakeNotifier) sent() (merchant, customer int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.merchant), len(n.customer)
}

type memLocks struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func (l *memLocks) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *memLocks) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
