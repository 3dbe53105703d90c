package usecase

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	productdom "talentagency/internal/domain/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]productdom.Product
	seq      int
	lists    int
}

func newMemProductRepo(ps ...productdom.Product) *memProductRepo {
	r := &memProductRepo{products: map[string]productdom.Product{}}
	for _, p := range ps {
		r.products[p.ID] = p
	}
	return r
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) List(_ context.Context, f productdom.Filter) ([]productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := []productdom.Product{}
	for _, p := range r.products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = "prod-" + strconv.Itoa(r.seq)
	r.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Save(_ context.Context, p productdom.Product) (productdom.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	r.products[p.ID] = p
	return p, nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return productdom.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func TestProductResolver(t *testing.T) {
	ctx := context.Background()
	repo := newMemProductRepo(
		testProduct(productdom.KindPhone, "p1", "Phone", 5000),
		testProduct(productdom.KindLaptop, "l1", "Laptop", 90000),
	)
	r := NewCatalogResolver(repo)

	p, err := r.Resolve(ctx, productdom.KindPhone, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Phone", p.Name)

	_, err = r.Resolve(ctx, productdom.KindGadget, "p1")
	assert.ErrorIs(t, err, productdom.ErrNotFound, "kind tag must match")

	p, err = r.Resolve(ctx, "", "l1")
	require.NoError(t, err)
	assert.Equal(t, productdom.KindLaptop, p.Kind)

	_, err = r.Resolve(ctx, "", "missing")
	assert.ErrorIs(t, err, productdom.ErrNotFound)

	_, err = r.Resolve(ctx, productdom.Kind("console"), "p1")
	assert.ErrorIs(t, err, productdom.ErrInvalidKind)
}

func TestCatalogUsecase_AdminWrites(t *testing.T) {
	ctx := context.Background()
	repo := newMemProductRepo()
	uc := NewCatalogUsecase(repo, NewCatalogResolver(repo), fixedClock())

	in := ProductInput{Kind: "Laptop", Name: "Blade 15", Price: 250000, InStock: true}

	_, err := uc.Create(ctx, buyer, in)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.Create(ctx, admin, ProductInput{Kind: "console", Name: "X"})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := uc.Create(ctx, admin, in)
	require.NoError(t, err)
	assert.Equal(t, productdom.KindLaptop, p.Kind)

	got, err := uc.Get(ctx, "laptops", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blade 15", got.Name)

	price := 199000
	updated, err := uc.Update(ctx, admin, p.ID, productdom.Patch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 199000, updated.Price)

	require.NoError(t, uc.Delete(ctx, admin, p.ID))
	_, err = uc.Get(ctx, "", p.ID)
	assert.ErrorIs(t, err, productdom.ErrNotFound)
}

func TestCatalogReader_ListBeforeAndAfterSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newMemProductRepo(testProduct(productdom.KindPhone, "p1", "Phone", 5000))
	r := NewCatalogReader(nil, repo)

	list, err := r.List(ctx, productdom.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, repo.lists)
	assert.False(t, r.Ready())

	older := testProduct(productdom.KindGadget, "g1", "Gadget", 1000)
	older.CreatedAt = testNow.Add(-time.Hour)
	r.Replace([]productdom.Product{older, testProduct(productdom.KindPhone, "p2", "Phone 2", 7000)})

	list, err = r.List(ctx, productdom.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p2", list[0].ID, "newest first")
	assert.Equal(t, 1, repo.lists, "served from memory once ready")

	list, err = r.List(ctx, productdom.Filter{Kind: productdom.KindGadget})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "g1", list[0].ID)
}

func TestCatalogReader_SubscribeGetsLatest(t *testing.T) {
	r := NewCatalogReader(nil, nil)
	ch, cancel := r.Subscribe()
	defer cancel()

	r.Replace([]productdom.Product{testProduct(productdom.KindPhone, "p1", "A", 1)})
	r.Replace([]productdom.Product{
		testProduct(productdom.KindPhone, "p1", "A", 1),
		testProduct(productdom.KindPhone, "p2", "B", 2),
	})

	select {
	case snap := <-ch:
		assert.Len(t, snap, 2, "a slow reader skips to the newest snapshot")
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	late, cancelLate := r.Subscribe()
	defer cancelLate()
	select {
	case snap := <-late:
		assert.Len(t, snap, 2, "late subscribers get the current snapshot")
	default:
		t.Fatal("late subscriber got nothing")
	}
}

type fakeWatcher struct {
	snapshots [][]productdom.Product
}

func (w fakeWatcher) Watch(ctx context.Context, onChange func([]productdom.Product)) error {
	for _, s := range w.snapshots {
		onChange(s)
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestCatalogReader_Run(t *testing.T) {
	w := fakeWatcher{snapshots: [][]productdom.Product{{testProduct(productdom.KindPhone, "p1", "A", 1)}}}
	r := NewCatalogReader(w, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, r.Ready, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
