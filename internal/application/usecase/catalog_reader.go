// internal/application/usecase/catalog_reader.go
package usecase

import (
	"context"
	"log"
	"sort"
	"sync"

	productdom "talentagency/internal/domain/product"
)

// CatalogReader keeps an always-current in-memory copy of the catalog, fed by a
// live snapshot listener, and fans updates out to subscribers.
type CatalogReader struct {
	watcher productdom.Watcher
	repo    productdom.Repository

	mu       sync.RWMutex
	products []productdom.Product
	ready    bool
	subs     map[int]chan []productdom.Product
	nextSub  int
}

func NewCatalogReader(watcher productdom.Watcher, repo productdom.Repository) *CatalogReader {
	return &CatalogReader{
		watcher: watcher,
		repo:    repo,
		subs:    map[int]chan []productdom.Product{},
	}
}

// Run blocks until ctx is done or the listener fails.
func (r *CatalogReader) Run(ctx context.Context) error {
	if r == nil || r.watcher == nil {
		<-ctx.Done()
		return nil
	}
	log.Printf("[catalog_reader] listening for catalog snapshots")
	err := r.watcher.Watch(ctx, r.Replace)
	if err != nil && ctx.Err() == nil {
		log.Printf("[catalog_reader] listener stopped err=%v", err)
		return err
	}
	return nil
}

// Replace swaps in a full snapshot and notifies subscribers.
func (r *CatalogReader) Replace(products []productdom.Product) {
	snap := make([]productdom.Product, len(products))
	copy(snap, products)
	sort.SliceStable(snap, func(i, j int) bool {
		return snap[i].CreatedAt.After(snap[j].CreatedAt)
	})

	r.mu.Lock()
	r.products = snap
	r.ready = true
	subs := make([]chan []productdom.Product, 0, len(r.subs))
	for _, ch := range r.subs {
		subs = append(subs, ch)
	}
	r.mu.Unlock()

	for _, ch := range subs {
		offerLatest(ch, snap)
	}
}

// Ready reports whether the first snapshot has arrived.
func (r *CatalogReader) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// List serves from memory once the listener is live and from the repository before that.
func (r *CatalogReader) List(ctx context.Context, f productdom.Filter) ([]productdom.Product, error) {
	r.mu.RLock()
	ready := r.ready
	all := r.products
	r.mu.RUnlock()

	if !ready {
		if r.repo == nil {
			return []productdom.Product{}, nil
		}
		return r.repo.List(ctx, f)
	}

	out := make([]productdom.Product, 0, len(all))
	for _, p := range all {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Subscribe returns a channel that always holds the newest snapshot. A slow
// reader skips intermediate versions. Call cancel to unsubscribe.
func (r *CatalogReader) Subscribe() (<-chan []productdom.Product, func()) {
	ch := make(chan []productdom.Product, 1)

	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	if r.ready {
		ch <- r.products
	}
	r.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
	return ch, cancel
}

// offerLatest replaces whatever is buffered with snap without blocking.
func offerLatest(ch chan []productdom.Product, snap []productdom.Product) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
