// internal/application/usecase/reconcile.go
package usecase

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"

	productdom "talentagency/internal/domain/product"

	"golang.org/x/sync/errgroup"
)

// reconcileRows resolves n rows concurrently (at most limit lookups at once).
// ref returns the row's reference, fresh applies a resolved product and
// stale marks the row unavailable; both report whether the row changed.
// Lookup errors never abort the pass. The indexes of changed rows are
// returned in ascending order.
func reconcileRows(
	ctx context.Context,
	lookup ProductLookup,
	limit int,
	n int,
	ref func(i int) (productdom.Kind, string),
	fresh func(i int, p productdom.Product) bool,
	stale func(i int) bool,
) []int {
	if n == 0 || lookup == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLookupConcurrency
	}

	var (
		mu      sync.Mutex
		changed []int
	)
	mark := func(i int) {
		mu.Lock()
		changed = append(changed, i)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		kind, id := ref(i)
		g.Go(func() error {
			p, err := lookup.Resolve(gctx, kind, id)
			if err != nil {
				if !errors.Is(err, productdom.ErrNotFound) {
					log.Printf("[reconcile] lookup failed kind=%s productId=%s err=%v", kind, id, err)
				}
				if stale(i) {
					mark(i)
				}
				return nil
			}
			if fresh(i, p) {
				mark(i)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Ints(changed)
	return changed
}
