// internal/application/usecase/outbox_sweeper.go
package usecase

import (
	"context"
	"log"
	"time"
)

const (
	DefaultSweepInterval = time.Minute
	DefaultStuckAfter    = 2 * time.Minute
	sweepBatchSize       = 50
)

// OutboxSweeper periodically retries checkout intents that were paid but never
// fully finalized (order write or notification failed, or the process died).
type OutboxSweeper struct {
	checkout   *CheckoutUsecase
	interval   time.Duration
	stuckAfter time.Duration
}

func NewOutboxSweeper(checkout *CheckoutUsecase, interval, stuckAfter time.Duration) *OutboxSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if stuckAfter <= 0 {
		stuckAfter = DefaultStuckAfter
	}
	return &OutboxSweeper{checkout: checkout, interval: interval, stuckAfter: stuckAfter}
}

// Run blocks until ctx is done.
func (s *OutboxSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("[outbox_sweeper] started interval=%s stuckAfter=%s", s.interval, s.stuckAfter)
	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			log.Printf("[outbox_sweeper] stopped")
			return
		}
	}
}

// SweepOnce runs a single pass.
func (s *OutboxSweeper) SweepOnce(ctx context.Context) int {
	n, err := s.checkout.Sweep(ctx, s.stuckAfter, sweepBatchSize)
	if err != nil {
		log.Printf("[outbox_sweeper] failed to list stuck intents: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("[outbox_sweeper] retried %d intent(s)", n)
	}
	return n
}
