package registry

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Georgeandrew7/DRL-Simulator-Community/internal/metrics"
)

// Sweeper periodically evicts sessions whose heartbeat has gone stale.
// Evictions go through the same deletion path as explicit deletes, so
// subscribers see an identical session_deleted event.
type Sweeper struct {
	store    *Store
	clock    clockwork.Clock
	interval time.Duration
	timeout  time.Duration
	stopCh   chan struct{}
}

// NewSweeper creates a liveness sweeper. interval is the sweep period,
// timeout is the maximum allowed heartbeat age.
func NewSweeper(store *Store, clock clockwork.Clock, interval, timeout time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		clock:    clock,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			s.sweep()
		case <-s.stopCh:
			slog.Info("Liveness sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("Liveness sweeper context cancelled")
			return
		}
	}
}

// Stop gracefully stops the sweep loop.
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

// sweep evicts every stale session, isolating per-session faults so one bad
// entry cannot halt the cycle.
func (s *Sweeper) sweep() {
	start := s.clock.Now()
	defer func() {
		metrics.SweepDuration.Observe(s.clock.Since(start).Seconds())
	}()

	for _, id := range s.store.Expired(s.timeout) {
		s.evict(id)
	}
}

func (s *Sweeper) evict(id string) {
	defer func() {
		if r := recover(); r != nil {
			metrics.SweepFaultsTotal.Inc()
			slog.Error("Sweep eviction panicked", "session_id", id, "panic", r)
		}
	}()

	if s.store.Expire(id) {
		slog.Info("Removed stale session", "session_id", id, "timeout", s.timeout)
	}
}
