package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/state"
)

// Refresher runs one price refresh
type Refresher interface {
	Refresh(ctx context.Context) (*RefreshResult, error)
}

// Scheduler runs a periodic refresh keyed by the set of held ids. A new id
// set replaces the running task with one that refreshes immediately and then
// every interval; the same id set leaves it alone
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	logger    *zap.Logger

	mu      sync.Mutex
	base    context.Context
	key     string
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. Tasks derive their context from ctx, so
// cancelling it stops every task
func NewScheduler(ctx context.Context, refresher Refresher, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
		base:      ctx,
	}
}

// Key returns the id-set key of the running task, empty when none runs
func (s *Scheduler) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Reschedule makes the running task match ids. An empty set cancels it.
// It does not wait for a replaced task to finish
func (s *Scheduler) Reschedule(ids []string) {
	key := IDSetKey(ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || key == s.key {
		return
	}

	s.cancelLocked()
	s.key = key
	if key == "" {
		s.logger.Info("Price refresh schedule cleared")
		return
	}

	ctx, cancel := context.WithCancel(s.base)
	s.cancel = cancel

	s.logger.Info("Price refresh rescheduled",
		zap.Int("ids", len(ids)),
		zap.Duration("interval", s.interval),
	)

	s.wg.Add(1)
	go s.run(ctx)
}

// Follow keeps the schedule in step with the store's id set, starting with
// the current one. The returned function stops following
func (s *Scheduler) Follow(store *state.Store) (unsubscribe func()) {
	unsubscribe = store.Subscribe(func(snap state.Snapshot) {
		s.Reschedule(snap.IDs())
	})
	s.Reschedule(store.IDs())
	return unsubscribe
}

// Cancel stops the running task. The next Reschedule starts a new one
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.key = ""
}

// Stop cancels the running task, waits for it to exit and refuses new ones
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping price refresh scheduler")

	s.mu.Lock()
	s.stopped = true
	s.cancelLocked()
	s.key = ""
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.refresher.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.logger.Warn("Scheduled price refresh failed", zap.Error(err))
	}
}

// IDSetKey returns an order-independent key for a set of ids
func IDSetKey(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	out := sorted[:0]
	for _, id := range sorted {
		if len(out) > 0 && id == out[len(out)-1] {
			continue
		}
		out = append(out, id)
	}
	return strings.Join(out, ",")
}
