package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
	"github.com/bimakw/coin-tracker/internal/infrastructure/coingecko"
)

// User-facing refresh failure messages
const (
	MsgPriceAPIUnreachable = "Unable to reach the price service. Prices were not updated."
	MsgPriceAPIError       = "The price service returned an error. Prices were not updated."
	MsgPriceAPIMalformed   = "The price service returned unexpected data. Prices were not updated."
	MsgPriceSaveFailed     = "Prices were fetched but could not be saved."
	MsgRefreshTimeNotSaved = "Prices were updated but the refresh time could not be saved."
	MsgRefreshFailed       = "Unable to refresh prices."
)

// RefreshMetrics tracks price refresh outcomes
type RefreshMetrics struct {
	runs            *prometheus.CounterVec
	duration        prometheus.Histogram
	holdingsUpdated prometheus.Counter
	lastSuccess     prometheus.Gauge
}

// NewRefreshMetrics registers the refresh collectors with reg. A nil reg
// creates unregistered collectors
func NewRefreshMetrics(reg prometheus.Registerer) *RefreshMetrics {
	factory := promauto.With(reg)
	return &RefreshMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "price_refresh_runs_total",
				Help: "Total number of price refresh runs by result",
			},
			[]string{"result"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "price_refresh_duration_seconds",
				Help:    "Price refresh duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		holdingsUpdated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "price_refresh_holdings_updated_total",
				Help: "Total number of holdings that received a quote",
			},
		),
		lastSuccess: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "price_refresh_last_success_timestamp_seconds",
				Help: "Unix time of the last successful price refresh",
			},
		),
	}
}

// RefreshResult describes one completed refresh
type RefreshResult struct {
	Requested   int       `json:"requested"`
	Updated     int       `json:"updated"`
	Missing     []string  `json:"missing,omitempty"`
	Stale       bool      `json:"stale"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Warning     string    `json:"warning,omitempty"`
}

// RefreshStatus is what a client needs to render the refresh controls
type RefreshStatus struct {
	Refreshing  bool       `json:"refreshing"`
	LastRefresh *time.Time `json:"last_refresh"`
	Error       string     `json:"error,omitempty"`
}

// RefreshService fetches quotes for every held id and merges them into the
// store. A failed fetch changes nothing
type RefreshService struct {
	store     *state.Store
	market    repositories.MarketDataRepository
	batchSize int
	workers   int
	metrics   *RefreshMetrics
	logger    *zap.Logger
	now       func() time.Time

	mu         sync.Mutex
	nextSeq    uint64
	appliedSeq uint64
	inFlight   int
	lastError  string
}

// NewRefreshService creates a new refresh service
func NewRefreshService(
	store *state.Store,
	market repositories.MarketDataRepository,
	batchSize int,
	workers int,
	metrics *RefreshMetrics,
	logger *zap.Logger,
) *RefreshService {
	if batchSize <= 0 {
		batchSize = 100
	}
	if workers <= 0 {
		workers = 1
	}
	if metrics == nil {
		metrics = NewRefreshMetrics(nil)
	}
	return &RefreshService{
		store:     store,
		market:    market,
		batchSize: batchSize,
		workers:   workers,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Refresh fetches quotes for all held ids and applies them atomically. With
// nothing held it does nothing. A response that completes after a newer one
// was applied is discarded and reported as stale
func (s *RefreshService) Refresh(ctx context.Context) (*RefreshResult, error) {
	ids := s.store.IDs()
	if len(ids) == 0 {
		s.metrics.runs.WithLabelValues("skipped").Inc()
		return &RefreshResult{}, nil
	}

	start := time.Now()

	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
		s.metrics.duration.Observe(time.Since(start).Seconds())
	}()

	quotes, err := s.fetch(ctx, ids)
	if err != nil {
		s.fail(seq, err)
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.appliedSeq {
		s.metrics.runs.WithLabelValues("stale").Inc()
		s.logger.Info("Discarding stale price response",
			zap.Uint64("seq", seq),
			zap.Uint64("applied_seq", s.appliedSeq),
		)
		return &RefreshResult{Requested: len(ids), Stale: true}, nil
	}

	at := s.now()
	updated, err := s.store.ApplyQuotes(ctx, quotes, at)
	warning := ""
	switch {
	case errors.Is(err, state.ErrLastRefreshNotSaved):
		// Prices are live and persisted; only the timestamp is behind
		warning = MsgRefreshTimeNotSaved
		s.logger.Warn("Prices applied but last refresh not saved", zap.Error(err))
	case err != nil:
		s.lastError = MsgPriceSaveFailed
		s.metrics.runs.WithLabelValues("failure").Inc()
		s.logger.Error("Failed to apply prices", zap.Error(err))
		return nil, fmt.Errorf("failed to apply prices: %w", err)
	}

	s.appliedSeq = seq
	s.lastError = warning

	var missing []string
	for _, id := range ids {
		if _, ok := quotes[id]; !ok {
			missing = append(missing, id)
		}
	}

	s.metrics.holdingsUpdated.Add(float64(updated))
	if warning != "" {
		s.metrics.runs.WithLabelValues("partial").Inc()
	} else {
		s.metrics.runs.WithLabelValues("success").Inc()
		s.metrics.lastSuccess.Set(float64(at.Unix()))
	}

	s.logger.Info("Prices refreshed",
		zap.Int("requested", len(ids)),
		zap.Int("updated", updated),
		zap.Strings("missing", missing),
	)

	return &RefreshResult{
		Requested:   len(ids),
		Updated:     updated,
		Missing:     missing,
		RefreshedAt: at,
		Warning:     warning,
	}, nil
}

// fetch requests ids in batches concurrently. Any failed batch fails the
// whole fetch
func (s *RefreshService) fetch(ctx context.Context, ids []string) (map[string]entities.PriceQuote, error) {
	var (
		mu     sync.Mutex
		quotes = make(map[string]entities.PriceQuote, len(ids))
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, batch := range SplitIDs(ids, s.batchSize) {
		batch := batch
		g.Go(func() error {
			result, err := s.market.SimplePrice(gCtx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for id, q := range result {
				quotes[id] = q
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

func (s *RefreshService) fail(seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A run cancelled because the id set changed is not a failure
	if errors.Is(err, context.Canceled) {
		s.metrics.runs.WithLabelValues("cancelled").Inc()
		s.logger.Debug("Price refresh cancelled", zap.Uint64("seq", seq))
		return
	}

	s.metrics.runs.WithLabelValues("failure").Inc()
	s.logger.Warn("Price refresh failed", zap.Uint64("seq", seq), zap.Error(err))

	// An older run failing must not hide a newer success
	if seq > s.appliedSeq {
		s.lastError = UserMessage(err)
	}
}

// Status returns the current refresh state
func (s *RefreshService) Status() RefreshStatus {
	s.mu.Lock()
	status := RefreshStatus{
		Refreshing: s.inFlight > 0,
		Error:      s.lastError,
	}
	s.mu.Unlock()

	if last := s.store.LastRefresh(); !last.IsZero() {
		status.LastRefresh = &last
	}
	return status
}

// DismissError clears the user-visible error message
func (s *RefreshService) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

// UserMessage maps a refresh error to a short message for the user
func UserMessage(err error) string {
	switch {
	case errors.Is(err, coingecko.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return MsgPriceAPIUnreachable
	case errors.Is(err, coingecko.ErrBadStatus):
		return MsgPriceAPIError
	case errors.Is(err, coingecko.ErrMalformed):
		return MsgPriceAPIMalformed
	default:
		return MsgRefreshFailed
	}
}

// SplitIDs splits ids into batches of at most size
func SplitIDs(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}
