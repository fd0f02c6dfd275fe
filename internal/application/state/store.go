// Package state owns the portfolio: the holdings list and the time of the
// last successful price refresh.
//
// All mutation goes through Store. Every change builds a new list, persists
// it and only then publishes it, so readers never see a partial update and a
// failed write leaves the published state untouched
package state

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

var (
	ErrHoldingExists   = errors.New("holding already exists")
	ErrHoldingNotFound = errors.New("holding not found")
	ErrEmptyID         = errors.New("holding id is empty")
	ErrUnknownField    = errors.New("unknown holding field")
	ErrNegativeValue   = errors.New("value must not be negative")
	ErrInvalidNumber   = errors.New("value is not a finite number")

	// ErrLastRefreshNotSaved is returned by ApplyQuotes when the prices were
	// saved and published but the refresh time was not
	ErrLastRefreshNotSaved = errors.New("last refresh not saved")
)

// Snapshot is an immutable view of the store. Holdings must not be modified
type Snapshot struct {
	Holdings    []entities.Holding `json:"holdings"`
	LastRefresh time.Time          `json:"last_refresh"`
}

// IDs returns the holding ids in portfolio order
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.Holdings))
	for i, h := range s.Holdings {
		ids[i] = h.ID
	}
	return ids
}

// Listener is notified with the new snapshot after every change
type Listener func(Snapshot)

// Store is the single owner of the portfolio state
type Store struct {
	holdingRepo repositories.HoldingRepository
	refreshRepo repositories.RefreshStateRepository
	logger      *zap.Logger

	// mu serializes writers; readers load current without locking
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// Open reads both persisted values and returns a ready store. A backend that
// holds nothing yields an empty portfolio that was never refreshed
func Open(
	ctx context.Context,
	holdingRepo repositories.HoldingRepository,
	refreshRepo repositories.RefreshStateRepository,
	logger *zap.Logger,
) (*Store, error) {
	holdings, err := holdingRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	lastRefresh, err := refreshRepo.GetLastRefresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load last refresh: %w", err)
	}

	s := &Store{
		holdingRepo: holdingRepo,
		refreshRepo: refreshRepo,
		logger:      logger,
		listeners:   make(map[int]Listener),
	}
	s.current.Store(&Snapshot{
		Holdings:    sanitize(holdings),
		LastRefresh: lastRefresh,
	})

	logger.Info("Portfolio loaded",
		zap.Int("holdings", len(holdings)),
		zap.Time("last_refresh", lastRefresh),
	)

	return s, nil
}

// Reload re-reads both persisted values and publishes them, for processes
// that share a backend with another writer. On error the published state is
// kept
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()

	holdings, err := s.holdingRepo.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to reload holdings: %w", err)
	}
	lastRefresh, err := s.refreshRepo.GetLastRefresh(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to reload last refresh: %w", err)
	}

	snap := &Snapshot{Holdings: sanitize(holdings), LastRefresh: lastRefresh}
	s.current.Store(snap)
	s.mu.Unlock()

	s.notify(*snap)
	return nil
}

// Snapshot returns the current state
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// Holdings returns a copy of the holdings in portfolio order
func (s *Store) Holdings() []entities.Holding {
	return slices.Clone(s.current.Load().Holdings)
}

// Get returns the holding with the given id
func (s *Store) Get(id string) (entities.Holding, bool) {
	for _, h := range s.current.Load().Holdings {
		if h.ID == id {
			return h, true
		}
	}
	return entities.Holding{}, false
}

// IDs returns the held ids in portfolio order
func (s *Store) IDs() []string {
	return s.current.Load().IDs()
}

// LastRefresh returns the time of the last successful refresh, zero if never
func (s *Store) LastRefresh() time.Time {
	return s.current.Load().LastRefresh
}

// Add appends a holding for token with quantity, invested and buy price at 0
func (s *Store) Add(ctx context.Context, token entities.Token) (entities.Holding, error) {
	if token.ID == "" {
		return entities.Holding{}, ErrEmptyID
	}

	h := entities.NewHolding(token)
	h.CurrentPrice = nonNegative(h.CurrentPrice)

	err := s.mutate(ctx, func(cur []entities.Holding) ([]entities.Holding, error) {
		if index(cur, token.ID) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrHoldingExists, token.ID)
		}
		return append(slices.Clone(cur), h), nil
	})
	if err != nil {
		return entities.Holding{}, err
	}

	s.logger.Info("Holding added", zap.String("id", h.ID))
	return h, nil
}

// Update sets one user-editable field of the holding with the given id
func (s *Store) Update(ctx context.Context, id string, field entities.HoldingField, value float64) (entities.Holding, error) {
	if !field.Valid() {
		return entities.Holding{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return entities.Holding{}, ErrInvalidNumber
	}
	if value < 0 {
		return entities.Holding{}, ErrNegativeValue
	}

	var updated entities.Holding
	err := s.mutate(ctx, func(cur []entities.Holding) ([]entities.Holding, error) {
		i := index(cur, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrHoldingNotFound, id)
		}
		next := slices.Clone(cur)
		switch field {
		case entities.FieldQuantity:
			next[i].Quantity = value
		case entities.FieldInvested:
			next[i].Invested = value
		case entities.FieldBuyPrice:
			next[i].BuyPrice = value
		}
		updated = next[i]
		return next, nil
	})
	if err != nil {
		return entities.Holding{}, err
	}

	s.logger.Debug("Holding updated",
		zap.String("id", id),
		zap.String("field", string(field)),
		zap.Float64("value", value),
	)
	return updated, nil
}

// Remove deletes the holding with the given id
func (s *Store) Remove(ctx context.Context, id string) error {
	err := s.mutate(ctx, func(cur []entities.Holding) ([]entities.Holding, error) {
		i := index(cur, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrHoldingNotFound, id)
		}
		return slices.Delete(slices.Clone(cur), i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Holding removed", zap.String("id", id))
	return nil
}

// ApplyQuotes merges market data into the holdings and records at as the last
// refresh. Holdings without a quote, or quotes without a field, keep their
// previous value. It returns the number of holdings that received a quote
func (s *Store) ApplyQuotes(ctx context.Context, quotes map[string]entities.PriceQuote, at time.Time) (int, error) {
	s.mu.Lock()

	cur := s.current.Load()
	next := slices.Clone(cur.Holdings)
	matched := 0
	for i := range next {
		q, ok := quotes[next[i].ID]
		if !ok {
			continue
		}
		matched++
		if q.Price != nil && !math.IsNaN(*q.Price) && !math.IsInf(*q.Price, 0) {
			next[i].CurrentPrice = nonNegative(*q.Price)
		}
		if q.Change24h != nil {
			next[i].Change24h = valuation.Number(*q.Change24h)
		}
	}

	if err := s.holdingRepo.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return 0, fmt.Errorf("failed to save holdings: %w", err)
	}

	snap := &Snapshot{Holdings: next, LastRefresh: cur.LastRefresh}

	// The two values are persisted independently. Prices already written are
	// published even if the timestamp cannot be
	tsErr := s.refreshRepo.SetLastRefresh(ctx, at)
	if tsErr == nil {
		snap.LastRefresh = at
	}
	s.current.Store(snap)
	s.mu.Unlock()

	s.notify(*snap)

	if tsErr != nil {
		return matched, fmt.Errorf("%w: %w", ErrLastRefreshNotSaved, tsErr)
	}
	return matched, nil
}

// Subscribe registers listener and returns a function that removes it
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// mutate derives a new list from the current one, persists it and publishes it
func (s *Store) mutate(ctx context.Context, fn func([]entities.Holding) ([]entities.Holding, error)) error {
	s.mu.Lock()

	cur := s.current.Load()
	next, err := fn(cur.Holdings)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if err := s.holdingRepo.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to save holdings: %w", err)
	}

	snap := &Snapshot{Holdings: next, LastRefresh: cur.LastRefresh}
	s.current.Store(snap)
	s.mu.Unlock()

	s.notify(*snap)
	return nil
}

func (s *Store) notify(snap Snapshot) {
	s.listenersMu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.listenersMu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
}

func index(holdings []entities.Holding, id string) int {
	for i, h := range holdings {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func nonNegative(v float64) float64 {
	v = valuation.Number(v)
	if v < 0 {
		return 0
	}
	return v
}

// sanitize drops entries without an id or with a duplicate id and clamps
// numeric fields, so a hand-edited or legacy backend cannot break invariants
func sanitize(holdings []entities.Holding) []entities.Holding {
	out := make([]entities.Holding, 0, len(holdings))
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if h.ID == "" {
			continue
		}
		if _, dup := seen[h.ID]; dup {
			continue
		}
		seen[h.ID] = struct{}{}
		h.Quantity = nonNegative(h.Quantity)
		h.Invested = nonNegative(h.Invested)
		h.BuyPrice = nonNegative(h.BuyPrice)
		h.CurrentPrice = nonNegative(h.CurrentPrice)
		h.Change24h = valuation.Number(h.Change24h)
		out = append(out, h)
	}
	return out
}
