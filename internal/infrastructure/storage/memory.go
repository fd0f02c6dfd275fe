package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
)

var (
	_ repositories.HoldingRepository      = (*MemoryStore)(nil)
	_ repositories.RefreshStateRepository = (*MemoryStore)(nil)
)

// MemoryStore keeps the portfolio in process memory. Nothing survives a
// restart
type MemoryStore struct {
	mu          sync.RWMutex
	holdings    []entities.Holding
	lastRefresh time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored holdings
func (s *MemoryStore) Load(_ context.Context) ([]entities.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.holdings == nil {
		return []entities.Holding{}, nil
	}
	return slices.Clone(s.holdings), nil
}

// Save replaces the stored holdings
func (s *MemoryStore) Save(_ context.Context, holdings []entities.Holding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdings = slices.Clone(holdings)
	return nil
}

// GetLastRefresh returns the stored timestamp
func (s *MemoryStore) GetLastRefresh(_ context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh, nil
}

// SetLastRefresh stores the timestamp
func (s *MemoryStore) SetLastRefresh(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRefresh = t
	return nil
}
