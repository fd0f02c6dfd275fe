package testutil

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
)

var (
	_ repositories.HoldingRepository      = (*MockHoldingRepository)(nil)
	_ repositories.RefreshStateRepository = (*MockRefreshStateRepository)(nil)
	_ repositories.MarketDataRepository   = (*MockMarketDataRepository)(nil)
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockHoldingRepository is a mock implementation of HoldingRepository
type MockHoldingRepository struct {
	mu       sync.RWMutex
	holdings []entities.Holding

	// Function hooks for custom behavior
	LoadFunc func(ctx context.Context) ([]entities.Holding, error)
	SaveFunc func(ctx context.Context, holdings []entities.Holding) error

	// Call tracking
	Calls []MockCall
}

func NewMockHoldingRepository(holdings ...entities.Holding) *MockHoldingRepository {
	return &MockHoldingRepository{
		holdings: slices.Clone(holdings),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockHoldingRepository) Load(ctx context.Context) ([]entities.Holding, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Load", Args: nil})
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.holdings), nil
}

func (m *MockHoldingRepository) Save(ctx context.Context, holdings []entities.Holding) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Save", Args: []interface{}{len(holdings)}})
	m.mu.Unlock()

	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, holdings); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings = slices.Clone(holdings)
	return nil
}

// Stored returns what was last saved
func (m *MockHoldingRepository) Stored() []entities.Holding {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.holdings)
}

// CallCount returns how many times method was called
func (m *MockHoldingRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countCalls(m.Calls, method)
}

// MockRefreshStateRepository is a mock implementation of RefreshStateRepository
type MockRefreshStateRepository struct {
	mu          sync.RWMutex
	lastRefresh time.Time

	GetLastRefreshFunc func(ctx context.Context) (time.Time, error)
	SetLastRefreshFunc func(ctx context.Context, t time.Time) error

	Calls []MockCall
}

func NewMockRefreshStateRepository(lastRefresh time.Time) *MockRefreshStateRepository {
	return &MockRefreshStateRepository{
		lastRefresh: lastRefresh,
		Calls:       make([]MockCall, 0),
	}
}

func (m *MockRefreshStateRepository) GetLastRefresh(ctx context.Context) (time.Time, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetLastRefresh", Args: nil})
	m.mu.Unlock()

	if m.GetLastRefreshFunc != nil {
		return m.GetLastRefreshFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRefresh, nil
}

func (m *MockRefreshStateRepository) SetLastRefresh(ctx context.Context, t time.Time) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "SetLastRefresh", Args: []interface{}{t}})
	m.mu.Unlock()

	if m.SetLastRefreshFunc != nil {
		if err := m.SetLastRefreshFunc(ctx, t); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRefresh = t
	return nil
}

// Stored returns what was last saved
func (m *MockRefreshStateRepository) Stored() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRefresh
}

// MockMarketDataRepository is a mock implementation of MarketDataRepository.
// Without hooks it serves the configured quotes and search results
type MockMarketDataRepository struct {
	mu      sync.RWMutex
	quotes  map[string]entities.PriceQuote
	results []entities.SearchResult

	SimplePriceFunc func(ctx context.Context, ids []string) (map[string]entities.PriceQuote, error)
	SearchFunc      func(ctx context.Context, query string) ([]entities.SearchResult, error)

	Calls []MockCall
}

func NewMockMarketDataRepository() *MockMarketDataRepository {
	return &MockMarketDataRepository{
		quotes: make(map[string]entities.PriceQuote),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockMarketDataRepository) SimplePrice(ctx context.Context, ids []string) (map[string]entities.PriceQuote, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "SimplePrice", Args: []interface{}{slices.Clone(ids)}})
	m.mu.Unlock()

	if m.SimplePriceFunc != nil {
		return m.SimplePriceFunc(ctx, ids)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]entities.PriceQuote, len(ids))
	for _, id := range ids {
		if q, ok := m.quotes[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (m *MockMarketDataRepository) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "Search", Args: []interface{}{query}})
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.results), nil
}

// SetQuote configures the quote served for id
func (m *MockMarketDataRepository) SetQuote(id string, price, change float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[id] = entities.PriceQuote{Price: PointerTo(price), Change24h: PointerTo(change)}
}

// SetSearchResults configures the results served by Search
func (m *MockMarketDataRepository) SetSearchResults(results ...entities.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = slices.Clone(results)
}

// CallCount returns how many times method was called
func (m *MockMarketDataRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countCalls(m.Calls, method)
}

// Reset clears configured data and calls
func (m *MockMarketDataRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = make(map[string]entities.PriceQuote)
	m.results = nil
	m.Calls = make([]MockCall, 0)
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}

func countCalls(calls []MockCall, method string) int {
	n := 0
	for _, c := range calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
