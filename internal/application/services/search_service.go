package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
	"github.com/bimakw/coin-tracker/internal/infrastructure/cache"
	"github.com/bimakw/coin-tracker/internal/infrastructure/coingecko"
)

// User-facing search failure messages
const (
	MsgSearchUnavailable = "Search is unavailable right now. Please try again later."
	MsgSearchFailed      = "Search failed."
)

// SearchResultDTO is a search result annotated for the portfolio
type SearchResultDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank,omitempty"`
	Image         string `json:"image"`
	Thumb         string `json:"thumb"`
	AlreadyAdded  bool   `json:"already_added"`
}

// SearchResponse is the outcome of a search. Failures yield no results and a
// message; they are never returned as errors
type SearchResponse struct {
	Query   string            `json:"query"`
	Results []SearchResultDTO `json:"results"`
	Error   string            `json:"error,omitempty"`
}

// SearchService searches coins and marks the ones already held
type SearchService struct {
	market repositories.MarketDataRepository
	store  *state.Store
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewSearchService creates a new search service. cache may be nil
func NewSearchService(
	market repositories.MarketDataRepository,
	store *state.Store,
	c cache.Cache,
	ttl time.Duration,
	logger *zap.Logger,
) *SearchService {
	return &SearchService{
		market: market,
		store:  store,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Search returns coins matching query. A blank query returns nothing without
// calling the API
func (s *SearchService) Search(ctx context.Context, query string) SearchResponse {
	query = strings.TrimSpace(query)
	resp := SearchResponse{Query: query, Results: []SearchResultDTO{}}
	if query == "" {
		return resp
	}

	results, err := s.lookup(ctx, query)
	if err != nil {
		s.logger.Warn("Search failed", zap.String("query", query), zap.Error(err))
		resp.Error = searchMessage(err)
		return resp
	}

	held := make(map[string]struct{})
	for _, id := range s.store.IDs() {
		held[id] = struct{}{}
	}

	for _, r := range results {
		_, added := held[r.ID]
		resp.Results = append(resp.Results, SearchResultDTO{
			ID:            r.ID,
			Name:          r.Name,
			Symbol:        r.Symbol,
			MarketCapRank: r.MarketCapRank,
			Image:         r.ImageURL(),
			Thumb:         r.Thumb,
			AlreadyAdded:  added,
		})
	}
	return resp
}

// Find returns the search result with exactly the given id, if query finds it
func (s *SearchService) Find(ctx context.Context, query, id string) (entities.SearchResult, bool, error) {
	results, err := s.lookup(ctx, strings.TrimSpace(query))
	if err != nil {
		return entities.SearchResult{}, false, err
	}
	for _, r := range results {
		if r.ID == id {
			return r, true, nil
		}
	}
	return entities.SearchResult{}, false, nil
}

func (s *SearchService) lookup(ctx context.Context, query string) ([]entities.SearchResult, error) {
	key := "search:" + strings.ToLower(query)

	if s.cache != nil {
		var cached []entities.SearchResult
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			s.logger.Debug("Search cache hit", zap.String("query", query))
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Search cache read failed", zap.Error(err))
		}
	}

	results, err := s.market.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, key, results, s.ttl); err != nil {
			s.logger.Warn("Failed to cache search results", zap.Error(err))
		}
	}
	return results, nil
}

func searchMessage(err error) string {
	switch {
	case errors.Is(err, coingecko.ErrTransport), errors.Is(err, coingecko.ErrBadStatus):
		return MsgSearchUnavailable
	default:
		return MsgSearchFailed
	}
}
