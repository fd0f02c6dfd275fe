package repositories

import (
	"context"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

// MarketDataRepository reads market data from a remote price API
type MarketDataRepository interface {
	// SimplePrice returns the latest quote for each id the API knows about.
	// Unknown ids are absent from the result
	SimplePrice(ctx context.Context, ids []string) (map[string]entities.PriceQuote, error)

	// Search returns candidate coins for a free-text query
	Search(ctx context.Context, query string) ([]entities.SearchResult, error)
}
