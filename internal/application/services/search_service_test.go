package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/infrastructure/cache"
	"github.com/bimakw/coin-tracker/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-tracker/internal/testutil"
)

func TestSearchService_Search(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("marks held coins", func(t *testing.T) {
		store, _ := newTestStore(t, testutil.CreateTestHolding())
		market := testutil.NewMockMarketDataRepository()
		market.SetSearchResults(
			testutil.CreateTestSearchResult(testutil.BitcoinID),
			testutil.CreateTestSearchResult("bitcoin-cash"),
		)

		service := NewSearchService(market, store, nil, time.Minute, logger)

		resp := service.Search(ctx, "  bitcoin ")
		if resp.Error != "" {
			t.Fatalf("unexpected error message %q", resp.Error)
		}
		if resp.Query != "bitcoin" {
			t.Errorf("expected trimmed query, got %q", resp.Query)
		}
		if len(resp.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(resp.Results))
		}
		if !resp.Results[0].AlreadyAdded {
			t.Error("expected bitcoin to be marked as added")
		}
		if resp.Results[1].AlreadyAdded {
			t.Error("expected bitcoin-cash not to be marked as added")
		}
		if resp.Results[0].Image != testutil.CreateTestSearchResult(testutil.BitcoinID).Large {
			t.Errorf("expected large image, got %s", resp.Results[0].Image)
		}
	})

	t.Run("blank query does not call the api", func(t *testing.T) {
		store, _ := newTestStore(t)
		market := testutil.NewMockMarketDataRepository()

		service := NewSearchService(market, store, nil, time.Minute, logger)

		resp := service.Search(ctx, "   ")
		if len(resp.Results) != 0 || resp.Error != "" {
			t.Errorf("expected empty response, got %+v", resp)
		}
		if market.CallCount("Search") != 0 {
			t.Error("expected no api call")
		}
	})

	t.Run("failure yields empty results and a message", func(t *testing.T) {
		store, _ := newTestStore(t)
		market := testutil.NewMockMarketDataRepository()
		market.SearchFunc = func(ctx context.Context, query string) ([]entities.SearchResult, error) {
			return nil, fmt.Errorf("%w: timeout", coingecko.ErrTransport)
		}

		service := NewSearchService(market, store, nil, time.Minute, logger)

		resp := service.Search(ctx, "eth")
		if len(resp.Results) != 0 {
			t.Errorf("expected no results, got %d", len(resp.Results))
		}
		if resp.Error != MsgSearchUnavailable {
			t.Errorf("unexpected message %q", resp.Error)
		}
	})

	t.Run("results are cached per query", func(t *testing.T) {
		store, _ := newTestStore(t)
		market := testutil.NewMockMarketDataRepository()
		market.SetSearchResults(testutil.CreateTestSearchResult(testutil.SolanaID))

		service := NewSearchService(market, store, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, logger)

		first := service.Search(ctx, "Sol")
		second := service.Search(ctx, "sol")

		if market.CallCount("Search") != 1 {
			t.Errorf("expected a single api call, got %d", market.CallCount("Search"))
		}
		if len(first.Results) != 1 || len(second.Results) != 1 {
			t.Errorf("expected cached results, got %d and %d", len(first.Results), len(second.Results))
		}
	})

	t.Run("cached results reflect current holdings", func(t *testing.T) {
		store, _ := newTestStore(t)
		market := testutil.NewMockMarketDataRepository()
		market.SetSearchResults(testutil.CreateTestSearchResult(testutil.EthereumID))

		service := NewSearchService(market, store, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute, logger)

		if service.Search(ctx, "eth").Results[0].AlreadyAdded {
			t.Fatal("expected ethereum not to be added yet")
		}
		if _, err := store.Add(ctx, testToken(testutil.EthereumID)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !service.Search(ctx, "eth").Results[0].AlreadyAdded {
			t.Error("expected ethereum to be marked as added")
		}
	})
}

func TestSearchService_Find(t *testing.T) {
	store, _ := newTestStore(t)
	market := testutil.NewMockMarketDataRepository()
	market.SetSearchResults(
		testutil.CreateTestSearchResult("bitcoin-cash"),
		testutil.CreateTestSearchResult(testutil.BitcoinID),
	)

	service := NewSearchService(market, store, nil, time.Minute, zap.NewNop())

	r, ok, err := service.Find(context.Background(), "bitcoin", testutil.BitcoinID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || r.ID != testutil.BitcoinID {
		t.Errorf("expected exact id match, got %+v", r)
	}

	_, ok, _ = service.Find(context.Background(), "bitcoin", "dogecoin")
	if ok {
		t.Error("expected no match")
	}
}
