package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/services"
	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-tracker/internal/testutil"
)

func setupSearchHandler(t *testing.T, market *testutil.MockMarketDataRepository, holdings ...entities.Holding) *SearchHandler {
	logger := zap.NewNop()
	svc := services.NewSearchService(market, newTestStore(t, holdings...), nil, time.Minute, logger)
	return NewSearchHandler(svc, logger)
}

func TestSearchHandler_Search(t *testing.T) {
	t.Run("marks held coins", func(t *testing.T) {
		market := testutil.NewMockMarketDataRepository()
		market.SetSearchResults(
			testutil.CreateTestSearchResult(testutil.BitcoinID),
			testutil.CreateTestSearchResult(testutil.EthereumID),
		)
		handler := setupSearchHandler(t, market, testutil.CreateTestHolding())

		w := serve(handler, http.MethodGet, "/search?query=coin", "")
		expectStatus(t, w, http.StatusOK)

		var response services.SearchResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(response.Results))
		}
		if !response.Results[0].AlreadyAdded {
			t.Error("expected bitcoin to be marked as added")
		}
		if response.Results[1].AlreadyAdded {
			t.Error("expected ethereum not to be marked as added")
		}
	})

	t.Run("blank query does not call the API", func(t *testing.T) {
		market := testutil.NewMockMarketDataRepository()
		handler := setupSearchHandler(t, market)

		w := serve(handler, http.MethodGet, "/search?query=%20%20", "")
		expectStatus(t, w, http.StatusOK)

		if market.CallCount("Search") != 0 {
			t.Errorf("expected no API call, got %d", market.CallCount("Search"))
		}
	})

	t.Run("failure yields message and no results", func(t *testing.T) {
		market := testutil.NewMockMarketDataRepository()
		market.SearchFunc = func(ctx context.Context, query string) ([]entities.SearchResult, error) {
			return nil, fmt.Errorf("%w: status 429", coingecko.ErrBadStatus)
		}
		handler := setupSearchHandler(t, market)

		w := serve(handler, http.MethodGet, "/search?query=btc", "")
		expectStatus(t, w, http.StatusOK)

		var response services.SearchResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Results) != 0 {
			t.Errorf("expected no results, got %d", len(response.Results))
		}
		if response.Error != services.MsgSearchUnavailable {
			t.Errorf("expected %q, got %q", services.MsgSearchUnavailable, response.Error)
		}
	})

	t.Run("rejects overlong query", func(t *testing.T) {
		handler := setupSearchHandler(t, testutil.NewMockMarketDataRepository())

		w := serve(handler, http.MethodGet, "/search?query="+strings.Repeat("a", 101), "")
		expectStatus(t, w, http.StatusBadRequest)
	})
}
