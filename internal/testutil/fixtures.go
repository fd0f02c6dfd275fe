package testutil

import (
	"fmt"
	"time"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

// Common test coin ids
const (
	BitcoinID  = "bitcoin"
	EthereumID = "ethereum"
	SolanaID   = "solana"
)

// RefreshTime is a fixed timestamp for refresh assertions
var RefreshTime = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// CreateTestHolding creates a test holding with default values
func CreateTestHolding(opts ...HoldingOption) entities.Holding {
	h := entities.Holding{
		ID:           BitcoinID,
		Name:         "Bitcoin",
		Symbol:       "btc",
		Image:        "https://assets.coingecko.com/coins/images/1/large/bitcoin.png",
		Quantity:     0.5,
		Invested:     20000,
		BuyPrice:     40000,
		CurrentPrice: 60000,
		Change24h:    1.25,
	}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

type HoldingOption func(*entities.Holding)

func HoldingWithID(id string) HoldingOption {
	return func(h *entities.Holding) {
		h.ID = id
	}
}

func HoldingWithName(name string) HoldingOption {
	return func(h *entities.Holding) {
		h.Name = name
	}
}

func HoldingWithSymbol(symbol string) HoldingOption {
	return func(h *entities.Holding) {
		h.Symbol = symbol
	}
}

func HoldingWithQuantity(q float64) HoldingOption {
	return func(h *entities.Holding) {
		h.Quantity = q
	}
}

func HoldingWithInvested(v float64) HoldingOption {
	return func(h *entities.Holding) {
		h.Invested = v
	}
}

func HoldingWithPrice(price float64) HoldingOption {
	return func(h *entities.Holding) {
		h.CurrentPrice = price
	}
}

func HoldingWithChange(change float64) HoldingOption {
	return func(h *entities.Holding) {
		h.Change24h = change
	}
}

// CreateTestToken creates a token as a search would return it
func CreateTestToken(opts ...TokenOption) entities.Token {
	t := entities.Token{
		ID:     EthereumID,
		Name:   "Ethereum",
		Symbol: "eth",
		Image:  "https://assets.coingecko.com/coins/images/279/large/ethereum.png",
	}

	for _, opt := range opts {
		opt(&t)
	}

	return t
}

type TokenOption func(*entities.Token)

func TokenWithID(id string) TokenOption {
	return func(t *entities.Token) {
		t.ID = id
	}
}

func TokenWithName(name string) TokenOption {
	return func(t *entities.Token) {
		t.Name = name
	}
}

func TokenWithPrice(price float64) TokenOption {
	return func(t *entities.Token) {
		t.CurrentPrice = price
	}
}

// CreateTestSearchResult creates a search result with both icon sizes
func CreateTestSearchResult(id string) entities.SearchResult {
	return entities.SearchResult{
		ID:     id,
		Name:   fmt.Sprintf("Coin %s", id),
		Symbol: id[:min(3, len(id))],
		Thumb:  fmt.Sprintf("https://assets.coingecko.com/coins/images/%s/thumb.png", id),
		Large:  fmt.Sprintf("https://assets.coingecko.com/coins/images/%s/large.png", id),
	}
}

// CreateMultipleHoldings creates count holdings with distinct ids
func CreateMultipleHoldings(count int, opts ...HoldingOption) []entities.Holding {
	holdings := make([]entities.Holding, count)
	for i := 0; i < count; i++ {
		h := CreateTestHolding(opts...)
		h.ID = fmt.Sprintf("coin-%d", i+1)
		h.Name = fmt.Sprintf("Coin %d", i+1)
		h.Symbol = fmt.Sprintf("c%d", i+1)
		holdings[i] = h
	}
	return holdings
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
