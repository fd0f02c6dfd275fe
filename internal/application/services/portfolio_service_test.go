package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/testutil"
)

func TestPortfolioService_GetPortfolio(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("returns holdings with metrics", func(t *testing.T) {
		store, _ := newTestStore(t,
			testutil.CreateTestHolding(testutil.HoldingWithQuantity(2), testutil.HoldingWithPrice(100), testutil.HoldingWithInvested(150)),
			testutil.CreateTestHolding(testutil.HoldingWithID(testutil.EthereumID), testutil.HoldingWithQuantity(1), testutil.HoldingWithPrice(50), testutil.HoldingWithInvested(0), testutil.HoldingWithChange(0)),
		)

		service := NewPortfolioService(store, logger)

		result := service.GetPortfolio(ctx)

		if result.Count != 2 {
			t.Fatalf("expected 2 holdings, got %d", result.Count)
		}

		btc := result.Holdings[0]
		if btc.CurrentValue != 200 || btc.Profit != 50 {
			t.Errorf("unexpected bitcoin metrics %+v", btc)
		}
		if btc.ProfitPercentLabel != "33.33%" {
			t.Errorf("expected 33.33%%, got %s", btc.ProfitPercentLabel)
		}

		eth := result.Holdings[1]
		if eth.ProfitPercent.Valid || eth.ProfitPercentLabel != "—" {
			t.Errorf("expected not applicable percent, got %+v", eth.ProfitPercent)
		}
		if eth.Change24hLabel != "0%" {
			t.Errorf("expected 0%%, got %s", eth.Change24hLabel)
		}

		if result.Totals.CurrentValue != 250 || result.Totals.InvestedValue != 150 || result.Totals.Profit != 100 {
			t.Errorf("unexpected totals %+v", result.Totals)
		}
		if result.LastRefresh != nil {
			t.Error("expected never refreshed")
		}
	})

	t.Run("empty portfolio", func(t *testing.T) {
		store, _ := newTestStore(t)
		service := NewPortfolioService(store, logger)

		result := service.GetPortfolio(ctx)

		if result.Count != 0 || len(result.Holdings) != 0 {
			t.Errorf("expected empty portfolio, got %+v", result)
		}
		if result.ProfitPercent.Valid {
			t.Error("expected not applicable percent")
		}

		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded map[string]interface{}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if decoded["holdings"] == nil {
			t.Error("expected holdings to encode as an empty list")
		}
		if decoded["profit_percent"] != nil {
			t.Errorf("expected null profit percent, got %v", decoded["profit_percent"])
		}
	})
}

func TestPortfolioService_Mutations(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("add update remove", func(t *testing.T) {
		store, _ := newTestStore(t)
		service := NewPortfolioService(store, logger)

		added, err := service.AddHolding(ctx, testutil.CreateTestToken(testutil.TokenWithPrice(10)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if added.CurrentValue != 0 {
			t.Errorf("expected no value before a quantity is set, got %v", added.CurrentValue)
		}

		updated, err := service.UpdateHolding(ctx, testutil.EthereumID, string(entities.FieldQuantity), "1,5")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Quantity != 1.5 || updated.CurrentValue != 15 {
			t.Errorf("unexpected holding %+v", updated)
		}

		if err := service.RemoveHolding(ctx, testutil.EthereumID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := service.GetHolding(ctx, testutil.EthereumID); !errors.Is(err, state.ErrHoldingNotFound) {
			t.Errorf("expected ErrHoldingNotFound, got %v", err)
		}
	})

	t.Run("duplicate add", func(t *testing.T) {
		store, _ := newTestStore(t, testutil.CreateTestHolding())
		service := NewPortfolioService(store, logger)

		_, err := service.AddHolding(ctx, testToken(testutil.BitcoinID))
		if !errors.Is(err, state.ErrHoldingExists) {
			t.Errorf("expected ErrHoldingExists, got %v", err)
		}
	})

	t.Run("garbage input is rejected", func(t *testing.T) {
		store, _ := newTestStore(t, testutil.CreateTestHolding())
		service := NewPortfolioService(store, logger)

		_, err := service.UpdateHolding(ctx, testutil.BitcoinID, string(entities.FieldInvested), "abc")
		if !errors.Is(err, state.ErrInvalidNumber) {
			t.Errorf("expected ErrInvalidNumber, got %v", err)
		}

		h, _ := store.Get(testutil.BitcoinID)
		if h.Invested != testutil.CreateTestHolding().Invested {
			t.Errorf("expected invested unchanged, got %v", h.Invested)
		}
	})
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    float64
		wantErr bool
	}{
		{"number", 2.5, 2.5, false},
		{"numeric string", "3", 3, false},
		{"comma decimal", "0,25", 0.25, false},
		{"empty string", "", 0, false},
		{"null", nil, 0, false},
		{"json number", json.Number("4"), 4, false},
		{"garbage", "ten", 0, true},
		{"thousands separator", "1,000", 0, true},
		{"digit separator", "1_000", 0, true},
		{"bool", true, 0, true},
		{"object", map[string]interface{}{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, state.ErrInvalidNumber) {
					t.Errorf("expected ErrInvalidNumber, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
