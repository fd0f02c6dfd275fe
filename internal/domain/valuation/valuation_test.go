package valuation

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"2", 2, true},
		{" 1.5 ", 1.5, true},
		{"1,5", 1.5, true},
		{"0", 0, true},
		{"-3", -3, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1,000.5", 0, false},
		{"1,000", 0, false},
		{"-12,500", 0, false},
		{"0,125", 0.125, true},
		{"1,25", 1.25, true},
		{"1_000", 0, false},
		{"0x10", 0, false},
		{"0x1p-2", 0, false},
		{"Infinity", 0, false},
		{"1e3", 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseNumber(tt.raw)
			if ok != tt.valid {
				t.Errorf("ParseNumber(%q) ok = %v, want %v", tt.raw, ok, tt.valid)
			}
			if got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float", 2.5, 2.5},
		{"int", 3, 3},
		{"numeric string", "4.25", 4.25},
		{"empty string", "", 0},
		{"nil", nil, 0},
		{"bool", true, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"json number", json.Number("7"), 7},
		{"object", map[string]any{"a": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Coerce(tt.in); got != tt.want {
				t.Errorf("Coerce(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHoldingMetrics(t *testing.T) {
	t.Run("value profit and percent", func(t *testing.T) {
		h := entities.Holding{Quantity: 2, CurrentPrice: 100, Invested: 150}

		assert.Equal(t, 200.0, CurrentValue(h))
		assert.Equal(t, 50.0, Profit(h))

		pct := ProfitPercent(h)
		assert.True(t, pct.Valid)
		assert.InDelta(t, 33.3333, pct.Value, 0.001)
		assert.Equal(t, "33.33%", pct.String())
	})

	t.Run("zero quantity or price has no value", func(t *testing.T) {
		assert.Equal(t, 0.0, CurrentValue(entities.Holding{Quantity: 0, CurrentPrice: 100}))
		assert.Equal(t, 0.0, CurrentValue(entities.Holding{Quantity: 5, CurrentPrice: 0}))
	})

	t.Run("non finite fields count as zero", func(t *testing.T) {
		h := entities.Holding{Quantity: math.NaN(), CurrentPrice: 10, Invested: math.Inf(1)}
		assert.Equal(t, 0.0, CurrentValue(h))
		assert.Equal(t, 0.0, Profit(h))
		assert.False(t, ProfitPercent(h).Valid)
	})

	t.Run("percent is not applicable without investment", func(t *testing.T) {
		pct := ProfitPercent(entities.Holding{Quantity: 1, CurrentPrice: 10})
		assert.False(t, pct.Valid)
		assert.Equal(t, NotApplicable, pct.String())

		data, err := json.Marshal(pct)
		assert.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("loss gives a negative percent", func(t *testing.T) {
		pct := ProfitPercent(entities.Holding{Quantity: 1, CurrentPrice: 50, Invested: 100})
		assert.True(t, pct.Valid)
		assert.Equal(t, -50.0, pct.Value)
	})
}

func TestPercent_JSONRoundTrip(t *testing.T) {
	var p Percent
	if err := json.Unmarshal([]byte("12.5"), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Valid || p.Value != 12.5 {
		t.Errorf("expected valid 12.5, got %+v", p)
	}

	if err := json.Unmarshal([]byte("null"), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Valid {
		t.Error("expected null to decode as not applicable")
	}
}

func TestAggregate(t *testing.T) {
	t.Run("empty portfolio", func(t *testing.T) {
		got := Aggregate(nil)
		if got != (Totals{}) {
			t.Errorf("expected zero totals, got %+v", got)
		}
	})

	t.Run("profit equals value minus invested", func(t *testing.T) {
		holdings := []entities.Holding{
			{Quantity: 0.1, CurrentPrice: 0.2, Invested: 0.3},
			{Quantity: 3.3, CurrentPrice: 1234.56, Invested: 999.99},
			{Quantity: 7, CurrentPrice: math.NaN(), Invested: 12},
			{Quantity: 1e-8, CurrentPrice: 67000, Invested: 0},
		}

		got := Aggregate(holdings)

		var value, invested float64
		for _, h := range holdings {
			value += CurrentValue(h)
			invested += Invested(h)
		}
		if got.CurrentValue != value {
			t.Errorf("expected current value %v, got %v", value, got.CurrentValue)
		}
		if got.InvestedValue != invested {
			t.Errorf("expected invested %v, got %v", invested, got.InvestedValue)
		}
		if got.Profit != value-invested {
			t.Errorf("expected profit %v, got %v", value-invested, got.Profit)
		}
	})
}

func TestBuildAllocation(t *testing.T) {
	holdings := make([]entities.Holding, 9)
	for i := range holdings {
		holdings[i] = entities.Holding{
			ID:           string(rune('a' + i)),
			Name:         "Coin",
			Symbol:       "c",
			Quantity:     float64(i + 1),
			CurrentPrice: 10,
			Invested:     5,
		}
	}

	t.Run("current value view", func(t *testing.T) {
		entries := BuildAllocation(holdings, ByCurrentValue, nil)
		if len(entries) != len(holdings) {
			t.Fatalf("expected %d entries, got %d", len(holdings), len(entries))
		}
		if entries[0].Value != 10 || entries[8].Value != 90 {
			t.Errorf("unexpected values %v, %v", entries[0].Value, entries[8].Value)
		}
		if entries[7].Color != DefaultPalette[0] {
			t.Errorf("expected palette to wrap, got %s", entries[7].Color)
		}
	})

	t.Run("invested view", func(t *testing.T) {
		entries := BuildAllocation(holdings, ByInvested, []string{"#000"})
		for _, e := range entries {
			if e.Value != 5 {
				t.Errorf("expected invested value 5, got %v", e.Value)
			}
			if e.Color != "#000" {
				t.Errorf("expected custom color, got %s", e.Color)
			}
		}
		assert.Equal(t, 45.0, Total(entries))
	})

	t.Run("empty portfolio", func(t *testing.T) {
		entries := BuildAllocation(nil, ByCurrentValue, nil)
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %d", len(entries))
		}
		assert.Equal(t, 0.0, Total(entries))
	})
}

func TestShare(t *testing.T) {
	assert.Equal(t, 50.0, Share(100, 200))
	assert.Equal(t, 0.0, Share(100, 0))
	assert.Equal(t, 0.0, Share(100, -5))
	assert.Equal(t, 0.0, Share(100, math.NaN()))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "0%", FormatChange(0))
	assert.Equal(t, "0%", FormatChange(math.NaN()))
	assert.Equal(t, "1.23%", FormatChange(1.2345))
	assert.Equal(t, "-4.50%", FormatChange(-4.5))
}
