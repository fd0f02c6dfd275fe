package valuation

import (
	"encoding/json"
	"strconv"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

// NotApplicable is how a Percent without a value is displayed
const NotApplicable = "—"

// Percent is a percentage that may not exist, e.g. a return on zero capital
type Percent struct {
	Value float64
	Valid bool
}

// String formats the percentage with two decimals, or NotApplicable
func (p Percent) String() string {
	if !p.Valid {
		return NotApplicable
	}
	return strconv.FormatFloat(p.Value, 'f', 2, 64) + "%"
}

// MarshalJSON encodes an invalid percent as null so it is never read as 0
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts a number or null
func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Percent{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Percent{Value: v, Valid: true}
	return nil
}

// Totals are the sums over a whole portfolio
type Totals struct {
	CurrentValue  float64 `json:"current_value"`
	InvestedValue float64 `json:"invested_value"`
	Profit        float64 `json:"profit"`
}

// CurrentValue is quantity × current price
func CurrentValue(h entities.Holding) float64 {
	return Number(h.Quantity) * Number(h.CurrentPrice)
}

// Invested is the cost basis of h
func Invested(h entities.Holding) float64 {
	return Number(h.Invested)
}

// Profit is the current value minus the cost basis
func Profit(h entities.Holding) float64 {
	return CurrentValue(h) - Invested(h)
}

// ProfitPercent is the profit relative to the cost basis. It is not valid
// when nothing was invested
func ProfitPercent(h entities.Holding) Percent {
	invested := Invested(h)
	if invested <= 0 {
		return Percent{}
	}
	return Percent{Value: Profit(h) / invested * 100, Valid: true}
}

// Aggregate sums current and invested values over holdings
func Aggregate(holdings []entities.Holding) Totals {
	var t Totals
	for _, h := range holdings {
		t.CurrentValue += CurrentValue(h)
		t.InvestedValue += Invested(h)
	}
	t.Profit = t.CurrentValue - t.InvestedValue
	return t
}

// Share returns value as a percentage of total, 0 when total is not positive
func Share(value, total float64) float64 {
	total = Number(total)
	if total <= 0 {
		return 0
	}
	return Number(value) / total * 100
}

// FormatChange formats a signed 24h change with two decimals. No change is
// shown as "0%"
func FormatChange(change float64) string {
	change = Number(change)
	if change == 0 {
		return "0%"
	}
	return strconv.FormatFloat(change, 'f', 2, 64) + "%"
}

// ProfitPercent is the portfolio-wide return, not valid when nothing was
// invested
func (t Totals) ProfitPercent() Percent {
	if t.InvestedValue <= 0 {
		return Percent{}
	}
	return Percent{Value: t.Profit / t.InvestedValue * 100, Valid: true}
}
