package valuation

import (
	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

// DefaultPalette colors allocation entries in portfolio order
var DefaultPalette = []string{
	"#0f4b8a",
	"#1b6ca8",
	"#6bb6ff",
	"#f4a261",
	"#2a9d8f",
	"#b5179e",
	"#457b9d",
}

// ValueSelector picks the figure an allocation view is built on
type ValueSelector func(entities.Holding) float64

var (
	// ByCurrentValue allocates by market value
	ByCurrentValue ValueSelector = CurrentValue
	// ByInvested allocates by cost basis
	ByInvested ValueSelector = Invested
)

// AllocationEntry is one slice of an allocation view
type AllocationEntry struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Color  string  `json:"color"`
	Image  string  `json:"image,omitempty"`
	Symbol string  `json:"symbol,omitempty"`
}

// BuildAllocation maps every holding to an entry valued by selector. Colors
// cycle through palette; an empty palette falls back to DefaultPalette
func BuildAllocation(holdings []entities.Holding, selector ValueSelector, palette []string) []AllocationEntry {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	entries := make([]AllocationEntry, 0, len(holdings))
	for i, h := range holdings {
		entries = append(entries, AllocationEntry{
			Label:  h.Name,
			Value:  Number(selector(h)),
			Color:  palette[i%len(palette)],
			Image:  h.Image,
			Symbol: h.Symbol,
		})
	}
	return entries
}

// Total sums the entry values
func Total(entries []AllocationEntry) float64 {
	var total float64
	for _, e := range entries {
		total += Number(e.Value)
	}
	return total
}
