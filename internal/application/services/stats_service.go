package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/domain/chart"
	"github.com/bimakw/coin-tracker/internal/domain/currency"
	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

// Chart titles
const (
	ChartCurrentValue = "Allocation by current value"
	ChartInvested     = "Allocation by amount invested"
)

// StatsService builds the statistics view: totals, allocation charts and a
// per-holding table
type StatsService struct {
	store     *state.Store
	converter *currency.Converter
	palette   []string
	layout    chart.Layout
	logger    *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(store *state.Store, converter *currency.Converter, logger *zap.Logger) *StatsService {
	return &StatsService{
		store:     store,
		converter: converter,
		palette:   valuation.DefaultPalette,
		layout:    chart.DefaultLayout(),
		logger:    logger,
	}
}

// TotalsDTO carries the portfolio totals in both display currencies
type TotalsDTO struct {
	Raw           valuation.Totals  `json:"raw"`
	CurrentValue  currency.Amounts  `json:"current_value"`
	InvestedValue currency.Amounts  `json:"invested_value"`
	Profit        currency.Amounts  `json:"profit"`
	ProfitPercent valuation.Percent `json:"profit_percent"`
}

// ChartDTO is a chart with its total formatted
type ChartDTO struct {
	chart.Chart
	TotalFormatted currency.Amounts `json:"total_formatted"`
}

// StatsRow is one line of the statistics table
type StatsRow struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Symbol             string            `json:"symbol"`
	Image              string            `json:"image,omitempty"`
	Quantity           float64           `json:"quantity"`
	Invested           currency.Amounts  `json:"invested"`
	CurrentPrice       currency.Amounts  `json:"current_price"`
	CurrentValue       currency.Amounts  `json:"current_value"`
	Change24h          string            `json:"change_24h"`
	Profit             currency.Amounts  `json:"profit"`
	ProfitPercent      valuation.Percent `json:"profit_percent"`
	ProfitPercentLabel string            `json:"profit_percent_label"`
}

// StatsDTO is the API representation of the statistics view
type StatsDTO struct {
	Totals      TotalsDTO  `json:"totals"`
	Charts      []ChartDTO `json:"charts"`
	Rows        []StatsRow `json:"rows"`
	LastRefresh *time.Time `json:"last_refresh"`
	USDToEUR    string     `json:"usd_to_eur_rate"`
}

// StatsResponse wraps stats for API response
type StatsResponse struct {
	Data StatsDTO `json:"data"`
}

// GetStats computes the statistics view from the current portfolio
func (s *StatsService) GetStats(ctx context.Context) *StatsDTO {
	snap := s.store.Snapshot()
	totals := valuation.Aggregate(snap.Holdings)

	dto := &StatsDTO{
		Totals: TotalsDTO{
			Raw:           totals,
			CurrentValue:  s.converter.Amounts(totals.CurrentValue),
			InvestedValue: s.converter.Amounts(totals.InvestedValue),
			Profit:        s.converter.Amounts(totals.Profit),
			ProfitPercent: totals.ProfitPercent(),
		},
		Charts:   make([]ChartDTO, 0, 2),
		Rows:     make([]StatsRow, 0, len(snap.Holdings)),
		USDToEUR: s.converter.Rate().String(),
	}

	views := []struct {
		title    string
		selector valuation.ValueSelector
	}{
		{ChartCurrentValue, valuation.ByCurrentValue},
		{ChartInvested, valuation.ByInvested},
	}
	for _, v := range views {
		entries := valuation.BuildAllocation(snap.Holdings, v.selector, s.palette)
		total := valuation.Total(entries)
		dto.Charts = append(dto.Charts, ChartDTO{
			Chart:          chart.Build(v.title, entries, total, s.layout),
			TotalFormatted: s.converter.Amounts(total),
		})
	}

	for _, h := range snap.Holdings {
		pct := valuation.ProfitPercent(h)
		dto.Rows = append(dto.Rows, StatsRow{
			ID:                 h.ID,
			Name:               h.Name,
			Symbol:             h.Symbol,
			Image:              h.Image,
			Quantity:           valuation.Number(h.Quantity),
			Invested:           s.converter.Amounts(valuation.Invested(h)),
			CurrentPrice:       s.converter.Amounts(h.CurrentPrice),
			CurrentValue:       s.converter.Amounts(valuation.CurrentValue(h)),
			Change24h:          valuation.FormatChange(h.Change24h),
			Profit:             s.converter.Amounts(valuation.Profit(h)),
			ProfitPercent:      pct,
			ProfitPercentLabel: pct.String(),
		})
	}

	if !snap.LastRefresh.IsZero() {
		last := snap.LastRefresh
		dto.LastRefresh = &last
	}

	return dto
}
