package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

// PortfolioService provides the portfolio use cases on top of the store
type PortfolioService struct {
	store  *state.Store
	logger *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(store *state.Store, logger *zap.Logger) *PortfolioService {
	return &PortfolioService{
		store:  store,
		logger: logger,
	}
}

// HoldingDTO is the API representation of a holding with its metrics
type HoldingDTO struct {
	entities.Holding
	CurrentValue       float64           `json:"current_value"`
	Profit             float64           `json:"profit"`
	ProfitPercent      valuation.Percent `json:"profit_percent"`
	ProfitPercentLabel string            `json:"profit_percent_label"`
	Change24hLabel     string            `json:"change_24h_label"`
}

// PortfolioDTO is the API representation of the whole portfolio
type PortfolioDTO struct {
	Holdings      []HoldingDTO      `json:"holdings"`
	Totals        valuation.Totals  `json:"totals"`
	ProfitPercent valuation.Percent `json:"profit_percent"`
	Count         int               `json:"count"`
	LastRefresh   *time.Time        `json:"last_refresh"`
}

// PortfolioResponse wraps portfolio data for API response
type PortfolioResponse struct {
	Data PortfolioDTO `json:"data"`
}

// HoldingResponse wraps a single holding for API response
type HoldingResponse struct {
	Data HoldingDTO `json:"data"`
}

// NewHoldingDTO derives the metrics of h
func NewHoldingDTO(h entities.Holding) HoldingDTO {
	pct := valuation.ProfitPercent(h)
	return HoldingDTO{
		Holding:            h,
		CurrentValue:       valuation.CurrentValue(h),
		Profit:             valuation.Profit(h),
		ProfitPercent:      pct,
		ProfitPercentLabel: pct.String(),
		Change24hLabel:     valuation.FormatChange(h.Change24h),
	}
}

// GetPortfolio returns every holding with its metrics and the totals
func (s *PortfolioService) GetPortfolio(ctx context.Context) *PortfolioDTO {
	snap := s.store.Snapshot()

	dto := &PortfolioDTO{
		Holdings: make([]HoldingDTO, 0, len(snap.Holdings)),
		Totals:   valuation.Aggregate(snap.Holdings),
		Count:    len(snap.Holdings),
	}
	for _, h := range snap.Holdings {
		dto.Holdings = append(dto.Holdings, NewHoldingDTO(h))
	}
	dto.ProfitPercent = dto.Totals.ProfitPercent()
	if !snap.LastRefresh.IsZero() {
		last := snap.LastRefresh
		dto.LastRefresh = &last
	}
	return dto
}

// GetHolding returns one holding with its metrics
func (s *PortfolioService) GetHolding(ctx context.Context, id string) (*HoldingDTO, error) {
	h, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", state.ErrHoldingNotFound, id)
	}
	dto := NewHoldingDTO(h)
	return &dto, nil
}

// AddHolding starts tracking token
func (s *PortfolioService) AddHolding(ctx context.Context, token entities.Token) (*HoldingDTO, error) {
	h, err := s.store.Add(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to add holding: %w", err)
	}
	dto := NewHoldingDTO(h)
	return &dto, nil
}

// UpdateHolding sets a user-editable field from raw input, a JSON number or
// a numeric string. Input that is not a finite number is rejected rather than
// stored as 0
func (s *PortfolioService) UpdateHolding(ctx context.Context, id, field string, raw interface{}) (*HoldingDTO, error) {
	value, err := ParseValue(raw)
	if err != nil {
		return nil, err
	}

	h, err := s.store.Update(ctx, id, entities.HoldingField(field), value)
	if err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}
	dto := NewHoldingDTO(h)
	return &dto, nil
}

// RemoveHolding stops tracking id
func (s *PortfolioService) RemoveHolding(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove holding: %w", err)
	}
	return nil
}

// ParseValue converts user input to a number. An empty string is 0, as an
// emptied form field is
func ParseValue(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, state.ErrInvalidNumber
		}
		return v, nil
	case json.Number:
		return ParseValue(v.String())
	case string:
		if v == "" {
			return 0, nil
		}
		f, ok := valuation.ParseNumber(v)
		if !ok {
			return 0, fmt.Errorf("%w: %q", state.ErrInvalidNumber, v)
		}
		return f, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %T", state.ErrInvalidNumber, raw)
	}
}
