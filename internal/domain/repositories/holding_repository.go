package repositories

import (
	"context"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

// HoldingRepository persists the holdings list as a whole.
// Load on an empty backend returns an empty list and no error
type HoldingRepository interface {
	// Load reads the persisted holdings in portfolio order
	Load(ctx context.Context) ([]entities.Holding, error)

	// Save replaces the persisted holdings with the given list
	Save(ctx context.Context, holdings []entities.Holding) error
}
