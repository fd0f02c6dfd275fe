package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
)

// Ensure HoldingRepo implements HoldingRepository
var _ repositories.HoldingRepository = (*HoldingRepo)(nil)

// HoldingRepo implements HoldingRepository using PostgreSQL. Portfolio order
// is kept in the position column
type HoldingRepo struct {
	db *sqlx.DB
}

// NewHoldingRepo creates a new holding repository
func NewHoldingRepo(db *sqlx.DB) *HoldingRepo {
	return &HoldingRepo{db: db}
}

type holdingRow struct {
	entities.Holding
	Position int `db:"position"`
}

// Load reads all holdings in portfolio order
func (r *HoldingRepo) Load(ctx context.Context) ([]entities.Holding, error) {
	query := `
		SELECT id, name, symbol, image, quantity, invested, buy_price, current_price, change_24h
		FROM holdings
		ORDER BY position ASC
	`

	holdings := []entities.Holding{}
	if err := r.db.SelectContext(ctx, &holdings, query); err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	return holdings, nil
}

// Save replaces every stored holding in one transaction
func (r *HoldingRepo) Save(ctx context.Context, holdings []entities.Holding) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings`); err != nil {
		return fmt.Errorf("failed to clear holdings: %w", err)
	}

	if len(holdings) > 0 {
		rows := make([]holdingRow, len(holdings))
		for i, h := range holdings {
			rows[i] = holdingRow{Holding: h, Position: i}
		}

		query := `
			INSERT INTO holdings (id, position, name, symbol, image, quantity, invested, buy_price, current_price, change_24h)
			VALUES (:id, :position, :name, :symbol, :image, :quantity, :invested, :buy_price, :current_price, :change_24h)
		`
		if _, err := tx.NamedExecContext(ctx, query, rows); err != nil {
			return fmt.Errorf("failed to insert holdings: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit holdings: %w", err)
	}

	return nil
}
