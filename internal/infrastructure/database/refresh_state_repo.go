package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
)

// Ensure RefreshStateRepo implements RefreshStateRepository
var _ repositories.RefreshStateRepository = (*RefreshStateRepo)(nil)

// RefreshStateRepo implements RefreshStateRepository using a single-row table
type RefreshStateRepo struct {
	db *sqlx.DB
}

// NewRefreshStateRepo creates a new refresh state repository
func NewRefreshStateRepo(db *sqlx.DB) *RefreshStateRepo {
	return &RefreshStateRepo{db: db}
}

// GetLastRefresh retrieves the last refresh time, zero if never stored
func (r *RefreshStateRepo) GetLastRefresh(ctx context.Context) (time.Time, error) {
	var state entities.RefreshState
	query := `SELECT last_refresh_ms, updated_at FROM refresh_state WHERE id = 1`

	if err := r.db.GetContext(ctx, &state, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get refresh state: %w", err)
	}

	return state.LastRefresh(), nil
}

// SetLastRefresh creates or updates the refresh state
func (r *RefreshStateRepo) SetLastRefresh(ctx context.Context, t time.Time) error {
	query := `
		INSERT INTO refresh_state (id, last_refresh_ms)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			last_refresh_ms = EXCLUDED.last_refresh_ms,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, entities.Millis(t)); err != nil {
		return fmt.Errorf("failed to set refresh state: %w", err)
	}

	return nil
}
