package repositories

import (
	"context"
	"time"
)

// RefreshStateRepository persists the last successful price refresh timestamp.
// A backend that never stored one returns the zero time and no error
type RefreshStateRepository interface {
	// GetLastRefresh reads the persisted timestamp
	GetLastRefresh(ctx context.Context) (time.Time, error)

	// SetLastRefresh stores the timestamp
	SetLastRefresh(ctx context.Context, t time.Time) error
}
