package entities

import (
	"time"
)

// RefreshState tracks when prices were last refreshed successfully.
// The timestamp is persisted as epoch milliseconds; zero means never
type RefreshState struct {
	LastRefreshMs int64     `db:"last_refresh_ms" json:"last_refresh_ms"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}

// LastRefresh returns the timestamp as a time, zero time when never refreshed
func (s RefreshState) LastRefresh() time.Time {
	return TimeFromMillis(s.LastRefreshMs)
}

// TimeFromMillis converts epoch milliseconds, treating 0 as the zero time
func TimeFromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// Millis converts t to epoch milliseconds, treating the zero time as 0
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
