// Package bootstrap opens the persistence backend, cache and store selected
// by configuration. The binaries share it so they agree on where the
// portfolio lives
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/application/state"
	"github.com/bimakw/coin-tracker/internal/config"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
	"github.com/bimakw/coin-tracker/internal/infrastructure/cache"
	"github.com/bimakw/coin-tracker/internal/infrastructure/database"
	"github.com/bimakw/coin-tracker/internal/infrastructure/storage"
)

// HealthChecker is implemented by backends that can be probed
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Backend is an opened persistence backend
type Backend struct {
	Name     string
	Holdings repositories.HoldingRepository
	Refresh  repositories.RefreshStateRepository
	// Health is nil for in-process backends
	Health HealthChecker

	closers []func() error
}

// Close releases the backend's connections
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenBackend connects to the storage backend named by cfg.Storage.Backend
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	b := &Backend{Name: cfg.Storage.Backend}

	switch cfg.Storage.Backend {
	case "memory":
		s := storage.NewMemoryStore()
		b.Holdings, b.Refresh = s, s
		logger.Warn("Using in-memory storage, the portfolio is lost on exit")

	case "file":
		s, err := storage.NewFileStore(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, err
		}
		b.Holdings, b.Refresh = s, s

	case "postgres":
		db, err := database.NewPostgresDB(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		b.Holdings = database.NewHoldingRepo(db.DB())
		b.Refresh = database.NewRefreshStateRepo(db.DB())
		b.Health = db
		b.closers = append(b.closers, db.Close)

	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		s := storage.NewRedisStore(client, cfg.Storage.KeyPrefix, logger)
		b.Holdings, b.Refresh = s, s
		b.Health = s
		b.closers = append(b.closers, client.Close)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	return b, nil
}

// OpenStore opens the backend and loads the store from it
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*state.Store, *Backend, error) {
	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	store, err := state.Open(ctx, backend.Holdings, backend.Refresh, logger)
	if err != nil {
		backend.Close()
		return nil, nil, fmt.Errorf("failed to load portfolio: %w", err)
	}

	return store, backend, nil
}

// SearchCache is an opened search cache
type SearchCache struct {
	Cache cache.Cache
	// Health is nil for the in-process cache
	Health HealthChecker

	client *redis.Client
}

// Close releases the cache connection, if any
func (c *SearchCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// OpenCache creates the search cache named by cfg.Cache.Driver. An
// unreachable Redis falls back to the in-process cache
func OpenCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) *SearchCache {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
		if err == nil {
			rc := cache.NewRedisCache(client, cfg.Storage.KeyPrefix+"cache:", cfg.Cache.SearchTTL, logger)
			return &SearchCache{Cache: rc, Health: rc, client: client}
		}
		logger.Warn("Failed to connect to Redis, using in-process cache", zap.Error(err))
	}

	return &SearchCache{
		Cache: cache.NewMemoryCache(cfg.Cache.SearchTTL, cfg.Cache.CleanupInterval),
	}
}
