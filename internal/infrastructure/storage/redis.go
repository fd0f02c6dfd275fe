package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
)

const (
	holdingsKey    = "portfolio"
	lastRefreshKey = "lastRefresh"
)

var (
	_ repositories.HoldingRepository      = (*RedisStore)(nil)
	_ repositories.RefreshStateRepository = (*RedisStore)(nil)
)

// RedisStore keeps the portfolio in two Redis string keys
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisStore stores keys under prefix
func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, logger: logger}
}

// Load reads the holdings key. A missing key is an empty portfolio
func (s *RedisStore) Load(ctx context.Context) ([]entities.Holding, error) {
	data, err := s.get(ctx, holdingsKey)
	if err != nil {
		return nil, err
	}
	return DecodeHoldings(data)
}

// Save writes the holdings key
func (s *RedisStore) Save(ctx context.Context, holdings []entities.Holding) error {
	data, err := EncodeHoldings(holdings)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.prefix+holdingsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save holdings to Redis: %w", err)
	}
	return nil
}

// GetLastRefresh reads the timestamp key. A missing key means never
func (s *RedisStore) GetLastRefresh(ctx context.Context) (time.Time, error) {
	data, err := s.get(ctx, lastRefreshKey)
	if err != nil {
		return time.Time{}, err
	}
	return DecodeTimestamp(data), nil
}

// SetLastRefresh writes the timestamp key
func (s *RedisStore) SetLastRefresh(ctx context.Context, t time.Time) error {
	if err := s.client.Set(ctx, s.prefix+lastRefreshKey, EncodeTimestamp(t), 0).Err(); err != nil {
		return fmt.Errorf("failed to save last refresh to Redis: %w", err)
	}
	return nil
}

// HealthCheck checks if Redis is reachable
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return data, nil
}
