package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
)

const (
	holdingsFile    = "portfolio.json"
	lastRefreshFile = "last_refresh"
)

var (
	_ repositories.HoldingRepository      = (*FileStore)(nil)
	_ repositories.RefreshStateRepository = (*FileStore)(nil)
)

// FileStore keeps each persisted value in its own file under a directory.
// Writes replace the file atomically
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileStore creates dir if needed and returns a store rooted there
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	logger.Info("Using file storage", zap.String("dir", dir))
	return &FileStore{dir: dir, logger: logger}, nil
}

// Load reads the holdings file. A missing file is an empty portfolio
func (s *FileStore) Load(_ context.Context) ([]entities.Holding, error) {
	data, err := s.read(holdingsFile)
	if err != nil {
		return nil, err
	}
	return DecodeHoldings(data)
}

// Save writes the holdings file
func (s *FileStore) Save(_ context.Context, holdings []entities.Holding) error {
	data, err := EncodeHoldings(holdings)
	if err != nil {
		return err
	}
	return s.write(holdingsFile, data)
}

// GetLastRefresh reads the timestamp file. A missing file means never
func (s *FileStore) GetLastRefresh(_ context.Context) (time.Time, error) {
	data, err := s.read(lastRefreshFile)
	if err != nil {
		return time.Time{}, err
	}
	return DecodeTimestamp(data), nil
}

// SetLastRefresh writes the timestamp file
func (s *FileStore) SetLastRefresh(_ context.Context, t time.Time) error {
	return s.write(lastRefreshFile, EncodeTimestamp(t))
}

func (s *FileStore) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	s.logger.Debug("Persisted", zap.String("file", name), zap.Int("bytes", len(data)))
	return nil
}
