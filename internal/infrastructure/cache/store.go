package cache

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
)

// Store is a JSON view over a key-value backend that never fails.
// Backend and serialization errors are logged and treated as a miss on
// read and as a no-op on write.
type Store struct {
	backend domain.KeyValueStore
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewStore creates a store over the given backend
func NewStore(backend domain.KeyValueStore, logger *zap.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		logger:  logger.Named("cache"),
		metrics: m,
	}
}

// Get decodes the value stored under key into dst and reports whether it
// was found and decoded
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("discarding corrupted cache value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set serializes value and stores it under key, overwriting any previous value
func (s *Store) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.metrics.RecordCacheWriteError()
		s.logger.Warn("cache value not serializable", zap.String("key", key), zap.Error(err))
		return
	}

	if err := s.backend.Set(ctx, key, data); err != nil {
		s.metrics.RecordCacheWriteError()
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
