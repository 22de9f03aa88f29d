package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/shared"
	"github.com/erp/zidsync/internal/infrastructure/config"
)

// NewIdempotencyStore creates the webhook dedup store. Redis is used
// when enabled so replicas share processed-event state; otherwise an
// in-memory store serves single-instance deployments.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) (shared.IdempotencyStore, error) {
	if !cfg.Enabled {
		logger.Info("using in-memory webhook dedup store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create Redis webhook dedup store: %w", err)
	}
	logger.Info("using Redis webhook dedup store")
	return store, nil
}
