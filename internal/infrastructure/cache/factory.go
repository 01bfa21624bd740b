package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ferreteria/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// memorySweepInterval is how often the in-memory store drops expired keys
const memorySweepInterval = 5 * time.Minute

// FactoryOption configures NewIdempotencyStore
type FactoryOption func(*factory)

type factory struct {
	logger        *zap.Logger
	allowFallback bool
}

// WithLogger sets the logger used to report which store was chosen
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *factory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMemoryFallback controls whether an unreachable Redis falls back to the
// in-memory store. Fallback is allowed by default.
func WithMemoryFallback(allow bool) FactoryOption {
	return func(f *factory) {
		f.allowFallback = allow
	}
}

// NewIdempotencyStore returns a Redis store when cfg.Enabled is set and the
// server answers, and a MemoryStore otherwise.
func NewIdempotencyStore(ctx context.Context, cfg config.RedisConfig, opts ...FactoryOption) (IdempotencyStore, error) {
	f := &factory{logger: zap.NewNop(), allowFallback: true}
	for _, opt := range opts {
		opt(f)
	}

	if !cfg.Enabled {
		f.logger.Info("Redis disabled, using in-memory idempotency store")
		return NewMemoryStore(memorySweepInterval), nil
	}

	store, err := NewRedisStore(ctx, RedisOptions{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err == nil {
		f.logger.Info("using Redis idempotency store", zap.String("addr", cfg.Addr()))
		return store, nil
	}

	if !f.allowFallback {
		return nil, fmt.Errorf("redis required for idempotency keys but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store; "+
		"replayed requests are only detected per instance",
		zap.Error(err),
	)
	return NewMemoryStore(memorySweepInterval), nil
}
