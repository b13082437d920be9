package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/infrastructure/telemetry"
)

// codec encodes snapshots; ConfigStd keeps encoding/json semantics for
// Marshaler types such as decimal.Decimal and time.Time.
var codec = sonic.ConfigStd

// Aside implements cache-aside reads and writes for snapshots of type T.
//
// The cache is advisory. Every Store failure (timeout, refused connection,
// undecodable entry) is logged at debug level and behaves like a miss, so
// callers never see a cache error.
type Aside[T any] struct {
	store   Store
	ttl     time.Duration
	logger  *zap.Logger
	metrics *telemetry.EventMetrics
}

// NewAside creates a cache-aside helper over store
func NewAside[T any](store Store, ttl time.Duration, logger *zap.Logger, metrics *telemetry.EventMetrics) *Aside[T] {
	if metrics == nil {
		metrics = telemetry.NoopEventMetrics()
	}
	return &Aside[T]{store: store, ttl: ttl, logger: logger, metrics: metrics}
}

// Get returns the cached value and whether it was found
func (a *Aside[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			a.failed(ctx, "get", key, err)
		}
		return zero, false
	}

	var v T
	if err := codec.Unmarshal(data, &v); err != nil {
		a.failed(ctx, "decode", key, err)
		// corrupted entries are dropped so the next read repopulates them
		if derr := a.store.Delete(ctx, key); derr != nil {
			a.failed(ctx, "delete", key, derr)
		}
		return zero, false
	}
	return v, true
}

// Load returns the cached value or calls loader and caches its result.
// Loader errors are returned untouched and nothing is cached.
func (a *Aside[T]) Load(ctx context.Context, key string, loader func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := a.Get(ctx, key); ok {
		return v, nil
	}
	v, err := loader(ctx)
	if err != nil {
		return v, err
	}
	a.Set(ctx, key, v)
	return v, nil
}

// Set writes v under key, best effort
func (a *Aside[T]) Set(ctx context.Context, key string, v T) {
	data, err := codec.Marshal(v)
	if err != nil {
		a.failed(ctx, "encode", key, err)
		return
	}
	if err := a.store.Set(ctx, key, data, a.ttl); err != nil {
		a.failed(ctx, "set", key, err)
	}
}

// Evict removes key, best effort
func (a *Aside[T]) Evict(ctx context.Context, key string) {
	if err := a.store.Delete(ctx, key); err != nil {
		a.failed(ctx, "delete", key, err)
	}
}

func (a *Aside[T]) failed(ctx context.Context, op, key string, err error) {
	a.metrics.CacheFailures.Inc(ctx)
	logger.WithLogger(ctx, a.logger).Debug("Cache operation failed, treating as miss",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
