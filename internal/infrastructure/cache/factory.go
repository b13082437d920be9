package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
)

// errRedisDisabled is returned when cfg turns Redis off
var errRedisDisabled = errors.New("redis is disabled")

// OpenIdempotencyStore returns a Redis backed claim store owning its client.
//
// When Redis is disabled or unreachable it falls back to process-local claims
// unless requireRedis is set. Local claims are not shared between instances,
// so a redelivery landing on another replica runs the handler again.
func OpenIdempotencyStore(ctx context.Context, cfg config.RedisConfig, log *zap.Logger, requireRedis bool) (shared.IdempotencyStore, error) {
	err := errRedisDisabled
	if cfg.Enabled {
		client, cerr := NewRedisClient(ctx, cfg)
		if cerr == nil {
			s := NewRedisIdempotencyStore(client, "")
			s.ownsClient = true
			log.Info("Using Redis idempotency store", zap.String("addr", cfg.Addr()))
			return s, nil
		}
		err = cerr
	}
	if requireRedis {
		return nil, fmt.Errorf("idempotency store: %w", err)
	}
	log.Warn("Idempotency claims are local to this process", zap.Error(err))
	return NewInMemoryIdempotencyStore(), nil
}
