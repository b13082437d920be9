package shared

import (
	"context"
	"time"
)

// IdempotencyStore records which event ids a consumer has already handled.
//
// A claim is taken before handling and released when handling fails, so a
// redelivered event is retried while a successfully handled one is skipped
// for the length of the window.
type IdempotencyStore interface {
	// Claim atomically records eventID for ttl.
	// It reports false when a live claim already exists.
	Claim(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	Claimed(ctx context.Context, eventID string) (bool, error)
	// Release drops the claim on eventID
	Release(ctx context.Context, eventID string) error
	Close() error
}

// IdempotencyConfig controls duplicate suppression for a handler
type IdempotencyConfig struct {
	// Window is how long a handled event id is remembered. It must exceed the
	// longest redelivery delay of the broker.
	Window  time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig remembers event ids for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Window: 24 * time.Hour, Enabled: true}
}
