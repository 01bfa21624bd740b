// Package cache holds the Idempotency-Key stores used by the HTTP layer.
// Only request keys are stored here. Stock figures and balances are always
// read from the database.
package cache

import (
	"context"
	"time"
)

// IdempotencyStore remembers which Idempotency-Key values have been claimed.
type IdempotencyStore interface {
	// Claim reserves key for ttl. It returns false when the key is already
	// held by an earlier request.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a claimed key so a failed request can be retried.
	Release(ctx context.Context, key string) error

	Close() error
}
