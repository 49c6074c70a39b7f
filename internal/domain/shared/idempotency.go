package shared

import (
	"context"
	"time"
)

// IdempotencyStore claims one-shot keys, such as a PayPal capture, so a
// double-clicked button or a retried request is processed once.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It returns true when this call made
	// the claim and false when the key was already held.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the operation may be retried
	Release(ctx context.Context, key string) error

	Close() error
}
