package shared

import (
	"context"
	"time"
)

// ReadCache stores JSON snapshots of backend reads that rarely change,
// such as categories and home page settings.
type ReadCache interface {
	// Get decodes the cached value into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value; ttl 0 keeps it until deleted
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
