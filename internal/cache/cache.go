// Package cache provides the pluggable cache behind the settings store.
package cache

import (
	"context"
	"time"
)

// Cache is a minimal TTL cache. Implementations must be safe for
// concurrent use. Get returns false when the key is absent or expired.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Flush(ctx context.Context)
}
