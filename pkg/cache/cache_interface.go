package cache

import (
	"context"
	"time"
)

// Cache is the read cache contract used by catalog services.
// Implementations must treat a missing key as (false, nil), never an error.
type Cache interface {
	// Get unmarshals the value stored at key into dest.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
