package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract used for console preferences and export
// status records. Values are JSON-encoded.
type Cache interface {
	// Get unmarshals the value at key into dest.
	// found=false means a miss; dest is then left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value at key. ttl <= 0 stores without expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error

	// Ping checks the connection.
	Ping(ctx context.Context) error
}
