package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent from the cache.
var ErrMiss = errors.New("cache miss")

// VersionedCache serves per-user statistics through versioned keys.
// Data keys embed the user's version counter, so invalidation is a single
// INCR on the version key: stale entries become unreachable and expire via
// their TTL instead of being deleted one by one.
type VersionedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVersioned creates a versioned cache over an existing Redis client
func NewVersioned(client *redis.Client, ttl time.Duration) *VersionedCache {
	return &VersionedCache{client: client, ttl: ttl}
}

func versionKey(userID int64) string {
	return fmt.Sprintf("stats:ver:user:%d", userID)
}

func dataKey(version, userID int64, view string) string {
	return fmt.Sprintf("stats:v%d:user:%d:%s", version, userID, view)
}

// Version returns the user's current cache version (0 when never bumped).
func (c *VersionedCache) Version(ctx context.Context, userID int64) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Bump invalidates all of the user's cached views by incrementing the
// version counter.
func (c *VersionedCache) Bump(ctx context.Context, userID int64) error {
	return c.client.Incr(ctx, versionKey(userID)).Err()
}

// Get reads a cached view at the user's current version into dest.
func (c *VersionedCache) Get(ctx context.Context, userID int64, view string, dest interface{}) error {
	version, err := c.Version(ctx, userID)
	if err != nil {
		return err
	}
	raw, err := c.client.Get(ctx, dataKey(version, userID, view)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set stores a view at the user's current version with the cache TTL.
func (c *VersionedCache) Set(ctx context.Context, userID int64, view string, value interface{}) error {
	version, err := c.Version(ctx, userID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dataKey(version, userID, view), raw, c.ttl).Err()
}
