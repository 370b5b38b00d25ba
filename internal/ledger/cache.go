package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SuspendedPrefix is the Redis key prefix for cached suspension state.
// Only positive answers are cached:
//
//	Key:   suspended:<user_id>
//	Value: "1"
//	TTL:   time until the oldest counting strike leaves the window
//
// The TTL guarantees the cache can never outlive the derived truth, so no
// invalidation path is needed.
const SuspendedPrefix = "suspended:"

// SuspensionCache is a Redis read-through cache for the suspension
// predicate.
type SuspensionCache struct {
	client *redis.Client
}

// NewSuspensionCache creates a cache using the provided Redis client.
func NewSuspensionCache(client *redis.Client) *SuspensionCache {
	return &SuspensionCache{client: client}
}

// Get reports whether a positive suspension entry exists for userID.
// A missing key is (false, nil); callers fall through to the database.
func (c *SuspensionCache) Get(ctx context.Context, userID string) (bool, error) {
	err := c.client.Get(ctx, SuspendedPrefix+userID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Set records a positive suspension answer for userID with the given TTL.
func (c *SuspensionCache) Set(ctx context.Context, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, SuspendedPrefix+userID, "1", ttl).Err()
}

// Clear drops the cached entry for userID. Used by admin tooling after an
// out-of-band unsuspension.
func (c *SuspensionCache) Clear(ctx context.Context, userID string) error {
	return c.client.Del(ctx, SuspendedPrefix+userID).Err()
}
