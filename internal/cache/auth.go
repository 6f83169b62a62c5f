package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/responder/responder/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for owner auth cache.
	authCachePrefix = "auth:owner:"
	// authCacheTTL is the time-to-live for cached owner contexts.
	authCacheTTL = 5 * time.Minute
)

// CachedOwnerContext represents an owner context stored in Redis.
type CachedOwnerContext struct {
	OwnerID   string `json:"owner_id"`
	Username  string `json:"username"`
	Admin     bool   `json:"admin"`
	KeyPrefix string `json:"key_prefix"`
}

// GetOwnerContext retrieves a cached owner context by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetOwnerContext(ctx context.Context, cacheKey string) (*model.OwnerContext, error) {
	key := authCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedOwnerContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.OwnerContext{
		OwnerID:   cached.OwnerID,
		Username:  cached.Username,
		Admin:     cached.Admin,
		KeyPrefix: cached.KeyPrefix,
	}, nil
}

// SetOwnerContext caches an owner context.
func (c *Cache) SetOwnerContext(ctx context.Context, cacheKey string, owner *model.OwnerContext) error {
	key := authCachePrefix + cacheKey

	cached := CachedOwnerContext{
		OwnerID:   owner.OwnerID,
		Username:  owner.Username,
		Admin:     owner.Admin,
		KeyPrefix: owner.KeyPrefix,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal owner context: %w", err)
	}

	return c.client.Set(ctx, key, data, authCacheTTL).Err()
}

// DeleteOwnerContext removes a cached owner context.
// Used when a key is rotated or an owner is deactivated.
func (c *Cache) DeleteOwnerContext(ctx context.Context, cacheKey string) error {
	key := authCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
