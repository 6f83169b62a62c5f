package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/responder/responder/internal/model"
)

// Cache key prefixes and TTLs.
const (
	endpointKeyPrefix = "ep:"
	negCacheKeySuffix = ":neg"

	// DefaultEndpointTTL is the TTL for cached endpoint data.
	DefaultEndpointTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

func endpointKey(ownerID, slug string) string {
	return endpointKeyPrefix + ownerID + ":" + slug
}

// GetEndpoint retrieves an endpoint from cache by owner and slug.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetEndpoint(ctx context.Context, ownerID, slug string) (*model.CachedEndpoint, error) {
	key := endpointKey(ownerID, slug)

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedEndpoint{
		ID:           result["id"],
		Name:         result["name"],
		Method:       result["method"],
		Visibility:   result["visibility"],
		ResponseBody: result["response_body"],
	}

	return cached, nil
}

// SetEndpoint stores an endpoint in cache.
func (c *Cache) SetEndpoint(ctx context.Context, endpoint *model.Endpoint) error {
	key := endpointKey(endpoint.OwnerID, endpoint.Slug)
	cached := endpoint.ToCachedEndpoint()

	fields := map[string]any{
		"id":            cached.ID,
		"name":          cached.Name,
		"method":        cached.Method,
		"visibility":    cached.Visibility,
		"response_body": cached.ResponseBody,
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultEndpointTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cache endpoint: %w", err)
	}

	// Remove negative cache if exists
	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// DeleteEndpoint removes an endpoint from cache.
func (c *Cache) DeleteEndpoint(ctx context.Context, ownerID, slug string) error {
	key := endpointKey(ownerID, slug)

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete endpoint from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if an owner/slug pair is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, ownerID, slug string) (bool, error) {
	key := endpointKey(ownerID, slug) + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks an owner/slug pair as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, ownerID, slug string) error {
	key := endpointKey(ownerID, slug) + negCacheKeySuffix

	err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
