package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/propconnect/propconnect/internal/repository"
)

const (
	keyPrefix  = "listings:"
	versionKey = keyPrefix + "version"
)

// ListingCache implements repository.ListingCache on Redis. Every page key
// embeds the current version, so Invalidate drops all pages at once by
// bumping it; stale pages expire on their own TTL.
type ListingCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewListingCache creates a Redis-backed listing cache.
func NewListingCache(client redis.Cmdable, ttl time.Duration) *ListingCache {
	return &ListingCache{client: client, ttl: ttl}
}

// Get returns the cached page, or nil on a miss.
func (c *ListingCache) Get(ctx context.Context, page, limit int) (*repository.ListingPage, error) {
	key, err := c.pageKey(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get listing page: %w", err)
	}

	var lp repository.ListingPage
	if err := json.Unmarshal(data, &lp); err != nil {
		return nil, fmt.Errorf("unmarshal listing page: %w", err)
	}
	return &lp, nil
}

// Set stores a page under the current version with the configured TTL.
func (c *ListingCache) Set(ctx context.Context, page, limit int, value *repository.ListingPage) error {
	key, err := c.pageKey(ctx, page, limit)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal listing page: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set listing page: %w", err)
	}
	return nil
}

// Invalidate makes every cached page unreachable.
func (c *ListingCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("redis bump listing version: %w", err)
	}
	return nil
}

func (c *ListingCache) pageKey(ctx context.Context, page, limit int) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("redis get listing version: %w", err)
	}
	return fmt.Sprintf("%sv%d:p%d:l%d", keyPrefix, version, page, limit), nil
}
