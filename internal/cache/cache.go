// Package cache wraps Redis behind a client that degrades to a no-op when the
// server is unreachable. Cached jar reads and the revoked-token list are both
// best-effort: a down Redis must never take the API down with it.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is safe to use with a nil receiver, which stands in for "no cache
// configured" in tests and minimal deployments.
type Client struct {
	rdb *redis.Client
}

// New connects to Redis. The connection is lazy; a bad address only shows up
// as persistent cache misses.
func New(addr, password string, db int) *Client {
	return &Client{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

// Get returns the cached bytes, or nil on a miss. Connectivity errors read as
// misses.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	res, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and transport failures both land here; either way the
		// caller falls through to the database.
		return nil, nil
	}
	return res, nil
}

// Set stores value under key for ttl, ignoring Redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	_ = c.rdb.Set(ctx, key, value, ttl).Err()
	return nil
}

// Delete drops a key, ignoring Redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	_ = c.rdb.Del(ctx, key).Err()
	return nil
}
