// Package rdx wraps the Redis connection used for the session-token hash.
package rdx

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const sessionHash = "sessions"

type Cache struct {
	Conn *redis.Client
}

func New(addr string) *Cache {
	return &Cache{Conn: redis.NewClient(&redis.Options{Addr: addr})}
}

// SetSession stores the signed token for a user; login overwrites any
// previous session.
func (c *Cache) SetSession(ctx context.Context, userID, token string) error {
	return c.Conn.HSet(ctx, sessionHash, userID, token).Err()
}

func (c *Cache) GetSession(ctx context.Context, userID string) (string, error) {
	return c.Conn.HGet(ctx, sessionHash, userID).Result()
}

func (c *Cache) DelSession(ctx context.Context, userID string) error {
	return c.Conn.HDel(ctx, sessionHash, userID).Err()
}

func (c *Cache) Close() error {
	return c.Conn.Close()
}
