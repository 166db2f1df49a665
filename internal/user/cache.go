package user

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionCacheTTL = time.Hour

// Cache records recently authenticated users in Redis. Entries expire after
// an hour; a password change drops the entry early.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func sessionKey(email string) string {
	return fmt.Sprintf("user:%s", email)
}

// RememberLogin records that a user logged in recently
func (c *Cache) RememberLogin(ctx context.Context, email string) error {
	return c.client.Set(ctx, sessionKey(email), email, sessionCacheTTL).Err()
}

// Forget drops a cached session, used when credentials change
func (c *Cache) Forget(ctx context.Context, email string) error {
	return c.client.Del(ctx, sessionKey(email)).Err()
}
