package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/exercisetracker/exercisetracker/internal/model"
)

const userKeyPrefix = "user:"

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// UserKey returns the Redis key holding the user with the given ID.
func UserKey(id string) string {
	return userKeyPrefix + id
}

// GetUser retrieves a user from cache by ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetUser(ctx context.Context, id string) (*model.User, error) {
	result, err := c.client.HGetAll(ctx, UserKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedUser{
		Username:  result["username"],
		CreatedAt: result["created_at"],
	}

	return cached.ToUser(id), nil
}

// SetUser stores a user in cache.
// Users are immutable, so the TTL only bounds memory use.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	key := UserKey(user.ID)
	cached := user.ToCachedUser()

	fields := map[string]any{
		"username":   cached.Username,
		"created_at": cached.CreatedAt,
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, c.userTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}

	return nil
}
