package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RoleCache caches employee role lookups in Redis. The directory is the
// source of truth; the cache only shortens the hot path of per-request
// permission checks. When Redis is unreachable the cache degrades to
// pass-through rather than failing lookups.
type RoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleCache creates a role cache instance. A failed ping returns a cache
// with a nil client, which silently skips all operations.
func NewRoleCache(addr, password string, db int, ttl time.Duration) *RoleCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return &RoleCache{client: nil, ttl: ttl}
	}
	return &RoleCache{client: client, ttl: ttl}
}

func (c *RoleCache) key(employeeID uuid.UUID) string {
	return fmt.Sprintf("role:%s", employeeID.String())
}

// Get retrieves a cached role. Empty string with nil error is a miss.
func (c *RoleCache) Get(ctx context.Context, employeeID uuid.UUID) (string, error) {
	if c.client == nil {
		return "", nil
	}
	role, err := c.client.Get(ctx, c.key(employeeID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// Set caches the role of an employee.
func (c *RoleCache) Set(ctx context.Context, employeeID uuid.UUID, role string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(employeeID), role, c.ttl).Err()
}

// Invalidate removes the cached role for an employee. Call on any role
// reassignment so live re-resolution sees the change.
func (c *RoleCache) Invalidate(ctx context.Context, employeeID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(employeeID)).Err()
}

// Close closes the Redis connection.
func (c *RoleCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsAvailable returns true if Redis is connected.
func (c *RoleCache) IsAvailable() bool {
	return c.client != nil
}
