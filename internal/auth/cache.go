package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// tokenCacheTTL bounds staleness for entries that never get an explicit
// invalidation (e.g. rows removed by a cascading user delete).
const tokenCacheTTL = 15 * time.Minute

// RedisTokenCache caches token-to-user resolutions in Redis so the
// per-request auth check skips the database on repeat lookups.
type RedisTokenCache struct {
	client *redis.Client
}

func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client}
}

// tokenCacheKey generates the Redis key for a token. The raw token never
// appears in a key.
func tokenCacheKey(token string) string {
	return fmt.Sprintf("auth_token:%s", hashToken(token))
}

// Get returns the cached owner of a token, if present
func (c *RedisTokenCache) Get(ctx context.Context, token string) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, tokenCacheKey(token)).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to get cached token: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		// Corrupt entry; treat as a miss
		return uuid.Nil, false, nil
	}

	return userID, true, nil
}

// Set stores a token resolution with TTL
func (c *RedisTokenCache) Set(ctx context.Context, token string, userID uuid.UUID) error {
	err := c.client.Set(ctx, tokenCacheKey(token), userID.String(), tokenCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}

	return nil
}

// Delete drops a cached resolution. Called on revocation so a revoked token
// stops resolving immediately.
func (c *RedisTokenCache) Delete(ctx context.Context, token string) error {
	err := c.client.Del(ctx, tokenCacheKey(token)).Err()
	if err != nil {
		return fmt.Errorf("failed to delete cached token: %w", err)
	}

	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
