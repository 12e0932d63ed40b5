package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// UnseenCountKeyPrefix prefixes the per-user unseen friend request count key.
	UnseenCountKeyPrefix = "lingo:friend_requests:unseen:"
	// GenerationKeyPrefix prefixes the per-user counter bumped on every invalidation.
	GenerationKeyPrefix = "lingo:friend_requests:gen:"

	generationTTL = 24 * time.Hour
)

// setIfGeneration writes KEYS[2] only while KEYS[1] still holds ARGV[1].
// A missing generation key reads as 0.
var setIfGeneration = redis.NewScript(`
local gen = redis.call("GET", KEYS[1]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisCountCache caches unseen friend request counts in Redis.
type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func NewRedisCountCache(client *redis.Client, ttl time.Duration) *RedisCountCache {
	return &RedisCountCache{client: client, ttl: ttl}
}

func unseenKey(userID string) string {
	return UnseenCountKeyPrefix + userID
}

func generationKey(userID string) string {
	return GenerationKeyPrefix + userID
}

// Get returns the cached count and whether it was present.
func (c *RedisCountCache) Get(ctx context.Context, userID string) (int64, bool, error) {
	count, err := c.client.Get(ctx, unseenKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read unseen count: %w", err)
	}
	return count, true, nil
}

// Generation returns the user's current invalidation counter.
func (c *RedisCountCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read count generation: %w", err)
	}
	return gen, nil
}

// Set caches count only if no invalidation happened since gen was read.
// It reports whether the value was stored.
func (c *RedisCountCache) Set(ctx context.Context, userID string, gen, count int64) (bool, error) {
	keys := []string{generationKey(userID), unseenKey(userID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, gen, count, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache unseen count: %w", err)
	}
	return stored == 1, nil
}

// Invalidate bumps the generation and drops the cached count so the next
// read goes to the database and in-flight fills are discarded.
func (c *RedisCountCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Expire(ctx, generationKey(userID), generationTTL)
		pipe.Del(ctx, unseenKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate unseen count: %w", err)
	}
	return nil
}
