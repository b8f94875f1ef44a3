// Package cache provides an optional Redis-backed cache for risk
// records. Calculations are deterministic, so a record can be cached
// indefinitely under a digest of its input; the TTL only bounds memory.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aas-risk-engine/internal/domain"
)

// DefaultTTL bounds how long cached records live in Redis.
const DefaultTTL = 24 * time.Hour

// ResultCache stores computed RiskRecords in Redis, keyed by a SHA-256
// digest of the canonical input JSON plus the preset name.
type ResultCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewResultCache connects to Redis at the given URL and verifies the
// connection.
func NewResultCache(redisURL string, ttl time.Duration) (*ResultCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{
		redis:      client,
		defaultTTL: ttl,
	}, nil
}

// Get retrieves a cached record for the input. The second return value
// reports a cache hit; a miss is not an error.
func (c *ResultCache) Get(ctx context.Context, input *domain.InputRecord) (*domain.RiskRecord, bool, error) {
	key, err := Key(input)
	if err != nil {
		return nil, false, err
	}

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached record: %w", err)
	}

	var record domain.RiskRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		// Drop the corrupted entry and treat it as a miss.
		c.redis.Del(ctx, key)
		return nil, false, nil
	}
	return &record, true, nil
}

// Set caches a record for the input.
func (c *ResultCache) Set(ctx context.Context, input *domain.InputRecord, record *domain.RiskRecord) error {
	key, err := Key(input)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	return c.redis.Set(ctx, key, data, c.defaultTTL).Err()
}

// Ping checks if the Redis connection is alive.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *ResultCache) Close() error {
	return c.redis.Close()
}

// Key derives the cache key for an input record. JSON marshaling of the
// record is canonical: struct fields serialize in declaration order and
// map-typed fields (potency overrides) sort by key.
func Key(input *domain.InputRecord) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to marshal input record: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("risk:record:%x", hash[:16]), nil
}
