package scheduling

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// cacheKeyPrefix namespaces every appointment-derived cache entry.
const cacheKeyPrefix = "appointments:"

// Invalidator clears appointment-derived cached views after a successful
// mutation. Invalidation is whole-namespace by design; nothing here depends
// on finer granularity.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// RedisInvalidator deletes every key under the appointments prefix.
type RedisInvalidator struct {
	client *redis.Client
}

// NewRedisInvalidator creates an invalidator over a redis client.
func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	if client == nil {
		panic("scheduling: redis client required")
	}
	return &RedisInvalidator{client: client}
}

// Invalidate scans and deletes all keys in the appointment namespace.
func (r *RedisInvalidator) Invalidate(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("scheduling: cache invalidate: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scheduling: cache scan: %w", err)
	}
	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("scheduling: cache invalidate: %w", err)
		}
	}
	return nil
}

// NoopInvalidator is used when no cache is configured.
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(context.Context) error { return nil }
