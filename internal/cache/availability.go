package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const availabilityTTL = 60 * time.Second

// AvailabilityCache keeps marshaled slot responses in Redis for a short
// window. Every failure path degrades to a cache miss; the cache never
// makes a query fail.
type AvailabilityCache struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewAvailabilityCache(rdb *redis.Client, log zerolog.Logger) *AvailabilityCache {
	return &AvailabilityCache{rdb: rdb, log: log}
}

func key(businessID, serviceID uuid.UUID, date string) string {
	return fmt.Sprintf("slots:%s:%s:%s", businessID, serviceID, date)
}

func (c *AvailabilityCache) Get(
	ctx context.Context,
	businessID, serviceID uuid.UUID,
	date string,
) (string, bool) {

	if c == nil || c.rdb == nil {
		return "", false
	}

	payload, err := c.rdb.Get(ctx, key(businessID, serviceID, date)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("availability cache read failed")
		return "", false
	}
	return payload, true
}

func (c *AvailabilityCache) Set(
	ctx context.Context,
	businessID, serviceID uuid.UUID,
	date string,
	payload string,
) {

	if c == nil || c.rdb == nil {
		return
	}

	if err := c.rdb.Set(ctx, key(businessID, serviceID, date), payload, availabilityTTL).Err(); err != nil {
		c.log.Warn().Err(err).Msg("availability cache write failed")
	}
}

// InvalidateBusiness drops every cached response for the business, across
// services and dates. Called after a booking commits or the weekly
// schedule is replaced.
func (c *AvailabilityCache) InvalidateBusiness(ctx context.Context, businessID uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}

	pattern := fmt.Sprintf("slots:%s:*", businessID)
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.log.Warn().Err(err).Msg("availability cache scan failed")
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.log.Warn().Err(err).Msg("availability cache invalidation failed")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
