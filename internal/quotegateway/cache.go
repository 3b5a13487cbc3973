package quotegateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "quote:"

// RedisCache keeps priced quotes in Redis for a fixed TTL.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache returns RedisCache.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached quotes found for the symbols. Cache errors count as misses.
func (c *RedisCache) Get(ctx context.Context, symbols []string) map[string]domain.Quote {
	l := zerolog.Ctx(ctx)

	out := map[string]domain.Quote{}

	keys := make([]string, len(symbols))
	for i, s := range symbols {
		keys[i] = keyPrefix + s
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		l.Warn().Err(err).Msg("quote cache read failed")
		return out
	}

	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}

		var q domain.Quote
		if err := json.Unmarshal([]byte(s), &q); err != nil {
			continue
		}

		out[symbols[i]] = q
	}

	return out
}

// Set stores the quotes.
func (c *RedisCache) Set(ctx context.Context, quotes []domain.Quote) {
	if len(quotes) == 0 {
		return
	}

	l := zerolog.Ctx(ctx)

	pipe := c.client.Pipeline()

	for _, q := range quotes {
		b, err := json.Marshal(q)
		if err != nil {
			continue
		}

		pipe.Set(ctx, keyPrefix+q.Symbol, b, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		l.Warn().Err(err).Msg("quote cache write failed")
	}
}
