package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emirayemr/goldshop/price/domain"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// RedisQuoteCache compartilha a cotação atual entre réplicas.
// O valor é um JSON único (preço + timestamps) com PX igual ao TTL restante.
type RedisQuoteCache struct {
	rdb *redis.Client
	key string
	now func() time.Time
}

type redisQuote struct {
	USDPerGram float64   `json:"usdPerGram"`
	ObtainedAt time.Time `json:"obtainedAt"`
	Source     string    `json:"source"`
	Fallback   bool      `json:"fallback"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type RedisQuoteCacheOption func(*RedisQuoteCache)

func WithQuoteKey(key string) RedisQuoteCacheOption {
	return func(c *RedisQuoteCache) { c.key = key }
}

func WithQuoteCacheClock(fn func() time.Time) RedisQuoteCacheOption {
	return func(c *RedisQuoteCache) { c.now = fn }
}

func NewRedisQuoteCache(rdb *redis.Client, opts ...RedisQuoteCacheOption) *RedisQuoteCache {
	c := &RedisQuoteCache{rdb: rdb, key: "goldshop:goldPrice", now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisQuoteCache) Get(ctx context.Context) (domain.CachedQuote, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CachedQuote{}, false, nil
	}
	if err != nil {
		return domain.CachedQuote{}, false, errors.Wrap(err, "redis get quote")
	}

	var v redisQuote
	if err := json.Unmarshal(raw, &v); err != nil {
		return domain.CachedQuote{}, false, errors.Wrap(err, "decode cached quote")
	}
	return domain.CachedQuote{
		Quote:     domain.Quote{USDPerGram: v.USDPerGram, ObtainedAt: v.ObtainedAt, Source: v.Source},
		Fallback:  v.Fallback,
		ExpiresAt: v.ExpiresAt,
	}, true, nil
}

func (c *RedisQuoteCache) Set(ctx context.Context, q domain.CachedQuote) error {
	ttl := q.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(redisQuote{
		USDPerGram: q.Quote.USDPerGram,
		ObtainedAt: q.Quote.ObtainedAt,
		Source:     q.Quote.Source,
		Fallback:   q.Fallback,
		ExpiresAt:  q.ExpiresAt,
	})
	if err != nil {
		return errors.Wrap(err, "encode quote")
	}
	if err := c.rdb.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set quote")
	}
	return nil
}
