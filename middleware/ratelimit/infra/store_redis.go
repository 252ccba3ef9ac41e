package infra

import (
	"context"
	"strings"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// windowScript incrementa o contador e, no primeiro hit da janela, define a
// expiração. Retorna {count, pttl}. A janela começa no primeiro request, igual
// ao Store em memória.
var windowScript = redis.NewScript(`
local c = redis.call('INCR', KEYS[1])
if c == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {c, ttl}
`)

// RedisStore conta janelas fixas no Redis, para que várias réplicas
// compartilhem o mesmo limite por cliente.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

type RedisStoreOption func(*RedisStore)

func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithRedisClock(fn func() time.Time) RedisStoreOption {
	return func(s *RedisStore) { s.now = fn }
}

func NewRedisStore(rdb *redis.Client, limit int, window time.Duration, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit:window",
		limit:  limit,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Limit() int            { return s.limit }
func (s *RedisStore) Window() time.Duration { return s.window }

// Get implementa domain.LimiterStore.
func (s *RedisStore) Get(key domain.Key) domain.Limiter {
	return redisLimiter{s: s, key: s.prefix + ":" + string(key)}
}

type redisLimiter struct {
	s   *RedisStore
	key string
}

func (l redisLimiter) Take(ctx context.Context) (domain.Usage, error) {
	res, err := windowScript.Run(ctx, l.s.rdb, []string{l.key}, l.s.window.Milliseconds()).Int64Slice()
	if err != nil {
		return domain.Usage{}, err
	}
	if len(res) != 2 {
		return domain.Usage{}, redis.Nil
	}
	return domain.Usage{
		Count:   int(res[0]),
		Limit:   l.s.limit,
		ResetAt: l.s.now().Add(time.Duration(res[1]) * time.Millisecond),
	}, nil
}
