package infra

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// Granularidades da série temporal de decisões.
const (
	BucketMinute = "minute"
	BucketHour   = "hour"
	BucketNone   = "none"
)

// RedisStatsStore guarda as decisões do limiter em hashes, compartilhados
// entre réplicas. Layout, com prefix = ratelimit:stats:
//
//	<prefix>:total                  allowed|denied|exempt (não expira)
//	<prefix>:minute:200601021504    idem, por janela de tempo (expira em ttl)
//	<prefix>:route                  "GET /api/products:denied" -> n
//	<prefix>:key:<cliente>          allowed|denied (só com trackKeys, expira em ttl)
type RedisStatsStore struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	bucket    string
	trackKeys bool
	now       func() time.Time
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

// WithStatsTTL define a expiração das séries e dos contadores por cliente.
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket aceita minute, hour ou none; valor desconhecido vira minute.
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		switch b := strings.ToLower(strings.TrimSpace(bucket)); b {
		case BucketHour, BucketNone:
			s.bucket = b
		default:
			s.bucket = BucketMinute
		}
	}
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func WithStatsClock(fn func() time.Time) RedisStatsOption {
	return func(s *RedisStatsStore) { s.now = fn }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: BucketMinute,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) totalKey() string { return s.prefix + ":total" }
func (s *RedisStatsStore) routeKey() string { return s.prefix + ":route" }

func (s *RedisStatsStore) clientKey(k domain.Key) string {
	return s.prefix + ":key:" + string(k)
}

// seriesKey devolve a chave da janela que contém at; vazio se bucket=none.
func (s *RedisStatsStore) seriesKey(at time.Time) string {
	switch s.bucket {
	case BucketHour:
		return s.prefix + ":hour:" + at.UTC().Format("2006010215")
	case BucketMinute:
		return s.prefix + ":minute:" + at.UTC().Format("200601021504")
	default:
		return ""
	}
}

// Record grava o evento num único pipeline.
func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = s.now()
	}
	field := decisionField(ev)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.totalKey(), field, 1)
	s.incrExpiring(ctx, pipe, s.seriesKey(at), field)

	if route := strings.TrimSpace(ev.Method + " " + ev.Path); route != "" {
		pipe.HIncrBy(ctx, s.routeKey(), route+":"+field, 1)
	}
	// isentos não têm chave de cliente
	if s.trackKeys && !ev.Exempt && strings.TrimSpace(string(ev.Key)) != "" {
		s.incrExpiring(ctx, pipe, s.clientKey(ev.Key), field)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) incrExpiring(ctx context.Context, pipe redis.Pipeliner, key, field string) {
	if key == "" {
		return
	}
	pipe.HIncrBy(ctx, key, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

// Totals implementa domain.StatsReader.
func (s *RedisStatsStore) Totals(ctx context.Context) (domain.StatsTotals, error) {
	if s == nil || s.rdb == nil {
		return domain.StatsTotals{}, nil
	}
	return s.readTotals(ctx, s.totalKey())
}

// Series devolve os contadores da janela que contém at.
func (s *RedisStatsStore) Series(ctx context.Context, at time.Time) (domain.StatsTotals, error) {
	key := s.seriesKey(at)
	if key == "" {
		return domain.StatsTotals{}, nil
	}
	return s.readTotals(ctx, key)
}

// Client devolve os contadores de uma chave de cliente (requer trackKeys).
func (s *RedisStatsStore) Client(ctx context.Context, k domain.Key) (domain.StatsTotals, error) {
	return s.readTotals(ctx, s.clientKey(k))
}

func (s *RedisStatsStore) readTotals(ctx context.Context, key string) (domain.StatsTotals, error) {
	vals, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.StatsTotals{}, err
	}
	return domain.StatsTotals{
		Allowed: parseCounter(vals[fieldAllowed]),
		Denied:  parseCounter(vals[fieldDenied]),
		Exempt:  parseCounter(vals[fieldExempt]),
	}, nil
}

func parseCounter(v string) int64 {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
