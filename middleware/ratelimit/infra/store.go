package infra

import (
	"context"
	"sync"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

// Store é a implementação em memória de janela fixa por chave.
//
// Cada chave tem seu próprio bucket com lock próprio; o mapa é um sync.Map,
// então clientes diferentes não disputam o mesmo mutex. Buckets parados há
// mais de idleTTL após o fim da janela são removidos pelo janitor.
type Store struct {
	buckets      sync.Map // string -> *windowBucket
	limit        int
	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type windowBucket struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
	// dead marca bucket removido pelo janitor; quem pegou o ponteiro antes
	// da remoção precisa buscar de novo.
	dead bool
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithClock troca o relógio (testes).
func WithClock(fn func() time.Time) StoreOption {
	return func(s *Store) { s.now = fn }
}

func NewStore(limit int, window time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		limit:        limit,
		window:       window,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Limit() int                  { return s.limit }
func (s *Store) Window() time.Duration       { return s.window }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	return storeLimiter{s: s, key: string(key)}
}

type storeLimiter struct {
	s   *Store
	key string
}

func (l storeLimiter) Take(context.Context) (domain.Usage, error) {
	return l.s.take(l.key), nil
}

func (s *Store) take(key string) domain.Usage {
	for {
		b := s.bucket(key)
		now := s.now()

		b.mu.Lock()
		if b.dead {
			b.mu.Unlock()
			continue
		}
		// janela fixa: só reinicia depois que a janela inteira passou
		if now.Sub(b.windowStart) > s.window {
			b.windowStart = now
			b.count = 0
		}
		b.count++
		u := domain.Usage{
			Count:   b.count,
			Limit:   s.limit,
			ResetAt: b.windowStart.Add(s.window),
		}
		b.mu.Unlock()
		return u
	}
}

func (s *Store) bucket(key string) *windowBucket {
	if v, ok := s.buckets.Load(key); ok {
		return v.(*windowBucket)
	}
	v, _ := s.buckets.LoadOrStore(key, &windowBucket{windowStart: s.now()})
	return v.(*windowBucket)
}

// Len devolve quantos buckets estão vivos.
func (s *Store) Len() int {
	n := 0
	s.buckets.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Cleanup remove buckets cuja janela terminou há mais de idleTTL.
// Retorna quantos foram removidos.
func (s *Store) Cleanup() int {
	now := s.now()
	removed := 0

	s.buckets.Range(func(k, v any) bool {
		b := v.(*windowBucket)
		b.mu.Lock()
		if now.Sub(b.windowStart) > s.window+s.idleTTL {
			b.dead = true
			s.buckets.CompareAndDelete(k, b)
			removed++
		}
		b.mu.Unlock()
		return true
	})
	return removed
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context no janitor.
type DoneContext interface {
	Done() <-chan struct{}
}
