package infra

import (
	"context"
	"sync"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

type Counters struct {
	Allowed int64
	Denied  int64
	Exempt  int64
}

func (c *Counters) add(ev domain.StatsEvent) {
	switch decisionField(ev) {
	case fieldExempt:
		c.Exempt++
	case fieldAllowed:
		c.Allowed++
	default:
		c.Denied++
	}
}

const (
	fieldAllowed = "allowed"
	fieldDenied  = "denied"
	fieldExempt  = "exempt"
)

// decisionField classifica o evento; isenção tem precedência sobre allowed.
func decisionField(ev domain.StatsEvent) string {
	switch {
	case ev.Exempt:
		return fieldExempt
	case ev.Allowed:
		return fieldAllowed
	default:
		return fieldDenied
	}
}

// MemoryStatsStore guarda contadores em memória.
// Útil para testes, desenvolvimento e para o endpoint de diagnóstico.
//
// Não faz expiração; byKey só é preenchido com WithTrackKeys(true).
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   Counters
	byRoute map[string]Counters
	byKey   map[string]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]Counters),
		byKey:   make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev)

	c := s.byRoute[route]
	c.add(ev)
	s.byRoute[route] = c

	if s.trackKeys && !ev.Exempt {
		k := s.byKey[string(ev.Key)]
		k.add(ev)
		s.byKey[string(ev.Key)] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}

// MultiStatsStore repassa o evento para vários stores; o primeiro erro é devolvido
// mas todos recebem o evento.
type MultiStatsStore []domain.StatsStore

func (m MultiStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Totals implementa domain.StatsReader.
func (s *MemoryStatsStore) Totals(context.Context) (domain.StatsTotals, error) {
	t := s.Total()
	return domain.StatsTotals{Allowed: t.Allowed, Denied: t.Denied, Exempt: t.Exempt}, nil
}
