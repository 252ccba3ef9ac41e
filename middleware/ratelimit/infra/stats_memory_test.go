package infra

import (
	"context"
	"testing"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

func TestMemoryStatsStore_CountsByOutcome(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: true, Method: "GET", Path: "/api/products"})
	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Allowed: false, Method: "GET", Path: "/api/products"})
	_ = s.Record(ctx, domain.StatsEvent{Key: "a", Exempt: true, Allowed: true, Method: "GET", Path: "/actuator/health"})

	tot, _ := s.Totals(ctx)
	if tot.Allowed != 1 || tot.Denied != 1 || tot.Exempt != 1 {
		t.Fatalf("unexpected totals: %+v", tot)
	}
	if got := s.ByRoute()["GET /api/products"]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected route counters: %+v", got)
	}
	if got := s.ByKey()["a"]; got.Exempt != 0 || got.Allowed != 1 {
		t.Fatalf("exempt events must not be tracked per key: %+v", got)
	}
}

func TestMultiStatsStore_FansOut(t *testing.T) {
	a, b := NewMemoryStatsStore(), NewMemoryStatsStore()
	m := MultiStatsStore{a, nil, b}

	if err := m.Record(context.Background(), domain.StatsEvent{Allowed: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Total().Allowed != 1 || b.Total().Allowed != 1 {
		t.Fatalf("expected both stores to receive the event")
	}
}
