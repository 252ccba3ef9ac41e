package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do rate limit.
//
// Method/Path são strings genéricas; cuidado com cardinalidade ao persistir
// Key/Path (Redis/Prometheus).
type StatsEvent struct {
	Key     Key
	Allowed bool
	// Exempt marca requisições que nem passaram pelo limiter (prefixos isentos).
	Exempt bool

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit.
//
// O middleware trata erro como best-effort (não derruba a requisição).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// StatsTotals é o acumulado de decisões exposto no endpoint de diagnóstico.
type StatsTotals struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
	Exempt  int64 `json:"exempt"`
}

// StatsReader é implementado pelos stores que conseguem devolver o total.
type StatsReader interface {
	Totals(ctx context.Context) (StatsTotals, error)
}
