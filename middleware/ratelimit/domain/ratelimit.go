package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"time"
)

type Key string

// Usage é o retrato de uma janela fixa logo após contabilizar uma requisição.
type Usage struct {
	Count   int
	Limit   int
	ResetAt time.Time
}

// Exceeded indica que a requisição que gerou este Usage deve ser rejeitada.
func (u Usage) Exceeded() bool { return u.Count > u.Limit }

// Remaining devolve quantas requisições ainda cabem na janela atual (nunca negativo).
func (u Usage) Remaining() int {
	if u.Count >= u.Limit {
		return 0
	}
	return u.Limit - u.Count
}

// Limiter contabiliza uma requisição para uma chave.
//
// A implementação em memória usa janela fixa com lock por bucket; a de Redis
// usa INCR + PEXPIRE. Ambas precisam manter a semântica de janela fixa:
// o contador zera quando a janela termina, e uma rajada na fronteira pode
// admitir até 2x o limite em pouco tempo.
type Limiter interface {
	Take(ctx context.Context) (Usage, error)
}

// LimiterStore obtém um limiter por chave (ex: IP, API key, usuário).
// A implementação pode manter cache, TTL, etc.
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	Limit   int
	// Remaining só é significativo quando Limit > 0.
	Remaining int
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
