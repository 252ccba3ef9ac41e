package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Store domain.LimiterStore
	// RetryAfter é usado quando o store não informa o fim da janela.
	RetryAfter time.Duration
	Logger     *slog.Logger
	Now        func() time.Time
	// OnStoreError é chamado a cada falha do store (métricas).
	OnStoreError func(err error)
}

// Decide contabiliza a requisição da chave e decide allow/deny.
//
// Falha no store (ex: Redis fora) libera a requisição: o limiter protege o
// serviço, não pode derrubá-lo.
func (s Service) Decide(ctx context.Context, key domain.Key) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	lim := s.Store.Get(key)
	if lim == nil {
		return domain.Decision{Allowed: true}
	}

	u, err := lim.Take(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WarnContext(ctx, "ratelimit store failed, allowing request", "key", string(key), "error", err)
		}
		if s.OnStoreError != nil {
			s.OnStoreError(err)
		}
		return domain.Decision{Allowed: true}
	}

	dec := domain.Decision{
		Allowed:   !u.Exceeded(),
		Limit:     u.Limit,
		Remaining: u.Remaining(),
	}
	if dec.Allowed {
		return dec
	}
	dec.RetryAfter = retryAfter(u.ResetAt, s.Now(), s.RetryAfter)
	return dec
}

// retryAfter arredonda para cima em segundos inteiros, já que Retry-After não aceita fração.
func retryAfter(resetAt, now time.Time, def time.Duration) time.Duration {
	if resetAt.IsZero() {
		return def
	}
	d := resetAt.Sub(now)
	if d <= 0 {
		return time.Second
	}
	secs := (d + time.Second - 1) / time.Second
	return secs * time.Second
}
