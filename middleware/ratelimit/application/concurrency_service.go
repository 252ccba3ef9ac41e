package application

import (
	"context"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

// ConcurrencyService limita quantas requisições ficam em voo ao mesmo tempo,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
	// Observe recebe o tempo de espera por uma vaga e se ela foi obtida.
	Observe func(wait time.Duration, ok bool)
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera até o ctx cancelar.
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}

	start := time.Now()
	release, ok := s.acquire(ctx)
	if s.Observe != nil {
		s.Observe(time.Since(start), ok)
	}
	return release, ok
}

func (s ConcurrencyService) acquire(ctx context.Context) (func(), bool) {
	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}
	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}
