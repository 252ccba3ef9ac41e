package infra

import (
	"context"
	"time"

	"github.com/emirayemr/goldshop/price/domain"

	"github.com/go-faster/errors"
	"golang.org/x/time/rate"
)

// ThrottledProvider garante um intervalo mínimo entre chamadas ao upstream.
// Se a espera não cabe no prazo do ctx, falha na hora sem chamar o upstream.
type ThrottledProvider struct {
	next domain.Provider
	lim  *rate.Limiter
}

// NewThrottledProvider embrulha p; interval <= 0 devolve p sem alteração.
func NewThrottledProvider(p domain.Provider, interval time.Duration) domain.Provider {
	if interval <= 0 {
		return p
	}
	return &ThrottledProvider{
		next: p,
		lim:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (t *ThrottledProvider) Name() string { return t.next.Name() }

func (t *ThrottledProvider) Fetch(ctx context.Context) (domain.Quote, error) {
	if err := t.lim.Wait(ctx); err != nil {
		// Wait falha antes do prazo quando a espera não caberia nele
		if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
			return domain.Quote{}, errors.Wrapf(context.DeadlineExceeded, "%s throttled: %v", t.next.Name(), err)
		}
		return domain.Quote{}, errors.Wrapf(err, "%s throttled", t.next.Name())
	}
	return t.next.Fetch(ctx)
}
