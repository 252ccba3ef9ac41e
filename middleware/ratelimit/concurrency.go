package ratelimit

import (
	"net/http"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/application"
	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
	"github.com/emirayemr/goldshop/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
	ExemptPrefixes []string
	// Observe recebe o tempo de espera por vaga (métricas).
	Observe func(wait time.Duration, ok bool)
	// Pool permite injetar outro SlotPool; por padrão um semáforo de Max vagas.
	Pool domain.SlotPool
}

func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 && opts.Pool == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Pool == nil {
		opts.Pool = infra.NewChanPool(opts.Max)
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
		Observe:        opts.Observe,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsExempt(r.URL.Path, opts.ExemptPrefixes) {
				next.ServeHTTP(w, r)
				return
			}
			release, ok := svc.Acquire(r.Context())
			if !ok {
				if opts.AcquireTimeout > 0 {
					w.Header().Set("Retry-After", formatRetryAfter(opts.AcquireTimeout))
				}
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
