package metrics

import (
	"context"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
	"github.com/emirayemr/goldshop/price/application"
	price "github.com/emirayemr/goldshop/price/domain"
)

// PriceObserver implementa application.Observer sobre os coletores globais.
type PriceObserver struct{}

var _ application.Observer = PriceObserver{}

func (PriceObserver) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	PriceCacheLookups.WithLabelValues(result).Inc()
}

func (PriceObserver) FetchDone(provider, outcome string, took time.Duration) {
	PriceFetchesTotal.WithLabelValues(provider, outcome).Inc()
	PriceFetchDuration.WithLabelValues(provider).Observe(took.Seconds())
}

func (PriceObserver) PriceServed(usdPerGram float64, fallback bool) {
	PriceUSDPerGram.Set(usdPerGram)
	if fallback {
		PriceFallbackServed.Set(1)
	} else {
		PriceFallbackServed.Set(0)
	}
}

func (PriceObserver) SuccessRecorded(at time.Time) {
	PriceLastSuccess.Set(float64(at.Unix()))
}

// RateLimitStats implementa domain.StatsStore contando decisões no Prometheus.
// Não usa key nem path como label.
type RateLimitStats struct{}

var _ domain.StatsStore = RateLimitStats{}

func (RateLimitStats) Record(_ context.Context, ev domain.StatsEvent) error {
	RateLimitDecisions.WithLabelValues(Decision(ev)).Inc()
	return nil
}

// Decision devolve o rótulo da decisão: exempt, allowed ou denied.
func Decision(ev domain.StatsEvent) string {
	switch {
	case ev.Exempt:
		return "exempt"
	case ev.Allowed:
		return "allowed"
	default:
		return "denied"
	}
}

// StoreError conta uma falha do store do rate limit.
func StoreError(error) {
	RateLimitStoreErrors.Inc()
}

// ObserveConcurrencyWait registra a espera por vaga do limitador de concorrência.
func ObserveConcurrencyWait(wait time.Duration, ok bool) {
	acquired := "false"
	if ok {
		acquired = "true"
	}
	ConcurrencyWait.WithLabelValues(acquired).Observe(wait.Seconds())
}

// CountingPublisher conta as publicações de cotação por resultado.
type CountingPublisher struct {
	Next    price.QuotePublisher
	Subject string
}

func (p CountingPublisher) Publish(ctx context.Context, q price.Quote) error {
	err := p.Next.Publish(ctx, q)
	status := "success"
	if err != nil {
		status = "error"
	}
	PriceQuotesPublished.WithLabelValues(p.Subject, status).Inc()
	return err
}
