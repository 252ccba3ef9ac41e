// Package metrics concentra os coletores Prometheus do goldshop e os
// adaptadores que ligam price e ratelimit a eles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldshop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goldshop_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Preço do ouro
	PriceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldshop_price_fetches_total",
			Help: "Upstream gold price fetches by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	PriceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goldshop_price_fetch_duration_seconds",
			Help:    "Upstream gold price fetch duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 3, 5},
		},
		[]string{"provider"},
	)

	PriceCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldshop_price_cache_lookups_total",
			Help: "Gold price cache lookups by result",
		},
		[]string{"result"},
	)

	PriceUSDPerGram = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goldshop_price_usd_per_gram",
			Help: "Gold price currently served, in USD per gram",
		},
	)

	PriceFallbackServed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goldshop_price_fallback_served",
			Help: "1 when the price currently served is the static fallback",
		},
	)

	PriceLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goldshop_price_last_success_timestamp_seconds",
			Help: "Unix time of the last successful upstream fetch",
		},
	)

	PriceQuotesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldshop_price_quotes_published_total",
			Help: "Quote-updated events published to NATS",
		},
		[]string{"subject", "status"},
	)

	// Rate limit
	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goldshop_ratelimit_decisions_total",
			Help: "Rate limit decisions (allowed, denied, exempt)",
		},
		[]string{"decision"},
	)

	RateLimitStoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goldshop_ratelimit_store_errors_total",
			Help: "Rate limit store failures (requests were admitted)",
		},
	)

	ConcurrencyWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goldshop_concurrency_wait_seconds",
			Help:    "Time spent waiting for an in-flight slot",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"acquired"},
	)

	// Aplicação
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "goldshop_application_info",
			Help: "Application information",
		},
		[]string{"version", "provider"},
	)
)

// Init publica as informações estáticas da aplicação.
func Init(version, provider string) {
	ApplicationInfo.WithLabelValues(version, provider).Set(1)
}
