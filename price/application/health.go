package application

import (
	"time"

	"github.com/emirayemr/goldshop/price/domain"
)

const (
	StatusUp       = "up"
	StatusDegraded = "degraded"

	// DefaultFreshness é a idade máxima do último sucesso para o status "up".
	DefaultFreshness = 30 * time.Minute
)

// TelemetrySource é o que o HealthReporter precisa do Fetcher.
type TelemetrySource interface {
	Telemetry() domain.Telemetry
}

// Health é o resultado do health check do preço do ouro.
// Nunca é "down": o fallback continua sendo um preço utilizável.
type Health struct {
	Status  string        `json:"status"`
	Details HealthDetails `json:"details"`
}

type HealthDetails struct {
	LastSuccessAt  *time.Time `json:"lastSuccessAt"`
	LastUSDPerGram *float64   `json:"lastUsdPerGram"`
	LastError      *string    `json:"lastError"`
}

// HealthReporter traduz a telemetria do Fetcher em up/degraded.
type HealthReporter struct {
	Source TelemetrySource
	MaxAge time.Duration
	Now    func() time.Time
}

func (h HealthReporter) Report() Health {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	maxAge := h.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultFreshness
	}

	t := h.Source.Telemetry()
	status := StatusDegraded
	if t.FreshWithin(now(), maxAge) {
		status = StatusUp
	}
	return Health{
		Status: status,
		Details: HealthDetails{
			LastSuccessAt:  t.LastSuccessAt,
			LastUSDPerGram: t.LastUSDPerGram,
			LastError:      t.LastError,
		},
	}
}
