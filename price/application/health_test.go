package application

import (
	"context"
	"testing"
	"time"

	"github.com/emirayemr/goldshop/price/domain"
)

type staticTelemetry domain.Telemetry

func (s staticTelemetry) Telemetry() domain.Telemetry { return domain.Telemetry(s) }

func TestHealthReporter_FreshnessBoundary(t *testing.T) {
	last := time.Unix(1_700_000_000, 0)
	price := 80.0
	src := staticTelemetry{LastSuccessAt: &last, LastUSDPerGram: &price}

	cases := []struct {
		age  time.Duration
		want string
	}{
		{0, StatusUp},
		{29 * time.Minute, StatusUp},
		{30 * time.Minute, StatusUp},
		{30*time.Minute + time.Second, StatusDegraded},
		{5 * time.Hour, StatusDegraded},
	}
	for _, c := range cases {
		now := last.Add(c.age)
		h := HealthReporter{Source: src, Now: func() time.Time { return now }}.Report()
		if h.Status != c.want {
			t.Fatalf("age %s: status=%q, want %q", c.age, h.Status, c.want)
		}
	}
}

func TestHealthReporter_NoSuccessIsDegradedNeverDown(t *testing.T) {
	msg := "Transport: connection refused"
	h := HealthReporter{Source: staticTelemetry{LastError: &msg}}.Report()

	if h.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %q", h.Status)
	}
	if h.Details.LastError == nil || *h.Details.LastError != msg {
		t.Fatalf("expected last error in details, got %v", h.Details.LastError)
	}
	if h.Details.LastSuccessAt != nil || h.Details.LastUSDPerGram != nil {
		t.Fatalf("expected empty success details")
	}
}

func TestHealthReporter_ReadsFetcherTelemetry(t *testing.T) {
	clk := newClock()
	f := newTestFetcher(&scriptedProvider{steps: []step{{price: 80}}}, clk)
	r := HealthReporter{Source: f, Now: clk.Now}

	if got := r.Report().Status; got != StatusDegraded {
		t.Fatalf("expected degraded before first fetch, got %q", got)
	}
	f.CurrentPricePerGram(context.Background())
	h := r.Report()
	if h.Status != StatusUp || h.Details.LastUSDPerGram == nil || *h.Details.LastUSDPerGram != 80 {
		t.Fatalf("unexpected health %+v", h)
	}
}
