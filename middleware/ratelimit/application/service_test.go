package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

type fakeLimiter struct {
	usage domain.Usage
	err   error
}

func (f fakeLimiter) Take(context.Context) (domain.Usage, error) { return f.usage, f.err }

type fakeStore struct {
	lim domain.Limiter
}

func (s fakeStore) Get(domain.Key) domain.Limiter { return s.lim }

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestService_Decide_AllowsWhenNoStore(t *testing.T) {
	svc := Service{}
	dec := svc.Decide(context.Background(), "k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_AllowsUnderLimit(t *testing.T) {
	svc := Service{Store: fakeStore{lim: fakeLimiter{usage: domain.Usage{Count: 3, Limit: 5}}}}
	dec := svc.Decide(context.Background(), "k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.Remaining != 2 {
		t.Fatalf("expected Remaining=2, got %d", dec.Remaining)
	}
}

func TestService_Decide_AllowsAtExactLimit(t *testing.T) {
	svc := Service{Store: fakeStore{lim: fakeLimiter{usage: domain.Usage{Count: 5, Limit: 5}}}}
	dec := svc.Decide(context.Background(), "k")
	if !dec.Allowed {
		t.Fatalf("expected the limit-th request to be allowed")
	}
	if dec.Remaining != 0 {
		t.Fatalf("expected Remaining=0, got %d", dec.Remaining)
	}
}

func TestService_Decide_RetryAfterUntilWindowEnd(t *testing.T) {
	now := time.Unix(1_000, 0)
	svc := Service{
		Store: fakeStore{lim: fakeLimiter{usage: domain.Usage{Count: 6, Limit: 5, ResetAt: now.Add(12300 * time.Millisecond)}}},
		Now:   fixedNow(now),
	}
	dec := svc.Decide(context.Background(), "k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 13*time.Second {
		t.Fatalf("expected RetryAfter=13s (rounded up), got %s", dec.RetryAfter)
	}
}

func TestService_Decide_BlocksWithRetryAfterDefault(t *testing.T) {
	svc := Service{Store: fakeStore{lim: fakeLimiter{usage: domain.Usage{Count: 2, Limit: 1}}}}
	dec := svc.Decide(context.Background(), "k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 1*time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_BlocksWithConfiguredRetryAfter(t *testing.T) {
	svc := Service{Store: fakeStore{lim: fakeLimiter{usage: domain.Usage{Count: 2, Limit: 1}}}, RetryAfter: 60 * time.Second}
	dec := svc.Decide(context.Background(), "k")
	if dec.RetryAfter != 60*time.Second {
		t.Fatalf("expected RetryAfter=60s, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_FailsOpenOnStoreError(t *testing.T) {
	var seen error
	svc := Service{
		Store:        fakeStore{lim: fakeLimiter{err: errors.New("redis down")}},
		OnStoreError: func(err error) { seen = err },
	}
	dec := svc.Decide(context.Background(), "k")
	if !dec.Allowed {
		t.Fatalf("expected allowed when store fails")
	}
	if seen == nil {
		t.Fatalf("expected store error to be reported")
	}
}
