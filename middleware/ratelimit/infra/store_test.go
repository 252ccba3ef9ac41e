package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func take(t *testing.T, s *Store, key string) domain.Usage {
	t.Helper()
	u, err := s.Get(domain.Key(key)).Take(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return u
}

func TestStore_AdmitsLimitThenRejects(t *testing.T) {
	clk := newFakeClock()
	s := NewStore(120, 60*time.Second, WithClock(clk.Now))

	for i := 1; i <= 120; i++ {
		if u := take(t, s, "10.0.0.1"); u.Exceeded() {
			t.Fatalf("request %d should be admitted, got count=%d", i, u.Count)
		}
		clk.Advance(100 * time.Millisecond)
	}
	if u := take(t, s, "10.0.0.1"); !u.Exceeded() {
		t.Fatalf("121st request in the same window should be rejected, got count=%d", u.Count)
	}
}

func TestStore_ResetsAfterWindow(t *testing.T) {
	clk := newFakeClock()
	s := NewStore(2, time.Minute, WithClock(clk.Now))

	take(t, s, "k")
	take(t, s, "k")
	if u := take(t, s, "k"); !u.Exceeded() {
		t.Fatalf("expected third request to exceed")
	}

	// exatamente no fim da janela ainda conta na janela antiga (reset só com ">")
	clk.Advance(time.Minute)
	if u := take(t, s, "k"); !u.Exceeded() {
		t.Fatalf("expected request at exact window length to still be rejected")
	}

	clk.Advance(time.Millisecond)
	u := take(t, s, "k")
	if u.Exceeded() || u.Count != 1 {
		t.Fatalf("expected fresh window with count=1, got %+v", u)
	}
}

// Janela fixa: uma rajada no fim de uma janela seguida de outra no início da
// próxima admite até 2x o limite em pouco tempo. Comportamento esperado.
func TestStore_BoundaryBurstAdmitsTwiceLimit(t *testing.T) {
	clk := newFakeClock()
	s := NewStore(5, time.Second, WithClock(clk.Now))

	take(t, s, "k") // abre a janela
	clk.Advance(990 * time.Millisecond)

	admitted := 0
	for i := 0; i < 4; i++ {
		if !take(t, s, "k").Exceeded() {
			admitted++
		}
	}
	clk.Advance(20 * time.Millisecond)
	for i := 0; i < 10; i++ {
		if !take(t, s, "k").Exceeded() {
			admitted++
		}
	}
	// 4 no fim da primeira janela + 5 na nova, em ~20ms; somando o primeiro, 10 = 2x limite
	if admitted+1 != 10 {
		t.Fatalf("expected 2x limit admitted across the boundary, got %d", admitted+1)
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	s := NewStore(1, time.Minute)

	if take(t, s, "a").Exceeded() {
		t.Fatalf("expected first request of a to pass")
	}
	if take(t, s, "b").Exceeded() {
		t.Fatalf("expected first request of b to pass")
	}
	if !take(t, s, "a").Exceeded() {
		t.Fatalf("expected second request of a to be rejected")
	}
}

func TestStore_ResetAtIsWindowEnd(t *testing.T) {
	clk := newFakeClock()
	start := clk.Now()
	s := NewStore(10, 30*time.Second, WithClock(clk.Now))

	take(t, s, "k")
	clk.Advance(5 * time.Second)
	u := take(t, s, "k")
	if !u.ResetAt.Equal(start.Add(30 * time.Second)) {
		t.Fatalf("expected ResetAt=%s, got %s", start.Add(30*time.Second), u.ResetAt)
	}
}

func TestStore_ConcurrentTakesCountEveryRequest(t *testing.T) {
	s := NewStore(1000, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = s.Get("shared").Take(context.Background())
			}
		}()
	}
	wg.Wait()

	if u := take(t, s, "shared"); u.Count != 501 {
		t.Fatalf("expected count=501 after 500 concurrent takes, got %d", u.Count)
	}
	if s.Len() != 1 {
		t.Fatalf("expected a single bucket, got %d", s.Len())
	}
}

func TestStore_CleanupRemovesIdleEntries(t *testing.T) {
	clk := newFakeClock()
	s := NewStore(10, time.Second, WithIdleTTL(time.Minute), WithCleanupEvery(0), WithClock(clk.Now))

	take(t, s, "old")
	clk.Advance(30 * time.Second)
	take(t, s, "recent")

	clk.Advance(32 * time.Second)
	if n := s.Cleanup(); n != 1 {
		t.Fatalf("expected 1 bucket removed, got %d", n)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 bucket left, got %d", s.Len())
	}

	// a chave removida volta do zero
	if u := take(t, s, "old"); u.Count != 1 {
		t.Fatalf("expected recreated bucket with count=1, got %d", u.Count)
	}
}

func TestStore_StartJanitorStopsWithContext(t *testing.T) {
	s := NewStore(1, time.Millisecond, WithIdleTTL(time.Millisecond), WithCleanupEvery(2*time.Millisecond))
	take(t, s, "k")

	ctx, cancel := context.WithCancel(context.Background())
	s.StartJanitor(ctx)
	defer cancel()

	deadline := time.Now().Add(time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected janitor to evict idle bucket")
		}
		time.Sleep(2 * time.Millisecond)
	}
}
