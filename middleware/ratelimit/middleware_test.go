package ratelimit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/infra"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
}

func doGet(h http.Handler, path, remote string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "http://example"+path, nil)
	r.RemoteAddr = remote
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestMiddleware_AllowsThenRejectsSameKey(t *testing.T) {
	store := infra.NewStore(1, time.Minute)

	calls := 0
	h := Middleware(Options{
		Store:               store,
		AddRateLimitHeaders: true,
	})(okHandler(&calls))

	w1 := doGet(h, "/api/products", "10.0.0.1:1234")
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	if got := w1.Header().Get("X-RateLimit-Key"); got != "10.0.0.1" {
		t.Fatalf("expected X-RateLimit-Key=10.0.0.1, got %q", got)
	}
	if got := w1.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Fatalf("expected X-RateLimit-Limit=1, got %q", got)
	}
	if got := w1.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected X-RateLimit-Remaining=0, got %q", got)
	}

	w2 := doGet(h, "/api/products", "10.0.0.1:1234")
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if got := w2.Header().Get("Retry-After"); got == "" {
		t.Fatalf("expected Retry-After header to be set")
	}
	if body := strings.TrimSpace(w2.Body.String()); body != "Too Many Requests" {
		t.Fatalf("expected plain text body, got %q", body)
	}
	if ct := w2.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain content type, got %q", ct)
	}

	if calls != 1 {
		t.Fatalf("expected next handler to be called once, got %d", calls)
	}
}

func TestMiddleware_FixedWindowScenario(t *testing.T) {
	clk := &testClock{t: time.Unix(1_700_000_000, 0)}
	store := infra.NewStore(120, 60000*time.Millisecond, infra.WithClock(clk.Now))
	h := Middleware(Options{Store: store, TrustXForwardedFor: true, Now: clk.Now})(okHandler(nil))

	for i := 1; i <= 120; i++ {
		if w := doGet(h, "/api/products", "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}

	clk.Advance(30 * time.Second)
	w := doGet(h, "/api/products", "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("121st request: expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After=30 (end of window), got %q", got)
	}

	clk.Advance(30*time.Second + time.Millisecond)
	if w := doGet(h, "/api/products", "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 after window elapsed, got %d", w.Code)
	}
}

func TestMiddleware_ExemptPrefixesSkipLimiter(t *testing.T) {
	store := infra.NewStore(1, time.Minute)
	stats := infra.NewMemoryStatsStore()

	h := Middleware(Options{
		Store:          store,
		Stats:          stats,
		ExemptPrefixes: []string{"/actuator", "/swagger", "/v3/api-docs"},
	})(okHandler(nil))

	for i := 0; i < 5; i++ {
		if w := doGet(h, "/actuator/health", "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("expected exempt path to pass, got %d", w.Code)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("expected no bucket created for exempt paths, got %d", store.Len())
	}

	if w := doGet(h, "/api/products", "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("expected first limited request to pass, got %d", w.Code)
	}
	if w := doGet(h, "/api/products", "10.0.0.1:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second limited request to be rejected, got %d", w.Code)
	}

	tot := stats.Total()
	if tot.Exempt != 5 || tot.Allowed != 1 || tot.Denied != 1 {
		t.Fatalf("unexpected stats: %+v", tot)
	}
}

func TestMiddleware_KeyByHeader(t *testing.T) {
	store := infra.NewStore(1, time.Minute)

	h := Middleware(Options{
		Store:     store,
		KeyHeader: "X-Api-Key",
	})(okHandler(nil))

	// duas chaves diferentes => ambas passam (cada chave tem seu próprio bucket)
	for _, k := range []string{"k1", "k2"} {
		r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
		r.Header.Set("X-Api-Key", k)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for key %s, got %d", k, w.Code)
		}
	}
}

func TestMiddleware_RetryAfterFallsBackToConfigured(t *testing.T) {
	h := Middleware(Options{
		Store:      noWindowStore{},
		RetryAfter: 2500 * time.Millisecond,
	})(okHandler(nil))

	w := doGet(h, "/", "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "3" {
		// 2.5s arredonda para cima
		t.Fatalf("expected Retry-After=3, got %q", got)
	}
}
