package ratelimit

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/emirayemr/goldshop/middleware/ratelimit/application"
	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

type KeyFunc func(r *http.Request) string

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	KeyHeader           string
	TrustXForwardedFor  bool
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
	// ExemptPrefixes são prefixos de path que nunca passam pelo limiter
	// (ex: /actuator, /swagger, /v3/api-docs).
	ExemptPrefixes []string
	Logger         *slog.Logger
	// Now é o relógio usado no cálculo de Retry-After (testes).
	Now func() time.Time
	// OnStoreError recebe falhas do store; a requisição segue liberada.
	OnStoreError func(err error)
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

// IsExempt informa se o path começa com algum dos prefixos isentos.
func IsExempt(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.RetryAfter == 0 {
		opts.RetryAfter = 1 * time.Second
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	svc := application.Service{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
		Logger:     opts.Logger,
		Now:        opts.Now,

		OnStoreError: opts.OnStoreError,
	}

	record := func(ctx context.Context, ev domain.StatsEvent) {
		if opts.Stats == nil {
			return
		}
		if err := opts.Stats.Record(ctx, ev); err != nil {
			opts.Logger.DebugContext(ctx, "ratelimit stats record failed", "error", err)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// isenção é checada antes de qualquer lookup de bucket
			if IsExempt(r.URL.Path, opts.ExemptPrefixes) {
				record(r.Context(), domain.StatsEvent{
					Exempt:  true,
					Allowed: true,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
				next.ServeHTTP(w, r)
				return
			}

			key := opts.KeyFn(r)
			dec := svc.Decide(r.Context(), domain.Key(key))

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				if dec.Limit > 0 {
					w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
					w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				}
			}

			record(r.Context(), domain.StatsEvent{
				Key:     domain.Key(key),
				Allowed: dec.Allowed,
				Method:  r.Method,
				Path:    r.URL.Path,
				At:      time.Now(),
			})

			if !dec.Allowed {
				opts.Logger.WarnContext(r.Context(), "ratelimit: request blocked",
					"key", key, "path", r.URL.Path, "retry_after_s", int(dec.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", formatRetryAfter(dec.RetryAfter))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
