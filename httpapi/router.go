package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	App *App
	// Limiters são aplicados depois de log/recover/CORS e antes das rotas
	// (rate limit, concorrência).
	Limiters       []func(http.Handler) http.Handler
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter registra as rotas e devolve o handler com a cadeia de middlewares.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	app := cfg.App
	if app.Logger == nil {
		app.Logger = logger
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(WithRequestID)
	r.Use(WithLogging(logger))
	r.Use(WithRecover(logger))
	r.Use(WithMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{"Retry-After", requestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))
	for _, mw := range cfg.Limiters {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, "no route for "+r.URL.Path, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed", nil)
	})

	r.Get("/api/products", app.listProductsHandler)
	r.Get("/products", app.listProductsHandler)

	r.Route("/actuator", func(r chi.Router) {
		r.Get("/health", app.healthHandler)
		r.Handle("/prometheus", promhttp.Handler())
		if app.RateStats != nil {
			r.Get("/ratelimit", app.rateStatsHandler)
		}
	})

	return r
}
