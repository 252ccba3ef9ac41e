package httpapi

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"

	catalog "github.com/emirayemr/goldshop/catalog/domain"
	ratelimit "github.com/emirayemr/goldshop/middleware/ratelimit/domain"
	price "github.com/emirayemr/goldshop/price/application"
)

// ProductLister é o pipeline do catálogo.
type ProductLister interface {
	List(ctx context.Context, q catalog.Query) (catalog.Page, error)
}

// HealthReporter devolve o health do preço do ouro.
type HealthReporter interface {
	Report() price.Health
}

type App struct {
	Products  ProductLister
	Health    HealthReporter
	RateStats ratelimit.StatsReader
	Logger    *slog.Logger
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	q, details := ParseQuery(r.URL.Query())
	if len(details) > 0 {
		WriteError(w, r, http.StatusBadRequest, "Validation failed", details)
		return
	}

	page, err := a.Products.List(r.Context(), q)
	if err != nil {
		a.Logger.ErrorContext(r.Context(), "list products failed",
			"error", err, "request_id", RequestIDFromContext(r.Context()))
		WriteError(w, r, http.StatusInternalServerError, "unexpected error", nil)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// healthHandler responde 200 mesmo em "degraded": o fallback ainda é servido.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Health.Report())
}

func (a *App) rateStatsHandler(w http.ResponseWriter, r *http.Request) {
	totals, err := a.RateStats.Totals(r.Context())
	if err != nil {
		a.Logger.WarnContext(r.Context(), "ratelimit stats read failed", "error", err)
		WriteError(w, r, http.StatusServiceUnavailable, "ratelimit stats unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// ParseQuery lê os parâmetros da listagem, aplica defaults e valida.
// Devolve um detalhe por campo inválido.
func ParseQuery(v url.Values) (catalog.Query, []string) {
	q := catalog.DefaultQuery()
	var details []string

	number := func(name string) *float64 {
		raw := v.Get(name)
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			details = append(details, name+": must be a number")
			return nil
		}
		return &f
	}
	integer := func(name string, def int) int {
		raw := v.Get(name)
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			details = append(details, name+": must be an integer")
			return def
		}
		return n
	}

	q.MinPrice = number("minPrice")
	q.MaxPrice = number("maxPrice")
	q.MinPopularity = number("minPopularity")
	if s := v.Get("sortBy"); s != "" {
		q.SortBy = catalog.SortBy(s)
	}
	if d := v.Get("dir"); d != "" {
		q.Dir = catalog.Direction(d)
	}
	q.Page = integer("page", q.Page)
	q.Size = integer("size", q.Size)

	for _, fe := range q.Validate() {
		details = append(details, fe.String())
	}
	return q, details
}
