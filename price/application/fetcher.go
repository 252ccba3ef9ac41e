package application

import (
	"context"
	"log/slog"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirayemr/goldshop/price/domain"

	"github.com/go-faster/errors"
	"golang.org/x/sync/singleflight"
)

const (
	cacheName = "goldPrice"

	OutcomeSuccess = "success"
)

// Categorias de falha usadas no diagnóstico e nas métricas.
const (
	CategoryMissingAPIKey    = "MissingAPIKey"
	CategoryUpstreamStatus   = "UpstreamStatus"
	CategoryMalformedPayload = "MalformedPayload"
	CategoryNoUsablePrice    = "NoUsablePrice"
	CategoryTimeout          = "Timeout"
	CategoryTransport        = "Transport"
)

// Observer recebe eventos do Fetcher (métricas). Todos os métodos podem ser
// chamados concorrentemente.
type Observer interface {
	CacheLookup(hit bool)
	FetchDone(provider, outcome string, took time.Duration)
	PriceServed(usdPerGram float64, fallback bool)
	SuccessRecorded(at time.Time)
}

// Fetcher é dono da cotação atual e da telemetria de busca.
//
// CurrentPricePerGram nunca falha: qualquer erro do upstream é contido aqui,
// registrado na telemetria, e o preço de fallback é devolvido.
type Fetcher struct {
	provider   domain.Provider
	fallback   float64
	ttl        time.Duration
	failureTTL time.Duration
	timeout    time.Duration
	cache      domain.QuoteCache
	publisher  domain.QuotePublisher
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time

	// last é a cópia local da última entrada gravada; segura o TTL quando o
	// cache compartilhado falha.
	last  atomic.Pointer[domain.CachedQuote]
	group singleflight.Group

	mu  sync.RWMutex
	tel domain.Telemetry
}

type FetcherOption func(*Fetcher)

// WithTTL define por quanto tempo um preço obtido com sucesso é servido do cache.
func WithTTL(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.ttl = d }
}

// WithFailureTTL define por quanto tempo o fallback fica em cache depois de uma falha.
// 0 faz toda requisição após uma falha tentar o upstream de novo.
func WithFailureTTL(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.failureTTL = d }
}

// WithTimeout é o prazo total de uma busca no upstream.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.timeout = d }
}

// WithCache define o cache compartilhado (ex: Redis). Sem ele, só a cópia
// local do Fetcher é usada.
func WithCache(c domain.QuoteCache) FetcherOption {
	return func(f *Fetcher) { f.cache = c }
}

func WithPublisher(p domain.QuotePublisher) FetcherOption {
	return func(f *Fetcher) { f.publisher = p }
}

func WithObserver(o Observer) FetcherOption {
	return func(f *Fetcher) { f.observer = o }
}

func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

func WithClock(fn func() time.Time) FetcherOption {
	return func(f *Fetcher) { f.now = fn }
}

// NewFetcher cria o Fetcher para o provedor já resolvido. fallback precisa ser > 0.
func NewFetcher(p domain.Provider, fallback float64, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		provider:   p,
		fallback:   fallback,
		ttl:        10 * time.Minute,
		failureTTL: 30 * time.Second,
		timeout:    3 * time.Second,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProviderName devolve o nome do provedor em uso.
func (f *Fetcher) ProviderName() string {
	if f.provider == nil {
		return "static"
	}
	return f.provider.Name()
}

// CurrentPricePerGram devolve o preço em USD/grama; sempre um número positivo.
func (f *Fetcher) CurrentPricePerGram(ctx context.Context) float64 {
	return f.Current(ctx).USDPerGram
}

// Current devolve a cotação atual, do cache ou de uma busca nova.
// Chamadas concorrentes com cache frio compartilham uma única busca.
func (f *Fetcher) Current(ctx context.Context) domain.Quote {
	if q, ok := f.cached(ctx); ok {
		return q
	}

	v, _, _ := f.group.Do(cacheName, func() (any, error) {
		// quem chegou primeiro pode ser cancelado; a busca é de todos
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		return f.refresh(fctx), nil
	})
	return v.(domain.Quote)
}

// Telemetry devolve uma cópia da telemetria atual.
func (f *Fetcher) Telemetry() domain.Telemetry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tel
}

// IsFresh informa se houve sucesso há no máximo maxAge.
func (f *Fetcher) IsFresh(maxAge time.Duration) bool {
	return f.Telemetry().FreshWithin(f.now(), maxAge)
}

func (f *Fetcher) cached(ctx context.Context) (domain.Quote, bool) {
	e, hit := f.lookup(ctx)
	if f.observer != nil {
		f.observer.CacheLookup(hit)
	}
	if !hit {
		return domain.Quote{}, false
	}
	f.served(e.Quote.USDPerGram, e.Fallback)
	return e.Quote, true
}

// lookup consulta o cache compartilhado e, se ele falhar ou não tiver entrada
// válida, a cópia local.
func (f *Fetcher) lookup(ctx context.Context) (domain.CachedQuote, bool) {
	now := f.now()
	if f.cache != nil {
		e, ok, err := f.cache.Get(ctx)
		if err != nil {
			f.logger.WarnContext(ctx, "price cache read failed", "error", err)
		} else if ok && e.Valid(now) {
			return e, true
		}
	}
	if e := f.last.Load(); e != nil && e.Valid(now) {
		return *e, true
	}
	return domain.CachedQuote{}, false
}

func (f *Fetcher) refresh(ctx context.Context) domain.Quote {
	// outra busca pode ter acabado de preencher o cache
	if e, ok := f.lookup(ctx); ok {
		f.served(e.Quote.USDPerGram, e.Fallback)
		return e.Quote
	}

	name := f.ProviderName()
	start := f.now()

	var (
		q   domain.Quote
		err error
	)
	if f.provider == nil {
		q = domain.Quote{USDPerGram: f.fallback, ObtainedAt: start, Source: name}
	} else {
		q, err = f.provider.Fetch(ctx)
	}
	if err == nil && !usable(q.USDPerGram) {
		err = domain.ErrNoUsablePrice
	}

	if err != nil {
		category := Categorize(err)
		f.observeFetch(name, category, start)
		return f.fail(ctx, name, category, err)
	}

	f.observeFetch(name, OutcomeSuccess, start)
	return f.succeed(ctx, q)
}

func (f *Fetcher) succeed(ctx context.Context, q domain.Quote) domain.Quote {
	now := f.now()
	if q.ObtainedAt.IsZero() {
		q.ObtainedAt = now
	}

	price := q.USDPerGram
	f.mu.Lock()
	f.tel.LastSuccessAt = &now
	f.tel.LastUSDPerGram = &price
	f.tel.LastError = nil
	f.tel.LastAttemptAt = &now
	f.mu.Unlock()

	if f.observer != nil {
		f.observer.SuccessRecorded(now)
	}

	f.store(ctx, domain.CachedQuote{Quote: q, ExpiresAt: now.Add(f.ttl)})
	f.served(price, false)

	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, q); err != nil {
			f.logger.WarnContext(ctx, "price publish failed", "provider", q.Source, "error", err)
		}
	}
	return q
}

func (f *Fetcher) fail(ctx context.Context, provider, category string, err error) domain.Quote {
	now := f.now()
	msg := category + ": " + err.Error()

	f.mu.Lock()
	f.tel.LastError = &msg
	f.tel.LastAttemptAt = &now
	f.mu.Unlock()

	f.logger.WarnContext(ctx, "gold price fetch failed, using fallback",
		"provider", provider, "category", category, "error", err, "fallback", f.fallback)

	q := domain.Quote{USDPerGram: f.fallback, ObtainedAt: now, Source: "fallback"}
	if f.failureTTL > 0 {
		f.store(ctx, domain.CachedQuote{Quote: q, Fallback: true, ExpiresAt: now.Add(f.failureTTL)})
	}
	f.served(q.USDPerGram, true)
	return q
}

func (f *Fetcher) store(ctx context.Context, e domain.CachedQuote) {
	f.last.Store(&e)
	if f.cache == nil {
		return
	}
	if err := f.cache.Set(ctx, e); err != nil {
		f.logger.WarnContext(ctx, "price cache write failed", "error", err)
	}
}

func (f *Fetcher) served(price float64, fallback bool) {
	if f.observer != nil {
		f.observer.PriceServed(price, fallback)
	}
}

func (f *Fetcher) observeFetch(provider, outcome string, start time.Time) {
	if f.observer != nil {
		f.observer.FetchDone(provider, outcome, f.now().Sub(start))
	}
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Categorize classifica o erro de busca para diagnóstico.
func Categorize(err error) string {
	var statusErr *domain.UpstreamStatusError
	var netErr net.Error
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return CategoryMissingAPIKey
	case errors.As(err, &statusErr):
		return CategoryUpstreamStatus
	case errors.Is(err, domain.ErrMalformedPayload):
		return CategoryMalformedPayload
	case errors.Is(err, domain.ErrNoUsablePrice):
		return CategoryNoUsablePrice
	case errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return CategoryTimeout
	default:
		return CategoryTransport
	}
}
