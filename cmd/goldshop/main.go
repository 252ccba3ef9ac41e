package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/emirayemr/goldshop/catalog/application"
	cataloginfra "github.com/emirayemr/goldshop/catalog/infra"
	"github.com/emirayemr/goldshop/httpapi"
	"github.com/emirayemr/goldshop/metrics"
	"github.com/emirayemr/goldshop/middleware/ratelimit"
	rldomain "github.com/emirayemr/goldshop/middleware/ratelimit/domain"
	rlinfra "github.com/emirayemr/goldshop/middleware/ratelimit/infra"
	priceapp "github.com/emirayemr/goldshop/price/application"
	pricedomain "github.com/emirayemr/goldshop/price/domain"
	priceinfra "github.com/emirayemr/goldshop/price/infra"

	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	cfg, err := readConfig()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// preço do ouro
	provider := newProvider(cfg)
	fetcherOpts := []priceapp.FetcherOption{
		priceapp.WithTTL(cfg.priceCacheTTL),
		priceapp.WithFailureTTL(cfg.priceFailureTTL),
		priceapp.WithTimeout(cfg.httpTimeout),
		priceapp.WithObserver(metrics.PriceObserver{}),
		priceapp.WithLogger(logger),
	}
	if cfg.priceRedisAddr != "" {
		rdb, err := connectRedis(ctx, cfg.priceRedisAddr, "", 0)
		if err != nil {
			fatal(logger, "price redis ping error", err)
		}
		defer func() { _ = rdb.Close() }()
		fetcherOpts = append(fetcherOpts, priceapp.WithCache(priceinfra.NewRedisQuoteCache(rdb)))
	} else {
		fetcherOpts = append(fetcherOpts, priceapp.WithCache(priceinfra.NewMemoryQuoteCache()))
	}
	if cfg.priceNATSURL != "" {
		pub, err := priceinfra.NewNATSQuotePublisher(cfg.priceNATSURL, cfg.priceNATSSubject)
		if err != nil {
			fatal(logger, "nats connect error", err)
		}
		defer pub.Close()
		fetcherOpts = append(fetcherOpts, priceapp.WithPublisher(metrics.CountingPublisher{Next: pub, Subject: cfg.priceNATSSubject}))
	}
	fetcher := priceapp.NewFetcher(provider, cfg.priceFallback, fetcherOpts...)
	metrics.Init(version, fetcher.ProviderName())

	// catálogo, carregado já na subida para falhar cedo
	products := cataloginfra.NewFileSource(cfg.catalogPath)
	if _, err := products.Products(ctx); err != nil {
		fatal(logger, "catalog load error", err)
	}

	// rate limit
	var rateRedis *redis.Client
	if cfg.rateRedisAddr != "" {
		rateRedis, err = connectRedis(ctx, cfg.rateRedisAddr, cfg.rateRedisPassword, cfg.rateRedisDB)
		if err != nil {
			fatal(logger, "rate redis ping error", err)
		}
		defer func() { _ = rateRedis.Close() }()
	}

	var store rldomain.LimiterStore
	if rateRedis != nil {
		store = rlinfra.NewRedisStore(rateRedis, cfg.rateLimit, cfg.rateWindow)
	} else {
		mem := rlinfra.NewStore(cfg.rateLimit, cfg.rateWindow,
			rlinfra.WithIdleTTL(cfg.rateIdleTTL),
			rlinfra.WithCleanupEvery(cfg.rateCleanupEvery),
		)
		mem.StartJanitor(ctx)
		store = mem
	}

	memStats := rlinfra.NewMemoryStatsStore(rlinfra.WithTrackKeys(cfg.rateStatsTrackKeys))
	stats := rlinfra.MultiStatsStore{metrics.RateLimitStats{}, memStats}
	var statsReader rldomain.StatsReader = memStats
	if cfg.rateStatsEnabled {
		redisStats := rlinfra.NewRedisStatsStore(
			rateRedis,
			rlinfra.WithStatsPrefix(cfg.rateStatsPrefix),
			rlinfra.WithStatsTTL(cfg.rateStatsTTL),
			rlinfra.WithStatsBucket(cfg.rateStatsBucket),
			rlinfra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		)
		stats = append(stats, redisStats)
		statsReader = redisStats
	}

	var limiters []func(http.Handler) http.Handler
	if cfg.rateEnabled {
		limiters = append(limiters, ratelimit.Middleware(ratelimit.Options{
			Store:               store,
			Stats:               stats,
			KeyHeader:           cfg.rateKeyHeader,
			TrustXForwardedFor:  cfg.trustXFF,
			RejectStatus:        http.StatusTooManyRequests,
			RetryAfter:          cfg.rateWindow,
			AddRateLimitHeaders: cfg.addHeaders,
			ExemptPrefixes:      cfg.rateExemptPrefixes,
			Logger:              logger,
			OnStoreError:        metrics.StoreError,
		}))
	}
	limiters = append(limiters, ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
		ExemptPrefixes: cfg.rateExemptPrefixes,
		Observe:        metrics.ObserveConcurrencyWait,
	}))

	app := &httpapi.App{
		Products: &catalogapp.Service{Products: products, Prices: fetcher, Logger: logger},
		Health:   priceapp.HealthReporter{Source: fetcher, MaxAge: priceapp.DefaultFreshness},
		Logger:   logger,
	}
	if cfg.rateEnabled {
		app.RateStats = statsReader
	}

	srv := &http.Server{
		Addr: cfg.listenAddr,
		Handler: httpapi.NewRouter(httpapi.RouterConfig{
			App:            app,
			Limiters:       limiters,
			AllowedOrigins: cfg.allowedOrigins,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("goldshop listening", "addr", cfg.listenAddr, "version", version)
	logger.Info("price", "provider", fetcher.ProviderName(), "fallback", cfg.priceFallback,
		"ttl", cfg.priceCacheTTL, "failure_ttl", cfg.priceFailureTTL, "timeout", cfg.httpTimeout,
		"min_interval", cfg.priceMinInterval, "redis", cfg.priceRedisAddr != "", "nats", cfg.priceNATSURL != "")
	logger.Info("rate", "enabled", cfg.rateEnabled, "limit", cfg.rateLimit, "window", cfg.rateWindow,
		"exempt", cfg.rateExemptPrefixes, "key_header", cfg.rateKeyHeader, "trust_xff", cfg.trustXFF,
		"redis", rateRedis != nil, "stats_redis", cfg.rateStatsEnabled)
	logger.Info("concurrency", "max", cfg.concurrencyMax, "acquire_timeout", cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(logger, "server error", err)
	}
}

// newProvider resolve o provedor configurado; nome desconhecido vira static.
func newProvider(cfg config) pricedomain.Provider {
	static := priceinfra.StaticProvider{USDPerGram: cfg.priceFallback}
	registry := priceinfra.NewRegistry(static,
		priceinfra.NewMetalsAPIClient(cfg.priceAPIKey,
			priceinfra.WithBaseURL(cfg.metalsAPIBaseURL),
			priceinfra.WithTimeout(cfg.httpTimeout),
		),
		priceinfra.NewGoldAPIClient(cfg.priceAPIKey,
			priceinfra.WithBaseURL(cfg.goldAPIBaseURL),
			priceinfra.WithTimeout(cfg.httpTimeout),
		),
	)
	p := registry.Resolve(cfg.priceProvider)
	if cfg.priceMinInterval > 0 && p.Name() != priceinfra.StaticName {
		p = priceinfra.NewThrottledProvider(p, cfg.priceMinInterval)
	}
	return p
}

func connectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
