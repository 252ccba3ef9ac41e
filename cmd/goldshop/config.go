package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type config struct {
	listenAddr string
	logLevel   string

	priceProvider    string
	priceAPIKey      string
	priceFallback    float64
	priceCacheTTL    time.Duration
	priceFailureTTL  time.Duration
	priceMinInterval time.Duration
	httpTimeout      time.Duration
	metalsAPIBaseURL string
	goldAPIBaseURL   string
	priceRedisAddr   string
	priceNATSURL     string
	priceNATSSubject string

	catalogPath    string
	allowedOrigins []string

	rateEnabled        bool
	rateLimit          int
	rateWindow         time.Duration
	rateExemptPrefixes []string
	rateKeyHeader      string
	trustXFF           bool
	rateIdleTTL        time.Duration
	rateCleanupEvery   time.Duration
	addHeaders         bool
	concurrencyMax     int
	concurrencyTimeout time.Duration

	rateRedisAddr     string
	rateRedisPassword string
	rateRedisDB       int

	rateStatsEnabled   bool
	rateStatsPrefix    string
	rateStatsTTL       time.Duration
	rateStatsBucket    string
	rateStatsTrackKeys bool
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.logLevel = getenvDefault("LOG_LEVEL", "info")

	cfg.priceProvider = getenvDefault("GOLD_PRICE_PROVIDER", "static")
	cfg.priceAPIKey = os.Getenv("GOLD_PRICE_API_KEY")
	cfg.priceFallback = getenvFloatDefault("GOLD_PRICE_FALLBACK", 75.0)
	cfg.priceCacheTTL = getenvDurationDefault("GOLD_PRICE_CACHE_TTL", 10*time.Minute)
	cfg.priceFailureTTL = getenvDurationDefault("GOLD_PRICE_FAILURE_TTL", 30*time.Second)
	cfg.priceMinInterval = getenvDurationDefault("GOLD_PRICE_MIN_INTERVAL", 0)
	cfg.httpTimeout = time.Duration(getenvIntDefault("HTTP_TIMEOUT_MS", 3000)) * time.Millisecond
	cfg.metalsAPIBaseURL = getenvDefault("METALSAPI_BASE_URL", "https://metals-api.com")
	cfg.goldAPIBaseURL = getenvDefault("GOLDAPI_BASE_URL", "https://www.goldapi.io")
	cfg.priceRedisAddr = os.Getenv("PRICE_REDIS_ADDR")
	cfg.priceNATSURL = os.Getenv("PRICE_NATS_URL")
	cfg.priceNATSSubject = getenvDefault("PRICE_NATS_SUBJECT", "goldshop.price.updated")

	cfg.catalogPath = getenvDefault("CATALOG_PATH", "products.json")
	cfg.allowedOrigins = getenvListDefault("CORS_ALLOWED_ORIGINS", []string{"*"})

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateLimit = getenvIntDefault("RATE_LIMIT", 120)
	cfg.rateWindow = time.Duration(getenvIntDefault("RATE_WINDOW_MS", 60000)) * time.Millisecond
	cfg.rateExemptPrefixes = getenvListDefault("RATE_EXEMPT_PREFIXES", []string{"/actuator", "/swagger", "/v3/api-docs"})
	cfg.rateKeyHeader = os.Getenv("RATE_KEY_HEADER")
	cfg.trustXFF = getenvBoolDefault("TRUST_XFF", true)
	cfg.rateIdleTTL = getenvDurationDefault("RATE_IDLE_TTL", 15*time.Minute)
	cfg.rateCleanupEvery = getenvDurationDefault("RATE_CLEANUP_EVERY", 2*time.Minute)
	cfg.addHeaders = getenvBoolDefault("ADD_RATELIMIT_HEADERS", false)
	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)

	cfg.rateRedisAddr = os.Getenv("RATE_REDIS_ADDR")
	cfg.rateRedisPassword = os.Getenv("RATE_REDIS_PASSWORD")
	cfg.rateRedisDB = getenvIntDefault("RATE_REDIS_DB", 0)

	cfg.rateStatsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.rateStatsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.rateStatsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.rateStatsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.rateStatsTrackKeys = getenvBoolDefault("RATE_STATS_TRACK_KEYS", false)

	if cfg.priceFallback <= 0 {
		return config{}, errors.New("GOLD_PRICE_FALLBACK must be > 0")
	}
	if cfg.priceCacheTTL <= 0 {
		return config{}, errors.New("GOLD_PRICE_CACHE_TTL must be > 0")
	}
	if cfg.priceFailureTTL < 0 {
		return config{}, errors.New("GOLD_PRICE_FAILURE_TTL must be >= 0")
	}
	if cfg.httpTimeout <= 0 {
		return config{}, errors.New("HTTP_TIMEOUT_MS must be > 0")
	}
	if cfg.rateLimit <= 0 {
		return config{}, errors.New("RATE_LIMIT must be > 0")
	}
	if cfg.rateWindow <= 0 {
		return config{}, errors.New("RATE_WINDOW_MS must be > 0")
	}
	if cfg.rateStatsEnabled && strings.TrimSpace(cfg.rateRedisAddr) == "" {
		return config{}, errors.New("RATE_REDIS_ADDR is required when RATE_STATS_ENABLED=true")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvFloatDefault(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// getenvListDefault lê uma lista separada por vírgula; itens vazios são ignorados.
func getenvListDefault(k string, def []string) []string {
	v, ok := os.LookupEnv(k)
	if !ok {
		return def
	}
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
