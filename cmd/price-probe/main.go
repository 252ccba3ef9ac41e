// price-probe faz uma única busca de preço pelo provedor configurado e imprime
// cotação, telemetria e health em JSON. Útil para validar chave e URL.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	priceapp "github.com/emirayemr/goldshop/price/application"
	priceinfra "github.com/emirayemr/goldshop/price/infra"
)

type report struct {
	Provider string          `json:"provider"`
	Quote    probeQuote      `json:"quote"`
	Health   priceapp.Health `json:"health"`
	TookMS   int64           `json:"tookMs"`
}

type probeQuote struct {
	USDPerGram float64   `json:"usdPerGram"`
	ObtainedAt time.Time `json:"obtainedAt"`
	Source     string    `json:"source"`
}

func main() {
	provider := flag.String("provider", getenvDefault("GOLD_PRICE_PROVIDER", "static"), "static | metalsapi | goldapi")
	apiKey := flag.String("key", os.Getenv("GOLD_PRICE_API_KEY"), "provider api key")
	fallback := flag.Float64("fallback", 75.0, "fallback USD/gram")
	timeout := flag.Duration("timeout", 3*time.Second, "upstream timeout")
	metalsURL := flag.String("metals-url", getenvDefault("METALSAPI_BASE_URL", priceinfra.MetalsAPIBaseURL), "metals-api base url")
	goldURL := flag.String("goldapi-url", getenvDefault("GOLDAPI_BASE_URL", priceinfra.GoldAPIBaseURL), "goldapi base url")
	verbose := flag.Bool("v", false, "debug logs on stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	registry := priceinfra.NewRegistry(
		priceinfra.StaticProvider{USDPerGram: *fallback},
		priceinfra.NewMetalsAPIClient(*apiKey, priceinfra.WithBaseURL(*metalsURL), priceinfra.WithTimeout(*timeout)),
		priceinfra.NewGoldAPIClient(*apiKey, priceinfra.WithBaseURL(*goldURL), priceinfra.WithTimeout(*timeout)),
	)
	fetcher := priceapp.NewFetcher(registry.Resolve(*provider), *fallback,
		priceapp.WithTimeout(*timeout),
		priceapp.WithCache(priceinfra.NewMemoryQuoteCache()),
		priceapp.WithLogger(logger),
	)

	start := time.Now()
	q := fetcher.Current(context.Background())
	out := report{
		Provider: fetcher.ProviderName(),
		Quote:    probeQuote{USDPerGram: q.USDPerGram, ObtainedAt: q.ObtainedAt, Source: q.Source},
		Health:   priceapp.HealthReporter{Source: fetcher}.Report(),
		TookMS:   time.Since(start).Milliseconds(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("encode report", "error", err)
		os.Exit(1)
	}
	// saída 2 quando o preço veio do fallback
	if out.Health.Status != priceapp.StatusUp {
		os.Exit(2)
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
