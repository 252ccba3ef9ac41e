package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GramsPerTroyOunce converte onça troy para gramas.
const GramsPerTroyOunce = 31.1034768

// Quote é uma cotação já normalizada. Imutável depois de criada.
type Quote struct {
	USDPerGram float64
	ObtainedAt time.Time
	// Source é o nome do provedor que gerou a cotação.
	Source string
}

// Provider busca uma cotação em um upstream específico.
//
// Um Quote com USDPerGram <= 0 e err == nil significa "upstream respondeu,
// mas sem preço utilizável" (campo ausente, corpo nulo, preço não positivo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context) (Quote, error)
}

// CachedQuote é a entrada única do cache de preço. Price e ObtainedAt são
// gravados juntos; Fallback marca entradas criadas após falha.
type CachedQuote struct {
	Quote     Quote
	Fallback  bool
	ExpiresAt time.Time
}

// Valid indica se a entrada ainda pode ser servida em now.
func (c CachedQuote) Valid(now time.Time) bool {
	return c.Quote.USDPerGram > 0 && now.Before(c.ExpiresAt)
}

// QuoteCache guarda a cotação atual. Há uma única entrada (um único preço).
type QuoteCache interface {
	Get(ctx context.Context) (CachedQuote, bool, error)
	Set(ctx context.Context, q CachedQuote) error
}

// QuotePublisher recebe cada cotação nova obtida com sucesso de um upstream.
type QuotePublisher interface {
	Publish(ctx context.Context, q Quote) error
}

// OuncePriceToGram converte USD/onça troy em USD/grama, arredondado em 2 casas.
func OuncePriceToGram(usdPerOunce float64) float64 {
	return Round2(usdPerOunce / GramsPerTroyOunce)
}

// Round2 arredonda para 2 casas decimais, meio para cima.
func Round2(v float64) float64 {
	return RoundHalfUp(v, 2)
}

// RoundHalfUp arredonda com HALF_UP a partir da representação decimal mais
// curta de v (0.125 -> 0.13, e não 0.12 por erro binário).
func RoundHalfUp(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
