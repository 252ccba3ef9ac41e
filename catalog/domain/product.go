package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Images guarda as URLs das três variantes de cor.
type Images struct {
	Yellow string `json:"yellow" yaml:"yellow"`
	White  string `json:"white" yaml:"white"`
	Rose   string `json:"rose" yaml:"rose"`
}

// Product é o registro estático do catálogo. PopularityScore fica em [0,1],
// Weight em gramas.
type Product struct {
	Name            string  `json:"name" yaml:"name"`
	PopularityScore float64 `json:"popularityScore" yaml:"popularityScore"`
	Weight          float64 `json:"weight" yaml:"weight"`
	Images          Images  `json:"images" yaml:"images"`
}

// ProductView é a projeção devolvida pela API. Recalculada a cada requisição.
type ProductView struct {
	Name             string  `json:"name"`
	PriceUSD         float64 `json:"priceUsd"`
	PopularityOutOf5 float64 `json:"popularityOutOf5"`
	Images           Images  `json:"images"`
}

// View calcula preço e popularidade de exibição para o preço do grama dado.
//
//	price      = (popularityScore + 1) × weight × usdPerGram, 2 casas
//	popularity = popularityScore × 5, 1 casa
func (p Product) View(usdPerGram float64) ProductView {
	price := (p.PopularityScore + 1) * p.Weight * usdPerGram
	return ProductView{
		Name:             p.Name,
		PriceUSD:         roundHalfUp(price, 2),
		PopularityOutOf5: roundHalfUp(p.PopularityScore*5, 1),
		Images:           p.Images,
	}
}

func roundHalfUp(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Source fornece a lista estática de produtos.
type Source interface {
	Products(ctx context.Context) ([]Product, error)
}

// PriceSource fornece o preço atual do ouro em USD/grama. Nunca falha.
type PriceSource interface {
	CurrentPricePerGram(ctx context.Context) float64
}

// Page é uma fatia da listagem mais o total antes da paginação.
type Page struct {
	Items []ProductView `json:"items"`
	Total int           `json:"total"`
}
