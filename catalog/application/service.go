package application

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/emirayemr/goldshop/catalog/domain"

	"github.com/go-faster/errors"
)

// Service lista produtos com preço calculado a partir da cotação atual.
type Service struct {
	Products domain.Source
	Prices   domain.PriceSource
	Logger   *slog.Logger
}

// List aplica filtro, ordenação estável e paginação. A consulta já deve ter
// sido validada; SortBy/Dir vazios assumem price/asc.
func (s *Service) List(ctx context.Context, q domain.Query) (domain.Page, error) {
	products, err := s.Products.Products(ctx)
	if err != nil {
		return domain.Page{}, errors.Wrap(err, "load products")
	}
	usdPerGram := s.Prices.CurrentPricePerGram(ctx)

	views := make([]domain.ProductView, 0, len(products))
	for _, p := range products {
		v := p.View(usdPerGram)
		if matches(v, q) {
			views = append(views, v)
		}
	}

	slices.SortStableFunc(views, comparator(q.SortBy, q.Dir))

	if s.Logger != nil {
		s.Logger.DebugContext(ctx, "catalog listed",
			"usd_per_gram", usdPerGram, "total", len(views), "page", q.Page, "size", q.Size)
	}
	return domain.Page{Items: paginate(views, q.Page, q.Size), Total: len(views)}, nil
}

func matches(v domain.ProductView, q domain.Query) bool {
	if q.MinPopularity != nil && v.PopularityOutOf5 < *q.MinPopularity {
		return false
	}
	if q.MinPrice != nil && v.PriceUSD < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && v.PriceUSD > *q.MaxPrice {
		return false
	}
	return true
}

func comparator(by domain.SortBy, dir domain.Direction) func(a, b domain.ProductView) int {
	var c func(a, b domain.ProductView) int
	switch by {
	case domain.SortByPopularity:
		c = func(a, b domain.ProductView) int { return cmp.Compare(a.PopularityOutOf5, b.PopularityOutOf5) }
	case domain.SortByName:
		c = func(a, b domain.ProductView) int { return strings.Compare(a.Name, b.Name) }
	default:
		c = func(a, b domain.ProductView) int { return cmp.Compare(a.PriceUSD, b.PriceUSD) }
	}
	if dir == domain.Desc {
		// empates seguem na ordem de entrada também no desc
		return func(a, b domain.ProductView) int { return c(b, a) }
	}
	return c
}

// paginate devolve [page*size, page*size+size) limitado ao tamanho de views.
func paginate(views []domain.ProductView, page, size int) []domain.ProductView {
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	if page < 0 || page > len(views)/size {
		return []domain.ProductView{}
	}
	from := page * size
	to := min(from+size, len(views))
	return views[from:to]
}
