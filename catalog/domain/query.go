package domain

import "fmt"

type SortBy string

const (
	SortByPrice      SortBy = "price"
	SortByPopularity SortBy = "popularity"
	SortByName       SortBy = "name"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	DefaultPageSize = 10
)

// Query descreve filtros, ordenação e paginação da listagem.
// Filtros nil não se aplicam; limites são inclusivos e comparados com os
// valores de exibição (preço arredondado, popularidade de 0 a 5).
type Query struct {
	MinPrice      *float64
	MaxPrice      *float64
	MinPopularity *float64
	SortBy        SortBy
	Dir           Direction
	Page          int
	Size          int
}

// DefaultQuery é a listagem sem filtros: preço ascendente, página 0 de 10.
func DefaultQuery() Query {
	return Query{SortBy: SortByPrice, Dir: Asc, Page: 0, Size: DefaultPageSize}
}

// FieldError aponta um parâmetro inválido.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// Validate devolve um erro por campo inválido; vazio se a consulta é válida.
func (q Query) Validate() []FieldError {
	var errs []FieldError
	nonNegative := func(field string, v *float64) {
		if v != nil && *v < 0 {
			errs = append(errs, FieldError{field, "must be greater than or equal to 0"})
		}
	}
	nonNegative("minPrice", q.MinPrice)
	nonNegative("maxPrice", q.MaxPrice)
	nonNegative("minPopularity", q.MinPopularity)

	switch q.SortBy {
	case SortByPrice, SortByPopularity, SortByName:
	default:
		errs = append(errs, FieldError{"sortBy", fmt.Sprintf("must be one of price, popularity, name (got %q)", q.SortBy)})
	}
	switch q.Dir {
	case Asc, Desc:
	default:
		errs = append(errs, FieldError{"dir", fmt.Sprintf("must be one of asc, desc (got %q)", q.Dir)})
	}
	if q.Page < 0 {
		errs = append(errs, FieldError{"page", "must be greater than or equal to 0"})
	}
	if q.Size < 1 {
		errs = append(errs, FieldError{"size", "must be greater than or equal to 1"})
	}
	return errs
}
