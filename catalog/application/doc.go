// Package application monta a listagem do catálogo: preço, filtro, ordenação
// e paginação.
package application
