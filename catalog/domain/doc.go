// Package domain define o catálogo de joias: o produto estático carregado do
// arquivo e a projeção com preço calculado a partir da cotação do ouro.
package domain
