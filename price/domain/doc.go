// Package domain define os tipos e contratos da aquisição do preço do ouro:
// cotação normalizada em USD por grama, provedores upstream, cache e telemetria.
//
// Não depende de net/http nem de clientes concretos.
package domain
