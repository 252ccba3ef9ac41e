// Package infra contém os clientes de upstream de preço do ouro e as
// implementações de cache e publicação definidas em price/domain.
//
//   - MetalsAPIClient: taxas por símbolo (base USD, símbolo XAU), inverte a taxa
//   - GoldAPIClient: preço direto em USD/onça, autenticado por header
//   - StaticProvider: devolve o preço fixo configurado, sem rede
//   - ThrottledProvider: espaça chamadas ao upstream (golang.org/x/time/rate)
//   - MemoryQuoteCache / RedisQuoteCache: a entrada única do cache
//   - NATSQuotePublisher: evento a cada cotação nova
package infra
