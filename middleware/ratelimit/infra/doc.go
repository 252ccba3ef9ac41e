// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: janela fixa por chave em memória, com janitor para buckets parados
//   - RedisStore: janela fixa compartilhada entre réplicas (INCR + PEXPIRE)
//   - MemoryStatsStore / RedisStatsStore: contadores de decisões
//   - ChanPool: semáforo simples para limite de concorrência
package infra
