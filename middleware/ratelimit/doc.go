// Package ratelimit fornece adapters HTTP (net/http) para rate limit de janela fixa
// por cliente e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa em memória ou Redis, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP + extração de chave + tradução para status/headers
//
// Fluxo:
//
//  1. Se o path começa com um prefixo isento, segue direto
//  2. Extrai a chave do cliente (header/XFF/RemoteAddr)
//  3. Chama a camada application para obter a decisão
//  4. Se bloqueado, responde 429 com Retry-After (segundos) e corpo texto
//  5. Se permitido, chama o próximo handler
//
// Janela fixa: o contador zera quando a janela passa, então uma rajada na
// virada da janela pode admitir até 2x o limite em pouco tempo.
package ratelimit
