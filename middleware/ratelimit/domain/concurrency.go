package domain

import "context"

// SlotPool representa um recurso com capacidade finita (ex: requisições em voo).
//
// Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar e devolve
// uma função de release que deve ser chamada exatamente uma vez.
// InUse é usado apenas para métricas.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
	InUse() int
}
