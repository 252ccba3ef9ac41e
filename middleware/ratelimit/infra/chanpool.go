package infra

import (
	"context"

	"github.com/emirayemr/goldshop/middleware/ratelimit/domain"
)

type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um semáforo baseado em channel com capacidade `max`.
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	// vaga livre tem prioridade sobre ctx já cancelado
	select {
	case p.sem <- struct{}{}:
		return p.release(), true
	default:
	}
	select {
	case p.sem <- struct{}{}:
		return p.release(), true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *chanPool) release() func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		<-p.sem
	}
}

func (p *chanPool) InUse() int { return len(p.sem) }
