package infra

import (
	"context"
	"time"

	"github.com/emirayemr/goldshop/price/domain"
)

const StaticName = "static"

// StaticProvider devolve sempre o preço configurado, sem rede.
type StaticProvider struct {
	USDPerGram float64
	Now        func() time.Time
}

func (p StaticProvider) Name() string { return StaticName }

func (p StaticProvider) Fetch(context.Context) (domain.Quote, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return domain.Quote{USDPerGram: p.USDPerGram, ObtainedAt: now(), Source: StaticName}, nil
}
