package infra

import (
	"context"
	"sync/atomic"

	"github.com/emirayemr/goldshop/price/domain"
)

// MemoryQuoteCache guarda a entrada única num ponteiro atômico: quem lê vê
// sempre preço e timestamp da mesma gravação.
type MemoryQuoteCache struct {
	entry atomic.Pointer[domain.CachedQuote]
}

func NewMemoryQuoteCache() *MemoryQuoteCache { return &MemoryQuoteCache{} }

func (c *MemoryQuoteCache) Get(context.Context) (domain.CachedQuote, bool, error) {
	e := c.entry.Load()
	if e == nil {
		return domain.CachedQuote{}, false, nil
	}
	return *e, true, nil
}

func (c *MemoryQuoteCache) Set(_ context.Context, q domain.CachedQuote) error {
	c.entry.Store(&q)
	return nil
}

// Invalidate descarta a entrada atual.
func (c *MemoryQuoteCache) Invalidate() { c.entry.Store(nil) }
