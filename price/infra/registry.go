package infra

import (
	"strings"

	"github.com/emirayemr/goldshop/price/domain"
)

// Registry resolve o nome configurado do provedor para a implementação.
// Nome vazio ou desconhecido cai no provedor estático.
type Registry struct {
	providers map[string]domain.Provider
	static    domain.Provider
}

func NewRegistry(static domain.Provider, providers ...domain.Provider) *Registry {
	r := &Registry{
		providers: make(map[string]domain.Provider, len(providers)+1),
		static:    static,
	}
	r.providers[strings.ToLower(static.Name())] = static
	for _, p := range providers {
		r.providers[strings.ToLower(p.Name())] = p
	}
	return r
}

// Resolve nunca devolve nil.
func (r *Registry) Resolve(name string) domain.Provider {
	if p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return r.static
}

// Names lista os provedores registrados (diagnóstico).
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	return out
}
