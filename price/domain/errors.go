package domain

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrMissingAPIKey: provedor que exige chave foi configurado sem ela.
	ErrMissingAPIKey = errors.New("api key missing")
	// ErrMalformedPayload: corpo do upstream não pôde ser decodificado.
	ErrMalformedPayload = errors.New("malformed upstream payload")
	// ErrNoUsablePrice: upstream respondeu sem preço positivo.
	ErrNoUsablePrice = errors.New("provider returned no usable price")
)

// UpstreamStatusError é devolvido quando o upstream responde fora de 2xx.
type UpstreamStatusError struct {
	Provider   string
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("%s responded with status %d", e.Provider, e.StatusCode)
}
