package domain

import "time"

// Telemetry é o retrato das últimas tentativas de busca.
//
// Uma falha atualiza apenas LastError; LastSuccessAt e LastUSDPerGram
// continuam apontando para o último sucesso conhecido.
type Telemetry struct {
	LastSuccessAt  *time.Time
	LastUSDPerGram *float64
	LastError      *string
	LastAttemptAt  *time.Time
}

// FreshWithin informa se houve sucesso há no máximo maxAge (limite inclusivo).
func (t Telemetry) FreshWithin(now time.Time, maxAge time.Duration) bool {
	if t.LastSuccessAt == nil {
		return false
	}
	return now.Sub(*t.LastSuccessAt) <= maxAge
}
