// Package httpapi expõe a API HTTP do goldshop: listagem de produtos, health
// do preço do ouro e endpoints operacionais.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"
)

// apiError é o corpo padrão de erro.
type apiError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
	Details   []string  `json:"details"`
}

// WriteError escreve o envelope de erro com o status dado.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string, details []string) {
	if details == nil {
		details = []string{}
	}
	writeJSON(w, status, apiError{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
		Details:   details,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
