package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Upstream falso com os dois formatos de provedor, para testar o goldshop
// localmente sem chave real:
//
//	METALSAPI_BASE_URL=http://localhost:8090 GOLD_PRICE_PROVIDER=metalsapi GOLD_PRICE_API_KEY=x
//	GOLDAPI_BASE_URL=http://localhost:8090 GOLD_PRICE_PROVIDER=goldapi GOLD_PRICE_API_KEY=x
//
// MODO controla a resposta: ok, erro (500), lento (5s), quebrado (JSON inválido), vazio (sem preço).
func main() {
	onca := 2488.28
	if v, err := strconv.ParseFloat(os.Getenv("PRECO_ONCA"), 64); err == nil && v > 0 {
		onca = v
	}
	modo := os.Getenv("MODO")
	if modo == "" {
		modo = "ok"
	}

	responder := func(w http.ResponseWriter, corpo any) {
		switch modo {
		case "erro":
			http.Error(w, "upstream indisponível", http.StatusInternalServerError)
			return
		case "lento":
			time.Sleep(5 * time.Second)
		case "quebrado":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"price": `)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(corpo)
	}

	// metals-api: taxa por símbolo, base USD
	http.HandleFunc("/api/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Printf("Log: /api/latest access_key=%q symbols=%q\n", r.URL.Query().Get("access_key"), r.URL.Query().Get("symbols"))
		rates := map[string]float64{"XAU": 1 / onca}
		if modo == "vazio" {
			rates = map[string]float64{}
		}
		responder(w, map[string]any{"success": true, "base": "USD", "rates": rates})
	})

	// goldapi: preço direto por onça
	http.HandleFunc("/api/XAU/USD", func(w http.ResponseWriter, r *http.Request) {
		fmt.Printf("Log: /api/XAU/USD token=%q\n", r.Header.Get("x-access-token"))
		price := onca
		if modo == "vazio" {
			price = 0
		}
		responder(w, map[string]any{"metal": "XAU", "currency": "USD", "price": price})
	})

	addr := ":8090"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	fmt.Printf("Upstream falso rodando em http://localhost%s (modo=%s, onça=%.2f)\n", addr, modo, onca)
	if err := http.ListenAndServe(addr, nil); err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
