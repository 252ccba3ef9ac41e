package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emirayemr/goldshop/price/domain"

	"github.com/go-faster/errors"
	"github.com/nats-io/nats.go"
)

// QuoteMessage é o envelope publicado no NATS a cada cotação nova.
type QuoteMessage struct {
	USDPerGram float64   `json:"usdPerGram"`
	ObtainedAt time.Time `json:"obtainedAt"`
	Provider   string    `json:"provider"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Version    string    `json:"version"`
}

// NATSQuotePublisher publica cotações no subject configurado.
type NATSQuotePublisher struct {
	conn    *nats.Conn
	subject string
}

func NewNATSQuotePublisher(url, subject string) (*NATSQuotePublisher, error) {
	nc, err := nats.Connect(url, nats.Name("goldshop-price"))
	if err != nil {
		return nil, errors.Wrap(err, "nats connect")
	}
	return &NATSQuotePublisher{conn: nc, subject: subject}, nil
}

func (p *NATSQuotePublisher) Publish(_ context.Context, q domain.Quote) error {
	data, err := json.Marshal(QuoteMessage{
		USDPerGram: q.USDPerGram,
		ObtainedAt: q.ObtainedAt,
		Provider:   q.Source,
		Timestamp:  time.Now(),
		Source:     "goldshop",
		Version:    "1.0",
	})
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject, data)
}

// Close drena a conexão.
func (p *NATSQuotePublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
