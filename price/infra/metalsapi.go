package infra

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/emirayemr/goldshop/price/domain"

	"github.com/go-faster/errors"
)

const (
	MetalsAPIName    = "metalsapi"
	MetalsAPIBaseURL = "https://metals-api.com"

	goldSymbol = "XAU"
)

// MetalsAPIClient consulta /api/latest com base=USD e symbols=XAU.
// A resposta traz quantas onças de ouro valem 1 USD; o inverso é USD/onça.
type MetalsAPIClient struct {
	apiKey string
	cfg    clientConfig
}

type metalsResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func NewMetalsAPIClient(apiKey string, opts ...ClientOption) *MetalsAPIClient {
	return &MetalsAPIClient{
		apiKey: strings.TrimSpace(apiKey),
		cfg:    newClientConfig(MetalsAPIBaseURL, opts),
	}
}

func (c *MetalsAPIClient) Name() string { return MetalsAPIName }

func (c *MetalsAPIClient) Fetch(ctx context.Context) (domain.Quote, error) {
	if c.apiKey == "" {
		return domain.Quote{}, errors.Wrap(domain.ErrMissingAPIKey, "MetalsAPI")
	}

	q := url.Values{}
	q.Set("access_key", c.apiKey)
	q.Set("base", "USD")
	q.Set("symbols", goldSymbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.cfg.baseURL, "/")+"/api/latest?"+q.Encode(), nil)
	if err != nil {
		return domain.Quote{}, errors.Wrap(err, "build MetalsAPI request")
	}
	req.Header.Set("Accept", "application/json")

	var body *metalsResponse
	if err := getJSON(ctx, c.cfg.client, req, "MetalsAPI", &body); err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{ObtainedAt: c.cfg.now(), Source: MetalsAPIName}
	if body == nil {
		return quote, nil
	}
	rate, ok := body.Rates[goldSymbol]
	if !ok || rate <= 0 {
		return quote, nil
	}

	quote.USDPerGram = domain.OuncePriceToGram(1.0 / rate)
	return quote, nil
}
