package infra

import (
	"context"
	"net/http"
	"strings"

	"github.com/emirayemr/goldshop/price/domain"

	"github.com/go-faster/errors"
)

const (
	GoldAPIName    = "goldapi"
	GoldAPIBaseURL = "https://www.goldapi.io"
)

// GoldAPIClient consulta /api/XAU/USD autenticando pelo header x-access-token.
// O campo price vem em USD por onça troy.
type GoldAPIClient struct {
	apiKey string
	cfg    clientConfig
}

type goldAPIResponse struct {
	Price float64 `json:"price"`
}

func NewGoldAPIClient(apiKey string, opts ...ClientOption) *GoldAPIClient {
	return &GoldAPIClient{
		apiKey: strings.TrimSpace(apiKey),
		cfg:    newClientConfig(GoldAPIBaseURL, opts),
	}
}

func (c *GoldAPIClient) Name() string { return GoldAPIName }

func (c *GoldAPIClient) Fetch(ctx context.Context) (domain.Quote, error) {
	if c.apiKey == "" {
		return domain.Quote{}, errors.Wrap(domain.ErrMissingAPIKey, "GoldAPI")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		strings.TrimRight(c.cfg.baseURL, "/")+"/api/XAU/USD", nil)
	if err != nil {
		return domain.Quote{}, errors.Wrap(err, "build GoldAPI request")
	}
	req.Header.Set("x-access-token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	var body *goldAPIResponse
	if err := getJSON(ctx, c.cfg.client, req, "GoldAPI", &body); err != nil {
		return domain.Quote{}, err
	}

	quote := domain.Quote{ObtainedAt: c.cfg.now(), Source: GoldAPIName}
	if body == nil || body.Price <= 0 {
		return quote, nil
	}

	quote.USDPerGram = domain.OuncePriceToGram(body.Price)
	return quote, nil
}
