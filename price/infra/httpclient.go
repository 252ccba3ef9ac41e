package infra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/emirayemr/goldshop/price/domain"

	"github.com/go-faster/errors"
)

// maxBodyBytes limita quanto do corpo do upstream é lido.
const maxBodyBytes = 1 << 20

type clientConfig struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// ClientOption configura os clientes de upstream.
type ClientOption func(*clientConfig)

// WithBaseURL troca a URL base (fakes, testes, proxy interno).
func WithBaseURL(u string) ClientOption {
	return func(c *clientConfig) { c.baseURL = u }
}

// WithHTTPClient injeta o *http.Client (o Timeout dele é o prazo de conexão + leitura).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) { c.client = hc }
}

// WithTimeout cria um *http.Client com o prazo informado.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) { c.client = &http.Client{Timeout: d} }
}

// WithClientClock troca o relógio que carimba ObtainedAt (testes).
func WithClientClock(fn func() time.Time) ClientOption {
	return func(c *clientConfig) { c.now = fn }
}

func newClientConfig(defaultBaseURL string, opts []ClientOption) clientConfig {
	c := clientConfig{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 3 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// getJSON executa o request e decodifica o corpo em out.
// Status fora de 2xx vira *domain.UpstreamStatusError.
func getJSON(ctx context.Context, hc *http.Client, req *http.Request, provider string, out any) error {
	resp, err := hc.Do(req.WithContext(ctx))
	if err != nil {
		return errors.Wrapf(err, "%s request", provider)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &domain.UpstreamStatusError{Provider: provider, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return errors.Wrapf(domain.ErrMalformedPayload, "%s: %v", provider, err)
	}
	return nil
}
