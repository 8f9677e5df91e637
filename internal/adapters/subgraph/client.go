package subgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/okian/landpower/internal/domain/model"
	"github.com/okian/landpower/pkg/logger"
	"github.com/okian/landpower/pkg/metrics"
)

// Client defaults.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultQueryTimeout = 30 * time.Second
	maxErrorBody        = 512
)

// Querier fetches one page of assets from a subgraph endpoint.
type Querier interface {
	Assets(ctx context.Context, endpoint string, q AssetQuery) ([]model.Asset, error)
}

// Client implements Querier over GraphQL-on-HTTP.
type Client struct {
	httpClient   *http.Client
	queryTimeout time.Duration
	logger       logger.Logger
}

// Compile-time interface check
var _ Querier = (*Client)(nil)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithQueryTimeout bounds a single request.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.queryTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a subgraph client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			// Timeout is applied per request through the context.
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout: DefaultDialTimeout,
				}).DialContext,
			},
		},
		queryTimeout: DefaultQueryTimeout,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request is the GraphQL-over-HTTP body.
type request struct {
	Query string `json:"query"`
}

// response is the GraphQL-over-HTTP envelope for an assets query.
type response struct {
	Data *struct {
		Assets []model.Asset `json:"assets"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// Assets runs q against endpoint and returns the page of assets.
func (c *Client) Assets(ctx context.Context, endpoint string, q AssetQuery) ([]model.Asset, error) {
	start := time.Now()
	assets, err := c.assets(ctx, endpoint, q)
	latencyMs := float64(time.Since(start).Milliseconds())
	metrics.RecordSubgraphQuery(metrics.ResultLabel(err), latencyMs)
	if err != nil {
		metrics.RecordErrorByComponent("subgraph", errorType(err))
		metrics.RecordErrorLatency("subgraph", errorType(err), latencyMs)
		c.logger.Debug(ctx, "subgraph query failed",
			logger.String("endpoint", endpoint),
			logger.Int("skip", q.Skip),
			logger.Error(err),
		)
		return nil, err
	}
	return assets, nil
}

func (c *Client) assets(ctx context.Context, endpoint string, q AssetQuery) ([]model.Asset, error) {
	body, err := json.Marshal(request{Query: q.GraphQL()})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrDecode, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	// Read the full body so the connection can be reused.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrHTTPStatus, resp.StatusCode, truncate(data, maxErrorBody))
	}

	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(out.Errors) > 0 {
		return nil, &QueryError{Errors: out.Errors}
	}
	if out.Data == nil || out.Data.Assets == nil {
		return nil, fmt.Errorf("%w: response has no assets field", ErrDecode)
	}
	return out.Data.Assets, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrQuery):
		return "graphql"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "transport"
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
