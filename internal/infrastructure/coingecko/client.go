// Package coingecko is a client for the public CoinGecko REST API
package coingecko

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bimakw/coin-tracker/internal/config"
	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/repositories"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Every error returned by the client wraps exactly one of these
var (
	ErrTransport = errors.New("price api unreachable")
	ErrBadStatus = errors.New("price api returned an error status")
	ErrMalformed = errors.New("price api returned malformed data")
)

const apiKeyHeader = "x-cg-demo-api-key"

var _ repositories.MarketDataRepository = (*Client)(nil)

// Client calls CoinGecko. It throttles outbound requests and never retries
type Client struct {
	client     *fasthttp.Client
	baseURL    string
	apiKey     string
	vsCurrency string
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client from configuration
func NewClient(cfg config.CoinGeckoConfig, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	vs := strings.ToLower(cfg.VsCurrency)
	if vs == "" {
		vs = "usd"
	}

	return &Client{
		client:     &fasthttp.Client{Name: "coin-tracker"},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		vsCurrency: vs,
		timeout:    cfg.RequestTimeout,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger.Named("CoinGeckoClient"),
	}
}

// SimplePrice returns the price and 24h change for each id CoinGecko knows.
// Ids it does not know are absent from the result; a quote field is nil when
// the API omitted it or sent null
func (c *Client) SimplePrice(ctx context.Context, ids []string) (map[string]entities.PriceQuote, error) {
	if len(ids) == 0 {
		return map[string]entities.PriceQuote{}, nil
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	body, err := c.get(ctx, "/simple/price", map[string]string{
		"ids":                 strings.Join(sorted, ","),
		"vs_currencies":       c.vsCurrency,
		"include_24hr_change": "true",
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]map[string]*float64
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Error("Failed to decode price response", zap.ByteString("body", truncate(body)), zap.Error(err))
		return nil, fmt.Errorf("%w: decode prices: %w", ErrMalformed, err)
	}

	changeKey := c.vsCurrency + "_24h_change"
	quotes := make(map[string]entities.PriceQuote, len(raw))
	for id, fields := range raw {
		quotes[id] = entities.PriceQuote{
			Price:     fields[c.vsCurrency],
			Change24h: fields[changeKey],
		}
	}

	c.logger.Debug("Fetched prices",
		zap.Int("requested", len(ids)),
		zap.Int("received", len(quotes)),
	)

	return quotes, nil
}

type searchResponse struct {
	Coins []entities.SearchResult `json:"coins"`
}

// Search returns the coins matching a free-text query
func (c *Client) Search(ctx context.Context, query string) ([]entities.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entities.SearchResult{}, nil
	}

	body, err := c.get(ctx, "/search", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode search response", zap.ByteString("body", truncate(body)), zap.Error(err))
		return nil, fmt.Errorf("%w: decode search: %w", ErrMalformed, err)
	}

	results := make([]entities.SearchResult, 0, len(resp.Coins))
	for _, coin := range resp.Coins {
		if coin.ID == "" {
			continue
		}
		results = append(results, coin)
	}

	return results, nil
}

// HealthCheck pings the API
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.get(ctx, "/ping", nil)
	return err
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	args := req.URI().QueryArgs()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args.Add(k, params[k])
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Requesting CoinGecko", zap.String("path", path))

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Warn("CoinGecko request failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, path, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("CoinGecko returned an error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", truncate(resp.Body())),
		)
		return nil, fmt.Errorf("%w: %s: status %d", ErrBadStatus, path, resp.StatusCode())
	}

	// The response is released on return
	return append([]byte(nil), resp.Body()...), nil
}

func truncate(b []byte) []byte {
	const limit = 512
	if len(b) > limit {
		return b[:limit]
	}
	return b
}
