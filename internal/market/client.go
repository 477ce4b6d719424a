// Package market fetches the market-implied probability for a question
// from an external price feed. It is the only point of real latency or
// failure around the aggregation core, so everything here is time-bounded
// and failure degrades to "no quote".
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/okulov/fairline/internal/cache"
	"github.com/okulov/fairline/internal/fuse"
	"github.com/okulov/fairline/internal/model"
)

const maxQuoteBodyBytes = 1 << 16

// Client fetches market quotes from a CLOB-style price endpoint, with
// per-client rate limiting and short-lived quote caching so repeated
// aggregations within one session don't hammer the feed.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	quotes     cache.Cache
	cacheTTL   time.Duration
	priorFloor float64
	priorCeil  float64
}

// NewClient creates a market client from configuration. Returns nil when no
// endpoint is configured: a nil client disables all market features.
func NewClient(cfg model.MarketConfig) *Client {
	if cfg.Endpoint == "" {
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 2
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	floor, ceil := cfg.PriorFloor, cfg.PriorCeil
	if !(floor > 0 && ceil < 1 && floor < ceil) {
		floor, ceil = 0.10, 0.90
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		quotes:     cache.NewMemoryCache(ttl, ttl),
		cacheTTL:   ttl,
		priorFloor: floor,
		priorCeil:  ceil,
	}
}

// quotePayload is the wire shape of the price endpoint. Feeds disagree on
// the field name, so both are accepted.
type quotePayload struct {
	Price       *float64   `json:"price,omitempty"`
	Probability *float64   `json:"probability,omitempty"`
	AsOf        *time.Time `json:"as_of,omitempty"`
	Source      string     `json:"source,omitempty"`
}

// Quote returns the current market-implied probability, from cache when
// fresh enough.
func (c *Client) Quote(ctx context.Context) (*model.MarketQuote, error) {
	key := cache.QuoteKey(c.endpoint)
	if raw, ok := c.quotes.Get(key); ok {
		var quote model.MarketQuote
		if err := json.Unmarshal(raw, &quote); err == nil {
			return &quote, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch quote: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read quote: %w", err)
	}

	var payload quotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}

	var p float64
	switch {
	case payload.Probability != nil:
		p = *payload.Probability
	case payload.Price != nil:
		p = *payload.Price
	default:
		return nil, fmt.Errorf("decode quote: no price or probability field")
	}
	if !(p > 0 && p < 1) {
		return nil, fmt.Errorf("decode quote: probability %v outside (0,1)", p)
	}

	quote := &model.MarketQuote{Probability: p, Source: payload.Source}
	if payload.AsOf != nil {
		quote.AsOf = *payload.AsOf
	} else {
		quote.AsOf = time.Now().UTC()
	}
	if quote.Source == "" {
		quote.Source = c.endpoint
	}

	if raw, err := json.Marshal(quote); err == nil {
		_ = c.quotes.Set(key, raw, c.cacheTTL)
	}

	return quote, nil
}

// Prior derives the aggregation prior from the market mid-price, clamped
// into the configured band so a mispriced market can't pin the prior to an
// extreme before any evidence is weighed.
func (c *Client) Prior(ctx context.Context) (float64, error) {
	quote, err := c.Quote(ctx)
	if err != nil {
		return 0, err
	}

	p := quote.Probability
	if p < c.priorFloor {
		p = c.priorFloor
	}
	if p > c.priorCeil {
		p = c.priorCeil
	}
	return p, nil
}

// MarketFn adapts the client to the blender callback shape.
func (c *Client) MarketFn() fuse.MarketFn {
	return func(ctx context.Context) (*model.MarketQuote, error) {
		return c.Quote(ctx)
	}
}
