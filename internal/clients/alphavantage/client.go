// Package alphavantage provides a minimal Alpha Vantage client used as
// the secondary equity quote source.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"networth/internal/domain"
)

// Client for the Alpha Vantage REST API
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://www.alphavantage.co",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "alphavantage").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint (for testing)
func NewClientWithBaseURL(baseURL, apiKey string, log zerolog.Logger) *Client {
	c := NewClient(apiKey, log)
	c.baseURL = baseURL
	return c
}

// globalQuoteResponse mirrors the GLOBAL_QUOTE payload. Alpha Vantage
// prefixes every field name with an ordinal.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
	} `json:"Global Quote"`
}

// GetQuote fetches the latest price for a symbol. The response carries
// no currency; callers attach the currency of the symbol's market.
func (c *Client) GetQuote(ctx context.Context, symbol string) (domain.PriceResult, error) {
	u := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		c.baseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.PriceResult{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PriceResult{}, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PriceResult{}, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var parsed globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.PriceResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	if parsed.GlobalQuote.Price == "" {
		// Alpha Vantage answers 200 with an empty object for unknown
		// symbols and rate-limit notes alike.
		return domain.PriceResult{}, fmt.Errorf("%w: empty quote", domain.ErrMalformedResponse)
	}

	price, err := decimal.NewFromString(parsed.GlobalQuote.Price)
	if err != nil {
		return domain.PriceResult{}, fmt.Errorf("%w: unparseable price %q", domain.ErrMalformedResponse, parsed.GlobalQuote.Price)
	}
	if !price.IsPositive() {
		return domain.PriceResult{}, fmt.Errorf("%w: non-positive price", domain.ErrMalformedResponse)
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("price", price.String()).
		Msg("Fetched quote")

	return domain.PriceResult{Symbol: symbol, Price: price}, nil
}
