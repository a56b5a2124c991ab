// Package coingecko provides a client for the CoinGecko simple price API.
package coingecko

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

// Client for the CoinGecko API
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new CoinGecko client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://api.coingecko.com/api/v3",
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "coingecko").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint (for testing)
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// GetPrice fetches the USD price of one coin by its CoinGecko id
// (e.g. "bitcoin"). The response shape is {coinId: {currency: rate}}.
func (c *Client) GetPrice(ctx context.Context, coinID string) (domain.PriceResult, error) {
	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(coinID))

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

	var parsed map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.PriceResult{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	rates, ok := parsed[coinID]
	if !ok {
		return domain.PriceResult{}, fmt.Errorf("%w: coin %q not in response", domain.ErrMalformedResponse, coinID)
	}
	usd, ok := rates["usd"]
	if !ok || usd <= 0 {
		return domain.PriceResult{}, fmt.Errorf("%w: no usable usd rate for %q", domain.ErrMalformedResponse, coinID)
	}

	c.log.Debug().
		Str("coin", coinID).
		Float64("usd", usd).
		Msg("Fetched price")

	return domain.PriceResult{
		Symbol:   coinID,
		Price:    decimal.NewFromFloat(usd),
		Currency: "USD",
	}, nil
}
