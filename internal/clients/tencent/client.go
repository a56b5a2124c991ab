// Package tencent provides a client for the qt.gtimg.cn real-time quote
// feed. The feed is low friction (no auth, no key) but idiosyncratic:
// one GBK-encoded line per symbol of the form
//
//	v_sh600519="1~NAME~600519~1712.00~...";
//
// with tilde-delimited fields. The payload must be transcoded from GBK
// before parsing.
package tencent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"networth/internal/domain"
)

// Field positions within the tilde-delimited payload.
const (
	fieldName  = 1
	fieldPrice = 3
	minFields  = 4
)

// Client for the qt.gtimg.cn quote feed
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new quote feed client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://qt.gtimg.cn",
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log.With().Str("client", "tencent").Logger(),
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint (for testing)
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// GetQuote fetches the current quote for one exchange-qualified key
// (e.g. "sh600519", "hk00700"). Returns domain.ErrMalformedResponse
// when the feed answers but the payload is unusable.
func (c *Client) GetQuote(ctx context.Context, key string) (domain.PriceResult, error) {
	url := fmt.Sprintf("%s/q=%s", c.baseURL, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.PriceResult{}, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.PriceResult{}, fmt.Errorf("quote feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.PriceResult{}, fmt.Errorf("quote feed returned status %d", resp.StatusCode)
	}

	// The feed serves GBK; transcode before any string handling.
	body, err := io.ReadAll(transform.NewReader(resp.Body, simplifiedchinese.GBK.NewDecoder()))
	if err != nil {
		return domain.PriceResult{}, fmt.Errorf("failed to decode quote payload: %w", err)
	}

	result, err := ParseQuoteLine(string(body))
	if err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("Unusable quote payload")
		return domain.PriceResult{}, err
	}
	result.Symbol = key

	c.log.Debug().
		Str("key", key).
		Str("name", result.Name).
		Str("price", result.Price.String()).
		Msg("Fetched quote")

	return result, nil
}

// ParseQuoteLine extracts name and last price from one decoded feed
// line. Kept as a free function so every market family that consumes
// this feed shares the same parsing.
func ParseQuoteLine(line string) (domain.PriceResult, error) {
	// Payload sits between the first pair of double quotes:
	// v_sh600519="...";
	start := strings.Index(line, `"`)
	end := strings.LastIndex(line, `"`)
	if start < 0 || end <= start {
		return domain.PriceResult{}, fmt.Errorf("%w: no quoted payload", domain.ErrMalformedResponse)
	}

	fields := strings.Split(line[start+1:end], "~")
	if len(fields) < minFields {
		return domain.PriceResult{}, fmt.Errorf("%w: %d fields", domain.ErrMalformedResponse, len(fields))
	}

	price, err := decimal.NewFromString(strings.TrimSpace(fields[fieldPrice]))
	if err != nil {
		return domain.PriceResult{}, fmt.Errorf("%w: unparseable price %q", domain.ErrMalformedResponse, fields[fieldPrice])
	}
	if !price.IsPositive() {
		return domain.PriceResult{}, fmt.Errorf("%w: non-positive price", domain.ErrMalformedResponse)
	}

	return domain.PriceResult{
		Name:  strings.TrimSpace(fields[fieldName]),
		Price: price,
	}, nil
}
