package quotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"networth/internal/cache"
	"networth/internal/domain"
)

// feedClient is the primary low-friction quote feed (tilde-delimited).
type feedClient interface {
	GetQuote(ctx context.Context, key string) (domain.PriceResult, error)
}

// structuredClient is the secondary structured quote API.
type structuredClient interface {
	GetQuote(ctx context.Context, symbol string) (domain.PriceResult, error)
}

// EquityAdapter prices one equity market family. It tries the primary
// feed first and falls through to exactly one secondary attempt; there
// are no further retries within a single call.
type EquityAdapter struct {
	market    domain.Market
	currency  string
	normalize func(string) string
	primary   feedClient
	secondary structuredClient
	cache     *cache.PriceCache
	log       zerolog.Logger
}

// NewDomesticEquityAdapter prices China A-shares, quoted in CNY.
func NewDomesticEquityAdapter(primary feedClient, secondary structuredClient, priceCache *cache.PriceCache, log zerolog.Logger) *EquityAdapter {
	return &EquityAdapter{
		market:    domain.MarketDomesticEquity,
		currency:  "CNY",
		normalize: NormalizeDomestic,
		primary:   primary,
		secondary: secondary,
		cache:     priceCache,
		log:       log.With().Str("adapter", "domestic_equity").Logger(),
	}
}

// NewCrossBorderEquityAdapter prices Hong Kong listings, quoted in HKD.
func NewCrossBorderEquityAdapter(primary feedClient, secondary structuredClient, priceCache *cache.PriceCache, log zerolog.Logger) *EquityAdapter {
	return &EquityAdapter{
		market:    domain.MarketCrossBorderEquity,
		currency:  "HKD",
		normalize: NormalizeCrossBorder,
		primary:   primary,
		secondary: secondary,
		cache:     priceCache,
		log:       log.With().Str("adapter", "cross_border_equity").Logger(),
	}
}

// SupportsMarket implements domain.QuoteAdapter
func (a *EquityAdapter) SupportsMarket(market domain.Market) bool {
	return market == a.market
}

// FetchPrice implements domain.QuoteAdapter. A cache hit short-circuits
// the whole source chain.
func (a *EquityAdapter) FetchPrice(ctx context.Context, symbol string) (domain.PriceResult, error) {
	key := a.normalize(symbol)
	cacheKey := CacheKey(a.market, symbol)

	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached, nil
	}

	result, primaryErr := a.primary.GetQuote(ctx, key)
	if primaryErr == nil {
		result.Symbol = symbol
		result.Currency = a.currency
		a.cache.Set(cacheKey, result)
		return result, nil
	}

	a.log.Warn().
		Err(primaryErr).
		Str("symbol", symbol).
		Str("key", key).
		Msg("Primary quote source failed, trying secondary")

	result, secondaryErr := a.secondary.GetQuote(ctx, secondarySymbol(key))
	if secondaryErr == nil {
		result.Symbol = symbol
		result.Currency = a.currency
		a.cache.Set(cacheKey, result)
		return result, nil
	}

	a.log.Warn().
		Err(secondaryErr).
		Str("symbol", symbol).
		Msg("Secondary quote source failed")

	return domain.PriceResult{}, fmt.Errorf("%w: %s (primary: %v, secondary: %v)",
		domain.ErrPriceUnavailable, symbol, primaryErr, secondaryErr)
}

// secondarySymbol rewrites a canonical feed key into the secondary
// API's exchange suffix convention: sh600519 -> 600519.SHH,
// sz000858 -> 000858.SHZ, hk00700 -> 700.HKG.
func secondarySymbol(key string) string {
	switch {
	case strings.HasPrefix(key, "sh"):
		return key[2:] + ".SHH"
	case strings.HasPrefix(key, "sz"):
		return key[2:] + ".SHZ"
	case strings.HasPrefix(key, "hk"):
		return strings.TrimLeft(key[2:], "0") + ".HKG"
	default:
		return key
	}
}
