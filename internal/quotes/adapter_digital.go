package quotes

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"networth/internal/cache"
	"networth/internal/domain"
)

// coinClient is the digital-asset price API.
type coinClient interface {
	GetPrice(ctx context.Context, coinID string) (domain.PriceResult, error)
}

// DigitalAssetAdapter prices crypto holdings via CoinGecko. There is no
// secondary source for this market family.
type DigitalAssetAdapter struct {
	client coinClient
	cache  *cache.PriceCache
	log    zerolog.Logger
}

// NewDigitalAssetAdapter creates a new digital-asset adapter
func NewDigitalAssetAdapter(client coinClient, priceCache *cache.PriceCache, log zerolog.Logger) *DigitalAssetAdapter {
	return &DigitalAssetAdapter{
		client: client,
		cache:  priceCache,
		log:    log.With().Str("adapter", "digital_asset").Logger(),
	}
}

// SupportsMarket implements domain.QuoteAdapter
func (a *DigitalAssetAdapter) SupportsMarket(market domain.Market) bool {
	return market == domain.MarketDigitalAsset
}

// FetchPrice implements domain.QuoteAdapter
func (a *DigitalAssetAdapter) FetchPrice(ctx context.Context, symbol string) (domain.PriceResult, error) {
	coinID := NormalizeDigital(symbol)
	cacheKey := CacheKey(domain.MarketDigitalAsset, symbol)

	if cached, ok := a.cache.Get(cacheKey); ok {
		return cached, nil
	}

	result, err := a.client.GetPrice(ctx, coinID)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Str("coin", coinID).Msg("Price fetch failed")
		return domain.PriceResult{}, fmt.Errorf("%w: %s (%v)", domain.ErrPriceUnavailable, symbol, err)
	}

	result.Symbol = symbol
	result.Name = coinID
	a.cache.Set(cacheKey, result)
	return result, nil
}
