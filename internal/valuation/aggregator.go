// Package valuation prices portfolios position by position.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"networth/internal/domain"
	"networth/internal/fx"
	"networth/internal/quotes"
)

// DefaultPositionDelay spaces out quote fetches so a large portfolio
// never exceeds the source rate limits.
const DefaultPositionDelay = 200 * time.Millisecond

// Aggregator values a portfolio in a base currency. Positions are
// processed strictly sequentially with a fixed delay between them -
// this is the rate-limit backpressure strategy, do not parallelize it
// without replacing that strategy.
type Aggregator struct {
	registry  *quotes.Registry
	converter *fx.Converter
	delay     time.Duration
	log       zerolog.Logger
}

// NewAggregator creates a new valuation aggregator
func NewAggregator(registry *quotes.Registry, converter *fx.Converter, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		registry:  registry,
		converter: converter,
		delay:     DefaultPositionDelay,
		log:       log.With().Str("service", "valuation").Logger(),
	}
}

// SetPositionDelay overrides the inter-position delay. Zero disables it
// (tests only).
func (a *Aggregator) SetPositionDelay(d time.Duration) {
	a.delay = d
}

// ValuePortfolio prices every position and sums the result in
// baseCurrency.
//
// An unpriceable position (price source exhausted, unknown market) is
// absorbed: it is reported with zero price and value and the loop
// continues. A conversion failure aborts the whole call - a total with
// an unresolved currency would be misleading rather than incomplete.
func (a *Aggregator) ValuePortfolio(ctx context.Context, positions []domain.Position, baseCurrency string) (*domain.PortfolioValue, error) {
	result := &domain.PortfolioValue{
		BaseCurrency: baseCurrency,
		PerPosition:  make([]domain.PositionValue, 0, len(positions)),
	}

	total := decimal.Zero

	for i, pos := range positions {
		if i > 0 && a.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.delay):
			}
		}

		price, err := a.pricePosition(ctx, pos)
		if err != nil {
			a.log.Warn().
				Err(err).
				Str("symbol", pos.Symbol).
				Str("market", string(pos.Market)).
				Msg("Position unpriceable, recording zero value")
			result.PerPosition = append(result.PerPosition, domain.PositionValue{
				Position: pos,
				Price:    decimal.Zero,
				Value:    decimal.Zero,
				Currency: baseCurrency,
			})
			continue
		}

		nativeValue := price.Price.Mul(pos.Quantity)
		baseValue, err := a.converter.Convert(ctx, nativeValue, price.Currency, baseCurrency)
		if err != nil {
			return nil, fmt.Errorf("converting %s %s->%s: %w", pos.Symbol, price.Currency, baseCurrency, err)
		}

		total = total.Add(baseValue)
		result.PerPosition = append(result.PerPosition, domain.PositionValue{
			Position: pos,
			Price:    price.Price,
			Value:    baseValue,
			Currency: price.Currency,
			Name:     price.Name,
		})
	}

	result.TotalValue = total.Round(2)

	a.log.Info().
		Int("positions", len(positions)).
		Str("total", result.TotalValue.String()).
		Str("currency", baseCurrency).
		Msg("Portfolio valued")

	return result, nil
}

// pricePosition resolves market -> adapter -> price. Both an unknown
// market and an exhausted source chain are recoverable here; the caller
// records a zero-value position either way.
func (a *Aggregator) pricePosition(ctx context.Context, pos domain.Position) (domain.PriceResult, error) {
	adapter, err := a.registry.ForMarket(pos.Market)
	if err != nil {
		return domain.PriceResult{}, err
	}

	price, err := adapter.FetchPrice(ctx, pos.Symbol)
	if err != nil {
		if errors.Is(err, domain.ErrPriceUnavailable) {
			return domain.PriceResult{}, err
		}
		return domain.PriceResult{}, fmt.Errorf("%w: %s (%v)", domain.ErrPriceUnavailable, pos.Symbol, err)
	}
	return price, nil
}
