// Package fx converts amounts between currencies with a cached live
// rate source and a static fallback table.
package fx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"networth/internal/cache"
	"networth/internal/domain"
)

// fallbackRates covers the closed currency set the tracker deals in.
// Used only when the live source is unavailable; a pair missing here
// makes the conversion fail rather than silently default to 1.
var fallbackRates = map[string]float64{
	"USD:CNY": 7.25,
	"CNY:USD": 0.138,
	"HKD:CNY": 0.93,
	"CNY:HKD": 1.075,
	"EUR:CNY": 7.85,
	"CNY:EUR": 0.127,
	"USD:HKD": 7.8,
	"HKD:USD": 0.128,
	"EUR:USD": 1.08,
	"USD:EUR": 0.93,
	"EUR:HKD": 8.45,
	"HKD:EUR": 0.118,
}

type rateEntry struct {
	rate      float64
	fetchedAt time.Time
}

// Converter resolves exchange rates cache-first, then live, then from
// the static fallback table. Fallback hits are cached with the same
// TTL as live rates.
type Converter struct {
	source domain.RateSource
	ttl    time.Duration

	mu    sync.RWMutex
	rates map[string]rateEntry
	now   func() time.Time

	log zerolog.Logger
}

// NewConverter creates a converter over a live rate source.
func NewConverter(source domain.RateSource, log zerolog.Logger) *Converter {
	return &Converter{
		source: source,
		ttl:    cache.TTLExchangeRate,
		rates:  make(map[string]rateEntry),
		now:    time.Now,
		log:    log.With().Str("service", "fx_converter").Logger(),
	}
}

// Convert converts amount from one currency to another. Identity when
// the currencies match. Fails with domain.ErrConversionUnavailable
// when no rate can be resolved.
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	rate, err := c.GetRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	return amount.Mul(decimal.NewFromFloat(rate)), nil
}

// GetRate resolves the rate for one pair: fresh cache entry, then the
// live source, then the fallback table.
func (c *Converter) GetRate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	key := from + ":" + to

	if rate, ok := c.cachedRate(key); ok {
		return rate, nil
	}

	rate, liveErr := c.source.GetRate(ctx, from, to)
	if liveErr == nil && rate > 0 {
		c.storeRate(key, rate)
		return rate, nil
	}

	c.log.Warn().
		Err(liveErr).
		Str("from", from).
		Str("to", to).
		Msg("Live rate fetch failed, consulting fallback table")

	if fallback, ok := fallbackRates[key]; ok {
		c.storeRate(key, fallback)
		c.log.Warn().
			Str("from", from).
			Str("to", to).
			Float64("rate", fallback).
			Msg("Using static fallback rate")
		return fallback, nil
	}

	return 0, fmt.Errorf("%w: %s->%s (live: %v)", domain.ErrConversionUnavailable, from, to, liveErr)
}

// ClearCache empties the rate cache. Administrative and testing use only.
func (c *Converter) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = make(map[string]rateEntry)
}

func (c *Converter) cachedRate(key string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.rates[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return 0, false
	}
	return e.rate, true
}

func (c *Converter) storeRate(key string, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[key] = rateEntry{rate: rate, fetchedAt: c.now()}
}
