// Package history synthesizes a net-worth time series from the ledger.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"networth/internal/domain"
	"networth/internal/ledger"
	"networth/internal/valuation"
)

// Synthesizer replays the ledger once per day across a window and
// values each day's holdings with a single present-day price snapshot.
//
// Using today's prices for historical days is a deliberate
// approximation: each point answers "what would that day's holdings be
// worth now", not "what were they worth then". Do not replace this
// with per-day price queries.
type Synthesizer struct {
	aggregator *valuation.Aggregator
	now        func() time.Time
	log        zerolog.Logger
}

// NewSynthesizer creates a new time-series synthesizer
func NewSynthesizer(aggregator *valuation.Aggregator, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		aggregator: aggregator,
		now:        time.Now,
		log:        log.With().Str("service", "history").Logger(),
	}
}

// NetWorthSeries produces one point per calendar day from
// max(earliest transaction date, today - windowDays) through today,
// ascending. An empty ledger yields an empty series.
func (s *Synthesizer) NetWorthSeries(ctx context.Context, transactions []domain.Transaction, baseCurrency string, windowDays int) ([]domain.NetWorthPoint, error) {
	points := []domain.NetWorthPoint{}
	if len(transactions) == 0 {
		return points, nil
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	start := today.AddDate(0, 0, -windowDays)
	if earliest, ok := ledger.EarliestDate(transactions); ok {
		earliestDay := time.Date(earliest.Year(), earliest.Month(), earliest.Day(), 0, 0, 0, 0, time.UTC)
		if earliestDay.After(start) {
			start = earliestDay
		}
	}

	unitPrices, err := s.snapshotUnitPrices(ctx, transactions, baseCurrency, today)
	if err != nil {
		return nil, err
	}

	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		total := decimal.Zero
		for _, h := range ledger.HoldingsAsOf(transactions, day) {
			if unit, ok := unitPrices[holdingKey(h.Symbol, h.Market)]; ok {
				total = total.Add(h.NetQuantity.Mul(unit))
			}
			// Holdings sold off before today carry no snapshot price
			// and value at zero - accepted under the frozen-snapshot
			// approximation.
		}
		points = append(points, domain.NetWorthPoint{
			AsOf:       day,
			TotalValue: total.Round(2),
			Currency:   baseCurrency,
		})
	}

	s.log.Info().
		Int("points", len(points)).
		Str("from", start.Format("2006-01-02")).
		Str("to", today.Format("2006-01-02")).
		Msg("Synthesized net-worth series")

	return points, nil
}

// snapshotUnitPrices values today's holdings once and derives an
// implied per-unit base-currency price for each held instrument. The
// quote sources are hit exactly once per instrument regardless of
// window size.
func (s *Synthesizer) snapshotUnitPrices(ctx context.Context, transactions []domain.Transaction, baseCurrency string, today time.Time) (map[string]decimal.Decimal, error) {
	current := ledger.HoldingsAsOf(transactions, today)

	positions := make([]domain.Position, 0, len(current))
	for _, h := range current {
		positions = append(positions, domain.Position{
			Symbol:   h.Symbol,
			Market:   h.Market,
			Quantity: h.NetQuantity,
		})
	}

	snapshot, err := s.aggregator.ValuePortfolio(ctx, positions, baseCurrency)
	if err != nil {
		return nil, fmt.Errorf("snapshot valuation failed: %w", err)
	}

	unitPrices := make(map[string]decimal.Decimal, len(snapshot.PerPosition))
	for _, pv := range snapshot.PerPosition {
		if pv.Position.Quantity.IsPositive() && pv.Value.IsPositive() {
			unitPrices[holdingKey(pv.Position.Symbol, pv.Position.Market)] = pv.Value.Div(pv.Position.Quantity)
		}
	}
	return unitPrices, nil
}

func holdingKey(symbol string, market domain.Market) string {
	return symbol + "|" + string(market)
}
