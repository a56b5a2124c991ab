// Package ledger derives holdings from the append-only transaction log
// and provides the SQLite-backed log itself.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"networth/internal/domain"
)

// HoldingsAsOf folds the transaction log into net holdings as of a
// date. Pure function: identical inputs always yield identical output.
//
// Transactions effective on the boundary date are included. Only
// holdings with a positive net quantity are emitted - zero and negative
// nets are dropped, never surfaced as short positions. Output is
// ordered by symbol, then market.
func HoldingsAsOf(transactions []domain.Transaction, asOf time.Time) []domain.Holding {
	cutoff := dateOnly(asOf)

	type key struct {
		symbol string
		market domain.Market
	}

	groups := make(map[key]*domain.Holding)
	var order []key

	for _, tx := range transactions {
		if dateOnly(tx.EffectiveDate).After(cutoff) {
			continue
		}

		k := key{symbol: tx.Symbol, market: tx.Market}
		h, ok := groups[k]
		if !ok {
			h = &domain.Holding{
				Symbol:    tx.Symbol,
				Market:    tx.Market,
				FirstDate: tx.EffectiveDate,
				LastDate:  tx.EffectiveDate,
			}
			groups[k] = h
			order = append(order, k)
		}

		switch tx.Direction {
		case domain.DirectionBuy:
			h.NetQuantity = h.NetQuantity.Add(tx.Quantity)
		case domain.DirectionSell:
			h.NetQuantity = h.NetQuantity.Sub(tx.Quantity)
		}

		if tx.EffectiveDate.Before(h.FirstDate) {
			h.FirstDate = tx.EffectiveDate
		}
		if tx.EffectiveDate.After(h.LastDate) {
			h.LastDate = tx.EffectiveDate
		}
		h.TransactionCount++
	}

	holdings := make([]domain.Holding, 0, len(order))
	for _, k := range order {
		h := groups[k]
		if h.NetQuantity.GreaterThan(decimal.Zero) {
			holdings = append(holdings, *h)
		}
	}

	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].Symbol != holdings[j].Symbol {
			return holdings[i].Symbol < holdings[j].Symbol
		}
		return holdings[i].Market < holdings[j].Market
	})

	return holdings
}

// EarliestDate returns the earliest effective date in the log, or
// false for an empty log.
func EarliestDate(transactions []domain.Transaction) (time.Time, bool) {
	if len(transactions) == 0 {
		return time.Time{}, false
	}
	earliest := transactions[0].EffectiveDate
	for _, tx := range transactions[1:] {
		if tx.EffectiveDate.Before(earliest) {
			earliest = tx.EffectiveDate
		}
	}
	return earliest, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
