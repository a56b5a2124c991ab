package domain

import (
	"context"

	"github.com/google/uuid"
)

// QuoteAdapter fetches the current price of a single instrument from
// whatever sources serve its market family. Implementations consult the
// price cache before any network access.
type QuoteAdapter interface {
	// FetchPrice returns ErrPriceUnavailable once every source for the
	// symbol has been exhausted.
	FetchPrice(ctx context.Context, symbol string) (PriceResult, error)
	// SupportsMarket reports whether this adapter serves the market.
	SupportsMarket(market Market) bool
}

// RateSource resolves an exchange rate between two ISO currency codes.
type RateSource interface {
	GetRate(ctx context.Context, from, to string) (float64, error)
}

// TransactionRepository is the ledger collaborator. The engine only
// ever reads the full ordered log; ordering is by effective date with
// insertion order breaking ties.
type TransactionRepository interface {
	All() ([]Transaction, error)
	Add(tx Transaction) error
	Delete(id uuid.UUID) error
}
