package quotes

import (
	"fmt"

	"networth/internal/domain"
)

// Registry dispatches markets to their adapters.
type Registry struct {
	adapters []domain.QuoteAdapter
}

// NewRegistry creates a registry over the given adapters.
func NewRegistry(adapters ...domain.QuoteAdapter) *Registry {
	return &Registry{adapters: adapters}
}

// ForMarket returns the adapter serving the market, or
// domain.ErrUnsupportedMarket when no adapter claims it.
func (r *Registry) ForMarket(market domain.Market) (domain.QuoteAdapter, error) {
	for _, a := range r.adapters {
		if a.SupportsMarket(market) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMarket, market)
}
