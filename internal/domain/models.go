// Package domain contains the core types shared across the valuation engine.
// The domain layer is pure: no clients, no storage, no HTTP.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Market identifies a class of tradable instruments. Each market family
// has its own price source and symbol conventions.
type Market string

const (
	MarketDomesticEquity    Market = "DOMESTIC_EQUITY"
	MarketCrossBorderEquity Market = "CROSS_BORDER_EQUITY"
	MarketDigitalAsset      Market = "DIGITAL_ASSET"
)

// ParseMarket validates a market string coming from API input.
func ParseMarket(s string) (Market, bool) {
	switch Market(s) {
	case MarketDomesticEquity, MarketCrossBorderEquity, MarketDigitalAsset:
		return Market(s), true
	}
	return "", false
}

// Direction of a ledger transaction.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// ParseDirection validates a direction string coming from API input.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case DirectionBuy, DirectionSell:
		return Direction(s), true
	}
	return "", false
}

// Position is a (symbol, market, quantity) tuple subject to valuation.
// Quantity is a point-in-time derived value, never persisted here.
type Position struct {
	Symbol   string          `json:"symbol"`
	Market   Market          `json:"market"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Transaction is one entry of the append-only ledger. Immutable once
// consumed by replay; mutation is a repository concern.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	Symbol        string          `json:"symbol"`
	Market        Market          `json:"market"`
	Direction     Direction       `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	EffectiveDate time.Time       `json:"effective_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Holding is a computed projection of the ledger as of a date. Only
// holdings with a positive net quantity are ever reported.
type Holding struct {
	Symbol           string          `json:"symbol"`
	Market           Market          `json:"market"`
	NetQuantity      decimal.Decimal `json:"net_quantity"`
	FirstDate        time.Time       `json:"first_date"`
	LastDate         time.Time       `json:"last_date"`
	TransactionCount int             `json:"transaction_count"`
}

// PriceResult is the normalized output of every quote source.
// Price is always positive; a zero or invalid price from a source is a
// fetch failure, not a value.
type PriceResult struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
}

// PositionValue is one priced position inside a portfolio valuation.
// A position whose price could not be resolved carries zero price and
// zero value.
type PositionValue struct {
	Position Position        `json:"position"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency"`
	Name     string          `json:"name,omitempty"`
}

// PortfolioValue is the result of valuing a list of positions in a
// single base currency. TotalValue is rounded to 2 decimal places.
type PortfolioValue struct {
	TotalValue   decimal.Decimal `json:"total_value"`
	BaseCurrency string          `json:"base_currency"`
	PerPosition  []PositionValue `json:"per_position"`
}

// NetWorthPoint is one day of the synthesized net-worth curve.
type NetWorthPoint struct {
	AsOf       time.Time       `json:"as_of"`
	TotalValue decimal.Decimal `json:"total_value"`
	Currency   string          `json:"currency"`
}
