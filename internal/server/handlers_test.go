package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth/internal/domain"
	"networth/internal/fx"
	"networth/internal/history"
	"networth/internal/quotes"
	"networth/internal/valuation"
)

type stubAdapter struct {
	market   domain.Market
	price    decimal.Decimal
	currency string
}

func (s *stubAdapter) FetchPrice(_ context.Context, symbol string) (domain.PriceResult, error) {
	return domain.PriceResult{Symbol: symbol, Price: s.price, Currency: s.currency}, nil
}

func (s *stubAdapter) SupportsMarket(market domain.Market) bool {
	return market == s.market
}

type stubRateSource struct{ err error }

func (s *stubRateSource) GetRate(_ context.Context, _, _ string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return 7.0, nil
}

type memoryRepo struct {
	transactions []domain.Transaction
}

func (m *memoryRepo) All() ([]domain.Transaction, error) {
	return m.transactions, nil
}

func (m *memoryRepo) Add(tx domain.Transaction) error {
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *memoryRepo) Delete(id uuid.UUID) error {
	for i, tx := range m.transactions {
		if tx.ID == id {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s not found", id)
}

func newTestServer(t *testing.T, repo domain.TransactionRepository, rateErr error) *Server {
	t.Helper()

	registry := quotes.NewRegistry(
		&stubAdapter{market: domain.MarketDomesticEquity, price: decimal.NewFromInt(100), currency: "CNY"},
		&stubAdapter{market: domain.MarketDigitalAsset, price: decimal.NewFromInt(50000), currency: "USD"},
	)
	converter := fx.NewConverter(&stubRateSource{err: rateErr}, zerolog.Nop())
	aggregator := valuation.NewAggregator(registry, converter, zerolog.Nop())
	aggregator.SetPositionDelay(0)

	return New(Config{
		Port:         0,
		BaseCurrency: "CNY",
		Log:          zerolog.Nop(),
		Repo:         repo,
		Aggregator:   aggregator,
		Synthesizer:  history.NewSynthesizer(aggregator, zerolog.Nop()),
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &memoryRepo{}, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestValuePortfolio(t *testing.T) {
	srv := newTestServer(t, &memoryRepo{}, nil)

	body := `{"positions":[
		{"symbol":"600519","market":"DOMESTIC_EQUITY","quantity":"10"},
		{"symbol":"BTC","market":"DIGITAL_ASSET","quantity":"0.5"}
	]}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/portfolio/value", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.PortfolioValue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "CNY", result.BaseCurrency)
	require.Len(t, result.PerPosition, 2)
	// 10 x 100 CNY + 0.5 x 50000 USD x 7.0
	assert.True(t, result.TotalValue.Equal(decimal.NewFromInt(176000)), "got %s", result.TotalValue)
}

func TestValuePortfolioRejectsUnknownMarket(t *testing.T) {
	srv := newTestServer(t, &memoryRepo{}, nil)

	body := `{"positions":[{"symbol":"X","market":"BOND","quantity":"1"}]}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/portfolio/value", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValuePortfolioConversionFailureIs502(t *testing.T) {
	srv := newTestServer(t, &memoryRepo{}, fmt.Errorf("rate source down"))

	// A USD-priced position with a dead rate source and no fallback pair
	// cannot be converted to JPY.
	body := `{"positions":[{"symbol":"BTC","market":"DIGITAL_ASSET","quantity":"1"}],"base_currency":"JPY"}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/portfolio/value", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	repo := &memoryRepo{}
	srv := newTestServer(t, repo, nil)

	body := `{"symbol":"600519","market":"DOMESTIC_EQUITY","direction":"BUY","quantity":"10","unit_price":"1700","effective_date":"2026-08-01"}`
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "600519")

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/transactions/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.transactions)
}

func TestAddTransactionValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Bad direction", `{"symbol":"X","market":"DOMESTIC_EQUITY","direction":"HOLD","quantity":"1","effective_date":"2026-08-01"}`},
		{"Zero quantity", `{"symbol":"X","market":"DOMESTIC_EQUITY","direction":"BUY","quantity":"0","effective_date":"2026-08-01"}`},
		{"Missing symbol", `{"market":"DOMESTIC_EQUITY","direction":"BUY","quantity":"1","effective_date":"2026-08-01"}`},
		{"Bad date", `{"symbol":"X","market":"DOMESTIC_EQUITY","direction":"BUY","quantity":"1","effective_date":"01/08/2026"}`},
	}

	srv := newTestServer(t, &memoryRepo{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions/", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHoldings(t *testing.T) {
	repo := &memoryRepo{transactions: []domain.Transaction{
		{
			ID: uuid.New(), Symbol: "600519", Market: domain.MarketDomesticEquity,
			Direction: domain.DirectionBuy, Quantity: decimal.NewFromInt(10),
			EffectiveDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	srv := newTestServer(t, repo, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/holdings?date=2026-08-15", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"as_of":"2026-08-15"`)
	assert.Contains(t, rec.Body.String(), "600519")
}

func TestHoldingsRejectsBadDate(t *testing.T) {
	srv := newTestServer(t, &memoryRepo{}, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/holdings?date=last-tuesday", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryRejectsBadWindow(t *testing.T) {
	srv := newTestServer(t, &memoryRepo{}, nil)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?days=-3", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
