package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"networth/internal/domain"
	"networth/internal/ledger"
)

type valuePortfolioRequest struct {
	Positions []struct {
		Symbol   string          `json:"symbol"`
		Market   string          `json:"market"`
		Quantity decimal.Decimal `json:"quantity"`
	} `json:"positions"`
	BaseCurrency string `json:"base_currency"`
}

// handleValuePortfolio values an ad-hoc list of positions. Unpriceable
// positions come back with zero value; only a conversion failure turns
// into an error response.
func (s *Server) handleValuePortfolio(w http.ResponseWriter, r *http.Request) {
	var req valuePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	positions := make([]domain.Position, 0, len(req.Positions))
	for _, p := range req.Positions {
		market, ok := domain.ParseMarket(p.Market)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown market: "+p.Market)
			return
		}
		if p.Symbol == "" {
			s.writeError(w, http.StatusBadRequest, "position symbol is required")
			return
		}
		if p.Quantity.IsNegative() {
			s.writeError(w, http.StatusBadRequest, "position quantity must not be negative")
			return
		}
		positions = append(positions, domain.Position{Symbol: p.Symbol, Market: market, Quantity: p.Quantity})
	}

	baseCurrency := req.BaseCurrency
	if baseCurrency == "" {
		baseCurrency = s.baseCurrency
	}

	result, err := s.aggregator.ValuePortfolio(r.Context(), positions, baseCurrency)
	if err != nil {
		if errors.Is(err, domain.ErrConversionUnavailable) {
			s.writeError(w, http.StatusBadGateway, "currency conversion unavailable")
			return
		}
		s.log.Error().Err(err).Msg("Portfolio valuation failed")
		s.writeError(w, http.StatusInternalServerError, "valuation failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleHoldings replays the ledger as of a date (defaults to today).
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	transactions, err := s.repo.All()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load transactions")
		s.writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"as_of":    asOf.Format("2006-01-02"),
		"holdings": ledger.HoldingsAsOf(transactions, asOf),
	})
}

// handleHistory synthesizes the net-worth curve.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	windowDays := 30
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		windowDays = parsed
	}

	baseCurrency := r.URL.Query().Get("base_currency")
	if baseCurrency == "" {
		baseCurrency = s.baseCurrency
	}

	transactions, err := s.repo.All()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load transactions")
		s.writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}

	points, err := s.synthesizer.NetWorthSeries(r.Context(), transactions, baseCurrency, windowDays)
	if err != nil {
		if errors.Is(err, domain.ErrConversionUnavailable) {
			s.writeError(w, http.StatusBadGateway, "currency conversion unavailable")
			return
		}
		s.log.Error().Err(err).Msg("History synthesis failed")
		s.writeError(w, http.StatusInternalServerError, "history synthesis failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"base_currency": baseCurrency,
		"points":        points,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, _ *http.Request) {
	transactions, err := s.repo.All()
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load transactions")
		s.writeError(w, http.StatusInternalServerError, "failed to load ledger")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
}

type addTransactionRequest struct {
	Symbol        string          `json:"symbol"`
	Market        string          `json:"market"`
	Direction     string          `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	EffectiveDate string          `json:"effective_date"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	market, ok := domain.ParseMarket(req.Market)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "unknown market: "+req.Market)
		return
	}
	direction, ok := domain.ParseDirection(req.Direction)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "direction must be BUY or SELL")
		return
	}
	if req.Symbol == "" {
		s.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if !req.Quantity.IsPositive() {
		s.writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	effectiveDate, err := time.Parse("2006-01-02", req.EffectiveDate)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "effective_date must be YYYY-MM-DD")
		return
	}

	tx := domain.Transaction{
		ID:            uuid.New(),
		Symbol:        req.Symbol,
		Market:        market,
		Direction:     direction,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		EffectiveDate: effectiveDate,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Add(tx); err != nil {
		s.log.Error().Err(err).Msg("Failed to record transaction")
		s.writeError(w, http.StatusInternalServerError, "failed to record transaction")
		return
	}

	s.writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := s.repo.Delete(id); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"deleted": id.String()})
}
