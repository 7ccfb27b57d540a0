package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/wonny/momentum-scanner/internal/nse"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// QuoteSource is the NSE surface the quote endpoints need
type QuoteSource interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
	PromoterHoldings(ctx context.Context, symbol string) ([]nse.QuarterHolding, error)
}

// QuoteHandler serves live NSE lookups for a single symbol
type QuoteHandler struct {
	source QuoteSource
	logger *logger.Logger
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(source QuoteSource, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		source: source,
		logger: log.WithModule("api_quote"),
	}
}

// PriceResponse is a live last traded price
type PriceResponse struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
}

// PromoterResponse is recent promoter holding with its trend
type PromoterResponse struct {
	Symbol   string               `json:"symbol"`
	Quarters []nse.QuarterHolding `json:"quarters"`
	Trend    nse.Trend            `json:"trend"`
}

// promoterQuarters is how many quarters the endpoint returns
const promoterQuarters = 6

// GetPrice returns the live last price
// GET /api/quote/{symbol}
func (h *QuoteHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(pathVar(r, "symbol"))

	price, err := h.source.LastPrice(r.Context(), symbol)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Live price lookup failed")
		respondError(w, http.StatusBadGateway, "Could not fetch live price from NSE")
		return
	}

	respondJSON(w, http.StatusOK, PriceResponse{Symbol: symbol, LastPrice: price})
}

// GetPromoter returns promoter holding for the last quarters
// GET /api/quote/{symbol}/promoter
func (h *QuoteHandler) GetPromoter(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(pathVar(r, "symbol"))

	holdings, err := h.source.PromoterHoldings(r.Context(), symbol)
	if errors.Is(err, nse.ErrNoHoldings) {
		respondError(w, http.StatusNotFound, "No promoter data available")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Promoter lookup failed")
		respondError(w, http.StatusBadGateway, "Could not fetch shareholding from NSE")
		return
	}

	respondJSON(w, http.StatusOK, PromoterResponse{
		Symbol:   symbol,
		Quarters: nse.Recent(holdings, promoterQuarters),
		Trend:    nse.PromoterTrend(holdings),
	})
}
