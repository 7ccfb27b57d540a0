package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/universe"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// SecurityLister loads the exchange symbol master
type SecurityLister interface {
	Load(ctx context.Context) ([]universe.Security, error)
}

// UniverseHandler serves the symbol master and the default universe
type UniverseHandler struct {
	master SecurityLister
	logger *logger.Logger
}

// NewUniverseHandler creates a new universe handler
func NewUniverseHandler(master SecurityLister, log *logger.Logger) *UniverseHandler {
	return &UniverseHandler{
		master: master,
		logger: log.WithModule("api_universe"),
	}
}

// SearchResponse lists securities matching a query
type SearchResponse struct {
	Query   string              `json:"query"`
	Total   int                 `json:"total"`
	Results []universe.Security `json:"results"`
}

// GetDefault returns the built-in NIFTY 50 list
// GET /api/universe/default
func (h *UniverseHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	u := universe.Default()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   u.Count(),
		"symbols": u.Symbols(),
	})
}

// GetMember reports whether a symbol belongs to the built-in NIFTY 50 list
// GET /api/universe/default/{symbol}
func (h *UniverseHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	symbol := contracts.Symbol(strings.ToUpper(strings.TrimSpace(pathVar(r, "symbol"))))
	u := universe.Default()
	if !u.Contains(symbol) {
		respondError(w, http.StatusNotFound, "Symbol not in default universe")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":   symbol,
		"position": u.Position(symbol),
	})
}

// Search matches the query against symbol and company name
// GET /api/universe/search?q=bank&limit=20
func (h *UniverseHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, "Missing 'q'")
		return
	}
	limit, ok := queryInt(r, "limit", 20)
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid 'limit' (expected a non-negative integer)")
		return
	}

	list, err := h.master.Load(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load symbol master")
		respondError(w, http.StatusBadGateway, "Could not fetch NSE symbol master")
		return
	}

	results := universe.Search(list, q, limit)
	respondJSON(w, http.StatusOK, SearchResponse{
		Query:   q,
		Total:   len(results),
		Results: results,
	})
}
