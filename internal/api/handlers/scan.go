package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/ranking"
	"github.com/wonny/momentum-scanner/internal/scan"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// ScanHandler serves the latest scan and triggers new ones
// ⭐ SSOT: 스캔 API 핸들러는 이 구조체에서만
type ScanHandler struct {
	runner *scan.Runner
	// scans triggered over HTTP outlive the request, so they run on the
	// server's context instead
	baseCtx context.Context
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(baseCtx context.Context, runner *scan.Runner, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		runner:  runner,
		baseCtx: baseCtx,
		logger:  log.WithModule("api_scan"),
	}
}

// ScanSummary is the header of a scan without its records
type ScanSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Duration   string    `json:"duration"`
	Requested  int       `json:"requested"`
	Produced   int       `json:"produced"`
	Dropped    int       `json:"dropped"`
}

// RecordsResponse is a ranked list of records from one scan
type RecordsResponse struct {
	Scan    ScanSummary              `json:"scan"`
	Count   int                      `json:"count"`
	Records []contracts.MetricRecord `json:"records"`
}

func summarize(r *contracts.ScanResult) ScanSummary {
	return ScanSummary{
		ID:         r.ID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Duration:   r.Duration().String(),
		Requested:  r.Requested,
		Produced:   r.Produced(),
		Dropped:    r.Dropped(),
	}
}

func (h *ScanHandler) latest(w http.ResponseWriter) (*contracts.ScanResult, bool) {
	result, ok := h.runner.Store().Latest()
	if !ok {
		respondError(w, http.StatusNotFound, "No scan has completed yet")
		return nil, false
	}
	return result, true
}

// GetLatest returns the latest scan with every record
// GET /api/scan/latest
func (h *ScanHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetTop returns the top records by 6-month return
// GET /api/scan/top?n=15
func (h *ScanHandler) GetTop(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	records := result.Top
	if r.URL.Query().Has("n") {
		n, valid := queryInt(r, "n", 0)
		if !valid {
			respondError(w, http.StatusBadRequest, "Invalid 'n' (expected a non-negative integer)")
			return
		}
		records = ranking.Top(result.Records, n)
	}

	respondJSON(w, http.StatusOK, RecordsResponse{
		Scan:    summarize(result),
		Count:   len(records),
		Records: records,
	})
}

// GetMomentum returns the momentum candidates of the latest scan
// GET /api/scan/momentum
func (h *ScanHandler) GetMomentum(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, RecordsResponse{
		Scan:    summarize(result),
		Count:   len(result.Momentum),
		Records: result.Momentum,
	})
}

// GetSymbol returns one symbol's record from the latest scan
// GET /api/scan/symbols/{symbol}
func (h *ScanHandler) GetSymbol(w http.ResponseWriter, r *http.Request) {
	result, ok := h.latest(w)
	if !ok {
		return
	}

	symbol := contracts.Symbol(pathVar(r, "symbol"))
	rec, found := result.Find(symbol)
	if !found {
		respondError(w, http.StatusNotFound, "Symbol not in latest scan")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Run starts a scan in the background
// POST /api/scan/run
func (h *ScanHandler) Run(w http.ResponseWriter, r *http.Request) {
	done, err := h.runner.Start(h.baseCtx)
	if errors.Is(err, scan.ErrScanInProgress) {
		respondError(w, http.StatusConflict, "Scan already in progress")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to start scan")
		return
	}

	go func() {
		if err := <-done; err != nil {
			h.logger.WithError(err).Error("Triggered scan failed")
		}
	}()

	h.logger.Info("Scan triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
	})
}
