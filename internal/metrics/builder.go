package metrics

import (
	"context"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/indicators"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// HistoryFetcher supplies the normalized daily history of one symbol.
// *history.Fetcher implements it.
type HistoryFetcher interface {
	Fetch(ctx context.Context, symbol contracts.Symbol) (*contracts.PriceSeries, error)
}

// Builder turns one symbol into at most one MetricRecord
// ⭐ SSOT: 종목별 지표 레코드 생성은 여기서만
type Builder struct {
	fetcher HistoryFetcher
	rule    contracts.MomentumRule
	logger  *logger.Logger
}

// NewBuilder creates a new Builder
func NewBuilder(fetcher HistoryFetcher, rule contracts.MomentumRule, log *logger.Logger) *Builder {
	return &Builder{
		fetcher: fetcher,
		rule:    rule,
		logger:  log.WithModule("metrics"),
	}
}

// Build fetches history and computes the record. It reports false when the
// history is unavailable or any indicator is undefined; no partial record
// is ever returned.
func (b *Builder) Build(ctx context.Context, symbol contracts.Symbol) (contracts.MetricRecord, bool) {
	series, err := b.fetcher.Fetch(ctx, symbol)
	if err != nil {
		b.logger.WithError(err).WithField("symbol", symbol).Debug("History unavailable")
		return contracts.MetricRecord{}, false
	}

	ind, ok := indicators.Compute(series.Closes())
	if !ok {
		b.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"bars":   series.Len(),
		}).Debug("Indicators undefined")
		return contracts.MetricRecord{}, false
	}

	rec := contracts.NewMetricRecord(symbol, ind, b.rule)

	b.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"ret_6m_pct":  ind.Return6MPct,
		"below_high":  ind.BelowHighPct,
		"rsi14":       ind.RSI14,
		"momentum_ok": rec.MomentumOK(),
	}).Debug("Built metric record")

	return rec, true
}
