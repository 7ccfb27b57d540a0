package ranking

import (
	"math"
	"sort"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// Config holds the view sizes
type Config struct {
	TopN        int // size of the top-by-return view
	MomentumCap int // max size of the momentum view
}

// DefaultConfig returns the leaderboard sizes
func DefaultConfig() Config {
	return Config{
		TopN:        15,
		MomentumCap: 20,
	}
}

// Ranker orders records by 6-month return and cuts the two views
// ⭐ SSOT: 랭킹 로직은 여기서만
type Ranker struct {
	cfg    Config
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(cfg Config, log *logger.Logger) *Ranker {
	return &Ranker{
		cfg:    cfg,
		logger: log.WithModule("ranking"),
	}
}

// Rank returns a new slice sorted descending by 6-month return. Records with
// a non-finite return are dropped; ties keep universe order (input order for
// symbols outside the universe). The input slice is not modified.
func (r *Ranker) Rank(records []contracts.MetricRecord, universe *contracts.Universe) []contracts.MetricRecord {
	type keyed struct {
		rec contracts.MetricRecord
		pos int
	}

	base := 0
	if universe != nil {
		base = universe.Count()
	}

	items := make([]keyed, 0, len(records))
	for i, rec := range records {
		ret := rec.Return6MPct()
		if math.IsNaN(ret) || math.IsInf(ret, 0) {
			r.logger.WithField("symbol", rec.Symbol()).Warn("Dropping record with non-finite return")
			continue
		}

		pos := -1
		if universe != nil {
			pos = universe.Position(rec.Symbol())
		}
		if pos < 0 {
			pos = base + i
		}
		items = append(items, keyed{rec: rec, pos: pos})
	}

	// Sort by 6-month return (descending), universe order on ties
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].rec.Return6MPct(), items[j].rec.Return6MPct()
		if ri != rj {
			return ri > rj
		}
		return items[i].pos < items[j].pos
	})

	ranked := make([]contracts.MetricRecord, len(items))
	for i, it := range items {
		ranked[i] = it.rec
	}
	return ranked
}

// Top returns a copy of the first n ranked records
func Top(ranked []contracts.MetricRecord, n int) []contracts.MetricRecord {
	n = min(max(n, 0), len(ranked))
	out := make([]contracts.MetricRecord, n)
	copy(out, ranked[:n])
	return out
}

// Momentum returns the momentum-eligible subset in ranked order, capped
func Momentum(ranked []contracts.MetricRecord, limit int) []contracts.MetricRecord {
	out := make([]contracts.MetricRecord, 0, min(max(limit, 0), len(ranked)))
	for _, rec := range ranked {
		if len(out) >= limit {
			break
		}
		if rec.MomentumOK() {
			out = append(out, rec)
		}
	}
	return out
}

// Apply ranks result.Records in place of the scan order and fills both views
func (r *Ranker) Apply(result *contracts.ScanResult, universe *contracts.Universe) {
	result.Records = r.Rank(result.Records, universe)
	result.Top = Top(result.Records, r.cfg.TopN)
	result.Momentum = Momentum(result.Records, r.cfg.MomentumCap)

	fields := map[string]interface{}{
		"ranked":   len(result.Records),
		"top":      len(result.Top),
		"momentum": len(result.Momentum),
	}
	if len(result.Records) > 0 {
		fields["top_symbol"] = result.Records[0].Symbol()
		fields["top_ret_6m_pct"] = result.Records[0].Return6MPct()
	}
	r.logger.WithFields(fields).Info("Ranking completed")
}
