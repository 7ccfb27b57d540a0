package contracts

import "time"

// ScanResult is the outcome of one scan. Records are ranked (descending
// 6-month return); symbols that failed are absent and only show up in the
// Requested/Produced delta.
// ⭐ SSOT: 스캔 → 출력 전달
type ScanResult struct {
	ID         string         `json:"id"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Requested  int            `json:"requested"`
	Records    []MetricRecord `json:"records"`
	Top        []MetricRecord `json:"top"`
	Momentum   []MetricRecord `json:"momentum"`
}

// Produced returns how many symbols yielded a record
func (r *ScanResult) Produced() int {
	return len(r.Records)
}

// Dropped returns how many symbols yielded nothing
func (r *ScanResult) Dropped() int {
	return r.Requested - len(r.Records)
}

// Duration returns the wall time of the scan
func (r *ScanResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Empty reports whether nothing was fetched
func (r *ScanResult) Empty() bool {
	return len(r.Records) == 0
}

// Find returns the record for s
func (r *ScanResult) Find(s Symbol) (MetricRecord, bool) {
	for _, rec := range r.Records {
		if rec.Symbol() == s {
			return rec, true
		}
	}
	return MetricRecord{}, false
}
