package contracts

import "encoding/json"

// Indicators are the computed inputs of one MetricRecord
type Indicators struct {
	LastClose    float64
	Return6MPct  float64
	BelowHighPct float64
	SMA50        float64
	SMA200       float64
	RSI14        float64
}

// MomentumRule is the eligibility rule behind MetricRecord.MomentumOK
type MomentumRule struct {
	NearHighPct float64 // max distance below the 52w high, in percent
	RSIMin      float64 // inclusive
	RSIMax      float64 // inclusive
}

// DefaultMomentumRule: within 5% of the high, RSI 50–70
func DefaultMomentumRule() MomentumRule {
	return MomentumRule{
		NearHighPct: 5.0,
		RSIMin:      50,
		RSIMax:      70,
	}
}

// NearHigh reports the 52-week-high condition
func (r MomentumRule) NearHigh(ind Indicators) bool {
	return ind.BelowHighPct <= r.NearHighPct
}

// TrendUp reports SMA50 strictly above SMA200
func (r MomentumRule) TrendUp(ind Indicators) bool {
	return ind.SMA50 > ind.SMA200
}

// RSIInBand reports RSI14 inside the inclusive band
func (r MomentumRule) RSIInBand(ind Indicators) bool {
	return ind.RSI14 >= r.RSIMin && ind.RSI14 <= r.RSIMax
}

// Eval is true only when all three conditions hold
func (r MomentumRule) Eval(ind Indicators) bool {
	return r.NearHigh(ind) && r.TrendUp(ind) && r.RSIInBand(ind)
}

// MetricRecord is one symbol's scan output. It is immutable: fields are
// only readable, and momentum eligibility is derived when it is built.
// ⭐ SSOT: 종목별 스캔 결과
type MetricRecord struct {
	symbol     Symbol
	ind        Indicators
	momentumOK bool
}

// NewMetricRecord builds a record, deriving MomentumOK from rule
func NewMetricRecord(symbol Symbol, ind Indicators, rule MomentumRule) MetricRecord {
	return MetricRecord{
		symbol:     symbol,
		ind:        ind,
		momentumOK: rule.Eval(ind),
	}
}

func (m MetricRecord) Symbol() Symbol { return m.symbol }
func (m MetricRecord) Indicators() Indicators { return m.ind }
func (m MetricRecord) LastClose() float64 { return m.ind.LastClose }
func (m MetricRecord) Return6MPct() float64 { return m.ind.Return6MPct }
func (m MetricRecord) BelowHighPct() float64 { return m.ind.BelowHighPct }
func (m MetricRecord) SMA50() float64 { return m.ind.SMA50 }
func (m MetricRecord) SMA200() float64 { return m.ind.SMA200 }
func (m MetricRecord) RSI14() float64 { return m.ind.RSI14 }
func (m MetricRecord) MomentumOK() bool { return m.momentumOK }

type metricRecordJSON struct {
	Symbol       Symbol  `json:"symbol"`
	LastClose    float64 `json:"last_close"`
	Return6MPct  float64 `json:"ret_6m_pct"`
	BelowHighPct float64 `json:"below_high_pct"`
	SMA50        float64 `json:"sma50"`
	SMA200       float64 `json:"sma200"`
	RSI14        float64 `json:"rsi14"`
	MomentumOK   bool    `json:"momentum_ok"`
}

// MarshalJSON exposes the record with the same column names as the CSV report
func (m MetricRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricRecordJSON{
		Symbol:       m.symbol,
		LastClose:    m.ind.LastClose,
		Return6MPct:  m.ind.Return6MPct,
		BelowHighPct: m.ind.BelowHighPct,
		SMA50:        m.ind.SMA50,
		SMA200:       m.ind.SMA200,
		RSI14:        m.ind.RSI14,
		MomentumOK:   m.momentumOK,
	})
}
