package contracts

import "time"

// Symbol is an exchange ticker as the user writes it (e.g. "TCS"), without
// any provider suffix.
type Symbol string

// PriceBar is one daily OHLCV bar. Date is the exchange-local calendar day.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is the normalized daily history of exactly one symbol.
// Bars are ascending by date with no duplicate dates.
// ⭐ SSOT: 시세 → 지표 계산 전달
type PriceSeries struct {
	Symbol Symbol     `json:"symbol"`
	Bars   []PriceBar `json:"bars"`
}

// Len returns the number of bars
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the close prices in date order
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the most recent bar
func (s *PriceSeries) Last() (PriceBar, bool) {
	if len(s.Bars) == 0 {
		return PriceBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Tail returns a series holding only the most recent n bars
func (s *PriceSeries) Tail(n int) *PriceSeries {
	if n >= len(s.Bars) {
		return s
	}
	bars := make([]PriceBar, n)
	copy(bars, s.Bars[len(s.Bars)-n:])
	return &PriceSeries{Symbol: s.Symbol, Bars: bars}
}
