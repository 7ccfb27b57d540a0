package indicators

import (
	"math"

	"github.com/wonny/momentum-scanner/internal/contracts"
)

// Standard windows
const (
	RSIPeriod     = 14
	ShortSMA      = 50
	LongSMA       = 200
	SixMonthsBars = 126 // trading days in ~6 months
)

// RSI calculates the Relative Strength Index over the last period deltas
// using simple (rolling) means of gains and losses. A window with no losses,
// including a perfectly flat one, is 100.
// ⭐ SSOT: 기술적 지표 계산은 여기서만
func RSI(closes []float64, period int) (float64, bool) {
	if period < 1 || len(closes) < period+1 {
		return 0, false
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	if losses == 0 {
		return 100, true
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	rs := avgGain / avgLoss
	return finite(100 - 100/(1+rs))
}

// SMA calculates the simple moving average of the last window closes
func SMA(closes []float64, window int) (float64, bool) {
	if window < 1 || len(closes) < window {
		return 0, false
	}

	var sum float64
	for _, c := range closes[len(closes)-window:] {
		sum += c
	}
	return finite(sum / float64(window))
}

// Return6MPct is the percent change from the close 126 bars back
func Return6MPct(closes []float64) (float64, bool) {
	if len(closes) < SixMonthsBars {
		return 0, false
	}

	base := closes[len(closes)-SixMonthsBars]
	if base <= 0 {
		return 0, false
	}
	return finite((closes[len(closes)-1]/base - 1) * 100)
}

// BelowHighPct is how far the last close sits under the series high, in percent
func BelowHighPct(closes []float64) (float64, bool) {
	if len(closes) == 0 {
		return 0, false
	}

	high := closes[0]
	for _, c := range closes[1:] {
		high = math.Max(high, c)
	}
	if high <= 0 {
		return 0, false
	}
	return finite(100 * (high - closes[len(closes)-1]) / high)
}

// Compute evaluates every indicator of a MetricRecord. It reports false
// when any one is undefined.
// A MinBars below LongSMA admits series that end up dropped here since SMA200 is undefined for them.
func Compute(closes []float64) (contracts.Indicators, bool) {
	if len(closes) == 0 {
		return contracts.Indicators{}, false
	}

	ret, ok1 := Return6MPct(closes)
	below, ok2 := BelowHighPct(closes)
	sma50, ok3 := SMA(closes, ShortSMA)
	sma200, ok4 := SMA(closes, LongSMA)
	rsi, ok5 := RSI(closes, RSIPeriod)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return contracts.Indicators{}, false
	}

	return contracts.Indicators{
		LastClose:    closes[len(closes)-1],
		Return6MPct:  ret,
		BelowHighPct: below,
		SMA50:        sma50,
		SMA200:       sma200,
		RSI14:        rsi,
	}, true
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
