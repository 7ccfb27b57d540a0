package nse

import "math"

// Trend classifies recent promoter holding changes
type Trend string

const (
	TrendUp        Trend = "UP (vs 3 quarters ago)"
	TrendSlightUp  Trend = "Slight UP (last quarter)"
	TrendNotRising Trend = "Not rising recently"
)

// PromoterTrend compares the latest quarter with three quarters earlier,
// then with the previous quarter. Values are compared at two decimals.
func PromoterTrend(h []QuarterHolding) Trend {
	vals := make([]float64, len(h))
	for i, q := range h {
		vals[i] = math.Round(q.PromoterPct*100) / 100
	}

	n := len(vals)
	switch {
	case n >= 4 && vals[n-1]-vals[n-4] > 0:
		return TrendUp
	case n >= 2 && vals[n-1]-vals[n-2] > 0:
		return TrendSlightUp
	default:
		return TrendNotRising
	}
}

// Recent returns the last n quarters, oldest first
func Recent(h []QuarterHolding, n int) []QuarterHolding {
	if n < 0 {
		n = 0
	}
	if len(h) <= n {
		return h
	}
	return h[len(h)-n:]
}
