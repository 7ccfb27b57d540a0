package history

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/marketdata"
)

var requiredFields = []string{"open", "high", "low", "close"}

// Normalize turns an untrusted provider frame into clean daily bars:
// ascending by date, no duplicate dates, every OHLC value finite and ≥ 0.
// It fails closed when the frame lacks any of the OHLC columns.
// ⭐ SSOT: 외부 시세 정규화는 여기서만
func Normalize(frame *marketdata.Frame, ticker string, loc *time.Location) ([]contracts.PriceBar, error) {
	if frame.Empty() {
		return nil, ErrEmptyPayload
	}
	if len(frame.Cells) != len(frame.Index) {
		return nil, fmt.Errorf("%w: %d index labels for %d rows", ErrMalformedPayload, len(frame.Index), len(frame.Cells))
	}
	if loc == nil {
		loc = time.UTC
	}

	cols := resolveColumns(frame.Columns, ticker)
	for _, f := range requiredFields {
		if _, ok := cols[f]; !ok {
			return nil, fmt.Errorf("%w: missing %s column", ErrMalformedPayload, f)
		}
	}

	bars := make([]contracts.PriceBar, 0, frame.Rows())
	for row, label := range frame.Index {
		date, ok := parseDate(label, loc)
		if !ok {
			continue
		}

		open, okO := toFloat(frame.Cell(row, cols["open"]))
		high, okH := toFloat(frame.Cell(row, cols["high"]))
		low, okL := toFloat(frame.Cell(row, cols["low"]))
		closeV, okC := toFloat(frame.Cell(row, cols["close"]))
		if !okO || !okH || !okL || !okC {
			continue
		}

		var volume float64
		if vc, ok := cols["volume"]; ok {
			volume, _ = toFloat(frame.Cell(row, vc))
		}

		bars = append(bars, contracts.PriceBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeV,
			Volume: volume,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	// Duplicate dates: the later row wins
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}

	if len(out) == 0 {
		return nil, ErrEmptyPayload
	}
	return out, nil
}

// resolveColumns maps lower-cased field names to column positions.
// Multi-level labels that carry the ticker are narrowed to that ticker's
// columns; any other layout falls back to the outermost level.
func resolveColumns(keys []marketdata.ColumnKey, ticker string) map[string]int {
	tickerLevel := findTickerLevel(keys, ticker)

	cols := make(map[string]int)
	for i, key := range keys {
		if len(key) == 0 {
			continue
		}

		field := key[0]
		if tickerLevel >= 0 {
			if tickerLevel >= len(key) || key[tickerLevel] != ticker {
				continue
			}
			field = fieldLevel(key, tickerLevel)
		}

		name := strings.ToLower(strings.TrimSpace(field))
		if _, dup := cols[name]; dup {
			continue
		}
		cols[name] = i
	}
	return cols
}

// findTickerLevel returns the level holding ticker, checking the innermost
// level first, or -1 when the columns are single-level or ticker-free.
func findTickerLevel(keys []marketdata.ColumnKey, ticker string) int {
	depth := 0
	for _, k := range keys {
		depth = max(depth, len(k))
	}
	if depth < 2 || ticker == "" {
		return -1
	}

	for level := depth - 1; level >= 0; level-- {
		for _, k := range keys {
			if level < len(k) && k[level] == ticker {
				return level
			}
		}
	}
	return -1
}

func fieldLevel(key marketdata.ColumnKey, tickerLevel int) string {
	for level, v := range key {
		if level != tickerLevel {
			return v
		}
	}
	return ""
}

// parseDate accepts YYYY-MM-DD, RFC3339 and unix seconds, returning the
// calendar day in loc
func parseDate(label string, loc *time.Location) (time.Time, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return time.Time{}, false
	}

	if t, err := time.ParseInLocation("2006-01-02", label, loc); err == nil {
		return t, true
	}

	var t time.Time
	if parsed, err := time.Parse(time.RFC3339, label); err == nil {
		t = parsed.In(loc)
	} else if secs, err := strconv.ParseInt(label, 10, 64); err == nil {
		t = time.Unix(secs, 0).In(loc)
	} else {
		return time.Time{}, false
	}

	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), true
}

// toFloat coerces a cell to a usable price. Non-numeric, NaN, ±Inf and
// negative values count as missing.
func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
