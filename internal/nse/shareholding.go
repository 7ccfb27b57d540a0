package nse

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNoHoldings means NSE returned no usable promoter data
var ErrNoHoldings = errors.New("no promoter data available from NSE")

// QuarterHolding is the promoter holding percentage for one quarter
type QuarterHolding struct {
	Quarter     string  `json:"quarter"`
	PromoterPct float64 `json:"promoter_pct"`
}

// Key lists searched in the shareholding payload, in priority order.
// The API has used all of these spellings.
var (
	blockKeys    = []string{"shareholding", "data", "shareholdingPattern", "shareholdingPtn", "SHP"}
	categoryKeys = []string{"shareholding", "SHP", "data", "holderData", "details", "categoryList", "shareHolding", "shareholdingpattern"}
	nameKeys     = []string{"category", "categoryName", "name", "holder"}
	percentKeys  = []string{"percentage", "pctOfTotal", "percent", "heldPercent", "shareholdingPercent", "sharePct", "percentShare", "holdingPercent", "perc"}
	quarterKeys  = []string{"quarter", "quarterEnding", "quarterEnd", "forQuarter", "period", "date", "quarter_ended", "qtrEndDate", "quarterEndDate"}
	promoterHint = []string{"promoter", "promoter group", "promoters"}
	percentHint  = []string{"percent", "share", "holding", "pct"}
)

// PromoterHoldings returns promoter holding by quarter, oldest first
func (c *Client) PromoterHoldings(ctx context.Context, symbol string) ([]QuarterHolding, error) {
	c.warm(ctx, quotePage(symbol), shareholdingPage(symbol))

	q := url.QueryEscape(symbol)
	endpoints := []string{
		"/api/corporate-shareholdings?symbol=" + q,
		"/api/corporates-shareholdings?index=equities&symbol=" + q,
	}

	var lastErr error
	for _, path := range endpoints {
		data, err := c.getJSON(ctx, path)
		if err != nil {
			lastErr = err
			c.logger.WithError(err).WithField("path", path).Debug("Shareholding endpoint failed")
			continue
		}

		holdings := ParseShareholding(data)
		if len(holdings) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoHoldings, symbol)
		}
		return holdings, nil
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrNoHoldings, symbol, lastErr)
}

// ParseShareholding extracts (quarter, promoter %) pairs from a decoded
// payload whose shape varies between API versions. Rows are de-duplicated
// and sorted chronologically.
func ParseShareholding(data any) []QuarterHolding {
	var blocks []any
	if obj, ok := data.(map[string]any); ok {
		for _, k := range blockKeys {
			if list, ok := obj[k].([]any); ok && len(list) > 0 {
				blocks = list
				break
			}
		}
	}
	if list, ok := data.([]any); ok && len(blocks) == 0 {
		blocks = list
	}

	seen := make(map[QuarterHolding]bool)
	var out []QuarterHolding
	for _, b := range blocks {
		block, ok := b.(map[string]any)
		if !ok {
			continue
		}

		quarter := firstString(block, quarterKeys)
		pct, ok := promoterPct(block)
		if quarter == "" || !ok {
			continue
		}

		h := QuarterHolding{Quarter: quarter, PromoterPct: pct}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}

	sortByQuarter(out)
	return out
}

// promoterPct returns the largest plausible promoter percentage in block
func promoterPct(block map[string]any) (float64, bool) {
	var candidates []float64

	for _, k := range categoryKeys {
		list, ok := block[k].([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			cat, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := strings.ToLower(firstString(cat, nameKeys))
			if !containsAny(name, promoterHint) {
				continue
			}
			for _, f := range percentKeys {
				if v, ok := toPct(cat[f]); ok {
					candidates = append(candidates, v)
				}
			}
		}
	}

	// Flat layouts carry e.g. "promoterHoldingPercent" on the block itself
	for k, v := range block {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "promoter") && containsAny(lk, percentHint) {
			if f, ok := toPct(v); ok {
				candidates = append(candidates, f)
			}
		}
	}

	best, found := 0.0, false
	for _, c := range candidates {
		if c < 0 || c > 100 {
			continue
		}
		if !found || c > best {
			best, found = c, true
		}
	}
	return best, found
}

// toPct accepts numbers and strings such as "72.3%" or "1,234.5"
func toPct(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case string:
		s := strings.TrimSpace(strings.NewReplacer("%", "", ",", "").Replace(n))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func firstString(obj map[string]any, keys []string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var (
	yearMonthRe = regexp.MustCompile(`(\d{4})[-/](\d{1,2})`)
	quarterRe   = regexp.MustCompile(`(?i)Q([1-4]).*?(\d{4})`)
)

var dayMonthYearLayouts = []string{"02-Jan-2006", "2-Jan-2006", "02 Jan 2006", "Jan 2006", "Jan-2006"}

// quarterKey orders quarter labels: "2024-06", "Q1 2024", "31-Mar-2024".
// Labels in none of these forms sort after parsed ones, lexically.
type quarterKey struct {
	parsed bool
	year   int
	sub    int
	raw    string
}

func parseQuarter(label string) quarterKey {
	if m := yearMonthRe.FindStringSubmatch(label); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		return quarterKey{parsed: true, year: y, sub: mo, raw: label}
	}
	if m := quarterRe.FindStringSubmatch(label); m != nil {
		q, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return quarterKey{parsed: true, year: y, sub: q, raw: label}
	}
	for _, layout := range dayMonthYearLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(label)); err == nil {
			return quarterKey{parsed: true, year: t.Year(), sub: int(t.Month()), raw: label}
		}
	}
	return quarterKey{raw: label}
}

func (a quarterKey) less(b quarterKey) bool {
	if a.parsed != b.parsed {
		return a.parsed
	}
	if !a.parsed {
		return a.raw < b.raw
	}
	if a.year != b.year {
		return a.year < b.year
	}
	return a.sub < b.sub
}

func sortByQuarter(h []QuarterHolding) {
	sort.SliceStable(h, func(i, j int) bool {
		return parseQuarter(h[i].Quarter).less(parseQuarter(h[j].Quarter))
	})
}
