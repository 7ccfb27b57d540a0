package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/momentum-scanner/pkg/config"
	"github.com/wonny/momentum-scanner/pkg/httputil"
	"github.com/wonny/momentum-scanner/pkg/logger"
	"github.com/wonny/momentum-scanner/pkg/redis"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Field names emitted as the first column level
const (
	FieldOpen   = "Open"
	FieldHigh   = "High"
	FieldLow    = "Low"
	FieldClose  = "Close"
	FieldVolume = "Volume"
)

// YahooClient implements Source using the Yahoo Finance chart API
type YahooClient struct {
	httpClient *httputil.Client
	baseURL    string
	loc        *time.Location
	logger     *logger.Logger
}

// NewYahooClient creates a chart-API client on top of an existing HTTP client
func NewYahooClient(httpClient *httputil.Client, baseURL string, loc *time.Location, log *logger.Logger) *YahooClient {
	if loc == nil {
		loc = time.UTC
	}
	return &YahooClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		loc:        loc,
		logger:     log.WithModule("marketdata"),
	}
}

// NewYahooFromConfig builds a client with no transport-level retry (the
// history fetcher retries), an in-process token bucket, and the Redis
// sliding window when a shared limit is set.
func NewYahooFromConfig(cfg *config.Config, rdb *redis.Client, log *logger.Logger) *YahooClient {
	hc := httputil.NewWithTimeout(cfg, log, cfg.MarketData.Timeout).
		DisableRetry().
		WithHeader("User-Agent", browserUserAgent).
		WithHeader("Accept", "application/json").
		WithLimiter(rate.NewLimiter(rate.Limit(cfg.MarketData.RequestsPerSec), max(cfg.MarketData.Burst, 1)))

	if rdb != nil && rdb.Enabled() && cfg.MarketData.SharedLimit > 0 {
		rl := redis.NewRateLimiter(rdb, "scanner")
		hc = hc.WithLimiter(rl.For(redis.YahooRateLimit(cfg.MarketData.SharedLimit)))
	}

	return NewYahooClient(hc, cfg.MarketData.BaseURL, cfg.Location(), log)
}

// chartResponse is the response structure from the Yahoo chart API.
// Series values stay untyped: nulls mark missing bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []any `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DownloadDailyBars fetches the chart for ticker and returns it as a frame
// with (field, ticker) columns. An empty chart yields an empty frame, not an
// error.
func (c *YahooClient) DownloadDailyBars(ctx context.Context, ticker, period, interval string, adjustClose bool) (*Frame, error) {
	q := url.Values{}
	q.Set("range", period)
	q.Set("interval", interval)
	q.Set("events", "div,splits")
	fullURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", ticker, err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode %s: %w: %w", ticker, ErrMalformedPayload, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo api error for %s: %s", ErrMalformedPayload, ticker, chart.Chart.Error.Description)
	}

	frame := c.toFrame(ticker, &chart, adjustClose)

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"period": period,
		"rows":   frame.Rows(),
	}).Debug("Fetched chart")

	return frame, nil
}

func (c *YahooClient) toFrame(ticker string, chart *chartResponse, adjustClose bool) *Frame {
	frame := &Frame{}
	if len(chart.Chart.Result) == 0 {
		return frame
	}
	result := chart.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return frame
	}
	quote := result.Indicators.Quote[0]

	var adj []any
	if adjustClose && len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	frame.Columns = []ColumnKey{
		{FieldOpen, ticker},
		{FieldHigh, ticker},
		{FieldLow, ticker},
		{FieldClose, ticker},
		{FieldVolume, ticker},
	}

	for i, ts := range result.Timestamp {
		open, high, low, closeV := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if adj != nil {
			open, high, low, closeV = adjustRow(open, high, low, closeV, at(adj, i))
		}

		frame.Index = append(frame.Index, time.Unix(ts, 0).In(c.loc).Format("2006-01-02"))
		frame.Cells = append(frame.Cells, []any{open, high, low, closeV, at(quote.Volume, i)})
	}

	return frame
}

// adjustRow replaces close with the adjusted close and scales open/high/low
// by the same factor. Rows without a usable factor keep the adjusted close
// only when it exists.
func adjustRow(open, high, low, closeV, adjClose any) (any, any, any, any) {
	a, okA := adjClose.(float64)
	if !okA {
		return open, high, low, closeV
	}
	cl, okC := closeV.(float64)
	if !okC || cl <= 0 {
		return open, high, low, a
	}
	factor := a / cl
	return scale(open, factor), scale(high, factor), scale(low, factor), a
}

func scale(v any, factor float64) any {
	if f, ok := v.(float64); ok {
		return f * factor
	}
	return v
}

func at(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return nil
}
