package nse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wonny/momentum-scanner/pkg/config"
	"github.com/wonny/momentum-scanner/pkg/httputil"
	"github.com/wonny/momentum-scanner/pkg/logger"
	"github.com/wonny/momentum-scanner/pkg/redis"
)

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15"

// ErrNoPrice means the quote API never returned a last price
var ErrNoPrice = errors.New("no live price from NSE")

// Client talks to the nseindia.com JSON APIs. NSE rejects API calls that
// do not carry the cookies its HTML pages set, so every call warms the
// session first.
// ⭐ SSOT: NSE 웹 API 호출은 여기서만
type Client struct {
	httpClient *httputil.Client
	baseURL    string
	attempts   int
	logger     *logger.Logger
}

// NewClient creates a client on top of an HTTP client that keeps cookies
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		attempts:   3,
		logger:     log.WithModule("nse"),
	}
}

// NewFromConfig wires browser headers, a cookie jar and the NSE rate limits
func NewFromConfig(cfg *config.Config, rdb *redis.Client, log *logger.Logger) *Client {
	hc := httputil.NewWithTimeout(cfg, log, cfg.NSE.Timeout).
		DisableRetry().
		WithCookieJar().
		WithHeader("User-Agent", browserUserAgent).
		WithHeader("Accept", "application/json,text/plain,*/*").
		WithHeader("Accept-Language", "en-US,en;q=0.9").
		WithHeader("Referer", strings.TrimRight(cfg.NSE.BaseURL, "/")+"/").
		WithLimiter(rate.NewLimiter(rate.Limit(redis.NSERateLimit.Limit), 1))

	if rdb != nil && rdb.Enabled() {
		hc = hc.WithLimiter(redis.NewRateLimiter(rdb, "scanner").For(redis.NSERateLimit))
	}

	return NewClient(hc, cfg.NSE.BaseURL, log)
}

// warm visits the pages that set the session cookies. Failures are only
// logged: the API call that follows decides whether the session works.
func (c *Client) warm(ctx context.Context, pages ...string) {
	for _, page := range append([]string{"/"}, pages...) {
		resp, err := c.httpClient.Get(ctx, c.baseURL+page)
		if err != nil {
			c.logger.WithError(err).WithField("page", page).Debug("Session warm-up failed")
			continue
		}
		resp.Body.Close()
	}
}

func quotePage(symbol string) string {
	return "/get-quotes/equity?symbol=" + url.QueryEscape(symbol)
}

func shareholdingPage(symbol string) string {
	return "/companies-listing/corporate-filings-shareholding-pattern?symbol=" + url.QueryEscape(symbol) + "&tabIndex=equity"
}

// getJSON fetches path and decodes it into an untyped value
func (c *Client) getJSON(ctx context.Context, path string) (any, error) {
	body, err := c.httpClient.GetBody(ctx, c.baseURL+path)
	if err != nil {
		return nil, err
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, nil
}

type quoteResponse struct {
	PriceInfo *struct {
		LastPrice *float64 `json:"lastPrice"`
	} `json:"priceInfo"`
}

// LastPrice returns the live last traded price for symbol
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	c.warm(ctx, quotePage(symbol))

	path := "/api/quote-equity?symbol=" + url.QueryEscape(symbol)
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		body, err := c.httpClient.GetBody(ctx, c.baseURL+path)
		if err != nil {
			lastErr = err
			continue
		}

		var q quoteResponse
		if err := json.Unmarshal(body, &q); err != nil {
			lastErr = fmt.Errorf("decode quote: %w", err)
			continue
		}
		if q.PriceInfo != nil && q.PriceInfo.LastPrice != nil {
			c.logger.WithFields(map[string]interface{}{
				"symbol": symbol,
				"ltp":    *q.PriceInfo.LastPrice,
			}).Debug("Fetched live price")
			return *q.PriceInfo.LastPrice, nil
		}
		lastErr = errors.New("priceInfo.lastPrice missing")
	}

	return 0, fmt.Errorf("%w: %s: %w", ErrNoPrice, symbol, lastErr)
}
