package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/marketdata"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// Config holds fetcher configuration
type Config struct {
	Period           string        // primary provider range
	FallbackPeriod   string        // used once when the primary range comes back empty or malformed
	Interval         string        // bar interval
	AdjustClose      bool          // request split/dividend adjusted prices
	MinBars          int           // fewer bars than this is insufficient history
	MaxAttempts      int           // whole fetch+fallback sequence attempts
	Backoff          time.Duration // fixed sleep between attempts
	FallbackKeepBars int           // bars kept from a fallback download
	TickerSuffix     string        // appended to the symbol to form the provider ticker
	Location         *time.Location
}

// DefaultConfig returns the daily-bar defaults for NSE symbols
func DefaultConfig() Config {
	return Config{
		Period:           "1y",
		FallbackPeriod:   "2y",
		Interval:         "1d",
		AdjustClose:      true,
		MinBars:          150,
		MaxAttempts:      3,
		Backoff:          600 * time.Millisecond,
		FallbackKeepBars: 260,
		TickerSuffix:     ".NS",
		Location:         time.UTC,
	}
}

// Fetcher retrieves and normalizes one symbol's daily history
// ⭐ SSOT: 종목별 시세 이력 조회는 여기서만
type Fetcher struct {
	source marketdata.Source
	cfg    Config
	logger *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewFetcher creates a new Fetcher
func NewFetcher(source marketdata.Source, cfg Config, log *logger.Logger) *Fetcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Fetcher{
		source: source,
		cfg:    cfg,
		logger: log.WithModule("history"),
		sleep:  sleepCtx,
	}
}

// Ticker returns the provider ticker for symbol
func (f *Fetcher) Ticker(symbol contracts.Symbol) string {
	return string(symbol) + f.cfg.TickerSuffix
}

// Fetch returns the normalized series for symbol. Every error it returns
// satisfies errors.Is(err, ErrUnavailable).
func (f *Fetcher) Fetch(ctx context.Context, symbol contracts.Symbol) (*contracts.PriceSeries, error) {
	ticker := f.Ticker(symbol)
	attempts := max(f.cfg.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		series, err := f.fetchOnce(ctx, symbol, ticker)
		if err == nil {
			if series.Len() < f.cfg.MinBars {
				f.logger.WithFields(map[string]interface{}{
					"symbol": symbol,
					"bars":   series.Len(),
					"min":    f.cfg.MinBars,
				}).Debug("Insufficient history")
				return nil, fmt.Errorf("%w: %s: %w (%d bars)", ErrUnavailable, symbol, ErrInsufficientHistory, series.Len())
			}
			return series, nil
		}

		lastErr = err
		f.logger.WithError(err).WithFields(map[string]interface{}{
			"symbol":  symbol,
			"attempt": attempt,
		}).Debug("History attempt failed")

		if attempt == attempts {
			break
		}
		if err := f.sleep(ctx, f.cfg.Backoff); err != nil {
			lastErr = err
			break
		}
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, symbol, lastErr)
}

// fetchOnce downloads the primary range, falling back once to the longer
// range when the payload is empty or malformed
func (f *Fetcher) fetchOnce(ctx context.Context, symbol contracts.Symbol, ticker string) (*contracts.PriceSeries, error) {
	series, err := f.download(ctx, symbol, ticker, f.cfg.Period)
	if err == nil {
		return series, nil
	}
	if !errors.Is(err, ErrEmptyPayload) && !errors.Is(err, ErrMalformedPayload) {
		return nil, err
	}
	if f.cfg.FallbackPeriod == "" {
		return nil, err
	}

	series, err = f.download(ctx, symbol, ticker, f.cfg.FallbackPeriod)
	if err != nil {
		return nil, err
	}
	if f.cfg.FallbackKeepBars > 0 {
		series = series.Tail(f.cfg.FallbackKeepBars)
	}
	return series, nil
}

func (f *Fetcher) download(ctx context.Context, symbol contracts.Symbol, ticker, period string) (*contracts.PriceSeries, error) {
	frame, err := f.source.DownloadDailyBars(ctx, ticker, period, f.cfg.Interval, f.cfg.AdjustClose)
	if errors.Is(err, marketdata.ErrMalformedPayload) {
		return nil, fmt.Errorf("download %s %s: %w: %w", ticker, period, ErrMalformedPayload, err)
	}
	if err != nil {
		return nil, fmt.Errorf("download %s %s: %w", ticker, period, err)
	}

	bars, err := Normalize(frame, ticker, f.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("normalize %s %s: %w", ticker, period, err)
	}

	return &contracts.PriceSeries{Symbol: symbol, Bars: bars}, nil
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
