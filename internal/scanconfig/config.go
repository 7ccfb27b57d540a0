package scanconfig

import (
	"time"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/history"
	"github.com/wonny/momentum-scanner/internal/ranking"
	"github.com/wonny/momentum-scanner/internal/scan"
	"github.com/wonny/momentum-scanner/internal/universe"
)

// Universe sources
const (
	SourceNifty50 = universe.SourceNifty50 // built-in NIFTY 50 list
	SourceNSE     = universe.SourceNSE     // full NSE equity master
	SourceList    = universe.SourceList    // universe.symbols
)

// Config is the full scan configuration
type Config struct {
	Universe Universe `yaml:"universe" json:"universe"`
	History  History  `yaml:"history" json:"history"`
	Scan     Scan     `yaml:"scan" json:"scan"`
	Momentum Momentum `yaml:"momentum" json:"momentum"`
	Report   Report   `yaml:"report" json:"report"`
}

// Universe selects the symbols to scan
type Universe struct {
	Source       string   `yaml:"source" json:"source"`
	Symbols      []string `yaml:"symbols" json:"symbols"`
	TickerSuffix string   `yaml:"ticker_suffix" json:"ticker_suffix"`
}

// History controls fetching
type History struct {
	Period           string        `yaml:"period" json:"period"`
	FallbackPeriod   string        `yaml:"fallback_period" json:"fallback_period"`
	Interval         string        `yaml:"interval" json:"interval"`
	AdjustClose      bool          `yaml:"adjust_close" json:"adjust_close"`
	MinBars          int           `yaml:"min_bars" json:"min_bars"`
	MaxAttempts      int           `yaml:"max_attempts" json:"max_attempts"`
	Backoff          time.Duration `yaml:"backoff" json:"backoff"`
	FallbackKeepBars int           `yaml:"fallback_keep_bars" json:"fallback_keep_bars"`
}

// Scan controls the worker pool
type Scan struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// Momentum holds the eligibility thresholds
type Momentum struct {
	NearHighPct float64 `yaml:"near_high_pct" json:"near_high_pct"`
	RSIMin      float64 `yaml:"rsi_min" json:"rsi_min"`
	RSIMax      float64 `yaml:"rsi_max" json:"rsi_max"`
}

// Report controls the views and the CSV file
type Report struct {
	TopN        int    `yaml:"top_n" json:"top_n"`
	MomentumCap int    `yaml:"momentum_cap" json:"momentum_cap"`
	CSVPath     string `yaml:"csv_path" json:"csv_path"`
}

// Defaults returns the configuration used when no file is given.
// Load decodes on top of it, so a file only needs the keys it changes.
func Defaults() Config {
	h := history.DefaultConfig()
	rule := contracts.DefaultMomentumRule()
	rk := ranking.DefaultConfig()

	return Config{
		Universe: Universe{
			Source:       SourceNifty50,
			TickerSuffix: h.TickerSuffix,
		},
		History: History{
			Period:           h.Period,
			FallbackPeriod:   h.FallbackPeriod,
			Interval:         h.Interval,
			AdjustClose:      h.AdjustClose,
			MinBars:          h.MinBars,
			MaxAttempts:      h.MaxAttempts,
			Backoff:          h.Backoff,
			FallbackKeepBars: h.FallbackKeepBars,
		},
		Scan: Scan{
			Concurrency: scan.DefaultConfig().Concurrency,
		},
		Momentum: Momentum{
			NearHighPct: rule.NearHighPct,
			RSIMin:      rule.RSIMin,
			RSIMax:      rule.RSIMax,
		},
		Report: Report{
			TopN:        rk.TopN,
			MomentumCap: rk.MomentumCap,
			CSVPath:     "scanner_output.csv",
		},
	}
}

// HistoryConfig converts to the fetcher configuration
func (c *Config) HistoryConfig(loc *time.Location) history.Config {
	return history.Config{
		Period:           c.History.Period,
		FallbackPeriod:   c.History.FallbackPeriod,
		Interval:         c.History.Interval,
		AdjustClose:      c.History.AdjustClose,
		MinBars:          c.History.MinBars,
		MaxAttempts:      c.History.MaxAttempts,
		Backoff:          c.History.Backoff,
		FallbackKeepBars: c.History.FallbackKeepBars,
		TickerSuffix:     c.Universe.TickerSuffix,
		Location:         loc,
	}
}

// MomentumRule converts to the eligibility rule
func (c *Config) MomentumRule() contracts.MomentumRule {
	return contracts.MomentumRule{
		NearHighPct: c.Momentum.NearHighPct,
		RSIMin:      c.Momentum.RSIMin,
		RSIMax:      c.Momentum.RSIMax,
	}
}

// RankingConfig converts to the view sizes
func (c *Config) RankingConfig() ranking.Config {
	return ranking.Config{
		TopN:        c.Report.TopN,
		MomentumCap: c.Report.MomentumCap,
	}
}

// ScanConfig converts to the worker pool configuration
func (c *Config) ScanConfig() scan.Config {
	return scan.Config{Concurrency: c.Scan.Concurrency}
}
