package scanconfig

import (
	"fmt"
	"strings"
)

// ValidationError reports the first invalid field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// minUsableBars is the 6-month return lookback; fewer bars can never
// produce a record
const minUsableBars = 126

// Validate checks all constraints. A scan never starts on an invalid config.
func Validate(cfg *Config) error {
	// === Universe ===
	switch cfg.Universe.Source {
	case SourceNifty50, SourceNSE, SourceList:
	default:
		return ValidationError{"universe.source", fmt.Sprintf("must be one of %s, %s, %s", SourceNifty50, SourceNSE, SourceList)}
	}
	if cfg.Universe.Source == SourceList && len(cfg.Universe.Symbols) == 0 {
		return ValidationError{"universe.symbols", "required when source is list"}
	}
	for i, s := range cfg.Universe.Symbols {
		if strings.TrimSpace(s) == "" {
			return ValidationError{fmt.Sprintf("universe.symbols[%d]", i), "must not be blank"}
		}
	}

	// === History ===
	if cfg.History.Period == "" {
		return ValidationError{"history.period", "required"}
	}
	if cfg.History.Interval == "" {
		return ValidationError{"history.interval", "required"}
	}
	if cfg.History.MinBars < minUsableBars {
		return ValidationError{"history.min_bars", fmt.Sprintf("must be >= %d", minUsableBars)}
	}
	if cfg.History.MaxAttempts < 1 {
		return ValidationError{"history.max_attempts", "must be >= 1"}
	}
	if cfg.History.Backoff < 0 {
		return ValidationError{"history.backoff", "must be >= 0"}
	}
	if cfg.History.FallbackKeepBars < 0 {
		return ValidationError{"history.fallback_keep_bars", "must be >= 0"}
	}
	if cfg.History.FallbackKeepBars > 0 && cfg.History.FallbackKeepBars < cfg.History.MinBars {
		return ValidationError{"history.fallback_keep_bars", "must be >= min_bars"}
	}

	// === Scan ===
	if cfg.Scan.Concurrency < 1 {
		return ValidationError{"scan.concurrency", "must be >= 1"}
	}

	// === Momentum ===
	if cfg.Momentum.NearHighPct < 0 || cfg.Momentum.NearHighPct > 100 {
		return ValidationError{"momentum.near_high_pct", "must be in [0, 100]"}
	}
	if err := validatePctRange(cfg.Momentum.RSIMin, "momentum.rsi_min"); err != nil {
		return err
	}
	if err := validatePctRange(cfg.Momentum.RSIMax, "momentum.rsi_max"); err != nil {
		return err
	}
	if cfg.Momentum.RSIMin > cfg.Momentum.RSIMax {
		return ValidationError{"momentum", "rsi_min must be <= rsi_max"}
	}

	// === Report ===
	if cfg.Report.TopN < 0 {
		return ValidationError{"report.top_n", "must be >= 0"}
	}
	if cfg.Report.MomentumCap < 0 {
		return ValidationError{"report.momentum_cap", "must be >= 0"}
	}

	return nil
}

func validatePctRange(v float64, field string) error {
	if v < 0 || v > 100 {
		return ValidationError{field, "must be in [0, 100]"}
	}
	return nil
}
