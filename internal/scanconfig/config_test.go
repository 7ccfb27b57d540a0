package scanconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, SourceNifty50, cfg.Universe.Source)
	assert.Equal(t, ".NS", cfg.Universe.TickerSuffix)
	assert.Equal(t, 150, cfg.History.MinBars)
	assert.Equal(t, 3, cfg.History.MaxAttempts)
	assert.Equal(t, 600*time.Millisecond, cfg.History.Backoff)
	assert.Equal(t, 260, cfg.History.FallbackKeepBars)
	assert.Equal(t, 4, cfg.Scan.Concurrency)
	assert.Equal(t, 5.0, cfg.Momentum.NearHighPct)
	assert.Equal(t, 15, cfg.Report.TopN)
	assert.Equal(t, 20, cfg.Report.MomentumCap)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
universe:
  source: list
  symbols: [TCS, INFY, TCS]
history:
  backoff: 1s
  min_bars: 200
scan:
  concurrency: 8
momentum:
  rsi_min: 55
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"TCS", "INFY", "TCS"}, cfg.Universe.Symbols)
	assert.Equal(t, time.Second, cfg.History.Backoff)
	assert.Equal(t, 200, cfg.History.MinBars)
	assert.Equal(t, 8, cfg.Scan.Concurrency)
	assert.Equal(t, 55.0, cfg.Momentum.RSIMin)
	assert.Equal(t, 70.0, cfg.Momentum.RSIMax, "unset keys keep defaults")
	assert.Equal(t, "1y", cfg.History.Period)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "read scan config")
}

func TestParse_UnknownFieldFails(t *testing.T) {
	_, err := Parse([]byte("scan:\n  concurency: 8\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurency")
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"zero concurrency", func(c *Config) { c.Scan.Concurrency = 0 }, "scan.concurrency"},
		{"zero attempts", func(c *Config) { c.History.MaxAttempts = 0 }, "history.max_attempts"},
		{"min bars too small", func(c *Config) { c.History.MinBars = 125 }, "history.min_bars"},
		{"rsi above 100", func(c *Config) { c.Momentum.RSIMax = 101 }, "momentum.rsi_max"},
		{"rsi below 0", func(c *Config) { c.Momentum.RSIMin = -1 }, "momentum.rsi_min"},
		{"rsi band inverted", func(c *Config) { c.Momentum.RSIMin, c.Momentum.RSIMax = 70, 50 }, "momentum"},
		{"negative top", func(c *Config) { c.Report.TopN = -1 }, "report.top_n"},
		{"negative cap", func(c *Config) { c.Report.MomentumCap = -1 }, "report.momentum_cap"},
		{"negative backoff", func(c *Config) { c.History.Backoff = -time.Second }, "history.backoff"},
		{"unknown source", func(c *Config) { c.Universe.Source = "bse" }, "universe.source"},
		{"list without symbols", func(c *Config) { c.Universe.Source = SourceList }, "universe.symbols"},
		{"blank symbol", func(c *Config) { c.Universe.Symbols = []string{"TCS", " "} }, "universe.symbols[1]"},
		{"keep below min", func(c *Config) { c.History.FallbackKeepBars = 100 }, "history.fallback_keep_bars"},
		{"no period", func(c *Config) { c.History.Period = "" }, "history.period"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := Validate(&cfg)
			require.Error(t, err)

			var ve ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestValidate_EdgesAccepted(t *testing.T) {
	cfg := Defaults()
	cfg.History.MinBars = 126
	cfg.History.FallbackKeepBars = 0
	cfg.Momentum.RSIMin, cfg.Momentum.RSIMax = 60, 60
	cfg.Report.TopN, cfg.Report.MomentumCap = 0, 0
	cfg.History.Backoff = 0

	assert.NoError(t, Validate(&cfg))
}

func TestHash(t *testing.T) {
	a := Defaults()
	b := Defaults()

	ha, err := Hash(&a)
	require.NoError(t, err)
	hb, err := Hash(&b)
	require.NoError(t, err)

	assert.Len(t, ha, 64)
	assert.Equal(t, ha, hb)

	b.Scan.Concurrency = 9
	hc, err := Hash(&b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestConversions(t *testing.T) {
	cfg := Defaults()
	cfg.Universe.TickerSuffix = ".BO"
	cfg.Momentum.NearHighPct = 3

	h := cfg.HistoryConfig(time.UTC)
	assert.Equal(t, ".BO", h.TickerSuffix)
	assert.Equal(t, 150, h.MinBars)
	assert.Equal(t, time.UTC, h.Location)

	assert.Equal(t, 3.0, cfg.MomentumRule().NearHighPct)
	assert.Equal(t, 15, cfg.RankingConfig().TopN)
	assert.Equal(t, 4, cfg.ScanConfig().Concurrency)
}
