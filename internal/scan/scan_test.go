package scan

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/history"
	"github.com/wonny/momentum-scanner/internal/marketdata"
	"github.com/wonny/momentum-scanner/internal/metrics"
	"github.com/wonny/momentum-scanner/internal/ranking"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// frameFor builds n rows of closes produced by f(i)
func frameFor(ticker string, n int, f func(i int) float64) *marketdata.Frame {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	frame := &marketdata.Frame{
		Columns: []marketdata.ColumnKey{{"Open", ticker}, {"High", ticker}, {"Low", ticker}, {"Close", ticker}, {"Volume", ticker}},
	}
	for i := 0; i < n; i++ {
		c := f(i)
		frame.Index = append(frame.Index, day.AddDate(0, 0, i).Format("2006-01-02"))
		frame.Cells = append(frame.Cells, []any{c, c, c, c, 100.0})
	}
	return frame
}

type scriptedSource struct {
	respond func(ticker string) (*marketdata.Frame, error)
}

func (s scriptedSource) DownloadDailyBars(_ context.Context, ticker, _, _ string, _ bool) (*marketdata.Frame, error) {
	return s.respond(ticker)
}

func newPipeline(src marketdata.Source, concurrency int) *Coordinator {
	hcfg := history.DefaultConfig()
	hcfg.Backoff = 0
	fetcher := history.NewFetcher(src, hcfg, logger.Nop())
	builder := metrics.NewBuilder(fetcher, contracts.DefaultMomentumRule(), logger.Nop())
	ranker := ranking.NewRanker(ranking.DefaultConfig(), logger.Nop())
	return NewCoordinator(builder, ranker, Config{Concurrency: concurrency}, logger.Nop())
}

func TestScan_PartialFailure(t *testing.T) {
	src := scriptedSource{respond: func(ticker string) (*marketdata.Frame, error) {
		if ticker == "B.NS" {
			return nil, errors.New("upstream down")
		}
		return frameFor(ticker, 260, func(i int) float64 { return 100 + 100*float64(i)/259 }), nil
	}}

	result := newPipeline(src, 4).Scan(context.Background(), contracts.NewUniverse("A", "B"))

	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 1, result.Produced())
	assert.Equal(t, 1, result.Dropped())

	rec, ok := result.Find("A")
	require.True(t, ok)
	assert.Greater(t, rec.Return6MPct(), 0.0)
	assert.Equal(t, 0.0, rec.BelowHighPct())

	_, ok = result.Find("B")
	assert.False(t, ok)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestScan_FlatSeriesHasZeroReturn(t *testing.T) {
	src := scriptedSource{respond: func(ticker string) (*marketdata.Frame, error) {
		return frameFor(ticker, 200, func(int) float64 { return 50.0 }), nil
	}}

	result := newPipeline(src, 2).Scan(context.Background(), contracts.NewUniverse("FLAT"))

	rec, ok := result.Find("FLAT")
	require.True(t, ok)
	assert.Equal(t, 0.0, rec.Return6MPct())
}

func TestScan_ConcurrencyDoesNotChangeResults(t *testing.T) {
	var names []string
	for i := 0; i < 50; i++ {
		names = append(names, fmt.Sprintf("S%02d", i))
	}
	u := contracts.NewUniverse(names...)

	// Every fifth symbol fails; slopes differ per symbol
	src := scriptedSource{respond: func(ticker string) (*marketdata.Frame, error) {
		idx, _ := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(ticker, "S"), ".NS"))
		if idx%5 == 0 {
			return nil, errors.New("unavailable")
		}
		slope := float64(idx%7) - 3
		return frameFor(ticker, 260, func(i int) float64 { return 200 + slope*float64(i)/10 }), nil
	}}

	serial := newPipeline(src, 1).Scan(context.Background(), u)
	parallel := newPipeline(src, 8).Scan(context.Background(), u)

	assert.Equal(t, 40, serial.Produced())
	require.Equal(t, len(serial.Records), len(parallel.Records))
	for i := range serial.Records {
		assert.Equal(t, serial.Records[i].Symbol(), parallel.Records[i].Symbol())
		assert.Equal(t, serial.Records[i].Indicators(), parallel.Records[i].Indicators())
	}
}

func TestScan_RecordsAreSubsetOfUniverseWithoutDuplicates(t *testing.T) {
	src := scriptedSource{respond: func(ticker string) (*marketdata.Frame, error) {
		return frameFor(ticker, 220, func(i int) float64 { return 10 + float64(i) }), nil
	}}
	u := contracts.NewUniverse("A", "B", "A", "C", "B")

	result := newPipeline(src, 3).Scan(context.Background(), u)

	assert.Equal(t, 3, result.Requested)
	assert.LessOrEqual(t, result.Produced(), u.Count())
	seen := map[contracts.Symbol]bool{}
	for _, rec := range result.Records {
		assert.True(t, u.Contains(rec.Symbol()))
		assert.False(t, seen[rec.Symbol()], "duplicate %s", rec.Symbol())
		seen[rec.Symbol()] = true
	}
}

func TestScan_EmptyUniverse(t *testing.T) {
	var called atomic.Int32
	src := scriptedSource{respond: func(string) (*marketdata.Frame, error) {
		called.Add(1)
		return nil, nil
	}}

	result := newPipeline(src, 4).Scan(context.Background(), contracts.NewUniverse())

	assert.Equal(t, 0, result.Requested)
	assert.True(t, result.Empty())
	assert.Empty(t, result.Top)
	assert.Zero(t, called.Load())
}

type panickyBuilder struct{}

func (panickyBuilder) Build(_ context.Context, s contracts.Symbol) (contracts.MetricRecord, bool) {
	if s == "BAD" {
		panic("index out of range")
	}
	return contracts.NewMetricRecord(s, contracts.Indicators{Return6MPct: 1}, contracts.DefaultMomentumRule()), true
}

func TestScan_RecoversTaskPanic(t *testing.T) {
	c := NewCoordinator(panickyBuilder{}, ranking.NewRanker(ranking.DefaultConfig(), logger.Nop()), Config{Concurrency: 2}, logger.Nop())

	result := c.Scan(context.Background(), contracts.NewUniverse("OK1", "BAD", "OK2"))

	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Produced())
	_, ok := result.Find("BAD")
	assert.False(t, ok)
}

func TestStore(t *testing.T) {
	s := NewStore()
	_, ok := s.Latest()
	assert.False(t, ok)

	first := &contracts.ScanResult{ID: "1"}
	second := &contracts.ScanResult{ID: "2"}
	s.Put(first)
	s.Put(second)

	got, ok := s.Latest()
	require.True(t, ok)
	assert.Same(t, second, got)
}

type blockingBuilder struct {
	started chan struct{}
	release chan struct{}
}

func (b blockingBuilder) Build(_ context.Context, s contracts.Symbol) (contracts.MetricRecord, bool) {
	close(b.started)
	<-b.release
	return contracts.NewMetricRecord(s, contracts.Indicators{}, contracts.DefaultMomentumRule()), true
}

func TestRunner_OneScanAtATime(t *testing.T) {
	b := blockingBuilder{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCoordinator(b, ranking.NewRanker(ranking.DefaultConfig(), logger.Nop()), DefaultConfig(), logger.Nop())
	r := NewRunner(c, NewStore(), func(context.Context) (*contracts.Universe, error) {
		return contracts.NewUniverse("A"), nil
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := r.Run(context.Background())
		assert.NoError(t, err)
	}()

	<-b.started
	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(b.release)
	wg.Wait()

	latest, ok := r.Store().Latest()
	require.True(t, ok)
	assert.Equal(t, 1, latest.Produced())
}

func TestRunner_UniverseError(t *testing.T) {
	r := NewRunner(newPipeline(scriptedSource{}, 1), NewStore(), func(context.Context) (*contracts.Universe, error) {
		return nil, errors.New("master download failed")
	})

	_, err := r.Run(context.Background())
	assert.ErrorContains(t, err, "master download failed")

	_, ok := r.Store().Latest()
	assert.False(t, ok)
}

func TestRunner_StartInBackground(t *testing.T) {
	b := blockingBuilder{started: make(chan struct{}), release: make(chan struct{})}
	c := NewCoordinator(b, ranking.NewRanker(ranking.DefaultConfig(), logger.Nop()), DefaultConfig(), logger.Nop())
	r := NewRunner(c, NewStore(), func(context.Context) (*contracts.Universe, error) {
		return contracts.NewUniverse("A"), nil
	})

	done, err := r.Start(context.Background())
	require.NoError(t, err)

	<-b.started
	_, err = r.Start(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)
	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(b.release)
	require.NoError(t, <-done)

	_, ok := r.Store().Latest()
	assert.True(t, ok)
}
