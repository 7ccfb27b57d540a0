package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/ranking"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// RecordBuilder produces at most one record per symbol.
// *metrics.Builder implements it.
type RecordBuilder interface {
	Build(ctx context.Context, symbol contracts.Symbol) (contracts.MetricRecord, bool)
}

// Config holds coordinator configuration
type Config struct {
	Concurrency int // number of concurrent workers
}

// DefaultConfig returns the default pool size
func DefaultConfig() Config {
	return Config{Concurrency: 4}
}

// Coordinator runs one scan over a universe with a fixed worker pool
// ⭐ SSOT: 스캔 오케스트레이션은 여기서만
type Coordinator struct {
	builder RecordBuilder
	ranker  *ranking.Ranker
	cfg     Config
	logger  *logger.Logger
	now     func() time.Time
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(builder RecordBuilder, ranker *ranking.Ranker, cfg Config, log *logger.Logger) *Coordinator {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Coordinator{
		builder: builder,
		ranker:  ranker,
		cfg:     cfg,
		logger:  log.WithModule("scan"),
		now:     time.Now,
	}
}

// outcome is the tagged result of one task
type outcome struct {
	symbol contracts.Symbol
	record contracts.MetricRecord
	ok     bool
}

// Scan builds a record for every symbol it can and ranks them. A symbol
// that fails is dropped and only shows up in Requested vs Produced.
func (c *Coordinator) Scan(ctx context.Context, universe *contracts.Universe) *contracts.ScanResult {
	result := &contracts.ScanResult{
		ID:        uuid.NewString(),
		StartedAt: c.now(),
		Requested: universe.Count(),
		Records:   []contracts.MetricRecord{},
	}
	log := c.logger.WithField("scan_id", result.ID)

	if universe.Count() == 0 {
		result.FinishedAt = c.now()
		c.ranker.Apply(result, universe)
		log.Info("Empty universe, nothing to scan")
		return result
	}

	workers := min(c.cfg.Concurrency, universe.Count())
	log.WithFields(map[string]interface{}{
		"symbols": universe.Count(),
		"workers": workers,
	}).Info("Starting scan")

	symbols := universe.Symbols()
	symbolCh := make(chan contracts.Symbol, len(symbols))
	resultCh := make(chan outcome, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.worker(ctx, workerID, symbolCh, resultCh)
		}(i)
	}

	for _, s := range symbols {
		symbolCh <- s
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for out := range resultCh {
		if out.ok {
			result.Records = append(result.Records, out.record)
		}
	}

	result.FinishedAt = c.now()
	c.ranker.Apply(result, universe)

	log.WithFields(map[string]interface{}{
		"requested": result.Requested,
		"produced":  result.Produced(),
		"dropped":   result.Dropped(),
		"momentum":  len(result.Momentum),
		"duration":  result.Duration().String(),
	}).Info("Scan completed")

	return result
}

// worker processes symbols until the channel is drained
func (c *Coordinator) worker(ctx context.Context, workerID int, symbolCh <-chan contracts.Symbol, resultCh chan<- outcome) {
	for symbol := range symbolCh {
		resultCh <- c.runTask(ctx, workerID, symbol)
	}
}

// runTask builds one record; a panic is contained to its own symbol
func (c *Coordinator) runTask(ctx context.Context, workerID int, symbol contracts.Symbol) (out outcome) {
	out.symbol = symbol
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": symbol,
				"panic":  fmt.Sprint(r),
			}).Error("Recovered panic in scan task")
			out = outcome{symbol: symbol}
		}
	}()

	rec, ok := c.builder.Build(ctx, symbol)
	if !ok {
		c.logger.WithFields(map[string]interface{}{
			"worker": workerID,
			"symbol": symbol,
		}).Debug("No record")
		return out
	}

	out.record = rec
	out.ok = true
	return out
}
