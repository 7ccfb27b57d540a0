package commands

import (
	"context"
	"fmt"

	"github.com/wonny/momentum-scanner/internal/contracts"
	"github.com/wonny/momentum-scanner/internal/history"
	"github.com/wonny/momentum-scanner/internal/marketdata"
	"github.com/wonny/momentum-scanner/internal/metrics"
	"github.com/wonny/momentum-scanner/internal/ranking"
	"github.com/wonny/momentum-scanner/internal/scan"
	"github.com/wonny/momentum-scanner/internal/scanconfig"
	"github.com/wonny/momentum-scanner/internal/universe"
	"github.com/wonny/momentum-scanner/pkg/config"
	"github.com/wonny/momentum-scanner/pkg/httputil"
	"github.com/wonny/momentum-scanner/pkg/logger"
	"github.com/wonny/momentum-scanner/pkg/redis"
)

// cachePrefix namespaces every Redis key written by the scanner
const cachePrefix = "scanner"

// universeFromConfig selects the source named in the scan config
const universeFromConfig = "config"

// app holds the dependencies shared by the subcommands
type app struct {
	cfg  *config.Config
	log  *logger.Logger
	rdb  *redis.Client
	scan *scanconfig.Config
	hash string
}

// newApp loads both configuration layers and connects to Redis. A Redis
// that cannot be reached downgrades to running without it.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	path := configFile
	if path == "" {
		path = cfg.ScanConfigPath
	}
	scfg, err := scanconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load scan config: %w", err)
	}
	hash, err := scanconfig.Hash(scfg)
	if err != nil {
		return nil, fmt.Errorf("hash scan config: %w", err)
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache and shared limits")
		cfg.Redis.Enabled = false
		rdb, _ = redis.New(cfg)
	}

	log.WithFields(map[string]interface{}{
		"config_path": path,
		"config_hash": hash,
		"redis":       rdb.Enabled(),
	}).Debug("Configuration loaded")

	return &app{cfg: cfg, log: log, rdb: rdb, scan: scfg, hash: hash}, nil
}

// Close releases the Redis connection
func (a *app) Close() {
	if err := a.rdb.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close Redis")
	}
}

// masterLoader builds the NSE symbol master loader
func (a *app) masterLoader() *universe.MasterLoader {
	hc := httputil.NewWithTimeout(a.cfg, a.log, a.cfg.NSE.Timeout)
	return universe.NewMasterLoader(hc, a.cfg.NSE.ArchiveURLs, redis.NewCache(a.rdb, cachePrefix), a.log)
}

// coordinator wires market data → history → metrics → ranking for scfg
func (a *app) coordinator(scfg *scanconfig.Config) *scan.Coordinator {
	source := marketdata.NewYahooFromConfig(a.cfg, a.rdb, a.log)
	fetcher := history.NewFetcher(source, scfg.HistoryConfig(a.cfg.Location()), a.log)
	builder := metrics.NewBuilder(fetcher, scfg.MomentumRule(), a.log)
	ranker := ranking.NewRanker(scfg.RankingConfig(), a.log)
	return scan.NewCoordinator(builder, ranker, scfg.ScanConfig(), a.log)
}

// universeFunc resolves source at scan time. universeFromConfig defers
// to the scan config's universe section.
func (a *app) universeFunc(source string, scfg *scanconfig.Config) scan.UniverseFunc {
	symbols := scfg.Universe.Symbols
	if source == universeFromConfig || source == "" {
		source = scfg.Universe.Source
	}
	loader := a.masterLoader()

	return func(ctx context.Context) (*contracts.Universe, error) {
		return universe.Resolve(ctx, source, symbols, loader)
	}
}
