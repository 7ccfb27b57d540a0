package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/momentum-scanner/internal/universe"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// UniverseRefreshJob re-downloads the NSE symbol master into the cache
// before the scan needs it
// ⭐ SSOT: 종목 마스터 갱신 스케줄은 이 Job에서만
type UniverseRefreshJob struct {
	loader *universe.MasterLoader
	logger *logger.Logger
}

// NewUniverseRefreshJob creates a new refresh job
func NewUniverseRefreshJob(loader *universe.MasterLoader, log *logger.Logger) *UniverseRefreshJob {
	return &UniverseRefreshJob{
		loader: loader,
		logger: log.WithModule("universe_job"),
	}
}

// Name returns the job name
func (j *UniverseRefreshJob) Name() string {
	return "symbol_master_refresh"
}

// Schedule returns the cron schedule (weekdays 08:30, before the open)
func (j *UniverseRefreshJob) Schedule() string {
	return "0 30 8 * * 1-5"
}

// Run refreshes the master
func (j *UniverseRefreshJob) Run(ctx context.Context) error {
	list, err := j.loader.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh symbol master: %w", err)
	}

	j.logger.WithField("count", len(list)).Info("Symbol master refreshed")
	return nil
}
