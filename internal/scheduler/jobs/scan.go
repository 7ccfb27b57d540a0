package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/momentum-scanner/internal/scan"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// ScanJob runs the momentum scan on a schedule
// ⭐ SSOT: 정기 스캔 스케줄은 이 Job에서만
type ScanJob struct {
	runner   *scan.Runner
	schedule string
	logger   *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(runner *scan.Runner, schedule string, log *logger.Logger) *ScanJob {
	return &ScanJob{
		runner:   runner,
		schedule: schedule,
		logger:   log.WithModule("scan_job"),
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "momentum_scan"
}

// Schedule returns the cron schedule (default: weekdays after the NSE close)
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan. A scan already running (e.g. started from the API)
// is not an error.
func (j *ScanJob) Run(ctx context.Context) error {
	result, err := j.runner.Run(ctx)
	if errors.Is(err, scan.ErrScanInProgress) {
		j.logger.Warn("Scan already in progress, skipping scheduled run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("scheduled scan: %w", err)
	}

	if result.Empty() {
		j.logger.WithField("requested", result.Requested).Warn("Scheduled scan produced no records")
		return nil
	}

	j.logger.WithFields(map[string]interface{}{
		"scan_id":  result.ID,
		"produced": result.Produced(),
		"momentum": len(result.Momentum),
	}).Info("Scheduled scan completed")

	return nil
}
