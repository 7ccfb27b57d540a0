package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/momentum-scanner/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32 // fail this many runs first
	runs     atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(context.Context) error {
	if n := j.runs.Add(1); n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func waitForHistory(t *testing.T, s *Scheduler, name string, n int) []JobResult {
	t.Helper()
	var results []JobResult
	require.Eventually(t, func() bool {
		var err error
		results, err = s.GetJobHistory(name)
		return err == nil && len(results) >= n
	}, 2*time.Second, 10*time.Millisecond)
	return results
}

func TestAddJob(t *testing.T) {
	s := New(DefaultOptions(), logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "scan", schedule: "0 45 15 * * 1-5"}))
	assert.Error(t, s.AddJob(&countingJob{name: "scan", schedule: "@daily"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "bad", schedule: "not a cron"}))

	next, ok := s.Next("scan")
	require.True(t, ok)
	assert.Equal(t, 15, next.Hour())
	assert.Equal(t, 45, next.Minute())
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := New(DefaultOptions(), logger.Nop())
	job := &countingJob{name: "scan", schedule: "@daily"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("scan"))
	results := waitForHistory(t, s, "scan", 1)

	assert.True(t, results[0].Success)
	assert.Equal(t, int32(1), job.runs.Load())
	assert.Error(t, s.RunJob("missing"))
}

func TestRunJob_Retries(t *testing.T) {
	s := New(Options{MaxRetries: 2, RetryDelay: time.Millisecond}, logger.Nop())
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))
	results := waitForHistory(t, s, "flaky", 1)

	assert.True(t, results[0].Success)
	assert.Equal(t, int32(3), job.runs.Load())
}

func TestRunJob_FailureRecorded(t *testing.T) {
	s := New(DefaultOptions(), logger.Nop())
	job := &countingJob{name: "broken", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("broken"))
	results := waitForHistory(t, s, "broken", 1)

	assert.False(t, results[0].Success)
	assert.Equal(t, "transient", results[0].Error)

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRemoveJob(t *testing.T) {
	s := New(DefaultOptions(), logger.Nop())
	require.NoError(t, s.AddJob(&countingJob{name: "scan", schedule: "@daily"}))

	require.NoError(t, s.RemoveJob("scan"))
	assert.Error(t, s.RemoveJob("scan"))
	_, ok := s.Next("scan")
	assert.False(t, ok)
	assert.NotContains(t, s.GetJobStats(), "scan")
}

func TestStartStop(t *testing.T) {
	s := New(DefaultOptions(), logger.Nop())
	job := &countingJob{name: "tick", schedule: "* * * * * *"}
	require.NoError(t, s.AddJob(job))

	s.Start()
	require.Eventually(t, func() bool { return job.runs.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Empty(t, h.GetLatestResults(0))
	assert.InDelta(t, 0.5, h.GetSuccessRate(), 0.01)
	assert.Len(t, h.GetFailedResults(), maxHistory/2)
}
