package handlers

import (
	"net/http"

	"github.com/wonny/momentum-scanner/internal/scheduler"
)

// SchedulerHandler exposes scheduled job state
type SchedulerHandler struct {
	scheduler *scheduler.Scheduler
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(s *scheduler.Scheduler) *SchedulerHandler {
	return &SchedulerHandler{scheduler: s}
}

// GetJobs returns statistics for every registered job
// GET /api/scheduler/jobs
func (h *SchedulerHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.scheduler.GetJobStats())
}

// GetJobHistory returns the recorded runs of one job
// GET /api/scheduler/jobs/{name}/history
func (h *SchedulerHandler) GetJobHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.scheduler.GetJobHistory(pathVar(r, "name"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, history)
}

// RunJob runs a job now, outside its schedule
// POST /api/scheduler/jobs/{name}/run
func (h *SchedulerHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := pathVar(r, "name")
	if err := h.scheduler.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job":    name,
	})
}
