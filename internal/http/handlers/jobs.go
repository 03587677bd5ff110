package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dosewise/dosewise-platform/internal/reminders"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// JobReader looks up recompute job records.
type JobReader interface {
	GetJob(ctx context.Context, jobID string) (*reminders.JobRecord, error)
}

// JobStatusHandler exposes recompute job state to admin tooling.
type JobStatusHandler struct {
	jobs   JobReader
	logger *logging.Logger
}

func NewJobStatusHandler(jobs JobReader, logger *logging.Logger) *JobStatusHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &JobStatusHandler{jobs: jobs, logger: logger}
}

// GET /admin/jobs/{jobID}
func (h *JobStatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if h.jobs == nil {
		http.Error(w, "job tracking not configured", http.StatusServiceUnavailable)
		return
	}

	job, err := h.jobs.GetJob(r.Context(), jobID)
	if errors.Is(err, reminders.ErrJobNotFound) {
		http.Error(w, "not found", 404)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}
