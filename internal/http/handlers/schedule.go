// Package handlers holds the HTTP endpoints that compose the scheduling
// pipeline: medications and routine in, clustered reminder slots out.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dosewise/dosewise-platform/internal/interactions"
	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/routine"
	"github.com/dosewise/dosewise-platform/internal/schedule"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// MedicationSource supplies the patient's active medications.
type MedicationSource interface {
	ListActive(ctx context.Context, patientID string) ([]meds.Medication, error)
}

// RoutineSource supplies the patient's daily routine.
type RoutineSource interface {
	GetOrDefault(ctx context.Context, patientID string) (routine.Routine, error)
}

// ScheduleHandler serves the computed day schedule. Schedules are always
// recomputed from their inputs, never read from storage.
type ScheduleHandler struct {
	medications MedicationSource
	routines    RoutineSource
	builder     *schedule.Builder
	engine      *interactions.Engine
	logger      *logging.Logger
}

func NewScheduleHandler(medications MedicationSource, routines RoutineSource, builder *schedule.Builder, engine *interactions.Engine, logger *logging.Logger) *ScheduleHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleHandler{
		medications: medications,
		routines:    routines,
		builder:     builder,
		engine:      engine,
		logger:      logger,
	}
}

type scheduleResponse struct {
	PatientID string          `json:"patient_id"`
	Date      string          `json:"date"`
	Slots     []schedule.Slot `json:"slots"`
	Doses     []schedule.Dose `json:"doses"`
	// InteractionDataAvailable is false when the rule table failed to load
	// and the schedule was built without interaction checks.
	InteractionDataAvailable bool `json:"interaction_data_available"`
}

// GET /patients/{patientID}/schedule?date=YYYY-MM-DD
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", 400)
			return
		}
		date = parsed
	}

	medications, err := h.medications.ListActive(r.Context(), patientID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	rt, err := h.routines.GetOrDefault(r.Context(), patientID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	slots := h.builder.BuildSlots(r.Context(), medications, rt, date)
	doses := schedule.Expand(slots)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scheduleResponse{
		PatientID:                patientID,
		Date:                     date.Format("2006-01-02"),
		Slots:                    slots,
		Doses:                    doses,
		InteractionDataAvailable: h.engine.Loaded(),
	})
}
