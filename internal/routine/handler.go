package routine

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// ScheduleInvalidator mirrors the meds package hook: routine changes also
// trigger a full schedule recompute.
type ScheduleInvalidator interface {
	RoutineChanged(ctx context.Context, patientID string)
}

type Handler struct {
	store       *Store
	invalidator ScheduleInvalidator
	logger      *logging.Logger
}

func NewHandler(store *Store, invalidator ScheduleInvalidator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, invalidator: invalidator, logger: logger}
}

// GET /patients/{patientID}/routine
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	routine, err := h.store.GetOrDefault(r.Context(), patientID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(routine)
}

// PUT /patients/{patientID}/routine
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var routine Routine
	if err := json.NewDecoder(r.Body).Decode(&routine); err != nil {
		http.Error(w, "invalid json: "+err.Error(), 400)
		return
	}
	if err := routine.Validate(); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	if err := h.store.Put(r.Context(), patientID, routine); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	if h.invalidator != nil {
		h.invalidator.RoutineChanged(r.Context(), patientID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(routine)
}
