package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dosewise/dosewise-platform/internal/interactions"
	"github.com/dosewise/dosewise-platform/internal/observability/metrics"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// InteractionsHandler answers ad-hoc conflict checks for a medication list,
// without touching any stored patient data.
type InteractionsHandler struct {
	engine  *interactions.Engine
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

func NewInteractionsHandler(engine *interactions.Engine, m *metrics.SchedulingMetrics, logger *logging.Logger) *InteractionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &InteractionsHandler{engine: engine, metrics: m, logger: logger}
}

type interactionCheckRequest struct {
	Medications []interactions.Subject `json:"medications"`
}

type interactionCheckResponse struct {
	Conflicts                []interactions.Conflict `json:"conflicts"`
	InteractionDataAvailable bool                    `json:"interaction_data_available"`
}

// POST /interactions/check
func (h *InteractionsHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req interactionCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), 400)
		return
	}
	if len(req.Medications) < 2 {
		http.Error(w, "at least two medications required", 400)
		return
	}

	conflicts := h.engine.CheckConflicts(req.Medications)
	if conflicts == nil {
		conflicts = []interactions.Conflict{}
	}
	for _, c := range conflicts {
		h.metrics.ObserveConflict(c.KindLabel())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(interactionCheckResponse{
		Conflicts:                conflicts,
		InteractionDataAvailable: h.engine.Loaded(),
	})
}
