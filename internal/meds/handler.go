package meds

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dosewise/dosewise-platform/internal/labelrules"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// ScheduleInvalidator is notified after any mutation so the consuming layer
// can enqueue a schedule recompute. Schedules are never patched in place.
type ScheduleInvalidator interface {
	MedicationsChanged(ctx context.Context, patientID string)
}

// RulePrefiller supplies label-derived rules used to pre-fill fields the
// caller left empty. Best-effort enrichment only.
type RulePrefiller interface {
	Rules(ctx context.Context, medName string) labelrules.ParsedRule
}

type Handler struct {
	repo        *Repository
	invalidator ScheduleInvalidator
	prefiller   RulePrefiller
	logger      *logging.Logger
}

func NewHandler(repo *Repository, invalidator ScheduleInvalidator, prefiller RulePrefiller, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, invalidator: invalidator, prefiller: prefiller, logger: logger}
}

// GET /patients/{patientID}/meds
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	medications, err := h.repo.ListActive(r.Context(), patientID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"medications": medications})
}

// POST /patients/{patientID}/meds
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	var m Medication
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid json: "+err.Error(), 400)
		return
	}
	m.ID = uuid.NewString()
	m.PatientID = patientID
	if msg := validate(&m); msg != "" {
		http.Error(w, msg, 400)
		return
	}

	h.prefill(r.Context(), &m)

	if err := h.repo.Upsert(r.Context(), &m); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	h.invalidate(r.Context(), patientID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(m)
}

// GET /patients/{patientID}/meds/{medID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// PUT /patients/{patientID}/meds/{medID}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.load(w, r)
	if !ok {
		return
	}

	var m Medication
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid json: "+err.Error(), 400)
		return
	}
	m.ID = existing.ID
	m.PatientID = existing.PatientID
	m.CreatedAt = existing.CreatedAt
	if msg := validate(&m); msg != "" {
		http.Error(w, msg, 400)
		return
	}

	if err := h.repo.Upsert(r.Context(), &m); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	h.invalidate(r.Context(), m.PatientID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// DELETE /patients/{patientID}/meds/{medID} archives the medication.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}

	if err := h.repo.Archive(r.Context(), m.ID); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	h.invalidate(r.Context(), m.PatientID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "archived"})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Medication, bool) {
	medID := chi.URLParam(r, "medID")
	if medID == "" {
		http.Error(w, "missing medication id", 400)
		return nil, false
	}
	m, err := h.repo.Get(r.Context(), medID)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return nil, false
	}
	if m == nil || m.PatientID != chi.URLParam(r, "patientID") {
		http.Error(w, "not found", 404)
		return nil, false
	}
	return m, true
}

// prefill fills food rule, min interval and avoid list from label text when
// the caller supplied none of them.
func (h *Handler) prefill(ctx context.Context, m *Medication) {
	if h.prefiller == nil {
		return
	}
	if m.FoodRule != FoodRuleNone && m.FoodRule != "" {
		return
	}
	rule := h.prefiller.Rules(ctx, m.Name)
	if m.FoodRule == "" || m.FoodRule == FoodRuleNone {
		m.FoodRule = ParseFoodRule(string(rule.Food))
	}
	if m.MinIntervalHours == 0 {
		m.MinIntervalHours = rule.MinIntervalHours
	}
	if len(m.Avoid) == 0 {
		m.Avoid = rule.Avoid
	}
}

func (h *Handler) invalidate(ctx context.Context, patientID string) {
	if h.invalidator == nil {
		return
	}
	h.invalidator.MedicationsChanged(ctx, patientID)
}

func validate(m *Medication) string {
	if m.FoodRule == "" {
		m.FoodRule = FoodRuleNone
	}
	if m.ActiveIngredients == nil {
		m.ActiveIngredients = []string{}
	}
	if m.StartDate.IsZero() {
		m.StartDate = time.Now().UTC()
	}
	if m.EndDate.IsZero() {
		m.EndDate = m.StartDate.AddDate(1, 0, 0)
	}
	if m.Name == "" {
		return "name is required"
	}
	if m.FrequencyPerDay < 1 {
		return "frequency_per_day must be >= 1"
	}
	if m.EndDate.Before(m.StartDate) {
		return "end_date must not precede start_date"
	}
	return ""
}
