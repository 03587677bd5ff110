package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dosewise/dosewise-platform/internal/interactions"
	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/routine"
	"github.com/dosewise/dosewise-platform/internal/schedule"
)

type stubMedications struct {
	medications []meds.Medication
	err         error
}

func (s stubMedications) ListActive(context.Context, string) ([]meds.Medication, error) {
	return s.medications, s.err
}

type stubRoutines struct{}

func (stubRoutines) GetOrDefault(context.Context, string) (routine.Routine, error) {
	return routine.Default(), nil
}

func testEngine() *interactions.Engine {
	return interactions.NewEngine(interactions.Table{
		Classes: []interactions.Class{
			{Name: "anticoagulants", Members: []string{"warfarin"}, AvoidWith: []string{"nsaids"}},
			{Name: "nsaids", Members: []string{"ibuprofen"}},
		},
	})
}

func scheduleRouter(medications MedicationSource, engine *interactions.Engine) chi.Router {
	builder := schedule.NewBuilder(engine, schedule.BuilderConfig{}, nil, nil)
	h := NewScheduleHandler(medications, stubRoutines{}, builder, engine, nil)

	r := chi.NewRouter()
	r.Get("/patients/{patientID}/schedule", h.Get)
	return r
}

func activeMed(id string, freq int, rule meds.FoodRule) meds.Medication {
	return meds.Medication{
		ID:              id,
		Name:            id,
		FrequencyPerDay: freq,
		StartDate:       time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		FoodRule:        rule,
	}
}

func TestScheduleHandlerGet(t *testing.T) {
	r := scheduleRouter(stubMedications{medications: []meds.Medication{
		activeMed("metformin", 1, meds.FoodRuleAfter),
		activeMed("ibuprofen", 1, meds.FoodRuleAfter),
	}}, testEngine())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/patients/p1/schedule?date=2024-01-01", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		PatientID                string          `json:"patient_id"`
		Date                     string          `json:"date"`
		Slots                    []schedule.Slot `json:"slots"`
		Doses                    []schedule.Dose `json:"doses"`
		InteractionDataAvailable bool            `json:"interaction_data_available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "p1", resp.PatientID)
	assert.Equal(t, "2024-01-01", resp.Date)
	// No conflict between these two, so they share one slot.
	assert.Len(t, resp.Slots, 1)
	assert.Len(t, resp.Doses, 2)
	assert.True(t, resp.InteractionDataAvailable)
}

func TestScheduleHandlerInvalidDate(t *testing.T) {
	r := scheduleRouter(stubMedications{}, testEngine())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/patients/p1/schedule?date=January", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerReportsMissingInteractionData(t *testing.T) {
	empty := interactions.NewEngine(interactions.Table{})
	r := scheduleRouter(stubMedications{}, empty)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/patients/p1/schedule?date=2024-01-01", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"interaction_data_available":false`)
}

func TestInteractionsCheck(t *testing.T) {
	h := NewInteractionsHandler(testEngine(), nil, nil)
	r := chi.NewRouter()
	r.Post("/interactions/check", h.Check)

	body := `{"medications":[{"id":"m1","name":"warfarin"},{"id":"m2","name":"Advil","ingredients":["ibuprofen"]}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/interactions/check", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Conflicts                []interactions.Conflict `json:"conflicts"`
		InteractionDataAvailable bool                    `json:"interaction_data_available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, interactions.KindAvoid, resp.Conflicts[0].Kind)
	assert.True(t, resp.InteractionDataAvailable)
}

func TestInteractionsCheckRequiresTwoMeds(t *testing.T) {
	h := NewInteractionsHandler(testEngine(), nil, nil)
	r := chi.NewRouter()
	r.Post("/interactions/check", h.Check)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/interactions/check", strings.NewReader(`{"medications":[{"name":"warfarin"}]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInteractionsCheckNoConflicts(t *testing.T) {
	h := NewInteractionsHandler(testEngine(), nil, nil)
	r := chi.NewRouter()
	r.Post("/interactions/check", h.Check)

	body := `{"medications":[{"name":"lisinopril"},{"name":"metformin"}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/interactions/check", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"conflicts":[]`)
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
