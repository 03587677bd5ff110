package meds

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const medColumns = `id, patient_id, name, active_ingredients, frequency_per_day,
	       start_date, end_date, food_rule, min_interval_hours, avoid, notes,
	       archived, created_at, updated_at`

// ListActive returns non-archived medications for a patient, newest first.
func (r *Repository) ListActive(ctx context.Context, patientID string) ([]Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+medColumns+`
		FROM medications WHERE patient_id = $1 AND NOT archived
		ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if out == nil {
		out = []Medication{}
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (*Medication, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+medColumns+`
		FROM medications WHERE id = $1`, id)
	m, err := scanMedication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) Upsert(ctx context.Context, m *Medication) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (id, patient_id, name, active_ingredients, frequency_per_day,
		    start_date, end_date, food_rule, min_interval_hours, avoid, notes,
		    archived, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
		ON CONFLICT (id) DO UPDATE SET
		    patient_id=EXCLUDED.patient_id, name=EXCLUDED.name,
		    active_ingredients=EXCLUDED.active_ingredients,
		    frequency_per_day=EXCLUDED.frequency_per_day,
		    start_date=EXCLUDED.start_date, end_date=EXCLUDED.end_date,
		    food_rule=EXCLUDED.food_rule, min_interval_hours=EXCLUDED.min_interval_hours,
		    avoid=EXCLUDED.avoid, notes=EXCLUDED.notes, archived=EXCLUDED.archived,
		    updated_at=$13`,
		m.ID, m.PatientID, m.Name, pq.Array(m.ActiveIngredients), m.FrequencyPerDay,
		m.StartDate, m.EndDate, string(m.FoodRule), m.MinIntervalHours,
		pq.Array(m.Avoid), m.Notes, m.Archived, now)
	return err
}

// Archive soft-deletes a medication so it stops appearing in schedules.
func (r *Repository) Archive(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE medications SET archived = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	return err
}

// DeleteForPatient removes every medication row for a patient.
func (r *Repository) DeleteForPatient(ctx context.Context, patientID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM medications WHERE patient_id = $1`, patientID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (Medication, error) {
	var m Medication
	var foodRule string
	err := row.Scan(&m.ID, &m.PatientID, &m.Name, pq.Array(&m.ActiveIngredients),
		&m.FrequencyPerDay, &m.StartDate, &m.EndDate, &foodRule, &m.MinIntervalHours,
		pq.Array(&m.Avoid), &m.Notes, &m.Archived, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Medication{}, err
	}
	m.FoodRule = ParseFoodRule(foodRule)
	if m.ActiveIngredients == nil {
		m.ActiveIngredients = []string{}
	}
	return m, nil
}
