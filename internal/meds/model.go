// Package meds holds the medication domain model and its persistence.
package meds

import "time"

// FoodRule describes how a medication must be timed relative to meals.
type FoodRule string

const (
	FoodRuleNone   FoodRule = "none"
	FoodRuleBefore FoodRule = "before_food"
	FoodRuleAfter  FoodRule = "after_food"
)

// ParseFoodRule normalizes a stored/user-supplied value; anything
// unrecognized maps to FoodRuleNone.
func ParseFoodRule(s string) FoodRule {
	switch FoodRule(s) {
	case FoodRuleBefore:
		return FoodRuleBefore
	case FoodRuleAfter:
		return FoodRuleAfter
	default:
		return FoodRuleNone
	}
}

// Medication is one prescribed medication for a patient.
// FrequencyPerDay >= 1 and StartDate <= EndDate are enforced at the API
// boundary; the scheduler assumes them.
type Medication struct {
	ID                string    `json:"id"`
	PatientID         string    `json:"patient_id"`
	Name              string    `json:"name"`
	ActiveIngredients []string  `json:"active_ingredients"`
	FrequencyPerDay   int       `json:"frequency_per_day"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	FoodRule          FoodRule  `json:"food_rule"`
	// MinIntervalHours is the minimum spacing between doses, usually
	// pre-filled from label parsing. Zero means no stated minimum.
	MinIntervalHours float64  `json:"min_interval_hours,omitempty"`
	Avoid            []string `json:"avoid,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	Archived         bool     `json:"archived"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ActiveOn reports whether the medication's date range overlaps the day
// containing t (inclusive on both ends of the range).
func (m Medication) ActiveOn(day time.Time) bool {
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)
	return !m.StartDate.After(endOfDay) && !m.EndDate.Before(startOfDay)
}
