package schedule

import (
	"time"

	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/routine"
)

const (
	// afterFoodShift places after_food doses half an hour past the meal.
	afterFoodShift = 30 * time.Minute
	// beforeFoodShift places before_food doses 45 minutes ahead of the meal.
	beforeFoodShift = -45 * time.Minute
	// windowPadding keeps clamped anchors just inside [wake, bed].
	windowPadding = 15 * time.Minute
	// overnightBedFallback substitutes for a bedtime at or before wake time.
	overnightBedFallback = 16 * time.Hour
)

// PreferredTimes produces the day's candidate dose times for one medication
// given its food-timing rule, frequency and the patient's routine. Pure and
// total: a medication inactive on the day yields nil.
func PreferredTimes(m meds.Medication, day time.Time, rt routine.Routine) []time.Time {
	if !m.ActiveOn(day) {
		return nil
	}

	dt, err := rt.On(day)
	if err != nil {
		// A malformed routine never reaches the scheduler through the
		// store, but stay total: fall back to the default pattern.
		dt, _ = routine.Default().On(day)
	}

	wake := dt.Wake
	bed := dt.Bedtime
	if !bed.After(wake) {
		bed = wake.Add(overnightBedFallback)
	}

	var anchors []time.Time
	switch m.FoodRule {
	case meds.FoodRuleAfter:
		for _, meal := range selectMeals(m.FrequencyPerDay, dt, bed, false) {
			anchors = append(anchors, meal.Add(afterFoodShift))
		}
	case meds.FoodRuleBefore:
		for _, meal := range selectMeals(m.FrequencyPerDay, dt, bed, true) {
			anchors = append(anchors, meal.Add(beforeFoodShift))
		}
	default:
		anchors = evenSpread(m, wake, bed)
	}

	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	out := anchors[:0]
	for _, a := range anchors {
		a = clampToWindow(a, wake, bed)
		if a.Before(startOfDay) || !a.Before(endOfDay) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// selectMeals picks up to frequency meal anchors from the day's routine.
// A once-daily after_food medication anchors on dinner; before_food prefers
// breakfast. Four or more doses use breakfast, lunch, dinner and bedtime.
func selectMeals(frequency int, dt routine.DayTimes, bed time.Time, preferBreakfast bool) []time.Time {
	switch {
	case frequency <= 1:
		if preferBreakfast {
			return []time.Time{dt.Breakfast}
		}
		return []time.Time{dt.Dinner}
	case frequency == 2:
		return []time.Time{dt.Breakfast, dt.Dinner}
	case frequency == 3:
		return []time.Time{dt.Breakfast, dt.Lunch, dt.Dinner}
	default:
		return []time.Time{dt.Breakfast, dt.Lunch, dt.Dinner, bed}
	}
}

// evenSpread distributes doses across [wake, bed]. A stated minimum dosing
// interval is a floor on the spacing step, never relaxed; a single dose
// anchors at wake.
func evenSpread(m meds.Medication, wake, bed time.Time) []time.Time {
	n := m.FrequencyPerDay
	if n < 1 {
		n = 1
	}
	step := bed.Sub(wake) / time.Duration(n)
	if m.MinIntervalHours > 0 {
		minStep := time.Duration(m.MinIntervalHours * float64(time.Hour))
		if minStep > step {
			step = minStep
		}
	}

	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, wake.Add(time.Duration(i)*step))
	}
	return out
}

// clampToWindow nudges anchors at or outside [wake, bed] just inside it, so
// no dose lands while the patient is presumed asleep.
func clampToWindow(t, wake, bed time.Time) time.Time {
	if !t.After(wake) {
		return wake.Add(windowPadding)
	}
	if !t.Before(bed) {
		return bed.Add(-windowPadding)
	}
	return t
}
