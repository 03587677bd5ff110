// Package routine stores each patient's daily meal/sleep time pattern.
package routine

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Routine is the patient's fixed daily pattern. All fields are "HH:MM" in
// 24-hour local time and apply identically every day. Bedtime numerically
// earlier than wake time means the patient sleeps past midnight; the
// scheduler handles that case explicitly.
type Routine struct {
	Wake      string `json:"wake"`
	Bedtime   string `json:"bedtime"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// Default returns a conventional daily pattern used when a patient has not
// configured one.
func Default() Routine {
	return Routine{
		Wake:      "07:00",
		Bedtime:   "22:30",
		Breakfast: "08:00",
		Lunch:     "12:30",
		Dinner:    "18:30",
	}
}

// Validate checks every field parses as HH:MM.
func (r Routine) Validate() error {
	fields := map[string]string{
		"wake":      r.Wake,
		"bedtime":   r.Bedtime,
		"breakfast": r.Breakfast,
		"lunch":     r.Lunch,
		"dinner":    r.Dinner,
	}
	for name, v := range fields {
		if _, err := ParseClock(v); err != nil {
			return fmt.Errorf("routine: %s: %w", name, err)
		}
	}
	return nil
}

// DayTimes is a routine resolved onto one concrete date.
type DayTimes struct {
	Wake      time.Time
	Bedtime   time.Time
	Breakfast time.Time
	Lunch     time.Time
	Dinner    time.Time
}

// On resolves the routine onto the date portion of day. The caller is
// responsible for overnight-bedtime policy.
func (r Routine) On(day time.Time) (DayTimes, error) {
	resolve := func(v string) (time.Time, error) {
		mins, err := ParseClock(v)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(day.Year(), day.Month(), day.Day(), mins/60, mins%60, 0, 0, day.Location()), nil
	}

	var (
		dt  DayTimes
		err error
	)
	if dt.Wake, err = resolve(r.Wake); err != nil {
		return DayTimes{}, err
	}
	if dt.Bedtime, err = resolve(r.Bedtime); err != nil {
		return DayTimes{}, err
	}
	if dt.Breakfast, err = resolve(r.Breakfast); err != nil {
		return DayTimes{}, err
	}
	if dt.Lunch, err = resolve(r.Lunch); err != nil {
		return DayTimes{}, err
	}
	if dt.Dinner, err = resolve(r.Dinner); err != nil {
		return DayTimes{}, err
	}
	return dt, nil
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(v string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(v), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}
