package schedule

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/routine"
)

var tracer = otel.Tracer("dosewise.internal.schedule")

// BuildSchedule computes the published schedule for one day: every active
// medication's candidate doses, clustered into the minimal slot set the
// greedy pass finds, separation-enforced, then expanded to (time, med)
// pairs sorted by time. Deterministic for identical inputs.
func (b *Builder) BuildSchedule(ctx context.Context, medications []meds.Medication, rt routine.Routine, date time.Time) []Dose {
	_, span := tracer.Start(ctx, "schedule.build")
	defer span.End()

	candidates := b.gatherCandidates(medications, rt, date)
	span.SetAttributes(
		attribute.Int("dosewise.candidates", len(candidates)),
		attribute.String("dosewise.date", date.Format("2006-01-02")),
	)
	if len(candidates) == 0 {
		b.metrics.ObserveBuild("empty", 0)
		return []Dose{}
	}

	slots := b.cluster(candidates)
	slots = b.enforceSeparation(slots)

	out := expand(slots)
	span.SetAttributes(attribute.Int("dosewise.slots", len(slots)))
	b.metrics.ObserveBuild("ok", len(slots))
	b.logger.Debug("schedule built",
		"date", date.Format("2006-01-02"),
		"candidates", len(candidates),
		"slots", len(slots),
	)
	return out
}

// BuildSlots is BuildSchedule stopping before expansion, for consumers that
// render one row per reminder event.
func (b *Builder) BuildSlots(ctx context.Context, medications []meds.Medication, rt routine.Routine, date time.Time) []Slot {
	_, span := tracer.Start(ctx, "schedule.build_slots")
	defer span.End()

	candidates := b.gatherCandidates(medications, rt, date)
	if len(candidates) == 0 {
		return []Slot{}
	}
	slots := b.enforceSeparation(b.cluster(candidates))

	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, *s)
	}
	return out
}

func (b *Builder) gatherCandidates(medications []meds.Medication, rt routine.Routine, date time.Time) []Candidate {
	var candidates []Candidate
	for _, m := range medications {
		for _, t := range PreferredTimes(m, date, rt) {
			candidates = append(candidates, Candidate{Time: t, Medication: m})
		}
	}

	// Time-ascending, with medication identity as tie-break so equal-time
	// candidates order identically on every run.
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].Time.Equal(candidates[j].Time) {
			return candidates[i].Time.Before(candidates[j].Time)
		}
		return candidates[i].Medication.ID < candidates[j].Medication.ID
	})
	return candidates
}

// cluster greedily assigns each candidate to the first slot (in creation
// order) within the merge window whose members can all be co-scheduled with
// it. Joining a slot moves the slot time to the average of its previous time
// and the candidate's; the drift is order-dependent, a known characteristic
// of the greedy approach.
func (b *Builder) cluster(candidates []Candidate) []*Slot {
	var slots []*Slot
	for _, c := range candidates {
		var target *Slot
		for _, s := range slots {
			if absDuration(s.Time.Sub(c.Time)) > b.mergeWindow {
				continue
			}
			if !b.slotAccepts(s, c.Medication) {
				continue
			}
			target = s
			break
		}
		if target == nil {
			slots = append(slots, &Slot{
				Time:        c.Time,
				Medications: []meds.Medication{c.Medication},
			})
			continue
		}
		target.Medications = append(target.Medications, c.Medication)
		target.Time = midpoint(target.Time, c.Time)
	}
	return slots
}

func (b *Builder) slotAccepts(s *Slot, m meds.Medication) bool {
	for _, member := range s.Medications {
		if member.ID == m.ID {
			// Same medication always shares its own slot.
			continue
		}
		if !b.canCoSchedule(member, m) {
			return false
		}
	}
	return true
}

// Expand flattens slots into (time, medication) doses sorted by time.
func Expand(slots []Slot) []Dose {
	refs := make([]*Slot, 0, len(slots))
	for i := range slots {
		refs = append(refs, &slots[i])
	}
	return expand(refs)
}

func expand(slots []*Slot) []Dose {
	sort.Slice(slots, func(i, j int) bool { return slots[i].Time.Before(slots[j].Time) })

	var out []Dose
	for _, s := range slots {
		for _, m := range s.Medications {
			out = append(out, Dose{Time: s.Time, Medication: m})
		}
	}
	if out == nil {
		out = []Dose{}
	}
	return out
}

func midpoint(a, c time.Time) time.Time {
	return a.Add(c.Sub(a) / 2)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
