// Package schedule turns a patient's medications and daily routine into the
// day's reminder slots. The pipeline is pure computation: anchor generation
// per medication, greedy slot clustering across medications, then a
// separation pass for interaction constraints. Consumers recompute the whole
// schedule whenever any input changes; nothing here is persisted.
package schedule

import (
	"time"

	"github.com/dosewise/dosewise-platform/internal/interactions"
	"github.com/dosewise/dosewise-platform/internal/meds"
	"github.com/dosewise/dosewise-platform/internal/observability/metrics"
	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// Dose is one published administration instant for one medication.
type Dose struct {
	Time       time.Time       `json:"time"`
	Medication meds.Medication `json:"medication"`
}

// Candidate is a pre-clustering desired dose time for one medication.
type Candidate struct {
	Time       time.Time
	Medication meds.Medication
}

// Slot is one clustered reminder event: a timestamp plus the medications
// that share it. Slot times drift toward the average of their members while
// clustering runs.
type Slot struct {
	Time        time.Time         `json:"time"`
	Medications []meds.Medication `json:"medications"`
}

// ConflictChecker answers pairwise interaction queries. A nil checker means
// no interaction awareness (fail-open).
type ConflictChecker interface {
	Between(a, b interactions.Subject) []interactions.Conflict
}

// BuilderConfig carries the tunable clustering knobs. Zero values take the
// defaults below.
type BuilderConfig struct {
	// MergeWindow is the maximum distance between a slot and a candidate
	// for the candidate to join the slot.
	MergeWindow time.Duration
	// MinSlotGap is the floor enforced between any two distinct slots.
	MinSlotGap time.Duration
}

const (
	defaultMergeWindow = 10 * time.Minute
	defaultMinSlotGap  = 15 * time.Minute
)

// Builder runs the scheduling pipeline. Safe for concurrent use; it holds no
// mutable state across calls.
type Builder struct {
	conflicts   ConflictChecker
	mergeWindow time.Duration
	minGap      time.Duration
	logger      *logging.Logger
	metrics     *metrics.SchedulingMetrics
}

func NewBuilder(conflicts ConflictChecker, cfg BuilderConfig, logger *logging.Logger, m *metrics.SchedulingMetrics) *Builder {
	if cfg.MergeWindow <= 0 {
		cfg.MergeWindow = defaultMergeWindow
	}
	if cfg.MinSlotGap <= 0 {
		cfg.MinSlotGap = defaultMinSlotGap
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Builder{
		conflicts:   conflicts,
		mergeWindow: cfg.MergeWindow,
		minGap:      cfg.MinSlotGap,
		logger:      logger,
		metrics:     m,
	}
}

func subjectFor(m meds.Medication) interactions.Subject {
	return interactions.Subject{ID: m.ID, Name: m.Name, Ingredients: m.ActiveIngredients}
}

// canCoSchedule reports whether two medications may share a slot: any
// conflict between them, avoid or separate, blocks co-scheduling.
func (b *Builder) canCoSchedule(a, c meds.Medication) bool {
	if b.conflicts == nil {
		return true
	}
	return len(b.conflicts.Between(subjectFor(a), subjectFor(c))) == 0
}

// crossConstraint computes the strongest constraint between two slots by
// checking every cross-slot medication pair.
func (b *Builder) crossConstraint(a, c *Slot) (anyAvoid bool, maxSeparateHours float64) {
	if b.conflicts == nil {
		return false, 0
	}
	for _, ma := range a.Medications {
		for _, mc := range c.Medications {
			for _, conflict := range b.conflicts.Between(subjectFor(ma), subjectFor(mc)) {
				switch conflict.Kind {
				case interactions.KindAvoid:
					anyAvoid = true
				case interactions.KindSeparate:
					if conflict.Hours > maxSeparateHours {
						maxSeparateHours = conflict.Hours
					}
				}
			}
		}
	}
	return anyAvoid, maxSeparateHours
}
