package schedule

import (
	"sort"
	"time"
)

// enforceSeparation pushes slots apart when cross-slot medications require a
// minimum time gap. The default MinSlotGap applies between every pair of
// slots, including pairs with avoid conflicts, which impose at least the
// default gap but are not escalated beyond it.
//
// This is a single forward sweep over sorted pairs, not a fixed-point
// iteration: pushing one slot can re-violate a pair involving a third slot
// when three or more slot groups constrain each other mutually. That
// residual is a known limitation of the greedy pass.
func (b *Builder) enforceSeparation(slots []*Slot) []*Slot {
	if len(slots) < 2 {
		return slots
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Time.Before(slots[j].Time) })

	for i := 0; i < len(slots); i++ {
		for j := i + 1; j < len(slots); j++ {
			required := b.requiredGap(slots[i], slots[j])
			gap := slots[j].Time.Sub(slots[i].Time)
			if gap >= required {
				continue
			}
			// The later slot moves forward; the earlier one never moves
			// backward.
			slots[j].Time = slots[i].Time.Add(required)
			b.metrics.ObserveSeparationPush()
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].Time.Before(slots[j].Time) })
	return slots
}

// requiredGap is the strongest constraint between two slots: the maximum
// separate-hours found across cross-slot medication pairs, floored at the
// configured minimum slot gap.
func (b *Builder) requiredGap(a, c *Slot) time.Duration {
	required := b.minGap
	_, maxHours := b.crossConstraint(a, c)
	if sep := time.Duration(maxHours * float64(time.Hour)); sep > required {
		required = sep
	}
	return required
}
