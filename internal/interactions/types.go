// Package interactions evaluates pairwise drug-interaction constraints from
// a class/alias rule table.
package interactions

import (
	"encoding/json"
	"fmt"
)

// Subject is one medication as seen by the engine: a display name plus its
// active ingredients.
type Subject struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// ConflictKind discriminates the two constraint variants.
type ConflictKind int

const (
	// KindAvoid means the pair must never be co-scheduled.
	KindAvoid ConflictKind = iota
	// KindSeparate means the pair must be spaced by at least Hours.
	KindSeparate
)

func (k ConflictKind) String() string {
	switch k {
	case KindAvoid:
		return "avoid"
	case KindSeparate:
		return "separate"
	default:
		return "unknown"
	}
}

// Conflict is one constraint between an unordered pair of medications.
// Hours is meaningful only when Kind is KindSeparate.
type Conflict struct {
	A           string       `json:"a"`
	B           string       `json:"b"`
	Kind        ConflictKind `json:"-"`
	Hours       float64      `json:"hours,omitempty"`
	Explanation string       `json:"explanation"`
}

// KindLabel is the wire form of Kind.
func (c Conflict) KindLabel() string { return c.Kind.String() }

// MarshalJSON emits Kind as its label rather than a bare integer.
func (c Conflict) MarshalJSON() ([]byte, error) {
	type alias Conflict
	return json.Marshal(struct {
		alias
		Kind string `json:"kind"`
	}{alias(c), c.Kind.String()})
}

func (c *Conflict) UnmarshalJSON(data []byte) error {
	type alias Conflict
	aux := struct {
		*alias
		Kind string `json:"kind"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch aux.Kind {
	case "separate":
		c.Kind = KindSeparate
	default:
		c.Kind = KindAvoid
	}
	return nil
}

func (c Conflict) String() string {
	switch c.Kind {
	case KindAvoid:
		return fmt.Sprintf("avoid(%s, %s)", c.A, c.B)
	case KindSeparate:
		return fmt.Sprintf("separate(%s, %s, %.1fh)", c.A, c.B, c.Hours)
	default:
		return fmt.Sprintf("unknown(%s, %s)", c.A, c.B)
	}
}
