package interactions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dosewise/dosewise-platform/pkg/logging"
)

// Engine answers pairwise conflict queries against a rule table. A nil or
// empty engine is valid and reports no conflicts: scheduling proceeds
// without interaction awareness rather than blocking (fail-open).
type Engine struct {
	table Table
}

// NewEngine builds an engine over the given table.
func NewEngine(table Table) *Engine {
	return &Engine{table: table}
}

// NewEngineFromConfig loads the table at path, falling back to the embedded
// default when path is empty. Any load failure yields an empty (fail-open)
// engine and a warning.
func NewEngineFromConfig(path string, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	var (
		table Table
		err   error
	)
	if path == "" {
		table, err = DefaultTable()
	} else {
		table, err = LoadTable(path)
	}
	if err != nil {
		logger.Warn("interaction rule table unavailable, scheduling proceeds without interaction checks",
			"path", path, "error", err)
		return NewEngine(Table{})
	}
	return NewEngine(table)
}

// Loaded reports whether any interaction rules are in effect. Consumers can
// surface "interaction data unavailable" when false.
func (e *Engine) Loaded() bool {
	return e != nil && len(e.table.Classes) > 0
}

// CheckConflicts evaluates every unordered pair of subjects.
func (e *Engine) CheckConflicts(subjects []Subject) []Conflict {
	if !e.Loaded() {
		return nil
	}
	var out []Conflict
	for i := 0; i < len(subjects); i++ {
		for j := i + 1; j < len(subjects); j++ {
			out = append(out, e.Between(subjects[i], subjects[j])...)
		}
	}
	return out
}

// Between evaluates one unordered pair. Rule membership is directional in
// the table, so both orderings are checked; results are deduplicated by
// (pair, kind), keeping the maximum hours for separate conflicts.
func (e *Engine) Between(a, b Subject) []Conflict {
	if !e.Loaded() {
		return nil
	}

	var avoid *Conflict
	var separate *Conflict
	collect := func(c Conflict) {
		switch c.Kind {
		case KindAvoid:
			if avoid == nil {
				avoid = &c
			}
		case KindSeparate:
			if separate == nil || c.Hours > separate.Hours {
				separate = &c
			}
		}
	}

	e.directional(a, b, collect)
	e.directional(b, a, collect)

	var out []Conflict
	if avoid != nil {
		out = append(out, *avoid)
	}
	if separate != nil {
		out = append(out, *separate)
	}
	return out
}

// directional checks the classes matched by `from` against `to`. Iteration
// follows table order so output is deterministic.
func (e *Engine) directional(from, to Subject, emit func(Conflict)) {
	fromClasses := e.matchClasses(e.terms(from))
	toTerms := e.terms(to)
	toClasses := e.matchClasses(toTerms)

	for i := range e.table.Classes {
		class := &e.table.Classes[i]
		if _, ok := fromClasses[strings.ToLower(class.Name)]; !ok {
			continue
		}
		for _, entry := range class.AvoidWith {
			if e.entryMatches(entry, toTerms, toClasses) {
				emit(Conflict{
					A:           from.ID,
					B:           to.ID,
					Kind:        KindAvoid,
					Explanation: explain(class, entry, "avoid combining"),
				})
			}
		}
		for _, entry := range sortedKeys(class.SeparateFrom) {
			hours := class.SeparateFrom[entry]
			if e.entryMatches(entry, toTerms, toClasses) {
				emit(Conflict{
					A:           from.ID,
					B:           to.ID,
					Kind:        KindSeparate,
					Hours:       hours,
					Explanation: explain(class, entry, fmt.Sprintf("separate by at least %g hours", hours)),
				})
			}
		}
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// terms expands a subject's name and ingredients into lowercase match terms,
// following aliases to canonical substances.
func (e *Engine) terms(s Subject) []string {
	raw := append([]string{s.Name}, s.Ingredients...)
	var out []string
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		out = append(out, t)
		if canonical, ok := e.table.Aliases[t]; ok {
			out = append(out, strings.ToLower(canonical))
		}
	}
	return out
}

func (e *Engine) matchClasses(terms []string) map[string]*Class {
	out := make(map[string]*Class)
	for i := range e.table.Classes {
		class := &e.table.Classes[i]
		for _, member := range class.Members {
			if termsContain(terms, strings.ToLower(member)) {
				out[strings.ToLower(class.Name)] = class
				break
			}
		}
	}
	return out
}

// entryMatches resolves one avoid_with/separate_from entry against the other
// side: first as a class name, then as a bare substance term.
func (e *Engine) entryMatches(entry string, terms []string, classes map[string]*Class) bool {
	entry = strings.ToLower(strings.TrimSpace(entry))
	if entry == "" {
		return false
	}
	if _, ok := classes[entry]; ok {
		return true
	}
	if canonical, ok := e.table.Aliases[entry]; ok {
		entry = strings.ToLower(canonical)
	}
	return termsContain(terms, entry)
}

// termsContain matches substring-wise so "tetracycline 250mg" still matches
// the member "tetracycline".
func termsContain(terms []string, needle string) bool {
	for _, t := range terms {
		if strings.Contains(t, needle) {
			return true
		}
	}
	return false
}

func explain(class *Class, entry, action string) string {
	if class.Notes != "" {
		return class.Notes
	}
	return fmt.Sprintf("%s and %s: %s", class.Name, entry, action)
}
