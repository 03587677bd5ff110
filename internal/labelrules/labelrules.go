// Package labelrules extracts structured dosing rules from free-form drug
// label text. Parsing is best-effort and total: absent signals yield empty
// fields, never errors.
package labelrules

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// FoodRule classifies how label text times a medication against meals.
type FoodRule string

const (
	FoodNone   FoodRule = "none"
	FoodBefore FoodRule = "before_food"
	FoodAfter  FoodRule = "after_food"
)

// ParsedRule is the structured result of parsing one label's text.
type ParsedRule struct {
	Food FoodRule `json:"food_rule"`
	// MinIntervalHours is zero when the label states no dosing interval.
	MinIntervalHours float64  `json:"min_interval_hours,omitempty"`
	Avoid            []string `json:"avoid,omitempty"`
}

var afterFoodPhrases = []string{
	"take with food",
	"with food",
	"after food",
	"after meals",
	"after a meal",
	"after eating",
	"with meals",
	"with a meal",
	"with milk",
	"with or after food",
}

var beforeFoodPhrases = []string{
	"empty stomach",
	"on an empty stomach",
	"before food",
	"before meals",
	"before a meal",
	"before eating",
	"1 hour before or 2 hours after meals",
	"one hour before or two hours after meals",
	"30 minutes before a meal",
	"half an hour before meals",
}

var (
	afterMealRe  = regexp.MustCompile(`after\s+(a\s+)?meals?\b`)
	beforeMealRe = regexp.MustCompile(`before\s+(a\s+)?meals?\b`)

	everyNHoursRe  = regexp.MustCompile(`every\s+(\d+)\s*(?:hours?|hrs?)\b`)
	qNhRe          = regexp.MustCompile(`\bq\s*(\d+)\s*h\b`)
	hourRangeRe    = regexp.MustCompile(`every\s+(\d+)\s*(?:to|-|–)\s*(\d+)\s*(?:hours?|hrs?)\b`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// verbalFrequencies maps spoken dosing frequencies to their hour interval.
var verbalFrequencies = []struct {
	phrase string
	hours  float64
}{
	{"once daily", 24}, {"once a day", 24}, {"once per day", 24},
	{"twice daily", 12}, {"twice a day", 12}, {"twice per day", 12}, {"bid", 12},
	{"three times daily", 8}, {"three times a day", 8}, {"tid", 8},
	{"four times daily", 6}, {"four times a day", 6}, {"qid", 6},
}

var avoidCues = []string{
	"avoid",
	"do not take with",
	"don't take with",
	"do not take together",
	"do not consume",
	"separate from",
	"stay away from",
	"should not be taken with",
}

// avoidVocabulary is the curated set of substances a label can warn against.
var avoidVocabulary = []string{
	"alcohol",
	"aluminum",
	"antacids",
	"caffeine",
	"calcium",
	"dairy",
	"grapefruit",
	"iron",
	"magnesium",
	"milk",
	"nsaids",
	"potassium",
	"st. john's wort",
	"vitamin c",
	"zinc",
}

// Parse extracts a ParsedRule from arbitrary label/informational text.
// HTML is stripped and matching is case-insensitive.
func Parse(text string) ParsedRule {
	normalized := normalize(text)
	if normalized == "" {
		return ParsedRule{Food: FoodNone}
	}

	return ParsedRule{
		Food:             classifyFood(normalized),
		MinIntervalHours: extractInterval(normalized),
		Avoid:            extractAvoidList(normalized),
	}
}

func normalize(text string) string {
	stripped := stripHTML(text)
	lowered := strings.ToLower(stripped)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(lowered, " "))
}

// classifyFood prefers before_food when both phrase sets match: labels that
// mention both are typically describing a strict empty-stomach window.
func classifyFood(text string) FoodRule {
	before := containsAny(text, beforeFoodPhrases)
	after := containsAny(text, afterFoodPhrases)

	switch {
	case before:
		return FoodBefore
	case after:
		return FoodAfter
	case beforeMealRe.MatchString(text):
		return FoodBefore
	case afterMealRe.MatchString(text):
		return FoodAfter
	default:
		return FoodNone
	}
}

// extractInterval returns the stated minimum dosing interval in hours, or
// zero. Priority: explicit "every N hours"/qNh, then the minimum bound of a
// stated range, then verbal frequency words. First match wins.
func extractInterval(text string) float64 {
	if m := everyNHoursRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return float64(n)
		}
	}
	if m := qNhRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return float64(n)
		}
	}
	if m := hourRangeRe.FindStringSubmatch(text); m != nil {
		lo, errLo := strconv.Atoi(m[1])
		hi, errHi := strconv.Atoi(m[2])
		if errLo == nil && errHi == nil && lo > 0 {
			// The lower bound keeps dose spacing conservative.
			if hi < lo {
				lo = hi
			}
			return float64(lo)
		}
	}
	for _, vf := range verbalFrequencies {
		if containsWord(text, vf.phrase) {
			return vf.hours
		}
	}
	return 0
}

// extractAvoidList applies a co-occurrence heuristic: a vocabulary term is
// reported only when an avoidance cue appears somewhere in the same text.
func extractAvoidList(text string) []string {
	if !containsAny(text, avoidCues) {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, term := range avoidVocabulary {
		if !strings.Contains(text, term) {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// containsWord matches a phrase on word boundaries so "bid" does not match
// inside "forbidden".
func containsWord(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		startOK := start == 0 || !isWordChar(text[start-1])
		endOK := end == len(text) || !isWordChar(text[end])
		if startOK && endOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
