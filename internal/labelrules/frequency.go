package labelrules

import "math"

// SuggestFrequency maps a minimum dosing interval in hours to a suggested
// doses-per-day count. Standard intervals map exactly; anything else rounds
// 24/hours and clamps to [1,6].
func SuggestFrequency(hours float64) int {
	switch hours {
	case 24:
		return 1
	case 12:
		return 2
	case 8:
		return 3
	case 6:
		return 4
	}
	if hours <= 0 {
		return 1
	}
	n := int(math.Round(24 / hours))
	if n < 1 {
		n = 1
	}
	if n > 6 {
		n = 6
	}
	return n
}
