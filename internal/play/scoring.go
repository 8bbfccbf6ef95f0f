package play

import "math"

// Points returns the reward for a correct answer given with remaining
// seconds left out of limit: 25% of base at the last instant, scaling
// linearly to 100% for an immediate answer. Halves round away from zero.
func Points(base, remaining, limit int) int {
	if base <= 0 {
		return 0
	}
	if limit <= 0 {
		return base
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > limit {
		remaining = limit
	}
	factor := 0.25 + 0.75*float64(remaining)/float64(limit)
	return int(math.Round(float64(base) * factor))
}
