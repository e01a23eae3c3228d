// Package rating holds the title rating recomputation rule.
package rating

import "math"

// Compute returns the rounded mean of the given review scores, or nil when
// no reviews remain. Rounding is half-up (6.5 rounds to 7), matching the
// SQL ROUND semantics of the backing store.
func Compute(scores []int32) *int32 {
	if len(scores) == 0 {
		return nil
	}
	var sum int64
	for _, s := range scores {
		sum += int64(s)
	}
	avg := float64(sum) / float64(len(scores))
	rounded := int32(math.Floor(avg + 0.5))
	return &rounded
}
