package governor

import (
	"github.com/quotient-project/quotient/pkg/lib/math"
)

// ReserveFraction is the portion of total capacity that is never allocated,
// held back as safety margin.
const ReserveFraction = 0.05

// Decide computes how much of a requested amount can be granted given the
// total committed to other consumers and the type's total capacity:
//
//	granted = min(requested, max(capacity*(1-ReserveFraction) - committedElsewhere, 0))
//
// The request is fully satisfied iff granted == requested. Decide is the
// single admission decision for both the direct request path and the
// rebalance loop; keeping one implementation is what makes the over-commit
// invariant hold identically on both paths.
func Decide(requested, committedElsewhere, capacity float64) float64 {
	maxAllocatable := capacity * (1 - ReserveFraction)
	available := math.Max(maxAllocatable-committedElsewhere, 0)
	return math.Min(requested, available)
}
