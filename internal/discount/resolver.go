package discount

import (
	"cmp"
	"slices"
	"time"
)

// Resolve evaluates the rule forest against basePrice and returns the final
// price with a full audit trail. Root groups run in ascending priority order,
// their net amounts sum, and the total is clamped to basePrice. The clamp
// only affects the numeric total; it never reclassifies individual audit
// entries. For identical inputs (including Context.Now) the output is
// identical: no randomness, no hidden state.
func Resolve(basePrice Money, groups []Group, ctx Context) Result {
	result := Result{
		FinalPrice: basePrice,
		Applied:    []Applied{},
		Rejected:   []Rejected{},
	}
	if basePrice <= 0 || len(groups) == 0 {
		return result
	}

	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}

	roots := slices.Clone(groups)
	slices.SortStableFunc(roots, func(a, b Group) int { return cmp.Compare(a.Priority, b.Priority) })

	var sum Money
	for _, g := range roots {
		out := evaluateGroup(g, basePrice, ctx, now)
		sum += out.total
		result.Applied = append(result.Applied, out.applied...)
		result.Rejected = append(result.Rejected, out.rejected...)
	}

	if sum > basePrice {
		sum = basePrice
	}
	if sum < 0 {
		sum = 0
	}
	result.TotalDiscount = sum
	result.FinalPrice = basePrice - sum
	return result
}
