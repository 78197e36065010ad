package discount

import "time"

// Evaluation describes the outcome of checking one discount against the
// purchase context. When not applicable, Reasons carries one entry per
// failed check (multiple only for condition failures).
type Evaluation struct {
	Applicable bool
	Amount     Money
	Reasons    []string
}

// EvaluateDiscount runs the eligibility chain for a single discount and, when
// every check passes, computes its candidate amount against basePrice.
// Checks short-circuit at the first failing stage; condition failures
// accumulate before rejecting.
func EvaluateDiscount(d Discount, basePrice Money, ctx Context, now time.Time) Evaluation {
	if !d.Active {
		return Evaluation{Reasons: []string{"discount is not active"}}
	}
	if !withinWindow(now, d.StartsAt, d.EndsAt) {
		return Evaluation{Reasons: []string{"discount is out of schedule"}}
	}
	if !MatchesTarget(d.Targets, ctx) {
		return Evaluation{Reasons: []string{"discount target does not match"}}
	}
	var reasons []string
	for _, c := range d.Conditions {
		if out := EvaluateCondition(c, ctx); !out.Met {
			reasons = append(reasons, out.Reason)
		}
	}
	if len(reasons) > 0 {
		return Evaluation{Reasons: reasons}
	}
	return Evaluation{Applicable: true, Amount: amountFor(d, basePrice)}
}

// amountFor translates the discount value into a monetary amount clamped to
// [0, basePrice]. fixed_price yields the discount amount, i.e. basePrice
// minus the target price, not the target price itself.
func amountFor(d Discount, basePrice Money) Money {
	var amount Money
	switch d.Kind {
	case KindPercent:
		amount = basePrice * d.Value / 100
	case KindFixedAmount:
		amount = d.Value
	case KindFixedPrice:
		amount = basePrice - d.Value
	}
	if amount < 0 {
		amount = 0
	}
	if amount > basePrice {
		amount = basePrice
	}
	return amount
}

// withinWindow treats nil bounds as unbounded. The start bound is inclusive,
// the end bound exclusive.
func withinWindow(now time.Time, from, to *time.Time) bool {
	if from != nil && now.Before(*from) {
		return false
	}
	if to != nil && !now.Before(*to) {
		return false
	}
	return true
}
