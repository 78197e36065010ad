package discount

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

const (
	reasonOrSkipped   = "lower priority than an already-selected OR alternative"
	reasonNotSuppress = "conditions met, but NOT operator suppresses the discount"
	reasonMinSkipped  = "a smaller discount was chosen (MIN)"
	reasonMaxSkipped  = "a larger discount was chosen (MAX)"
	reasonFixedPrice  = "fixed price takes precedence within an AND group"
)

type groupOutcome struct {
	total    Money
	applied  []Applied
	rejected []Rejected
}

// candidate is one entry in a group's combination list: either an applicable
// direct discount or the positive aggregate of a child group. Aggregates
// carry no discount identity and cannot be re-selected individually.
type candidate struct {
	amount   Money
	discount *Discount
}

// evaluateGroup recursively evaluates one group node. An inactive group or a
// group outside its activity window contributes zero and gates everything
// beneath it: neither its discounts nor its children are checked.
func evaluateGroup(g Group, basePrice Money, ctx Context, now time.Time) groupOutcome {
	var out groupOutcome
	if !g.Active || !withinWindow(now, g.StartsAt, g.EndsAt) {
		return out
	}

	// Stable sorts on copies: equal priorities keep their insertion order,
	// which decides who wins under or/min/max ties, and the caller's tree
	// must never be reordered.
	discounts := slices.Clone(g.Discounts)
	slices.SortStableFunc(discounts, func(a, b Discount) int { return cmp.Compare(a.Priority, b.Priority) })
	children := slices.Clone(g.Children)
	slices.SortStableFunc(children, func(a, b Group) int { return cmp.Compare(a.Priority, b.Priority) })

	var cands []candidate
	for i := range discounts {
		ev := EvaluateDiscount(discounts[i], basePrice, ctx, now)
		if !ev.Applicable {
			out.rejected = append(out.rejected, Rejected{
				ID:        discounts[i].ID,
				Name:      discounts[i].Name,
				Reason:    strings.Join(ev.Reasons, "; "),
				GroupName: g.Name,
			})
			continue
		}
		cands = append(cands, candidate{amount: ev.Amount, discount: &discounts[i]})
	}

	var childTotal Money
	for _, child := range children {
		co := evaluateGroup(child, basePrice, ctx, now)
		out.applied = append(out.applied, co.applied...)
		out.rejected = append(out.rejected, co.rejected...)
		if co.total > 0 {
			cands = append(cands, candidate{amount: co.total})
			childTotal += co.total
		}
	}

	switch g.Operator {
	case OpOr:
		for i, c := range cands {
			if i == 0 {
				out.total = c.amount
				if c.discount != nil {
					out.applied = append(out.applied, appliedFrom(*c.discount, c.amount, g.Name))
				}
				continue
			}
			if c.discount != nil {
				out.rejected = append(out.rejected, rejectedFrom(*c.discount, reasonOrSkipped, g.Name))
			}
		}
	case OpNot:
		// Aggregate inversion: if anything inside would apply, the whole
		// group's effect collapses to zero.
		for _, c := range cands {
			if c.discount != nil {
				out.rejected = append(out.rejected, rejectedFrom(*c.discount, reasonNotSuppress, g.Name))
			}
		}
	case OpMin, OpMax:
		if len(cands) == 0 {
			break
		}
		best := 0
		for i := 1; i < len(cands); i++ {
			if g.Operator == OpMin && cands[i].amount < cands[best].amount {
				best = i
			}
			if g.Operator == OpMax && cands[i].amount > cands[best].amount {
				best = i
			}
		}
		reason := reasonMinSkipped
		if g.Operator == OpMax {
			reason = reasonMaxSkipped
		}
		for i, c := range cands {
			if i == best {
				out.total = c.amount
				if c.discount != nil {
					out.applied = append(out.applied, appliedFrom(*c.discount, c.amount, g.Name))
				}
				continue
			}
			if c.discount != nil {
				out.rejected = append(out.rejected, rejectedFrom(*c.discount, reason, g.Name))
			}
		}
	default:
		// and: stack every candidate.
		var sum Money
		var direct []Applied
		fpIndex := -1
		for _, c := range cands {
			sum += c.amount
			if c.discount == nil {
				continue
			}
			direct = append(direct, appliedFrom(*c.discount, c.amount, g.Name))
			if fpIndex < 0 && c.discount.Kind == KindFixedPrice {
				fpIndex = len(direct) - 1
			}
		}
		if fpIndex >= 0 {
			// A fixed price pins the group's own direct contribution to its
			// amount; child group totals still add on top.
			for i, a := range direct {
				if i == fpIndex {
					continue
				}
				out.rejected = append(out.rejected, Rejected{ID: a.ID, Name: a.Name, Reason: reasonFixedPrice, GroupName: g.Name})
			}
			out.applied = append(out.applied, direct[fpIndex])
			out.total = direct[fpIndex].Amount + childTotal
			return out
		}
		out.applied = append(out.applied, direct...)
		out.total = sum
	}

	return out
}

func appliedFrom(d Discount, amount Money, groupName string) Applied {
	return Applied{ID: d.ID, Name: d.Name, Kind: d.Kind, Value: d.Value, Amount: amount, GroupName: groupName}
}

func rejectedFrom(d Discount, reason, groupName string) Rejected {
	return Rejected{ID: d.ID, Name: d.Name, Reason: reason, GroupName: groupName}
}
