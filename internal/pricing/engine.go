package pricing

import "github.com/google/uuid"

// Money represents a monetary value stored in minor units.
type Money = int64

// Row is one stored price entry for a product, optionally scoped to a
// variant, within a price tier.
type Row struct {
	TierID    uuid.UUID
	VariantID *uuid.UUID
	Amount    Money
}

// ResolveTier selects the price row for the requested tier and, when
// provided, variant. When the requested tier yields no row it falls back to
// the designated default tier. The boolean reports whether any row matched.
func ResolveTier(rows []Row, tierID uuid.UUID, variantID *uuid.UUID, defaultTierID uuid.UUID) (Money, bool) {
	if amount, ok := matchTier(rows, tierID, variantID); ok {
		return amount, true
	}
	if tierID == defaultTierID {
		return 0, false
	}
	return matchTier(rows, defaultTierID, variantID)
}

func matchTier(rows []Row, tierID uuid.UUID, variantID *uuid.UUID) (Money, bool) {
	for _, row := range rows {
		if row.TierID != tierID {
			continue
		}
		if variantID != nil {
			if row.VariantID != nil && *row.VariantID == *variantID {
				return row.Amount, true
			}
			continue
		}
		if row.VariantID == nil {
			return row.Amount, true
		}
	}
	return 0, false
}

// Summary aggregates computed pricing components for a quoted line.
type Summary struct {
	Subtotal Money
	Discount Money
	Tax      Money
	Total    Money
}

// Compute calculates line totals given a unit price, quantity and the
// discount already resolved by the rule engine. The discount never exceeds
// the subtotal and tax applies to the discounted amount.
func Compute(unitPrice Money, qty int, discount Money, taxBps int) Summary {
	if qty <= 0 {
		return Summary{}
	}
	subtotal := Money(qty) * unitPrice
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	taxable := subtotal - discount
	tax := (taxable * Money(taxBps)) / 10000
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    taxable + tax,
	}
}
