package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mitrastore/backend-mitra/internal/pricing"
)

// Repo reads discount rule rows and product prices from Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

// LoadRuleRows reads the complete rule set as flat rows. The four reads run
// on the caller's context; callers wanting a consistent snapshot should load
// once and cache, which Service does.
func (r *Repo) LoadRuleRows(ctx context.Context) (RuleRows, error) {
	var out RuleRows

	rows, err := r.Pool.Query(ctx, `
		SELECT id, parent_id, name, is_active, starts_at, ends_at, priority, operator
		FROM discount_groups
		ORDER BY priority, created_at`)
	if err != nil {
		return out, fmt.Errorf("query discount groups: %w", err)
	}
	for rows.Next() {
		var (
			id, parent   pgtype.UUID
			name, op     string
			active       bool
			starts, ends pgtype.Timestamptz
			priority     int32
		)
		if err := rows.Scan(&id, &parent, &name, &active, &starts, &ends, &priority, &op); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan discount group: %w", err)
		}
		out.Groups = append(out.Groups, GroupRow{
			ID:       toUUID(id),
			ParentID: toUUIDPtr(parent),
			Name:     name,
			Active:   active,
			StartsAt: toTimePtr(starts),
			EndsAt:   toTimePtr(ends),
			Priority: int(priority),
			Operator: op,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate discount groups: %w", err)
	}

	rows, err = r.Pool.Query(ctx, `
		SELECT id, group_id, name, discount_type, discount_value, priority, is_active, starts_at, ends_at
		FROM discounts
		ORDER BY priority, created_at`)
	if err != nil {
		return out, fmt.Errorf("query discounts: %w", err)
	}
	for rows.Next() {
		var (
			id, groupID  pgtype.UUID
			name, kind   string
			value        int64
			priority     int32
			active       bool
			starts, ends pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &groupID, &name, &kind, &value, &priority, &active, &starts, &ends); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan discount: %w", err)
		}
		out.Discounts = append(out.Discounts, DiscountRow{
			ID:       toUUID(id),
			GroupID:  toUUID(groupID),
			Name:     name,
			Kind:     kind,
			Value:    value,
			Priority: int(priority),
			Active:   active,
			StartsAt: toTimePtr(starts),
			EndsAt:   toTimePtr(ends),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate discounts: %w", err)
	}

	rows, err = r.Pool.Query(ctx, `SELECT discount_id, target_type, target_id FROM discount_targets`)
	if err != nil {
		return out, fmt.Errorf("query discount targets: %w", err)
	}
	for rows.Next() {
		var (
			discountID, targetID pgtype.UUID
			targetType           string
		)
		if err := rows.Scan(&discountID, &targetType, &targetID); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan discount target: %w", err)
		}
		out.Targets = append(out.Targets, TargetRow{
			DiscountID: toUUID(discountID),
			Type:       targetType,
			TargetID:   toUUIDPtr(targetID),
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate discount targets: %w", err)
	}

	rows, err = r.Pool.Query(ctx, `SELECT discount_id, condition_type, operator, value FROM discount_conditions`)
	if err != nil {
		return out, fmt.Errorf("query discount conditions: %w", err)
	}
	for rows.Next() {
		var (
			discountID pgtype.UUID
			condType   string
			operator   string
			value      []byte
		)
		if err := rows.Scan(&discountID, &condType, &operator, &value); err != nil {
			rows.Close()
			return out, fmt.Errorf("scan discount condition: %w", err)
		}
		out.Conditions = append(out.Conditions, ConditionRow{
			DiscountID: toUUID(discountID),
			Type:       condType,
			Operator:   operator,
			Value:      value,
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate discount conditions: %w", err)
	}

	return out, nil
}

// PriceRows loads the stored price rows for one product across all tiers.
func (r *Repo) PriceRows(ctx context.Context, productID uuid.UUID) ([]pricing.Row, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT tier_id, variant_id, amount
		FROM product_prices
		WHERE product_id = $1`, pgUUID(productID))
	if err != nil {
		return nil, fmt.Errorf("query product prices: %w", err)
	}
	defer rows.Close()

	var out []pricing.Row
	for rows.Next() {
		var (
			tierID, variantID pgtype.UUID
			amount            int64
		)
		if err := rows.Scan(&tierID, &variantID, &amount); err != nil {
			return nil, fmt.Errorf("scan product price: %w", err)
		}
		out = append(out, pricing.Row{
			TierID:    toUUID(tierID),
			VariantID: toUUIDPtr(variantID),
			Amount:    amount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product prices: %w", err)
	}
	return out, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toUUID(v pgtype.UUID) uuid.UUID {
	if !v.Valid {
		return uuid.Nil
	}
	return uuid.UUID(v.Bytes)
}

func toUUIDPtr(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

func toTimePtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
