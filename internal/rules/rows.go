// Package rules loads discount rule rows from Postgres, assembles them into
// the tree consumed by the discount engine, and caches the assembled forest
// in Redis so a consistent snapshot is cheap to hand to every evaluation.
package rules

import (
	"time"

	"github.com/google/uuid"
)

// GroupRow is a flat discount_groups row. Children reference parents by id;
// assembly into a tree happens in BuildForest.
type GroupRow struct {
	ID       uuid.UUID
	ParentID *uuid.UUID
	Name     string
	Active   bool
	StartsAt *time.Time
	EndsAt   *time.Time
	Priority int
	Operator string
}

// DiscountRow is a flat discounts row owned by exactly one group.
type DiscountRow struct {
	ID       uuid.UUID
	GroupID  uuid.UUID
	Name     string
	Kind     string
	Value    int64
	Priority int
	Active   bool
	StartsAt *time.Time
	EndsAt   *time.Time
}

// TargetRow scopes a discount to part of the catalog.
type TargetRow struct {
	DiscountID uuid.UUID
	Type       string
	TargetID   *uuid.UUID
}

// ConditionRow is one eligibility predicate; Value holds the raw JSONB
// payload (scalar or array) as stored.
type ConditionRow struct {
	DiscountID uuid.UUID
	Type       string
	Operator   string
	Value      []byte
}

// RuleRows bundles everything needed to assemble the forest.
type RuleRows struct {
	Groups     []GroupRow
	Discounts  []DiscountRow
	Targets    []TargetRow
	Conditions []ConditionRow
}
