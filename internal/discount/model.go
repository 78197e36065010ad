// Package discount implements the pricing rule engine: a pure evaluation of a
// hierarchical, operator-combined tree of discount rules against a purchase
// context. The engine performs no I/O, holds no state across calls, and never
// mutates the supplied tree or context.
package discount

import (
	"time"

	"github.com/google/uuid"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Operator is the policy by which a group merges the outcomes of its own
// discounts and child groups into one net amount.
type Operator string

const (
	OpAnd Operator = "and"
	OpOr  Operator = "or"
	OpNot Operator = "not"
	OpMin Operator = "min"
	OpMax Operator = "max"
)

// Kind determines how a discount's value translates into a monetary amount.
type Kind string

const (
	KindPercent     Kind = "percent"
	KindFixedAmount Kind = "fixed_amount"
	KindFixedPrice  Kind = "fixed_price"
)

// TargetType scopes a discount to part of the catalog.
type TargetType string

const (
	TargetAll          TargetType = "all"
	TargetProduct      TargetType = "product"
	TargetModification TargetType = "modification"
	TargetSection      TargetType = "section"
)

// ConditionType identifies an eligibility predicate.
type ConditionType string

const (
	CondUserCategory   ConditionType = "user_category"
	CondMinQuantity    ConditionType = "min_quantity"
	CondMinOrderAmount ConditionType = "min_order_amount"
	CondUserLoggedIn   ConditionType = "user_logged_in"
)

// Target restricts a discount to a specific product, modification or section.
// A nil ID is only meaningful for TargetAll, which matches everything.
type Target struct {
	Type TargetType `json:"type"`
	ID   *uuid.UUID `json:"id,omitempty"`
}

// Condition is a single eligibility predicate. Value carries a scalar or a
// list depending on the condition type; every condition attached to a
// discount must hold for the discount to apply.
type Condition struct {
	Type     ConditionType `json:"type"`
	Operator string        `json:"operator"`
	Value    any           `json:"value"`
}

// Discount is one pricing rule, owned by exactly one group.
type Discount struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	Kind       Kind        `json:"kind"`
	Value      int64       `json:"value"`
	Priority   int         `json:"priority"`
	Active     bool        `json:"active"`
	StartsAt   *time.Time  `json:"startsAt,omitempty"`
	EndsAt     *time.Time  `json:"endsAt,omitempty"`
	Targets    []Target    `json:"targets,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// Group is a node in the rule tree. Children are fully assembled before
// evaluation; the engine performs no lazy loading and assumes the tree is
// acyclic with each node reachable from at most one parent.
type Group struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	StartsAt  *time.Time `json:"startsAt,omitempty"`
	EndsAt    *time.Time `json:"endsAt,omitempty"`
	Priority  int        `json:"priority"`
	Operator  Operator   `json:"operator"`
	Discounts []Discount `json:"discounts,omitempty"`
	Children  []Group    `json:"children,omitempty"`
}

// Context carries the purchaser and line-item attributes for one evaluation.
// Now defaults to wall-clock time when left zero.
type Context struct {
	UserID         *uuid.UUID
	UserCategoryID *string
	Quantity       int
	CartTotal      Money
	ProductID      *uuid.UUID
	ModificationID *uuid.UUID
	SectionID      *uuid.UUID
	LoggedIn       bool
	Now            time.Time
}

// Applied records a discount that contributed to the final price.
type Applied struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Value     int64     `json:"value"`
	Amount    Money     `json:"amount"`
	GroupName string    `json:"group"`
}

// Rejected records a discount that did not apply and the reason why.
type Rejected struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Reason    string    `json:"reason"`
	GroupName string    `json:"group"`
}

// Result is the outcome of resolving a rule forest against a base price.
// Invariant: 0 <= FinalPrice <= basePrice and TotalDiscount = basePrice - FinalPrice.
type Result struct {
	FinalPrice    Money      `json:"finalPrice"`
	TotalDiscount Money      `json:"totalDiscount"`
	Applied       []Applied  `json:"appliedDiscounts"`
	Rejected      []Rejected `json:"rejectedDiscounts"`
}
