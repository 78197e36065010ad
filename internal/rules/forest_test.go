package rules

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mitrastore/backend-mitra/internal/discount"
)

func TestBuildForestLinksChildren(t *testing.T) {
	rootID := uuid.New()
	childID := uuid.New()
	discountID := uuid.New()
	productID := uuid.New()

	rows := RuleRows{
		Groups: []GroupRow{
			{ID: rootID, Name: "seasonal", Active: true, Operator: "and"},
			{ID: childID, ParentID: &rootID, Name: "members", Active: true, Operator: "or", Priority: 1},
		},
		Discounts: []DiscountRow{
			{ID: discountID, GroupID: childID, Name: "ten off", Kind: "percent", Value: 10, Active: true},
		},
		Targets: []TargetRow{
			{DiscountID: discountID, Type: "product", TargetID: &productID},
		},
		Conditions: []ConditionRow{
			{DiscountID: discountID, Type: "min_quantity", Operator: ">=", Value: []byte(`3`)},
		},
	}

	forest := BuildForest(rows)
	require.Len(t, forest, 1)
	root := forest[0]
	require.Equal(t, "seasonal", root.Name)
	require.Len(t, root.Children, 1)

	child := root.Children[0]
	require.Equal(t, discount.OpOr, child.Operator)
	require.Len(t, child.Discounts, 1)

	d := child.Discounts[0]
	require.Equal(t, discount.KindPercent, d.Kind)
	require.Len(t, d.Targets, 1)
	require.Equal(t, discount.TargetProduct, d.Targets[0].Type)
	require.Equal(t, productID, *d.Targets[0].ID)
	require.Len(t, d.Conditions, 1)
	require.Equal(t, discount.CondMinQuantity, d.Conditions[0].Type)
	require.EqualValues(t, float64(3), d.Conditions[0].Value)
}

func TestBuildForestOrphanBecomesRoot(t *testing.T) {
	missing := uuid.New()
	orphanID := uuid.New()
	rows := RuleRows{
		Groups: []GroupRow{
			{ID: orphanID, ParentID: &missing, Name: "orphan", Active: true, Operator: "and"},
		},
	}
	forest := BuildForest(rows)
	require.Len(t, forest, 1)
	require.Equal(t, "orphan", forest[0].Name)
}

func TestBuildForestCycleDoesNotRecurse(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	rows := RuleRows{
		Groups: []GroupRow{
			{ID: a, ParentID: &b, Name: "a", Active: true, Operator: "and"},
			{ID: b, ParentID: &a, Name: "b", Active: true, Operator: "and"},
		},
	}
	// Neither node is a valid root; the malformed pair drops out rather
	// than looping forever.
	forest := BuildForest(rows)
	require.Empty(t, forest)
}

func TestBuildForestSelfParentIsRoot(t *testing.T) {
	id := uuid.New()
	rows := RuleRows{
		Groups: []GroupRow{{ID: id, ParentID: &id, Name: "selfie", Active: true, Operator: "and"}},
	}
	forest := BuildForest(rows)
	require.Len(t, forest, 1)
	require.Empty(t, forest[0].Children)
}

func TestBuildForestDecodesConditionPayloads(t *testing.T) {
	groupID := uuid.New()
	discountID := uuid.New()
	rows := RuleRows{
		Groups: []GroupRow{{ID: groupID, Name: "g", Active: true, Operator: "and"}},
		Discounts: []DiscountRow{
			{ID: discountID, GroupID: groupID, Name: "d", Kind: "fixed_amount", Value: 100, Active: true},
		},
		Conditions: []ConditionRow{
			{DiscountID: discountID, Type: "user_category", Operator: "in", Value: []byte(`["gold","silver"]`)},
			{DiscountID: discountID, Type: "user_logged_in", Value: []byte(`true`)},
			{DiscountID: discountID, Type: "min_quantity", Operator: ">=", Value: []byte(`{broken`)},
		},
	}
	forest := BuildForest(rows)
	require.Len(t, forest, 1)
	conds := forest[0].Discounts[0].Conditions
	require.Len(t, conds, 3)
	require.Equal(t, []any{"gold", "silver"}, conds[0].Value)
	require.Equal(t, true, conds[1].Value)
	// Malformed JSON is preserved as a string and rejected by the engine.
	require.Equal(t, `{broken`, conds[2].Value)
}
