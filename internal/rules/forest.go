package rules

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mitrastore/backend-mitra/internal/discount"
)

// BuildForest assembles flat rows into the root-level groups consumed by the
// discount engine. A group whose parent is missing (or is itself) becomes a
// root; a node attaches to at most one parent and already-visited nodes are
// skipped, so a malformed parent cycle degrades to dropped rows instead of
// unbounded recursion.
func BuildForest(rows RuleRows) []discount.Group {
	targetsBy := make(map[uuid.UUID][]discount.Target, len(rows.Targets))
	for _, t := range rows.Targets {
		targetsBy[t.DiscountID] = append(targetsBy[t.DiscountID], discount.Target{
			Type: discount.TargetType(t.Type),
			ID:   t.TargetID,
		})
	}

	conditionsBy := make(map[uuid.UUID][]discount.Condition, len(rows.Conditions))
	for _, c := range rows.Conditions {
		conditionsBy[c.DiscountID] = append(conditionsBy[c.DiscountID], discount.Condition{
			Type:     discount.ConditionType(c.Type),
			Operator: c.Operator,
			Value:    decodeValue(c.Value),
		})
	}

	discountsBy := make(map[uuid.UUID][]discount.Discount, len(rows.Discounts))
	for _, d := range rows.Discounts {
		discountsBy[d.GroupID] = append(discountsBy[d.GroupID], discount.Discount{
			ID:         d.ID,
			Name:       d.Name,
			Kind:       discount.Kind(d.Kind),
			Value:      d.Value,
			Priority:   d.Priority,
			Active:     d.Active,
			StartsAt:   d.StartsAt,
			EndsAt:     d.EndsAt,
			Targets:    targetsBy[d.ID],
			Conditions: conditionsBy[d.ID],
		})
	}

	nodes := make(map[uuid.UUID]discount.Group, len(rows.Groups))
	childIDs := make(map[uuid.UUID][]uuid.UUID)
	var rootIDs []uuid.UUID
	for _, g := range rows.Groups {
		nodes[g.ID] = discount.Group{
			ID:        g.ID,
			Name:      g.Name,
			Active:    g.Active,
			StartsAt:  g.StartsAt,
			EndsAt:    g.EndsAt,
			Priority:  g.Priority,
			Operator:  discount.Operator(g.Operator),
			Discounts: discountsBy[g.ID],
		}
	}
	for _, g := range rows.Groups {
		if g.ParentID != nil && *g.ParentID != g.ID {
			if _, ok := nodes[*g.ParentID]; ok {
				childIDs[*g.ParentID] = append(childIDs[*g.ParentID], g.ID)
				continue
			}
		}
		rootIDs = append(rootIDs, g.ID)
	}

	seen := make(map[uuid.UUID]bool, len(nodes))
	var build func(id uuid.UUID) discount.Group
	build = func(id uuid.UUID) discount.Group {
		seen[id] = true
		node := nodes[id]
		for _, cid := range childIDs[id] {
			if seen[cid] {
				continue
			}
			node.Children = append(node.Children, build(cid))
		}
		return node
	}

	forest := make([]discount.Group, 0, len(rootIDs))
	for _, id := range rootIDs {
		if seen[id] {
			continue
		}
		forest = append(forest, build(id))
	}
	return forest
}

func decodeValue(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// Malformed payloads surface as rejections inside the engine.
		return string(raw)
	}
	return v
}
