package discount

import "github.com/google/uuid"

// MatchesTarget reports whether any target entry applies to the context.
// An empty target set means the discount is unscoped and applies everywhere.
// Absence of a match is not an error, only non-application.
func MatchesTarget(targets []Target, ctx Context) bool {
	if len(targets) == 0 {
		return true
	}
	for _, t := range targets {
		switch t.Type {
		case TargetAll:
			return true
		case TargetProduct:
			if idEqual(t.ID, ctx.ProductID) {
				return true
			}
		case TargetModification:
			if idEqual(t.ID, ctx.ModificationID) {
				return true
			}
		case TargetSection:
			if idEqual(t.ID, ctx.SectionID) {
				return true
			}
		}
	}
	return false
}

func idEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
