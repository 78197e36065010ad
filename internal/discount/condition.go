package discount

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ConditionOutcome reports whether a condition held and, when it did not,
// a human-readable reason surfaced to the audit trail.
type ConditionOutcome struct {
	Met    bool
	Reason string
}

// EvaluateCondition checks a single eligibility predicate against the
// context. Unknown condition types and malformed values resolve to a
// rejection with a reason, never an error.
func EvaluateCondition(c Condition, ctx Context) ConditionOutcome {
	switch c.Type {
	case CondUserCategory:
		return evalUserCategory(c, ctx)
	case CondMinQuantity:
		want, ok := asInt64(c.Value)
		if !ok {
			return ConditionOutcome{Reason: "min_quantity condition value is not numeric"}
		}
		if compareInt64(int64(ctx.Quantity), c.Operator, want) {
			return ConditionOutcome{Met: true}
		}
		return ConditionOutcome{Reason: fmt.Sprintf("quantity %d does not satisfy %s %d", ctx.Quantity, normalizeOp(c.Operator), want)}
	case CondMinOrderAmount:
		want, ok := asInt64(c.Value)
		if !ok {
			return ConditionOutcome{Reason: "min_order_amount condition value is not numeric"}
		}
		if compareInt64(ctx.CartTotal, c.Operator, want) {
			return ConditionOutcome{Met: true}
		}
		return ConditionOutcome{Reason: fmt.Sprintf("cart total %d does not satisfy %s %d", ctx.CartTotal, normalizeOp(c.Operator), want)}
	case CondUserLoggedIn:
		want := asBool(c.Value)
		if ctx.LoggedIn == want {
			return ConditionOutcome{Met: true}
		}
		if want {
			return ConditionOutcome{Reason: "discount requires a logged-in user"}
		}
		return ConditionOutcome{Reason: "discount is limited to guests"}
	default:
		return ConditionOutcome{Reason: fmt.Sprintf("unrecognized condition type %q", string(c.Type))}
	}
}

func evalUserCategory(c Condition, ctx Context) ConditionOutcome {
	if ctx.UserCategoryID == nil {
		return ConditionOutcome{Reason: "user has no category"}
	}
	member := false
	for _, id := range asStringList(c.Value) {
		if id == *ctx.UserCategoryID {
			member = true
			break
		}
	}
	if strings.EqualFold(strings.TrimSpace(c.Operator), "in") {
		if member {
			return ConditionOutcome{Met: true}
		}
		return ConditionOutcome{Reason: fmt.Sprintf("user category %s is not in the allowed set", *ctx.UserCategoryID)}
	}
	if member {
		return ConditionOutcome{Reason: fmt.Sprintf("user category %s is in the excluded set", *ctx.UserCategoryID)}
	}
	return ConditionOutcome{Met: true}
}

// compareInt64 applies a numeric comparison operator. An empty or unknown
// operator behaves like ">=", matching the minimum-threshold semantics of
// the conditions that use it.
func compareInt64(have int64, op string, want int64) bool {
	switch normalizeOp(op) {
	case ">":
		return have > want
	case "<=":
		return have <= want
	case "<":
		return have < want
	case "=":
		return have == want
	default:
		return have >= want
	}
}

func normalizeOp(op string) string {
	switch strings.TrimSpace(op) {
	case ">":
		return ">"
	case "<=":
		return "<="
	case "<":
		return "<"
	case "=", "==":
		return "="
	default:
		return ">="
	}
}

func asStringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := asString(item); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := asString(v); ok {
			return []string{s}
		}
		return nil
	}
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case int:
		return strconv.Itoa(val), true
	}
	return "", false
}

func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case float64:
		return int64(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
		if f, err := val.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		trimmed := strings.TrimSpace(val)
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int64(f), true
		}
	}
	return 0, false
}

func asBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		}
	case float64:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case json.Number:
		f, err := val.Float64()
		return err == nil && f != 0
	}
	return false
}
