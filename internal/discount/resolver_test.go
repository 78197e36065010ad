package discount

import (
	"reflect"
	"testing"
)

func TestResolveEmptyForestIsNoOp(t *testing.T) {
	res := Resolve(500, nil, Context{Now: evalNow})
	if res.FinalPrice != 500 || res.TotalDiscount != 0 {
		t.Fatalf("empty forest must leave the price untouched, got %+v", res)
	}
	if len(res.Applied) != 0 || len(res.Rejected) != 0 {
		t.Fatalf("expected empty audit lists, got %+v", res)
	}
}

func TestResolveNonPositiveBasePrice(t *testing.T) {
	g := group(OpAnd, activeDiscount(KindPercent, 10))
	res := Resolve(0, []Group{g}, Context{Now: evalNow})
	if res.FinalPrice != 0 || res.TotalDiscount != 0 {
		t.Fatalf("zero base price is a no-op, got %+v", res)
	}
}

func TestResolveAndStack(t *testing.T) {
	g := group(OpAnd, activeDiscount(KindPercent, 10), activeDiscount(KindFixedAmount, 50))
	res := Resolve(500, []Group{g}, Context{Now: evalNow})
	if res.TotalDiscount != 100 || res.FinalPrice != 400 {
		t.Fatalf("expected 100 off 500, got %+v", res)
	}
	if len(res.Applied) != 2 {
		t.Fatalf("both discounts should appear applied, got %+v", res.Applied)
	}
}

func TestResolveClampOnOverDiscount(t *testing.T) {
	g := group(OpAnd, activeDiscount(KindFixedAmount, 400), activeDiscount(KindFixedAmount, 400))
	res := Resolve(500, []Group{g}, Context{Now: evalNow})
	if res.TotalDiscount != 500 || res.FinalPrice != 0 {
		t.Fatalf("raw sum 800 must clamp to 500, got %+v", res)
	}
	// The clamp never reclassifies audit entries.
	if len(res.Applied) != 2 {
		t.Fatalf("both discounts stay applied despite the clamp, got %+v", res.Applied)
	}
}

func TestResolveRootsByPriority(t *testing.T) {
	low := group(OpAnd, activeDiscount(KindFixedAmount, 10))
	low.Name = "low"
	low.Priority = 2
	high := group(OpAnd, activeDiscount(KindFixedAmount, 20))
	high.Name = "high"
	high.Priority = 1

	res := Resolve(500, []Group{low, high}, Context{Now: evalNow})
	if res.TotalDiscount != 30 {
		t.Fatalf("root totals must sum, got %d", res.TotalDiscount)
	}
	if res.Applied[0].GroupName != "high" {
		t.Fatalf("audit entries follow priority order, got %+v", res.Applied)
	}
}

func TestResolveFixedPriceScenario(t *testing.T) {
	percent := activeDiscount(KindPercent, 10)
	fixed := activeDiscount(KindFixedPrice, 700)
	g := group(OpAnd, percent, fixed)

	res := Resolve(1000, []Group{g}, Context{Now: evalNow})
	if res.TotalDiscount != 300 || res.FinalPrice != 700 {
		t.Fatalf("expected fixed price to pin the result, got %+v", res)
	}
	if len(res.Applied) != 1 || res.Applied[0].Kind != KindFixedPrice {
		t.Fatalf("only the fixed price discount applies, got %+v", res.Applied)
	}
	if len(res.Rejected) != 1 {
		t.Fatalf("the percent discount must be rejected, got %+v", res.Rejected)
	}
}

func TestResolveBoundsInvariant(t *testing.T) {
	forests := [][]Group{
		nil,
		{group(OpAnd, activeDiscount(KindPercent, 250))},
		{group(OpMax, activeDiscount(KindFixedAmount, 999), activeDiscount(KindFixedPrice, 1))},
		{group(OpNot, activeDiscount(KindFixedAmount, 100))},
	}
	for _, forest := range forests {
		res := Resolve(750, forest, Context{Now: evalNow})
		if res.FinalPrice < 0 || res.FinalPrice > 750 {
			t.Fatalf("final price out of bounds: %+v", res)
		}
		if res.TotalDiscount != 750-res.FinalPrice {
			t.Fatalf("totalDiscount must equal basePrice-finalPrice: %+v", res)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	silver := "silver"
	g := group(OpMax,
		activeDiscount(KindPercent, 10),
		activeDiscount(KindFixedAmount, 120),
	)
	g.Discounts[1].Conditions = []Condition{{Type: CondUserCategory, Operator: "in", Value: []any{"silver"}}}
	ctx := Context{UserCategoryID: &silver, Quantity: 2, CartTotal: 900, Now: evalNow}

	first := Resolve(900, []Group{g}, ctx)
	second := Resolve(900, []Group{g}, ctx)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs must produce identical results:\n%+v\n%+v", first, second)
	}
}

func TestResolveRejectedConditionSurfaces(t *testing.T) {
	d := activeDiscount(KindFixedAmount, 50)
	d.Name = "bulk"
	d.Conditions = []Condition{{Type: CondMinQuantity, Operator: ">=", Value: 3}}
	g := group(OpAnd, d)

	res := Resolve(500, []Group{g}, Context{Quantity: 1, Now: evalNow})
	if res.TotalDiscount != 0 {
		t.Fatalf("unmet condition must not discount, got %+v", res)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Name != "bulk" {
		t.Fatalf("the discount must land in rejected, got %+v", res.Rejected)
	}
}
