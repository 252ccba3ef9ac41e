package domain

import "testing"

func TestProductView_PriceAndPopularity(t *testing.T) {
	cases := []struct {
		p         Product
		usd       float64
		wantPrice float64
		wantPop   float64
	}{
		{Product{PopularityScore: 0.5, Weight: 10}, 75, 1125.00, 2.5},
		{Product{PopularityScore: 0.5, Weight: 20}, 75, 2250.00, 2.5},
		{Product{PopularityScore: 0.8, Weight: 2}, 64.3, 231.48, 4.0},
		{Product{PopularityScore: 0, Weight: 3.1}, 80, 248.00, 0},
		{Product{PopularityScore: 0.91, Weight: 1}, 1, 1.91, 4.6},
	}
	for _, c := range cases {
		v := c.p.View(c.usd)
		if v.PriceUSD != c.wantPrice {
			t.Fatalf("%+v: price=%v, want %v", c.p, v.PriceUSD, c.wantPrice)
		}
		if v.PopularityOutOf5 != c.wantPop {
			t.Fatalf("%+v: popularity=%v, want %v", c.p, v.PopularityOutOf5, c.wantPop)
		}
	}
}

func TestQueryValidate(t *testing.T) {
	if errs := DefaultQuery().Validate(); len(errs) != 0 {
		t.Fatalf("default query must be valid, got %v", errs)
	}

	neg := -1.0
	q := Query{MinPrice: &neg, MinPopularity: &neg, SortBy: "weight", Dir: "up", Page: -1, Size: 0}
	errs := q.Validate()
	want := []string{"minPrice", "minPopularity", "sortBy", "dir", "page", "size"}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %v", len(want), errs)
	}
	for i, f := range want {
		if errs[i].Field != f {
			t.Fatalf("error %d: field=%q, want %q", i, errs[i].Field, f)
		}
	}
}
