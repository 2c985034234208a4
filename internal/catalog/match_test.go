package catalog

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMatch(t *testing.T) {
	item := Item{
		Brand:    "Toyota",
		Model:    "Land Cruiser 300",
		Title:    "Toyota Land Cruiser 300",
		Category: "Внедорожники;Главная",
		Year:     2021,
		Price:    Known(85000),
	}

	tests := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"match all", All(), true},
		{"empty or", Predicate{Op: OpOr}, false},
		{"category contains, folded", Contains(FieldCategory, "внедорожник"), true},
		{"category miss", Contains(FieldCategory, "Седан"), false},
		{"brand in set", In(FieldBrand, []string{"Lexus", "Toyota"}), true},
		{"brand in set is exact", In(FieldBrand, []string{"toyota"}), false},
		{"year gte", Gte(FieldYear, 2021), true},
		{"year lte", Lte(FieldYear, 2020), false},
		{"price eq", Eq(FieldPrice, 85000), true},
		{"price not null", IsNull(FieldPrice), false},
		{"and", And(Contains(FieldTitle, "cruiser"), Gte(FieldYear, 2000)), true},
		{"or", Or(Contains(FieldTitle, "camry"), In(FieldModel, []string{"Land Cruiser 300"})), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Match(tt.p, item); got != tt.want {
				t.Errorf("Match(%s) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestMatch_PriceOnRequest(t *testing.T) {
	onRequest := Item{Price: OnRequest}

	if !Match(IsNull(FieldPrice), onRequest) {
		t.Error("IsNull(price) should hold for price on request")
	}
	for _, p := range []Predicate{Gte(FieldPrice, 0), Lte(FieldPrice, 1e9), Eq(FieldPrice, 0)} {
		if Match(p, onRequest) {
			t.Errorf("Match(%s) = true for a NULL price, want false", p)
		}
	}
}

// For any range [a,b] with a > 0, price on request items are always returned
// and priced items outside the range never are.
func TestPriceRangeInclusion(t *testing.T) {
	items := []Item{
		{Title: "on request", Price: OnRequest},
		{Title: "zero", Price: Known(0)},
		{Title: "cheap", Price: Known(5000)},
		{Title: "inside", Price: Known(25000)},
		{Title: "lower edge", Price: Known(20000)},
		{Title: "upper edge", Price: Known(30000)},
		{Title: "expensive", Price: Known(50000)},
	}
	spec := FilterSpec{PriceFrom: ptr(20000.0), PriceTo: ptr(30000.0)}
	p := Builder{}.Build("", spec)

	var got []string
	for _, it := range items {
		if Match(p, it) {
			got = append(got, it.Title)
		}
	}

	want := []string{"on request", "zero", "inside", "lower edge", "upper edge"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("price filter mismatch (-want +got):\n%s", diff)
	}
}

func TestSUVPriceFilterScenario(t *testing.T) {
	items := []Item{
		{Title: "SUV on request", Category: "Внедорожники", Price: Known(0)},
		{Title: "SUV expensive", Category: "Внедорожники", Price: Known(50000)},
		{Title: "Sedan on request", Category: "Седаны", Price: OnRequest},
	}
	spec := FilterSpec{PriceFrom: ptr(20000.0), PriceTo: ptr(30000.0)}
	p := Builder{}.Build("suv", spec)

	var got []string
	for _, it := range items {
		if Match(p, it) {
			got = append(got, it.Title)
		}
	}

	if diff := cmp.Diff([]string{"SUV on request"}, got); diff != "" {
		t.Errorf("suv price filter mismatch (-want +got):\n%s", diff)
	}
}

func TestSortItems(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := func() []Item {
		return []Item{
			{ID: "a", Price: Known(300), Year: 2018, Mileage: 50, CreatedAt: base},
			{ID: "b", Price: OnRequest, Year: 2022, Mileage: 10, CreatedAt: base.Add(time.Hour)},
			{ID: "c", Price: Known(100), Year: 2020, Mileage: 30, CreatedAt: base.Add(2 * time.Hour)},
		}
	}
	ids := func(in []Item) []string {
		out := make([]string, len(in))
		for i, it := range in {
			out[i] = it.ID
		}
		return out
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortNewest, []string{"c", "b", "a"}},
		{SortPriceAsc, []string{"c", "a", "b"}},
		{SortPriceDesc, []string{"a", "c", "b"}},
		{SortYearDesc, []string{"b", "c", "a"}},
		{SortYearAsc, []string{"a", "c", "b"}},
		{SortMileage, []string{"b", "c", "a"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			in := items()
			SortItems(in, tt.key)
			if diff := cmp.Diff(tt.want, ids(in)); diff != "" {
				t.Errorf("SortItems(%s) mismatch (-want +got):\n%s", tt.key, diff)
			}
		})
	}
}

func TestDistinctValues(t *testing.T) {
	items := []Item{
		{Brand: "Toyota"}, {Brand: "BMW"}, {Brand: "Toyota"}, {Brand: " "},
	}
	got := DistinctValues(items, FieldBrand)
	if diff := cmp.Diff([]string{"BMW", "Toyota"}, got); diff != "" {
		t.Errorf("DistinctValues() mismatch (-want +got):\n%s", diff)
	}
}
