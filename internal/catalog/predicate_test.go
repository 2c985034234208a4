package catalog

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild(t *testing.T) {
	var b Builder

	tests := []struct {
		name string
		slug string
		spec FilterSpec
		want Predicate
	}{
		{
			name: "no slug no filters matches everything",
			want: All(),
		},
		{
			name: "category only",
			slug: "sedan",
			want: Or(
				Contains(FieldCategory, "Седан"),
				Contains(FieldCategory, "Sedan"),
			),
		},
		{
			name: "unknown slug falls back to substring of itself",
			slug: "cabriolet",
			want: Contains(FieldCategory, "cabriolet"),
		},
		{
			name: "brand and model sets",
			spec: FilterSpec{Brands: []string{"Toyota", "Lexus"}, Models: []string{"RX"}},
			want: And(
				In(FieldBrand, []string{"Toyota", "Lexus"}),
				In(FieldModel, []string{"RX"}),
			),
		},
		{
			name: "open-ended year range",
			spec: FilterSpec{YearFrom: ptr(2018)},
			want: Gte(FieldYear, 2018),
		},
		{
			name: "price range carries null and zero carve-out",
			slug: "pickup",
			spec: FilterSpec{PriceFrom: ptr(20000.0), PriceTo: ptr(30000.0)},
			want: And(
				Or(
					Contains(FieldCategory, "Пикап"),
					Contains(FieldCategory, "Pickup"),
				),
				Or(
					And(Gte(FieldPrice, 20000), Lte(FieldPrice, 30000)),
					IsNull(FieldPrice),
					Eq(FieldPrice, 0),
				),
			),
		},
		{
			name: "search query",
			spec: FilterSpec{Query: " camry "},
			want: Or(
				Contains(FieldTitle, "camry"),
				Contains(FieldBrand, "camry"),
				Contains(FieldModel, "camry"),
			),
		},
		{
			name: "every clause in order",
			slug: "special",
			spec: FilterSpec{
				Brands:   []string{"CAT"},
				Models:   []string{"320D"},
				YearFrom: ptr(2010),
				YearTo:   ptr(2015),
				Query:    "excavator",
				PriceTo:  ptr(90000.0),
			},
			want: And(
				Or(Contains(FieldCategory, "Спецтехника"), Contains(FieldCategory, "Special")),
				In(FieldBrand, []string{"CAT"}),
				In(FieldModel, []string{"320D"}),
				And(Gte(FieldYear, 2010), Lte(FieldYear, 2015)),
				Or(
					Contains(FieldTitle, "excavator"),
					Contains(FieldBrand, "excavator"),
					Contains(FieldModel, "excavator"),
				),
				Or(Lte(FieldPrice, 90000), IsNull(FieldPrice), Eq(FieldPrice, 0)),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.Build(tt.slug, tt.spec)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Build() mismatch (-want +got):\n%s\ngot: %s", diff, got)
			}
		})
	}
}

// Malformed numeric parameters must degrade to open bounds, never to a
// predicate that hides everything.
func TestBuild_MalformedBoundsAreOpen(t *testing.T) {
	q := url.Values{
		"yearFrom":  {"twenty"},
		"yearTo":    {""},
		"priceFrom": {"cheap"},
		"priceTo":   {"NaN"},
	}
	spec := ParseFilterSpec("", q)

	got := Builder{}.Build("", spec)
	if !got.IsAll() {
		t.Errorf("Build() = %s, want match-all", got)
	}
}

func TestAnd(t *testing.T) {
	if got := And(); !got.IsAll() {
		t.Errorf("And() = %s, want TRUE", got)
	}
	if got := And(All(), All()); !got.IsAll() {
		t.Errorf("And(All, All) = %s, want TRUE", got)
	}

	single := Contains(FieldBrand, "x")
	if diff := cmp.Diff(single, And(All(), single)); diff != "" {
		t.Errorf("And(All, p) should unwrap to p (-want +got):\n%s", diff)
	}
}

func TestPredicateString(t *testing.T) {
	p := And(
		Contains(FieldCategory, "SUV"),
		Or(Gte(FieldPrice, 100), IsNull(FieldPrice)),
	)
	want := `(category CONTAINS "SUV" AND (price gte 100 OR price IS NULL))`
	if got := p.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
