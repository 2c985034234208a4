package postgres

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/motorcat/internal/catalog"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		p        catalog.Predicate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "match all",
			p:       catalog.All(),
			wantSQL: "TRUE",
		},
		{
			name:    "empty or",
			p:       catalog.Predicate{Op: catalog.OpOr},
			wantSQL: "FALSE",
		},
		{
			name:     "contains",
			p:        catalog.Contains(catalog.FieldCategory, "Седан"),
			wantSQL:  `category ILIKE '%' || $1 || '%' ESCAPE '\'`,
			wantArgs: []any{"Седан"},
		},
		{
			name:     "contains escapes wildcards",
			p:        catalog.Contains(catalog.FieldTitle, `50%_off\`),
			wantSQL:  `title ILIKE '%' || $1 || '%' ESCAPE '\'`,
			wantArgs: []any{`50\%\_off\\`},
		},
		{
			name:    "contains empty string",
			p:       catalog.Contains(catalog.FieldCategory, ""),
			wantSQL: "TRUE",
		},
		{
			name:     "in",
			p:        catalog.In(catalog.FieldBrand, []string{"Kia", "BMW"}),
			wantSQL:  "brand = ANY($1)",
			wantArgs: []any{[]string{"Kia", "BMW"}},
		},
		{
			name:     "comparisons",
			p:        catalog.And(catalog.Gte(catalog.FieldYear, 2015), catalog.Lte(catalog.FieldYear, 2020)),
			wantSQL:  "(year >= $1 AND year <= $2)",
			wantArgs: []any{2015.0, 2020.0},
		},
		{
			name: "price carve-out",
			p: catalog.Builder{}.Build("suv", catalog.FilterSpec{
				PriceFrom: ptr(20000.0),
				PriceTo:   ptr(30000.0),
			}),
			wantSQL: `((category ILIKE '%' || $1 || '%' ESCAPE '\'` +
				` OR category ILIKE '%' || $2 || '%' ESCAPE '\'` +
				` OR category ILIKE '%' || $3 || '%' ESCAPE '\')` +
				` AND ((price >= $4 AND price <= $5) OR price IS NULL OR price = $6))`,
			wantArgs: []any{"Внедорожник", "Джип", "SUV", 20000.0, 30000.0, 0.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := Translate(tt.p)
			if err != nil {
				t.Fatalf("Translate() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("Translate() sql =\n  %s\nwant\n  %s", sql, tt.wantSQL)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("Translate() args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    catalog.Predicate
	}{
		{"unknown field", catalog.Contains("vin", "x")},
		{"unknown op", catalog.Predicate{Op: "between", Field: catalog.FieldYear}},
		{"numeric compare on string field", catalog.Gte(catalog.FieldBrand, 3)},
		{"contains on numeric field", catalog.Contains(catalog.FieldPrice, "1")},
		{"nested failure", catalog.And(catalog.All(), catalog.Or(catalog.Contains("vin", "x"), catalog.IsNull(catalog.FieldPrice)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Translate(tt.p); err == nil {
				t.Errorf("Translate(%s) error = nil, want error", tt.p)
			}
		})
	}
}

func TestTranslate_NoInputInSQL(t *testing.T) {
	hostile := `'; DROP TABLE items; --`
	sql, args, err := Translate(catalog.And(
		catalog.Contains(catalog.FieldTitle, hostile),
		catalog.In(catalog.FieldModel, []string{hostile}),
	))
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if strings.Contains(sql, "DROP") {
		t.Errorf("input leaked into SQL: %s", sql)
	}
	if len(args) != 2 {
		t.Errorf("len(args) = %d, want 2", len(args))
	}
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		key  catalog.SortKey
		want string
	}{
		{catalog.SortNewest, "created_at DESC, id"},
		{"", "created_at DESC, id"},
		{catalog.SortPriceAsc, "NULLIF(price, 0) ASC NULLS LAST, created_at DESC, id"},
		{catalog.SortPriceDesc, "NULLIF(price, 0) DESC NULLS LAST, created_at DESC, id"},
		{catalog.SortYearDesc, "year DESC, created_at DESC, id"},
		{catalog.SortMileage, "mileage ASC, created_at DESC, id"},
	}

	for _, tt := range tests {
		if got := orderBy(tt.key); got != tt.want {
			t.Errorf("orderBy(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func ptr[T any](v T) *T { return &v }
