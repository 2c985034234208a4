package catalog

// match.go is the reference evaluator for Predicate trees. Storage engines
// that cannot push predicates down (the memory store) use it directly, and
// the SQL translator is tested against the same semantics.

import (
	"sort"
	"strings"
)

// Match reports whether item satisfies p.
func Match(p Predicate, item Item) bool {
	switch p.Op {
	case OpAnd:
		for _, a := range p.Args {
			if !Match(a, item) {
				return false
			}
		}
		return true

	case OpOr:
		for _, a := range p.Args {
			if Match(a, item) {
				return true
			}
		}
		return false

	case OpContains:
		s, ok := stringField(p.Field, item)
		if !ok {
			return false
		}
		substr, _ := p.Value.(string)
		return ContainsFold(s, substr)

	case OpIn:
		s, ok := stringField(p.Field, item)
		if !ok {
			return false
		}
		values, _ := p.Value.([]string)
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false

	case OpIsNull:
		_, present := numberField(p.Field, item)
		return !present

	case OpGte, OpLte, OpEq:
		n, present := numberField(p.Field, item)
		if !present {
			return false // NULL never satisfies a comparison
		}
		v, _ := p.Value.(float64)
		switch p.Op {
		case OpGte:
			return n >= v
		case OpLte:
			return n <= v
		default:
			return n == v
		}
	}
	return false
}

func stringField(f Field, item Item) (string, bool) {
	switch f {
	case FieldCategory:
		return item.Category, true
	case FieldBrand:
		return item.Brand, true
	case FieldModel:
		return item.Model, true
	case FieldTitle:
		return item.Title, true
	}
	return "", false
}

// numberField returns a numeric field and whether it is non-NULL.
func numberField(f Field, item Item) (float64, bool) {
	switch f {
	case FieldYear:
		return float64(item.Year), true
	case FieldPrice:
		amount, known := item.Price.Amount()
		return amount, known
	}
	return 0, false
}

// SortItems orders items in place the way storage orders a Page.
// Price on request listings sort after priced ones in both directions.
func SortItems(items []Item, key SortKey) {
	less := func(a, b Item) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	}

	switch key {
	case SortPriceAsc, SortPriceDesc:
		desc := key == SortPriceDesc
		sort.SliceStable(items, func(i, j int) bool {
			pi, ki := items[i].Price.Amount()
			pj, kj := items[j].Price.Amount()
			if ki != kj {
				return ki
			}
			if pi != pj {
				if desc {
					return pi > pj
				}
				return pi < pj
			}
			return less(items[i], items[j])
		})
	case SortYearAsc, SortYearDesc:
		desc := key == SortYearDesc
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Year != items[j].Year {
				if desc {
					return items[i].Year > items[j].Year
				}
				return items[i].Year < items[j].Year
			}
			return less(items[i], items[j])
		})
	case SortMileage:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Mileage != items[j].Mileage {
				return items[i].Mileage < items[j].Mileage
			}
			return less(items[i], items[j])
		})
	default:
		sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	}
}

// DistinctValues collects the sorted distinct non-empty values of a string field.
func DistinctValues(items []Item, f Field) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		s, ok := stringField(f, it)
		s = strings.TrimSpace(s)
		if !ok || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
