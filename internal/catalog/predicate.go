package catalog

import (
	"fmt"
	"strings"
)

// Field names a record field a Predicate can test.
type Field string

const (
	FieldCategory Field = "category"
	FieldBrand    Field = "brand"
	FieldModel    Field = "model"
	FieldYear     Field = "year"
	FieldPrice    Field = "price"
	FieldTitle    Field = "title"
)

// Op is a Predicate node operator.
type Op string

const (
	OpAnd      Op = "and"      // all Args hold; empty AND is true
	OpOr       Op = "or"       // any Arg holds; empty OR is false
	OpContains Op = "contains" // case-insensitive substring
	OpIn       Op = "in"       // exact membership in a string set
	OpGte      Op = "gte"
	OpLte      Op = "lte"
	OpEq       Op = "eq"
	OpIsNull   Op = "is_null"
)

// Predicate is a storage-agnostic boolean expression tree over record fields.
// Storage implementations translate it into their own query language.
type Predicate struct {
	Op    Op          `json:"op"`
	Field Field       `json:"field,omitempty"`
	Value any         `json:"value,omitempty"` // string, []string or float64
	Args  []Predicate `json:"args,omitempty"`
}

// All matches every record.
func All() Predicate { return Predicate{Op: OpAnd} }

// And combines clauses conjunctively, dropping match-all clauses and
// unwrapping a single remaining clause.
func And(args ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(args))
	for _, a := range args {
		if a.IsAll() {
			continue
		}
		kept = append(kept, a)
	}
	switch len(kept) {
	case 0:
		return All()
	case 1:
		return kept[0]
	}
	return Predicate{Op: OpAnd, Args: kept}
}

// Or combines clauses disjunctively.
func Or(args ...Predicate) Predicate {
	if len(args) == 1 {
		return args[0]
	}
	return Predicate{Op: OpOr, Args: args}
}

// Contains tests "field contains substr", case-insensitively.
func Contains(f Field, substr string) Predicate {
	return Predicate{Op: OpContains, Field: f, Value: substr}
}

// In tests exact membership of a string field in values.
func In(f Field, values []string) Predicate {
	return Predicate{Op: OpIn, Field: f, Value: values}
}

// Gte tests field >= v.
func Gte(f Field, v float64) Predicate { return Predicate{Op: OpGte, Field: f, Value: v} }

// Lte tests field <= v.
func Lte(f Field, v float64) Predicate { return Predicate{Op: OpLte, Field: f, Value: v} }

// Eq tests field == v for numeric fields.
func Eq(f Field, v float64) Predicate { return Predicate{Op: OpEq, Field: f, Value: v} }

// IsNull tests that a nullable field holds no value.
func IsNull(f Field) Predicate { return Predicate{Op: OpIsNull, Field: f} }

// IsAll reports whether the predicate is the empty conjunction.
func (p Predicate) IsAll() bool {
	return p.Op == OpAnd && len(p.Args) == 0
}

// String renders the tree for logs and test failures.
func (p Predicate) String() string {
	switch p.Op {
	case OpAnd, OpOr:
		if len(p.Args) == 0 {
			if p.Op == OpAnd {
				return "TRUE"
			}
			return "FALSE"
		}
		parts := make([]string, len(p.Args))
		for i, a := range p.Args {
			parts[i] = a.String()
		}
		return "(" + strings.Join(parts, " "+strings.ToUpper(string(p.Op))+" ") + ")"
	case OpIsNull:
		return fmt.Sprintf("%s IS NULL", p.Field)
	case OpIn:
		return fmt.Sprintf("%s IN %q", p.Field, p.Value)
	case OpContains:
		return fmt.Sprintf("%s CONTAINS %q", p.Field, p.Value)
	default:
		return fmt.Sprintf("%s %s %v", p.Field, p.Op, p.Value)
	}
}

// Builder composes predicates from a category slug and request filters.
// The zero value is ready to use.
type Builder struct{}

// Build composes the record-matching predicate. It is pure and total.
//
// Composition, in order:
//  1. category: OR over every label Resolve returns (substring match), omitted without a slug
//  2. brand: membership in the brand set, omitted when empty
//  3. model: membership in the model set, omitted when empty
//  4. year: inclusive range, either bound open
//  5. search: title/brand/model contains the query, omitted when blank
//  6. price: (price in range) OR (price IS NULL) OR (price = 0)
//
// Category is mandatory, brand/model/year are strict narrowing filters, and
// the price clause carries its own OR-group so price on request listings are
// never hidden by a price filter.
func (Builder) Build(slug string, f FilterSpec) Predicate {
	return And(
		categoryClause(slug),
		setClause(FieldBrand, f.Brands),
		setClause(FieldModel, f.Models),
		rangeClause(FieldYear, intBound(f.YearFrom), intBound(f.YearTo)),
		searchClause(f.Query),
		priceClause(f.PriceFrom, f.PriceTo),
	)
}

func categoryClause(slug string) Predicate {
	if strings.TrimSpace(slug) == "" {
		return All()
	}
	labels := Resolve(slug)
	clauses := make([]Predicate, len(labels))
	for i, label := range labels {
		clauses[i] = Contains(FieldCategory, label)
	}
	return Or(clauses...)
}

func setClause(f Field, values []string) Predicate {
	if len(values) == 0 {
		return All()
	}
	return In(f, values)
}

func rangeClause(f Field, from, to *float64) Predicate {
	var clauses []Predicate
	if from != nil {
		clauses = append(clauses, Gte(f, *from))
	}
	if to != nil {
		clauses = append(clauses, Lte(f, *to))
	}
	return And(clauses...)
}

func searchClause(q string) Predicate {
	q = strings.TrimSpace(q)
	if q == "" {
		return All()
	}
	return Or(
		Contains(FieldTitle, q),
		Contains(FieldBrand, q),
		Contains(FieldModel, q),
	)
}

// priceClause keeps price on request listings (NULL or 0) visible under any range.
func priceClause(from, to *float64) Predicate {
	inRange := rangeClause(FieldPrice, from, to)
	if inRange.IsAll() {
		return All()
	}
	return Or(
		inRange,
		IsNull(FieldPrice),
		Eq(FieldPrice, 0),
	)
}

func intBound(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
