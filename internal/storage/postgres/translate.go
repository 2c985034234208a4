package postgres

// translate.go turns catalog.Predicate trees into parameterised WHERE
// clauses. Values are always bound as $n arguments; column names come from a
// closed table, never from input.

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/motorcat/internal/catalog"
)

var columns = map[catalog.Field]string{
	catalog.FieldCategory: "category",
	catalog.FieldBrand:    "brand",
	catalog.FieldModel:    "model",
	catalog.FieldYear:     "year",
	catalog.FieldPrice:    "price",
	catalog.FieldTitle:    "title",
}

var stringFields = map[catalog.Field]bool{
	catalog.FieldCategory: true,
	catalog.FieldBrand:    true,
	catalog.FieldModel:    true,
	catalog.FieldTitle:    true,
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereBuilder accumulates positional arguments while rendering a predicate.
type whereBuilder struct {
	args []any
}

// bind appends v and returns its placeholder.
func (b *whereBuilder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// Translate renders p as a SQL boolean expression and its arguments.
// Placeholders start at $1.
func Translate(p catalog.Predicate) (string, []any, error) {
	var b whereBuilder
	sql, err := b.expr(p)
	if err != nil {
		return "", nil, err
	}
	return sql, b.args, nil
}

func (b *whereBuilder) expr(p catalog.Predicate) (string, error) {
	switch p.Op {
	case catalog.OpAnd, catalog.OpOr:
		return b.group(p)
	}

	col, ok := columns[p.Field]
	if !ok {
		return "", fmt.Errorf("unknown field %q", p.Field)
	}

	switch p.Op {
	case catalog.OpContains:
		s, ok := p.Value.(string)
		if !ok || !stringFields[p.Field] {
			return "", fmt.Errorf("contains on %s needs a string", p.Field)
		}
		if s == "" {
			return "TRUE", nil
		}
		return fmt.Sprintf(`%s ILIKE '%%' || %s || '%%' ESCAPE '\'`, col, b.bind(likeEscaper.Replace(s))), nil

	case catalog.OpIn:
		values, ok := p.Value.([]string)
		if !ok || !stringFields[p.Field] {
			return "", fmt.Errorf("in on %s needs a string set", p.Field)
		}
		return fmt.Sprintf("%s = ANY(%s)", col, b.bind(values)), nil

	case catalog.OpGte, catalog.OpLte, catalog.OpEq:
		v, ok := p.Value.(float64)
		if !ok || stringFields[p.Field] {
			return "", fmt.Errorf("%s on %s needs a number", p.Op, p.Field)
		}
		op := map[catalog.Op]string{catalog.OpGte: ">=", catalog.OpLte: "<=", catalog.OpEq: "="}[p.Op]
		return fmt.Sprintf("%s %s %s", col, op, b.bind(v)), nil

	case catalog.OpIsNull:
		return col + " IS NULL", nil
	}

	return "", fmt.Errorf("unknown operator %q", p.Op)
}

func (b *whereBuilder) group(p catalog.Predicate) (string, error) {
	if len(p.Args) == 0 {
		if p.Op == catalog.OpAnd {
			return "TRUE", nil
		}
		return "FALSE", nil
	}

	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		s, err := b.expr(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	sep := " AND "
	if p.Op == catalog.OpOr {
		sep = " OR "
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// orderBy renders the ORDER BY list for a sort key. Price on request rows
// (NULL or 0) sort last in both directions.
func orderBy(key catalog.SortKey) string {
	const tie = "created_at DESC, id"
	switch key {
	case catalog.SortPriceAsc:
		return "NULLIF(price, 0) ASC NULLS LAST, " + tie
	case catalog.SortPriceDesc:
		return "NULLIF(price, 0) DESC NULLS LAST, " + tie
	case catalog.SortYearDesc:
		return "year DESC, " + tie
	case catalog.SortYearAsc:
		return "year ASC, " + tie
	case catalog.SortMileage:
		return "mileage ASC, " + tie
	default:
		return tie
	}
}
