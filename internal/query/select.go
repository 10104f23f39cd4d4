package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/remui-admin-api/internal/models"
)

// ErrUnknownField is returned when a predicate or order names a field that is
// not part of the select's column list.
var ErrUnknownField = errors.New("unknown field")

// Column maps a logical field name to the SQL expression producing it.
type Column struct {
	Name string
	Expr string
}

// Source is the collection a select reads from. Name keys collections in
// memory, From is the trusted SQL FROM fragment (tables and joins).
type Source struct {
	Name string
	From string
}

// Order is one ORDER BY term: a field, or a rank over case predicates when
// Rank is set (first matching case sorts first).
type Order struct {
	Field string
	Desc  bool
	Rank  []Expr
}

// By orders by a field in the given direction.
func By(field string, dir models.Direction) Order {
	return Order{Field: field, Desc: dir == models.Desc}
}

// RankBy orders by the index of the first matching case, ascending.
func RankBy(cases ...Expr) Order {
	return Order{Rank: cases}
}

// Select is a read over one collection.
type Select struct {
	Source  Source
	Columns []Column
	Where   Expr
	Order   []Order
	Limit   int
	Offset  int
}

type compiler struct {
	columns map[string]string
	args    []interface{}
}

func newCompiler(columns []Column) *compiler {
	c := &compiler{columns: make(map[string]string, len(columns))}
	for _, col := range columns {
		c.columns[col.Name] = col.Expr
	}
	return c
}

func (c *compiler) column(field string) (string, error) {
	col, ok := c.columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return col, nil
}

func (c *compiler) bind(value interface{}) string {
	c.args = append(c.args, value)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *compiler) where(expr Expr) (string, error) {
	if expr == nil {
		return "1=1", nil
	}
	return expr.compile(c)
}

// Compile renders the select as PostgreSQL with positional arguments.
func Compile(sel Select) (string, []interface{}, error) {
	if len(sel.Columns) == 0 {
		return "", nil, errors.New("select requires at least one column")
	}
	c := newCompiler(sel.Columns)

	fields := make([]string, len(sel.Columns))
	for i, col := range sel.Columns {
		fields[i] = col.Expr + " AS " + col.Name
	}

	where, err := c.where(sel.Where)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(fields, ", "))
	b.WriteString(" FROM ")
	b.WriteString(sel.Source.From)
	b.WriteString(" WHERE ")
	b.WriteString(where)

	if len(sel.Order) > 0 {
		terms := make([]string, 0, len(sel.Order))
		for _, o := range sel.Order {
			term, err := c.order(o)
			if err != nil {
				return "", nil, err
			}
			terms = append(terms, term)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}
	if sel.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", sel.Limit)
	}
	if sel.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", sel.Offset)
	}

	return b.String(), c.args, nil
}

// CompileCount renders SELECT COUNT(*) over the select's predicate.
func CompileCount(sel Select) (string, []interface{}, error) {
	c := newCompiler(sel.Columns)
	where, err := c.where(sel.Where)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + sel.Source.From + " WHERE " + where, c.args, nil
}

func (c *compiler) order(o Order) (string, error) {
	if len(o.Rank) > 0 {
		var b strings.Builder
		b.WriteString("CASE")
		for i, expr := range o.Rank {
			sql, err := expr.compile(c)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, " WHEN %s THEN %d", sql, i+1)
		}
		fmt.Fprintf(&b, " ELSE %d END ASC", len(o.Rank)+1)
		return b.String(), nil
	}
	col, err := c.column(o.Field)
	if err != nil {
		return "", err
	}
	if o.Desc {
		return col + " DESC", nil
	}
	return col + " ASC", nil
}

// Less reports whether a sorts before b under orders, mirroring the SQL
// ORDER BY produced by Compile. Missing values sort as the largest value,
// as NULL does in PostgreSQL.
func Less(orders []Order, a, b models.Record) bool {
	for _, o := range orders {
		var cmp int
		if len(o.Rank) > 0 {
			cmp = RankOf(o.Rank, a) - RankOf(o.Rank, b)
		} else {
			cmp = compareNullable(a[o.Field], b[o.Field])
			if o.Desc {
				cmp = -cmp
			}
		}
		if cmp != 0 {
			return cmp < 0
		}
	}
	return false
}

func compareNullable(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compareValues(a, b, true)
}

// Project keeps only the select's columns of a stored record.
func Project(sel Select, r models.Record) models.Record {
	out := make(models.Record, len(sel.Columns))
	for _, col := range sel.Columns {
		if v, ok := r[col.Name]; ok {
			out[col.Name] = v
		}
	}
	return out
}
