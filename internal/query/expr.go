// Package query holds the predicate trees shared by every listing. A tree
// compiles to parameterized PostgreSQL and can also be evaluated against an
// in-memory record, so SQL and memory stores agree on what matches.
package query

import (
	"strings"

	"github.com/noah-isme/remui-admin-api/internal/models"
)

// Expr is a boolean predicate over logical record fields.
type Expr interface {
	compile(c *compiler) (string, error)
	// Match evaluates the predicate against a record held in memory.
	Match(r models.Record) bool
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpNeq Op = "<>"
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

type comparison struct {
	field string
	op    Op
	value interface{}
}

// Eq matches field = value.
func Eq(field string, value interface{}) Expr {
	return comparison{field: field, op: OpEq, value: value}
}

// Neq matches field <> value.
func Neq(field string, value interface{}) Expr {
	return comparison{field: field, op: OpNeq, value: value}
}

// Gt matches field > value.
func Gt(field string, value interface{}) Expr {
	return comparison{field: field, op: OpGt, value: value}
}

// Gte matches field >= value.
func Gte(field string, value interface{}) Expr {
	return comparison{field: field, op: OpGte, value: value}
}

// Lt matches field < value.
func Lt(field string, value interface{}) Expr {
	return comparison{field: field, op: OpLt, value: value}
}

// Lte matches field <= value.
func Lte(field string, value interface{}) Expr {
	return comparison{field: field, op: OpLte, value: value}
}

func (e comparison) compile(c *compiler) (string, error) {
	col, err := c.column(e.field)
	if err != nil {
		return "", err
	}
	return col + " " + string(e.op) + " " + c.bind(e.value), nil
}

func (e comparison) Match(r models.Record) bool {
	got, ok := r[e.field]
	if !ok || got == nil {
		return false
	}
	cmp := compareValues(got, e.value, false)
	switch e.op {
	case OpEq:
		return cmp == 0
	case OpNeq:
		return cmp != 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	}
	return false
}

type contains struct {
	field string
	text  string
}

// Contains is a case-insensitive substring match (LIKE '%text%').
// LIKE wildcards in text are matched literally.
func Contains(field, text string) Expr {
	return contains{field: field, text: text}
}

func (e contains) compile(c *compiler) (string, error) {
	col, err := c.column(e.field)
	if err != nil {
		return "", err
	}
	return "LOWER(" + col + ") LIKE " + c.bind(LikePattern(e.text)), nil
}

func (e contains) Match(r models.Record) bool {
	if _, ok := r[e.field]; !ok {
		return false
	}
	return strings.Contains(strings.ToLower(r.String(e.field)), strings.ToLower(e.text))
}

// LikePattern lowercases text, escapes LIKE metacharacters and wraps it in %.
func LikePattern(text string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(text))
	return "%" + escaped + "%"
}

type in struct {
	field  string
	values []interface{}
}

// In matches field against any of values. An empty list matches nothing.
func In(field string, values ...interface{}) Expr {
	return in{field: field, values: values}
}

func (e in) compile(c *compiler) (string, error) {
	if len(e.values) == 0 {
		return "1=0", nil
	}
	col, err := c.column(e.field)
	if err != nil {
		return "", err
	}
	placeholders := make([]string, len(e.values))
	for i, v := range e.values {
		placeholders[i] = c.bind(v)
	}
	return col + " IN (" + strings.Join(placeholders, ", ") + ")", nil
}

func (e in) Match(r models.Record) bool {
	got, ok := r[e.field]
	if !ok || got == nil {
		return false
	}
	for _, v := range e.values {
		if compareValues(got, v, false) == 0 {
			return true
		}
	}
	return false
}

type group struct {
	op    string
	exprs []Expr
}

// And joins predicates with AND. Nil entries are skipped; no entries is TRUE.
func And(exprs ...Expr) Expr {
	return group{op: "AND", exprs: compact(exprs)}
}

// Or joins predicates with OR. Nil entries are skipped; no entries is FALSE.
func Or(exprs ...Expr) Expr {
	return group{op: "OR", exprs: compact(exprs)}
}

func compact(exprs []Expr) []Expr {
	out := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (e group) compile(c *compiler) (string, error) {
	if len(e.exprs) == 0 {
		if e.op == "AND" {
			return "1=1", nil
		}
		return "1=0", nil
	}
	parts := make([]string, 0, len(e.exprs))
	for _, sub := range e.exprs {
		sql, err := sub.compile(c)
		if err != nil {
			return "", err
		}
		if g, nested := sub.(group); nested && len(g.exprs) > 1 {
			sql = "(" + sql + ")"
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, " "+e.op+" "), nil
}

func (e group) Match(r models.Record) bool {
	if e.op == "AND" {
		for _, sub := range e.exprs {
			if !sub.Match(r) {
				return false
			}
		}
		return true
	}
	for _, sub := range e.exprs {
		if sub.Match(r) {
			return true
		}
	}
	return false
}

type not struct {
	expr Expr
}

// Not negates a predicate.
func Not(e Expr) Expr {
	return not{expr: e}
}

func (e not) compile(c *compiler) (string, error) {
	sql, err := e.expr.compile(c)
	if err != nil {
		return "", err
	}
	return "NOT (" + sql + ")", nil
}

func (e not) Match(r models.Record) bool {
	return !e.expr.Match(r)
}

// RankOf returns the 1-based index of the first case matching r, or
// len(cases)+1 when none does.
func RankOf(cases []Expr, r models.Record) int {
	for i, c := range cases {
		if c.Match(r) {
			return i + 1
		}
	}
	return len(cases) + 1
}

// compareValues orders two primitive values. Values that both read as
// integers compare numerically, anything else compares as text, folded to
// lower case when fold is set.
func compareValues(a, b interface{}, fold bool) int {
	ai, aok := models.AsInt(a)
	bi, bok := models.AsInt(b)
	if aok && bok {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	as := models.Record{"v": a}.String("v")
	bs := models.Record{"v": b}.String("v")
	if fold {
		as, bs = strings.ToLower(as), strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}
