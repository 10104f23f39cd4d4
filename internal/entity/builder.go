package entity

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
)

// Limits bounds client controlled sizes.
type Limits struct {
	DefaultPageSize    int
	MaxPageSize        int
	SuggestionLimit    int
	MaxSuggestionLimit int
	MinChars           int
}

// DefaultLimits mirrors the defaults of the listing config section.
func DefaultLimits() Limits {
	return Limits{
		DefaultPageSize:    20,
		MaxPageSize:        100,
		SuggestionLimit:    10,
		MaxSuggestionLimit: 50,
		MinChars:           2,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = d.DefaultPageSize
	}
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = d.MaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	if l.SuggestionLimit <= 0 {
		l.SuggestionLimit = d.SuggestionLimit
	}
	if l.MaxSuggestionLimit <= 0 {
		l.MaxSuggestionLimit = d.MaxSuggestionLimit
	}
	if l.MinChars <= 0 {
		l.MinChars = d.MinChars
	}
	return l
}

// Builder turns search specs into count and page selects that share one
// predicate. Invalid client input is clamped or replaced, never rejected.
type Builder struct {
	limits   Limits
	validate *validator.Validate
}

// NewBuilder constructs a Builder.
func NewBuilder(limits Limits, validate *validator.Validate) *Builder {
	if validate == nil {
		validate = validator.New()
	}
	return &Builder{limits: limits.withDefaults(), validate: validate}
}

// Limits returns the effective limits.
func (b *Builder) Limits() Limits {
	return b.limits
}

// Normalize returns a copy of spec that is safe to compile: trimmed query,
// known filters only (with defaults), an allow-listed sort, page >= 0 and
// a page size within [1, MaxPageSize]. A zero page size selects the default.
func (b *Builder) Normalize(cfg *Config, spec models.SearchSpec) models.SearchSpec {
	out := models.SearchSpec{
		Query:    strings.TrimSpace(spec.Query),
		Filters:  make(map[string]string, len(cfg.Filters)),
		Sort:     spec.Sort,
		Page:     spec.Page,
		PageSize: spec.PageSize,
	}

	for _, f := range cfg.Filters {
		value, ok := spec.Filters[f.Name]
		value = strings.TrimSpace(value)
		if !ok && f.Default != "" {
			value = f.Default
		}
		if value != "" {
			out.Filters[f.Name] = value
		}
	}

	if !cfg.IsSortable(out.Sort.Field) {
		out.Sort = cfg.DefaultSort
	} else if dir, ok := models.ParseDirection(string(out.Sort.Direction)); ok {
		out.Sort.Direction = dir
	}
	if b.validate.Var(string(out.Sort.Direction), "oneof=ASC DESC") != nil {
		out.Sort.Direction = cfg.DefaultSort.Direction
		if out.Sort.Direction == "" {
			out.Sort.Direction = models.Asc
		}
	}

	if out.Page < 0 {
		out.Page = 0
	}
	switch {
	case out.PageSize == 0:
		out.PageSize = b.limits.DefaultPageSize
	case b.validate.Var(out.PageSize, fmt.Sprintf("min=1,max=%d", b.limits.MaxPageSize)) != nil:
		if out.PageSize < 1 {
			out.PageSize = 1
		} else {
			out.PageSize = b.limits.MaxPageSize
		}
	}

	return out
}

// Predicate is AND(base filters, active filters, OR(search fields)). It is
// the single predicate used by both the count and the page select.
func (b *Builder) Predicate(cfg *Config, spec models.SearchSpec, env Env) query.Expr {
	exprs := make([]query.Expr, 0, len(cfg.BaseFilters)+len(spec.Filters)+1)
	exprs = append(exprs, cfg.BaseFilters...)
	for _, f := range cfg.Filters {
		value, ok := spec.Filters[f.Name]
		if !ok || value == "" || f.Apply == nil {
			continue
		}
		if expr, ok := f.Apply(value, env); ok {
			exprs = append(exprs, expr)
		}
	}
	if text := strings.TrimSpace(spec.Query); text != "" {
		exprs = append(exprs, searchExpr(cfg.Searchable, text))
	}
	return query.And(exprs...)
}

func searchExpr(fields []string, text string) query.Expr {
	terms := make([]query.Expr, len(fields))
	for i, f := range fields {
		terms[i] = query.Contains(f, text)
	}
	return query.Or(terms...)
}

// Count builds the count select for a normalized spec. Page and page size
// play no part in it.
func (b *Builder) Count(cfg *Config, spec models.SearchSpec, env Env) query.Select {
	return query.Select{
		Source:  cfg.Source,
		Columns: cfg.Columns(),
		Where:   b.Predicate(cfg, spec, env),
	}
}

// Page builds the page select for a normalized spec. Rows are ordered by the
// sort field, then id, so repeated reads of a page are stable.
func (b *Builder) Page(cfg *Config, spec models.SearchSpec, env Env) query.Select {
	sel := b.Count(cfg, spec, env)
	sel.Order = []query.Order{query.By(spec.Sort.Field, spec.Sort.Direction)}
	if spec.Sort.Field != "id" {
		sel.Order = append(sel.Order, query.By("id", models.Asc))
	}
	sel.Limit = spec.PageSize
	sel.Offset = spec.Page * spec.PageSize
	return sel
}

// SuggestionLimit clamps a requested suggestion limit.
func (b *Builder) SuggestionLimit(limit int) int {
	switch {
	case limit <= 0:
		return b.limits.SuggestionLimit
	case limit > b.limits.MaxSuggestionLimit:
		return b.limits.MaxSuggestionLimit
	}
	return limit
}

// Active reports whether text is long enough to trigger suggestions.
func (b *Builder) Active(text string) bool {
	return len([]rune(strings.TrimSpace(text))) >= b.limits.MinChars
}

// Suggest builds the type-ahead select and the rank cases used to order it.
// Rows are ranked by the first rank field that matched, then by label.
func (b *Builder) Suggest(cfg *Config, q models.SuggestionQuery) (query.Select, []query.Expr) {
	text := strings.TrimSpace(q.Text)
	cases := make([]query.Expr, len(cfg.RankFields))
	for i, f := range cfg.RankFields {
		cases[i] = query.Contains(f, text)
	}

	exprs := append([]query.Expr{}, cfg.BaseFilters...)
	exprs = append(exprs, searchExpr(cfg.Searchable, text))

	sel := query.Select{
		Source:  cfg.Source,
		Columns: cfg.Columns(),
		Where:   query.And(exprs...),
		Order: []query.Order{
			query.RankBy(cases...),
			query.By(cfg.LabelField, models.Asc),
			query.By("id", models.Asc),
		},
		Limit: b.SuggestionLimit(q.Limit),
	}
	return sel, cases
}
