// Package entity describes every listing page as configuration consumed by
// the generic list, suggestion and statistics services.
package entity

import (
	"strings"
	"time"

	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
)

// FieldKind tells renderers how to format a field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindBool
	KindTime
)

// Field is one logical column of a listing.
type Field struct {
	Name   string
	Column string
	// Label is the table header. Fields without a label are selected for
	// filtering but not rendered.
	Label string
	Kind  FieldKind
}

// Format renders the field of r for tables and exports. Unix timestamps of
// zero render as "Never".
func (f Field) Format(r models.Record) string {
	switch f.Kind {
	case KindTime:
		ts, ok := r.Int(f.Name)
		if !ok {
			return r.String(f.Name)
		}
		if ts <= 0 {
			return "Never"
		}
		return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
	case KindBool:
		v, ok := r.Int(f.Name)
		if !ok {
			return ""
		}
		if v != 0 {
			return "Yes"
		}
		return "No"
	}
	return r.String(f.Name)
}

// Env carries request-time values filters depend on.
type Env struct {
	Now          time.Time
	ActiveWindow time.Duration
}

// ActiveCutoff is the unix time after which a last access counts as recent.
func (e Env) ActiveCutoff() int64 {
	return e.Now.Add(-e.ActiveWindow).Unix()
}

// FilterFunc turns a raw filter value into a predicate. Returning false drops
// the filter, which is how unknown or malformed values are ignored.
type FilterFunc func(value string, env Env) (query.Expr, bool)

// Option is one dropdown choice.
type Option struct {
	Value string
	Label string
}

// Filter is a named, client-controllable restriction.
type Filter struct {
	Name    string
	Label   string
	Options []Option
	// Input names the HTML input type for free-form filters ("date", "number").
	Input   string
	Default string
	Apply   FilterFunc
}

// Statistic is a named count over the base filters plus Filters.
type Statistic struct {
	Name    string
	Filters map[string]string
}

// Config is a listing page.
type Config struct {
	Slug     string
	Title    string
	ItemsKey string
	Source   query.Source
	Fields   []Field

	Searchable []string
	// RankFields order suggestion matches: a match on RankFields[0] ranks 1.
	RankFields []string
	// LabelField is the canonical identifier put in the search box when a
	// suggestion is picked, and the secondary suggestion sort key.
	LabelField string
	Sortable   []string

	DefaultSort models.Sort
	BaseFilters []query.Expr
	Filters     []Filter
	Statistics  []Statistic

	// FullName fields are joined with spaces into a derived "fullname".
	FullName []string
	Display  func(r models.Record) string
}

// ListAction is the AJAX action returning the JSON list, e.g. get_users.
func (c *Config) ListAction() string {
	return "get_" + c.ItemsKey
}

// Columns maps fields for the query compiler.
func (c *Config) Columns() []query.Column {
	cols := make([]query.Column, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = query.Column{Name: f.Name, Expr: f.Column}
	}
	return cols
}

// Visible returns the fields rendered as table columns.
func (c *Config) Visible() []Field {
	out := make([]Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Label != "" {
			out = append(out, f)
		}
	}
	return out
}

// Field looks up a field by name.
func (c *Config) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Filter looks up a filter by name.
func (c *Config) Filter(name string) (*Filter, bool) {
	for i := range c.Filters {
		if c.Filters[i].Name == name {
			return &c.Filters[i], true
		}
	}
	return nil, false
}

// IsSortable reports whether field is on the sort allow-list.
func (c *Config) IsSortable(field string) bool {
	for _, f := range c.Sortable {
		if f == field {
			return true
		}
	}
	return false
}

// Decorate adds the derived fullname and display values used by suggestion
// payloads.
func (c *Config) Decorate(r models.Record) models.Record {
	out := r.Clone()
	if len(c.FullName) > 0 {
		parts := make([]string, 0, len(c.FullName))
		for _, f := range c.FullName {
			if v := strings.TrimSpace(r.String(f)); v != "" {
				parts = append(parts, v)
			}
		}
		out["fullname"] = strings.Join(parts, " ")
	}
	if c.Display != nil {
		out["display"] = c.Display(out)
	} else {
		out["display"] = r.String(c.LabelField)
	}
	return out
}
