package entity

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/remui-admin-api/internal/query"
)

const dateLayout = "2006-01-02"

var userStatusOptions = []Option{
	{Value: "all", Label: "All users"},
	{Value: "active", Label: "Active"},
	{Value: "inactive", Label: "Inactive"},
	{Value: "suspended", Label: "Suspended"},
}

// accountStatus interprets status on records carrying a suspended flag and
// a lastaccess timestamp. Active means not suspended and seen within the
// active window; inactive means not suspended and not seen within it.
func accountStatus(value string, env Env) (query.Expr, bool) {
	cutoff := env.ActiveCutoff()
	switch strings.ToLower(value) {
	case "active":
		return query.And(query.Eq("suspended", 0), query.Gt("lastaccess", cutoff)), true
	case "inactive":
		return query.And(query.Eq("suspended", 0), query.Lte("lastaccess", cutoff)), true
	case "suspended":
		return query.Eq("suspended", 1), true
	}
	return nil, false
}

// flagStatus interprets status on a 0/1 column: 0 is active, 1 suspended.
func flagStatus(field string) FilterFunc {
	return func(value string, _ Env) (query.Expr, bool) {
		switch strings.ToLower(value) {
		case "active":
			return query.Eq(field, 0), true
		case "suspended":
			return query.Eq(field, 1), true
		}
		return nil, false
	}
}

// idEquals filters field by a positive integer id.
func idEquals(field string) FilterFunc {
	return func(value string, _ Env) (query.Expr, bool) {
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || id <= 0 {
			return nil, false
		}
		return query.Eq(field, id), true
	}
}

// textContains filters field by a case-insensitive substring.
func textContains(field string) FilterFunc {
	return func(value string, _ Env) (query.Expr, bool) {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, false
		}
		return query.Contains(field, value), true
	}
}

// upperEquals filters field by an exact upper-case code such as a country.
func upperEquals(field string) FilterFunc {
	return func(value string, _ Env) (query.Expr, bool) {
		value = strings.ToUpper(strings.TrimSpace(value))
		if value == "" {
			return nil, false
		}
		return query.Eq(field, value), true
	}
}

// dateFrom keeps records created on or after the given day (UTC).
func dateFrom(field string) FilterFunc {
	return func(value string, _ Env) (query.Expr, bool) {
		day, err := time.Parse(dateLayout, strings.TrimSpace(value))
		if err != nil {
			return nil, false
		}
		return query.Gte(field, day.Unix()), true
	}
}

// dateTo keeps records created on or before the given day (UTC).
func dateTo(field string) FilterFunc {
	return func(value string, _ Env) (query.Expr, bool) {
		day, err := time.Parse(dateLayout, strings.TrimSpace(value))
		if err != nil {
			return nil, false
		}
		return query.Lt(field, day.AddDate(0, 0, 1).Unix()), true
	}
}

func dateRange(field string) []Filter {
	return []Filter{
		{Name: "from", Label: "From", Input: "date", Apply: dateFrom(field)},
		{Name: "to", Label: "To", Input: "date", Apply: dateTo(field)},
	}
}
