package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func testEnv() Env {
	return Env{Now: testNow, ActiveWindow: 30 * 24 * time.Hour}
}

func TestNormalizeClampsAndSubstitutes(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)
	cfg := Users("mdl_")

	tests := []struct {
		name string
		in   models.SearchSpec
		want models.SearchSpec
	}{
		{
			name: "defaults",
			in:   models.SearchSpec{},
			want: models.SearchSpec{Filters: map[string]string{}, Sort: models.Sort{Field: "lastaccess", Direction: models.Desc}, PageSize: 20},
		},
		{
			name: "unknown sort falls back to default sort",
			in:   models.SearchSpec{Sort: models.Sort{Field: "password", Direction: models.Asc}, Page: -3, PageSize: 500},
			want: models.SearchSpec{Filters: map[string]string{}, Sort: models.Sort{Field: "lastaccess", Direction: models.Desc}, PageSize: 100},
		},
		{
			name: "valid sort with lower case direction",
			in:   models.SearchSpec{Query: "  al ", Sort: models.Sort{Field: "email", Direction: "asc"}, Page: 2, PageSize: -5},
			want: models.SearchSpec{Query: "al", Filters: map[string]string{}, Sort: models.Sort{Field: "email", Direction: models.Asc}, Page: 2, PageSize: 1},
		},
		{
			name: "valid sort with bad direction keeps field",
			in:   models.SearchSpec{Sort: models.Sort{Field: "email", Direction: "sideways"}, PageSize: 50},
			want: models.SearchSpec{Filters: map[string]string{}, Sort: models.Sort{Field: "email", Direction: models.Desc}, PageSize: 50},
		},
		{
			name: "unknown filters dropped",
			in:   models.SearchSpec{Filters: map[string]string{"status": " suspended ", "role": "admin"}, PageSize: 10},
			want: models.SearchSpec{Filters: map[string]string{"status": "suspended"}, Sort: models.Sort{Field: "lastaccess", Direction: models.Desc}, PageSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Normalize(cfg, tt.in))
		})
	}
}

func TestNormalizeAppliesFilterDefaults(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)

	spec := b.Normalize(ActiveUsers("mdl_"), models.SearchSpec{})
	assert.Equal(t, "active", spec.Filters["status"])

	spec = b.Normalize(ActiveUsers("mdl_"), models.SearchSpec{Filters: map[string]string{"status": "suspended"}})
	assert.Equal(t, "suspended", spec.Filters["status"])
}

func TestPredicateActiveUsersScenario(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)
	cfg := Users("mdl_")
	spec := b.Normalize(cfg, models.SearchSpec{Filters: map[string]string{"status": "active"}})

	alice := models.Record{"id": 3, "username": "alice01", "email": "alice@x.com", "firstname": "Alice", "lastname": "Smith",
		"suspended": 0, "deleted": 0, "lastaccess": testNow.Add(-48 * time.Hour).Unix()}
	bob := models.Record{"id": 4, "username": "bob02", "email": "bob@x.com", "firstname": "Bob", "lastname": "Jones",
		"suspended": 1, "deleted": 0, "lastaccess": 0}
	admin := models.Record{"id": 2, "username": "admin", "suspended": 0, "deleted": 0, "lastaccess": testNow.Unix()}

	pred := b.Predicate(cfg, spec, testEnv())
	assert.True(t, pred.Match(alice))
	assert.False(t, pred.Match(bob))
	assert.False(t, pred.Match(admin))
}

func TestCountAndPageShareWhere(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)
	cfg := Users("mdl_")
	spec := b.Normalize(cfg, models.SearchSpec{Query: "smith", Filters: map[string]string{"status": "suspended"}, Page: 3, PageSize: 10})

	countSQL, countArgs, err := query.CompileCount(b.Count(cfg, spec, testEnv()))
	require.NoError(t, err)
	pageSQL, pageArgs, err := query.Compile(b.Page(cfg, spec, testEnv()))
	require.NoError(t, err)

	where := "WHERE u.deleted = $1 AND u.id > $2 AND u.suspended = $3 AND (LOWER(u.username) LIKE $4 OR LOWER(u.email) LIKE $5 OR LOWER(u.firstname) LIKE $6 OR LOWER(u.lastname) LIKE $7 OR LOWER(u.city) LIKE $8)"
	assert.Equal(t, "SELECT COUNT(*) FROM mdl_user u "+where, countSQL)
	assert.Contains(t, pageSQL, "FROM mdl_user u "+where+" ORDER BY u.lastaccess DESC, u.id ASC LIMIT 10 OFFSET 30")
	assert.Equal(t, countArgs, pageArgs)
}

func TestDateRangeFilters(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)
	cfg := Users("mdl_")
	spec := b.Normalize(cfg, models.SearchSpec{Filters: map[string]string{"from": "2026-01-01", "to": "2026-01-31"}})
	pred := b.Predicate(cfg, spec, testEnv())

	base := models.Record{"id": 10, "deleted": 0}
	inRange := base.Clone()
	inRange["timecreated"] = time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC).Unix()
	after := base.Clone()
	after["timecreated"] = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Unix()

	assert.True(t, pred.Match(inRange))
	assert.False(t, pred.Match(after))

	spec = b.Normalize(cfg, models.SearchSpec{Filters: map[string]string{"from": "last tuesday"}})
	assert.True(t, b.Predicate(cfg, spec, testEnv()).Match(after))
}

func TestEnrollmentStatusIsExplicit(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)
	cfg := Enrollments("mdl_")
	spec := b.Normalize(cfg, models.SearchSpec{Filters: map[string]string{"status": "suspended"}})
	pred := b.Predicate(cfg, spec, testEnv())

	assert.True(t, pred.Match(models.Record{"id": 1, "deleted": 0, "status": 1}))
	assert.False(t, pred.Match(models.Record{"id": 2, "deleted": 0, "status": 0}))
}

func TestSuggestSelect(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)
	cfg := Users("mdl_")
	sel, cases := b.Suggest(cfg, models.SuggestionQuery{Text: " Al ", Limit: 500})

	assert.Len(t, cases, 4)
	assert.Equal(t, 50, sel.Limit)
	assert.Equal(t, 1, query.RankOf(cases, models.Record{"username": "alice01"}))
	assert.Equal(t, 4, query.RankOf(cases, models.Record{"username": "x", "lastname": "Walsh"}))
	assert.Equal(t, 5, query.RankOf(cases, models.Record{"username": "x", "city": "Dallas"}))

	sql, _, err := query.Compile(sel)
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY CASE WHEN LOWER(u.username) LIKE")
	assert.Contains(t, sql, "ELSE 5 END ASC, u.username ASC, u.id ASC LIMIT 50")
}

func TestActiveThreshold(t *testing.T) {
	b := NewBuilder(DefaultLimits(), nil)
	assert.False(t, b.Active(""))
	assert.False(t, b.Active(" a "))
	assert.True(t, b.Active("al"))
	assert.False(t, b.Active("é"))
	assert.Equal(t, 10, b.SuggestionLimit(0))
}
