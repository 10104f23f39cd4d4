package query

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/remui-admin-api/internal/models"
)

var userColumns = []Column{
	{Name: "id", Expr: "u.id"},
	{Name: "username", Expr: "u.username"},
	{Name: "email", Expr: "u.email"},
	{Name: "suspended", Expr: "u.suspended"},
	{Name: "lastaccess", Expr: "u.lastaccess"},
}

func userSelect(where Expr) Select {
	return Select{
		Source:  Source{Name: "users", From: "mdl_user u"},
		Columns: userColumns,
		Where:   where,
	}
}

func TestCompileSearchPredicate(t *testing.T) {
	sel := userSelect(And(
		Eq("suspended", 0),
		Or(Contains("username", "Al"), Contains("email", "Al")),
	))
	sel.Order = []Order{By("lastaccess", models.Desc), By("id", models.Asc)}
	sel.Limit = 20
	sel.Offset = 40

	sql, args, err := Compile(sel)
	require.NoError(t, err)
	assert.Equal(t, "SELECT u.id AS id, u.username AS username, u.email AS email, u.suspended AS suspended, u.lastaccess AS lastaccess "+
		"FROM mdl_user u WHERE u.suspended = $1 AND (LOWER(u.username) LIKE $2 OR LOWER(u.email) LIKE $3) "+
		"ORDER BY u.lastaccess DESC, u.id ASC LIMIT 20 OFFSET 40", sql)
	assert.Equal(t, []interface{}{0, "%al%", "%al%"}, args)

	countSQL, countArgs, err := CompileCount(sel)
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM mdl_user u WHERE u.suspended = $1 AND (LOWER(u.username) LIKE $2 OR LOWER(u.email) LIKE $3)", countSQL)
	assert.Equal(t, args, countArgs)
}

func TestCompileRankOrderBindsAfterWhere(t *testing.T) {
	sel := userSelect(Contains("username", "jo"))
	sel.Order = []Order{RankBy(Contains("username", "jo"), Contains("email", "jo")), By("username", models.Asc)}
	sel.Limit = 10

	sql, args, err := Compile(sel)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE LOWER(u.username) LIKE $1 ORDER BY CASE WHEN LOWER(u.username) LIKE $2 THEN 1 WHEN LOWER(u.email) LIKE $3 THEN 2 ELSE 3 END ASC, u.username ASC LIMIT 10")
	assert.Len(t, args, 3)
}

func TestCompileRejectsUnknownField(t *testing.T) {
	sel := userSelect(Eq("password", "x"))
	_, _, err := Compile(sel)
	assert.True(t, errors.Is(err, ErrUnknownField))

	sel = userSelect(nil)
	sel.Order = []Order{By("id; DROP TABLE mdl_user", models.Asc)}
	_, _, err = Compile(sel)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestCompileEmptyGroupsAndIn(t *testing.T) {
	sql, args, err := CompileCount(userSelect(And(Or(), In("id"), In("id", 3, 4))))
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM mdl_user u WHERE 1=0 AND 1=0 AND u.id IN ($1, $2)", sql)
	assert.Equal(t, []interface{}{3, 4}, args)

	sql, _, err = CompileCount(userSelect(nil))
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM mdl_user u WHERE 1=1", sql)
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, LikePattern(`50%_OFF\`))
}

func TestMatchCaseInsensitiveSubstring(t *testing.T) {
	r := models.Record{"id": 1, "username": "JohnDoe"}
	for _, text := range []string{"johndoe", "JOHN", "Doe"} {
		assert.True(t, Contains("username", text).Match(r), text)
	}
	assert.False(t, Contains("username", "jane").Match(r))
	assert.False(t, Contains("email", "john").Match(r))
	assert.True(t, Contains("username", "%").Match(models.Record{"username": "100%"}))
	assert.False(t, Contains("username", "%").Match(r))
}

func TestMatchComparisons(t *testing.T) {
	r := models.Record{"id": int64(4), "suspended": true, "lastaccess": 100, "name": "Alpha"}

	assert.True(t, Eq("suspended", 1).Match(r))
	assert.True(t, Gt("id", 2).Match(r))
	assert.False(t, Gt("lastaccess", 100).Match(r))
	assert.True(t, Gte("lastaccess", 100).Match(r))
	assert.True(t, Lt("lastaccess", "101").Match(r))
	assert.True(t, Neq("name", "alpha").Match(r))
	assert.True(t, In("id", 3, 4).Match(r))
	assert.True(t, Not(Eq("id", 3)).Match(r))
	assert.False(t, Eq("missing", 1).Match(r))
	assert.True(t, And().Match(r))
	assert.False(t, Or().Match(r))
}

func TestRankOfAndLess(t *testing.T) {
	cases := []Expr{Contains("username", "al"), Contains("email", "al")}
	records := []models.Record{
		{"id": 3, "username": "zed", "email": "zed@al.com"},
		{"id": 1, "username": "kal", "email": "k@x.com"},
		{"id": 2, "username": "albert", "email": "a@x.com"},
		{"id": 4, "username": "bob", "email": "b@x.com"},
	}
	assert.Equal(t, 2, RankOf(cases, records[0]))
	assert.Equal(t, 3, RankOf(cases, records[3]))

	orders := []Order{RankBy(cases...), By("username", models.Asc)}
	sort.SliceStable(records, func(i, j int) bool { return Less(orders, records[i], records[j]) })

	var names []string
	for _, r := range records {
		names = append(names, r.String("username"))
	}
	assert.Equal(t, []string{"albert", "kal", "zed", "bob"}, names)
}

func TestLessNullsLast(t *testing.T) {
	withValue := models.Record{"lastaccess": 10}
	withoutValue := models.Record{"lastaccess": nil}

	assert.True(t, Less([]Order{By("lastaccess", models.Asc)}, withValue, withoutValue))
	assert.True(t, Less([]Order{By("lastaccess", models.Desc)}, withoutValue, withValue))
}

func TestProject(t *testing.T) {
	r := models.Record{"id": 1, "username": "a", "password": "secret"}
	out := Project(userSelect(nil), r)

	assert.Equal(t, models.Record{"id": 1, "username": "a"}, out)
}
