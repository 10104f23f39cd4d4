package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortNext(t *testing.T) {
	asc := Sort{Field: "username", Direction: Asc}
	assert.Equal(t, Sort{Field: "username", Direction: Desc}, asc.Next("username"))
	assert.Equal(t, Sort{Field: "username", Direction: Asc}, Sort{Field: "username", Direction: Desc}.Next("username"))
	assert.Equal(t, Sort{Field: "email", Direction: Asc}, asc.Next("email"))
}

func TestParseDirection(t *testing.T) {
	d, ok := ParseDirection(" desc ")
	assert.True(t, ok)
	assert.Equal(t, Desc, d)
	_, ok = ParseDirection("sideways")
	assert.False(t, ok)
}

func TestRecordAccessors(t *testing.T) {
	r := Record{"id": "12", "name": []byte("North"), "flag": true, "at": time.Unix(0, 0), "n": 3.0, "none": nil}
	assert.Equal(t, int64(12), r.ID())
	assert.Equal(t, "North", r.String("name"))
	assert.Equal(t, "1", r.String("flag"))
	assert.Equal(t, "1970-01-01T00:00:00Z", r.String("at"))
	assert.Equal(t, "", r.String("none"))
	n, ok := r.Int("n")
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	_, ok = r.Int("name")
	assert.False(t, ok)
}

func TestCloneIsIndependent(t *testing.T) {
	spec := SearchSpec{Filters: map[string]string{"status": "active"}, Page: 1}
	next := spec.Clone()
	next.Filters["status"] = "suspended"
	next.Page = 4
	assert.Equal(t, "active", spec.Filters["status"])
	assert.Equal(t, 1, spec.Page)

	r := Record{"id": int64(1)}
	c := r.Clone()
	c["id"] = int64(2)
	assert.Equal(t, int64(1), r.ID())
}
