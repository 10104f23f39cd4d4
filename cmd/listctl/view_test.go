package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/remui-admin-api/internal/models"
)

func TestColumnsPutsIDFirst(t *testing.T) {
	assert.Equal(t, []string{"id", "email", "username"}, columns(models.Record{"username": "a", "id": 1, "email": "b"}))
}

func TestTerminalViewKeepsSuggestionsForPick(t *testing.T) {
	var buf bytes.Buffer
	v := newTerminalView(&buf, "username")

	v.ShowSuggestions("al", []models.Record{{"id": int64(3), "username": "alice"}})
	item, ok := v.suggestion(0)
	assert.True(t, ok)
	assert.Equal(t, "alice", item.String("username"))
	assert.Contains(t, buf.String(), "1. alice (id 3)")

	v.HideSuggestions()
	_, ok = v.suggestion(0)
	assert.False(t, ok)
}

func TestTerminalViewRendersEmptyPage(t *testing.T) {
	var buf bytes.Buffer
	newTerminalView(&buf, "username").RenderTable(models.SearchSpec{Query: "zz"}, &models.PageResult{})
	assert.Contains(t, buf.String(), "page 1/1, 0 records")
	assert.Contains(t, buf.String(), "no records found")
}
