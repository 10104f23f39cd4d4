package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
)

func seededStore() *MemoryStore {
	store := NewMemoryStore()
	store.Load("users",
		models.Record{"id": int64(3), "username": "carol", "deleted": int64(0), "secret": "x"},
		models.Record{"id": int64(4), "username": "alice", "deleted": int64(0)},
		models.Record{"id": int64(5), "username": "bob", "deleted": int64(1)},
		models.Record{"id": int64(6), "username": "alan", "deleted": int64(0)},
	)
	return store
}

func storeSelect() query.Select {
	return query.Select{
		Source: query.Source{Name: "users", From: "mdl_user u"},
		Columns: []query.Column{
			{Name: "id", Expr: "u.id"},
			{Name: "username", Expr: "u.username"},
			{Name: "deleted", Expr: "u.deleted"},
		},
		Where: query.Eq("deleted", 0),
		Order: []query.Order{query.By("username", models.Asc)},
	}
}

func TestMemoryStoreCountAndSelect(t *testing.T) {
	store := seededStore()
	sel := storeSelect()

	total, err := store.Count(context.Background(), sel)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	sel.Limit = 2
	sel.Offset = 1
	records, err := store.Select(context.Background(), sel)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0]["username"])
	assert.Equal(t, "carol", records[1]["username"])
	_, leaked := records[1]["secret"]
	assert.False(t, leaked)
}

func TestMemoryStoreOffsetPastEnd(t *testing.T) {
	sel := storeSelect()
	sel.Offset = 10
	records, err := seededStore().Select(context.Background(), sel)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	sel := storeSelect()
	sel.Source.Name = "schools"
	total, err := seededStore().Count(context.Background(), sel)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := seededStore().Select(ctx, storeSelect())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStoreLoadCopiesRecords(t *testing.T) {
	rec := models.Record{"id": int64(9), "username": "zed", "deleted": int64(0)}
	store := NewMemoryStore()
	store.Load("users", rec)
	rec["username"] = "mutated"

	records, err := store.Select(context.Background(), storeSelect())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "zed", records[0]["username"])
}
