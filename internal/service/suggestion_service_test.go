package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
)

func suggestionNames(items []models.Suggestion) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Record.String("username")
	}
	return out
}

func TestSuggestShortQueryNeverTouchesStore(t *testing.T) {
	store := newCountingStore(alice())
	svc := NewSuggestionService(store, testBuilder(), nil, 0, nil, nil)

	for _, text := range []string{"", "a", " a ", "é"} {
		items, err := svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: text})
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	}
	assert.Equal(t, 0, store.calls())
}

func TestSuggestScenarioRanksUsernameMatchFirst(t *testing.T) {
	svc := NewSuggestionService(newCountingStore(alice(), bob()), testBuilder(), nil, 0, nil, nil)

	items, err := svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: "al"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "alice01", items[0].Record.String("username"))
	assert.Equal(t, 1, items[0].MatchRank)
	assert.Equal(t, "Alice Smith (alice01)", items[0].Record["display"])
}

func TestSuggestIsCaseInsensitive(t *testing.T) {
	john := models.Record{"id": int64(7), "username": "JohnDoe", "email": "jd@x.com", "firstname": "John", "lastname": "Doe", "deleted": int64(0)}
	svc := NewSuggestionService(newCountingStore(john), testBuilder(), nil, 0, nil, nil)

	for _, text := range []string{"johndoe", "JOHN", "Doe"} {
		items, err := svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: text})
		require.NoError(t, err)
		assert.Equal(t, []string{"JohnDoe"}, suggestionNames(items), "query %q", text)
	}
}

func TestSuggestOrdersByRankThenUsername(t *testing.T) {
	store := newCountingStore(
		models.Record{"id": int64(3), "username": "zjo", "email": "z@x.com", "deleted": int64(0)},
		models.Record{"id": int64(4), "username": "amy", "email": "jo@x.com", "deleted": int64(0)},
		models.Record{"id": int64(5), "username": "bea", "email": "b@x.com", "firstname": "Jo", "deleted": int64(0)},
		models.Record{"id": int64(6), "username": "ajo", "email": "a@x.com", "deleted": int64(0)},
		models.Record{"id": int64(7), "username": "cat", "email": "c@x.com", "lastname": "Dojo", "deleted": int64(0)},
	)
	svc := NewSuggestionService(store, testBuilder(), nil, 0, nil, nil)

	items, err := svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: "jo"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ajo", "zjo", "amy", "bea", "cat"}, suggestionNames(items))
	ranks := make([]int, len(items))
	for i, s := range items {
		ranks[i] = s.MatchRank
	}
	assert.Equal(t, []int{1, 1, 2, 3, 4}, ranks)
}

func TestSuggestAppliesLimit(t *testing.T) {
	svc := NewSuggestionService(newCountingStore(manyUsers(30)...), testBuilder(), nil, 0, nil, nil)

	items, err := svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: "user"})
	require.NoError(t, err)
	assert.Len(t, items, 10)

	items, err = svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: "user", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"user000", "user001", "user002"}, suggestionNames(items))
}

func TestSuggestDeduplicatesByID(t *testing.T) {
	row := models.Record{"id": int64(3), "username": "alice01", "email": "alice@x.com"}
	other := models.Record{"id": int64(4), "username": "alina", "email": "alina@x.com"}
	svc := NewSuggestionService(fixedStore{rows: []models.Record{row, row.Clone(), other}}, testBuilder(), nil, 0, nil, nil)

	items, err := svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: "ali"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice01", "alina"}, suggestionNames(items))
}

func TestSuggestStoreErrorDegradesToEmpty(t *testing.T) {
	store := newCountingStore(alice())
	store.err = errStoreDown
	svc := NewSuggestionService(store, testBuilder(), nil, 0, NewMetricsService(), nil)

	items, err := svc.Suggest(context.Background(), entity.Users("mdl_"), models.SuggestionQuery{Text: "al"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStore))
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSuggestServesRepeatLookupsFromCache(t *testing.T) {
	store := newCountingStore(alice(), bob())
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, nil, true)
	svc := NewSuggestionService(store, testBuilder(), cache, time.Minute, nil, nil)
	cfg := entity.Users("mdl_")

	first, err := svc.Suggest(context.Background(), cfg, models.SuggestionQuery{Text: "AL"})
	require.NoError(t, err)
	second, err := svc.Suggest(context.Background(), cfg, models.SuggestionQuery{Text: "al "})
	require.NoError(t, err)

	assert.Equal(t, 1, store.calls())
	assert.Equal(t, suggestionNames(first), suggestionNames(second))
	assert.Equal(t, first[0].MatchRank, second[0].MatchRank)
}
