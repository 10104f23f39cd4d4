package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/remui-admin-api/internal/models"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestSuggestDecodesRows(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "search_suggestions", r.URL.Query().Get("action"))
		assert.Equal(t, "ali", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"suggestions":[{"id":7,"username":"alice","match_rank":0}]}`))
	})

	c, err := New(srv.URL+"/admin/users", Options{Token: "secret", Limit: 5})
	require.NoError(t, err)

	items, err := c.Suggest(context.Background(), "ali")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ID())
	assert.Equal(t, "alice", items[0].String("username"))
}

func TestListReadsItemsKey(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "list", q.Get("action"))
		assert.Equal(t, "al", q.Get("search"))
		assert.Equal(t, "email", q.Get("sort"))
		assert.Equal(t, "DESC", q.Get("order"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "10", q.Get("perpage"))
		assert.Equal(t, "active", q.Get("status"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"success":true,"users":[{"id":1},{"id":2}],"total_count":12,"current_page":1,"per_page":10,"total_pages":2,"sort":"email","order":"DESC"}`))
	})

	c, err := New(srv.URL+"/admin/users", Options{ItemsKey: "users"})
	require.NoError(t, err)

	page, err := c.List(context.Background(), models.SearchSpec{
		Query:    "al",
		Filters:  map[string]string{"status": "active"},
		Sort:     models.Sort{Field: "email", Direction: models.Desc},
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 12, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, models.Sort{Field: "email", Direction: models.Desc}, page.Sort)
}

func TestServerReportedErrorIsStoreError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"users":[],"error":"failed to load Users"}`))
	})

	c, err := New(srv.URL, Options{ItemsKey: "users"})
	require.NoError(t, err)

	_, err = c.List(context.Background(), models.SearchSpec{})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrStore)
	assert.Equal(t, "failed to load Users", appErrors.FromError(err).Message)
}

func TestFailuresAreNetworkErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"non 2xx": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"html body": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		},
		"broken json": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, handler)
			c, err := New(srv.URL, Options{})
			require.NoError(t, err)

			_, err = c.Suggest(context.Background(), "ali")
			require.Error(t, err)
			assert.ErrorIs(t, err, appErrors.ErrNetwork)
		})
	}
}

func TestTimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c, err := New(srv.URL, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Suggest(ctx, "ali")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRejectsRelativeEndpoint(t *testing.T) {
	_, err := New("/admin/users", Options{})
	assert.Error(t, err)
}

func TestSpecValuesKeepsEmptyFilter(t *testing.T) {
	values := SpecValues(models.SearchSpec{Filters: map[string]string{"status": ""}})
	raw, ok := values["status"]
	require.True(t, ok)
	assert.Equal(t, []string{""}, raw)
	assert.Equal(t, "0", values.Get("page"))
}
