package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPagesAndClamp(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 0, TotalPages(5, 0))

	assert.Equal(t, 0, Clamp(-3, 4))
	assert.Equal(t, 2, Clamp(2, 4))
	assert.Equal(t, 3, Clamp(9, 4))
	assert.Equal(t, 0, Clamp(9, 0))
}

func TestBuildMeta(t *testing.T) {
	meta := BuildMeta(45, 2, 20)
	assert.Equal(t, Meta{Page: 2, PerPage: 20, Total: 45, TotalPages: 3, HasPrev: true, HasNext: false, From: 41, To: 45}, meta)

	empty := BuildMeta(0, 5, 20)
	assert.Equal(t, 0, empty.Page)
	assert.False(t, empty.HasNext)
	assert.Zero(t, empty.From)
}

func TestWindow(t *testing.T) {
	assert.Nil(t, Window(0, 0, 2))
	assert.Equal(t, []int{0, 1, 2}, Window(0, 3, 2))
	assert.Equal(t, []int{0, -1, 3, 4, 5, 6, 7, -1, 9}, Window(5, 10, 2))
	assert.Equal(t, []int{0, 1, 2, -1, 9}, Window(0, 10, 2))
	assert.Equal(t, []int{0, 1, 2, 3}, Window(1, 4, 2))
}

func TestPageLinkPreservesState(t *testing.T) {
	state := url.Values{"search": {"al"}, "status": {"active"}, "sort": {"username"}, "order": {"ASC"}, "page": {"0"}}
	link := PageLink("/admin/users", state, 3)

	parsed, err := url.Parse(link)
	assert.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "/admin/users", parsed.Path)
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "al", q.Get("search"))
	assert.Equal(t, "active", q.Get("status"))
	assert.Equal(t, "username", q.Get("sort"))
	assert.Equal(t, "0", state.Get("page"))
}

func TestWithParamsRemovesEmpty(t *testing.T) {
	out := WithParams(url.Values{"search": {"x"}, "page": {"2"}}, map[string]string{"search": "", "page": "0"})
	assert.Equal(t, url.Values{"page": {"0"}}, out)
	assert.Equal(t, "/p", Link("/p", nil))
}
