// Package pagination holds the 0-based page arithmetic and the URL state
// helpers shared by list pages and the list controller.
package pagination

import (
	"net/url"
	"strconv"
)

// Param names carried in list URLs.
const (
	ParamPage    = "page"
	ParamPerPage = "perpage"
	ParamSearch  = "search"
	ParamSort    = "sort"
	ParamOrder   = "order"
)

// TotalPages is ceil(total/pageSize); zero when nothing matched.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// Clamp moves page into [0, totalPages-1]. With no pages it returns 0.
func Clamp(page, totalPages int) int {
	if page < 0 || totalPages <= 0 {
		return 0
	}
	if page >= totalPages {
		return totalPages - 1
	}
	return page
}

// Meta describes the position of a page for rendering.
type Meta struct {
	Page       int  `json:"current_page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	From       int  `json:"from"`
	To         int  `json:"to"`
}

// BuildMeta derives page metadata. From and To are 1-based row positions.
func BuildMeta(total, page, perPage int) Meta {
	pages := TotalPages(total, perPage)
	page = Clamp(page, pages)
	meta := Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 0,
		HasNext:    page+1 < pages,
	}
	if total > 0 {
		meta.From = page*perPage + 1
		meta.To = meta.From + perPage - 1
		if meta.To > total {
			meta.To = total
		}
	}
	return meta
}

// Window returns the page numbers to render around current. A value of -1
// marks a gap between non-adjacent numbers. The first and last pages are
// always included.
func Window(current, totalPages, radius int) []int {
	if totalPages <= 0 {
		return nil
	}
	current = Clamp(current, totalPages)
	lo, hi := current-radius, current+radius
	if lo < 0 {
		lo = 0
	}
	if hi > totalPages-1 {
		hi = totalPages - 1
	}

	var pages []int
	if lo > 0 {
		pages = append(pages, 0)
		if lo > 1 {
			pages = append(pages, -1)
		}
	}
	for p := lo; p <= hi; p++ {
		pages = append(pages, p)
	}
	if hi < totalPages-1 {
		if hi < totalPages-2 {
			pages = append(pages, -1)
		}
		pages = append(pages, totalPages-1)
	}
	return pages
}

// WithParams copies state and overrides the given keys. Empty override
// values remove the key.
func WithParams(state url.Values, overrides map[string]string) url.Values {
	out := make(url.Values, len(state)+len(overrides))
	for k, v := range state {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overrides {
		if v == "" {
			out.Del(k)
			continue
		}
		out.Set(k, v)
	}
	return out
}

// PageLink returns path?query with every current param kept and page replaced.
func PageLink(path string, state url.Values, page int) string {
	return Link(path, WithParams(state, map[string]string{ParamPage: strconv.Itoa(page)}))
}

// Link joins a path and query values.
func Link(path string, values url.Values) string {
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
