package handler

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/service"
	"github.com/noah-isme/remui-admin-api/pkg/pagination"
	"github.com/noah-isme/remui-admin-api/pkg/response"
)

const pageWindowRadius = 2

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type filterView struct {
	Name    string
	Label   string
	Input   string
	Value   string
	Options []optionView
}

type columnView struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Link      string `json:"link,omitempty"`
	Active    bool   `json:"active"`
	Direction string `json:"direction,omitempty"`
}

type rowView struct {
	ID    int64    `json:"id"`
	Cells []string `json:"cells"`
}

type pageLinkView struct {
	Number  int    `json:"number"`
	Link    string `json:"link,omitempty"`
	Current bool   `json:"current"`
	Gap     bool   `json:"gap"`
}

// tableView is the rendered table region. The HTML page and the AJAX list
// payload share it so an in-place refresh shows exactly what a reload would.
type tableView struct {
	Summary string          `json:"summary"`
	Columns []columnView    `json:"columns"`
	Rows    []rowView       `json:"rows"`
	Meta    pagination.Meta `json:"meta"`
	Prev    string          `json:"prev,omitempty"`
	Next    string          `json:"next,omitempty"`
	Pages   []pageLinkView  `json:"pages"`
}

type statView struct {
	Name  string
	Value int
}

type clientView struct {
	DebounceMs  int64
	BlurGraceMs int64
	TimeoutMs   int64
	MinChars    int
	Mode        string
}

type pageView struct {
	Title      string
	Slug       string
	Path       string
	AssetBase  string
	ItemsKey   string
	LabelField string
	Search     string
	Sort       string
	Order      string
	Error      string
	Filters    []filterView
	PerPage    []optionView
	Table      tableView
	Statistics []statView
	Client     clientView
}

// state is the current URL state without the AJAX-only parameters.
func state(c *gin.Context) url.Values {
	return pagination.WithParams(c.Request.URL.Query(), map[string]string{"action": "", "q": "", "format": ""})
}

func (h *ListingHandler) buildView(c *gin.Context, cfg *entity.Config, listing *service.Listing, stats models.Statistics, err error) pageView {
	spec := listing.Spec
	path := h.pagePath(cfg)

	view := pageView{
		Title:      cfg.Title,
		Slug:       cfg.Slug,
		Path:       path,
		AssetBase:  h.cfg.AssetBase,
		ItemsKey:   cfg.ItemsKey,
		LabelField: cfg.LabelField,
		Search:     spec.Query,
		Sort:       spec.Sort.Field,
		Order:      string(spec.Sort.Direction),
		Error:      response.ErrorMessage(err),
		Client: clientView{
			DebounceMs:  h.cfg.Client.Debounce.Milliseconds(),
			BlurGraceMs: h.cfg.Client.BlurGrace.Milliseconds(),
			TimeoutMs:   h.cfg.Client.RequestTimeout.Milliseconds(),
			MinChars:    h.cfg.Client.MinChars,
			Mode:        h.cfg.Client.Mode,
		},
	}

	for _, f := range cfg.Filters {
		fv := filterView{Name: f.Name, Label: f.Label, Input: f.Input, Value: spec.Filters[f.Name]}
		if fv.Input == "" {
			fv.Input = "text"
		}
		if len(f.Options) > 0 && !hasOption(f.Options, "all") {
			fv.Options = append(fv.Options, optionView{Value: "", Label: "All", Selected: fv.Value == ""})
		}
		for _, o := range f.Options {
			fv.Options = append(fv.Options, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == fv.Value})
		}
		view.Filters = append(view.Filters, fv)
	}

	for _, n := range h.cfg.PerPageOptions {
		view.PerPage = append(view.PerPage, optionView{Value: strconv.Itoa(n), Label: strconv.Itoa(n), Selected: n == spec.PageSize})
	}

	view.Table = h.buildTable(c, cfg, listing)

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return statOrder(cfg, names[i]) < statOrder(cfg, names[j]) })
	for _, name := range names {
		view.Statistics = append(view.Statistics, statView{Name: name, Value: stats[name]})
	}
	return view
}

// buildTable renders the table region: formatted cells, sort links that
// toggle per Sort.Next, and a windowed pager. Links carry the current URL
// state minus AJAX-only parameters.
func (h *ListingHandler) buildTable(c *gin.Context, cfg *entity.Config, listing *service.Listing) tableView {
	spec := listing.Spec
	path := h.pagePath(cfg)
	current := pagination.WithParams(state(c), map[string]string{
		pagination.ParamPage: strconv.Itoa(listing.Result.Page),
	})
	meta := pagination.BuildMeta(listing.Result.TotalCount, listing.Result.Page, listing.Result.PageSize)
	table := tableView{
		Summary: "No data available",
		Columns: []columnView{},
		Rows:    []rowView{},
		Meta:    meta,
		Pages:   []pageLinkView{},
	}
	if meta.Total > 0 {
		table.Summary = fmt.Sprintf("Showing %d-%d of %d", meta.From, meta.To, meta.Total)
	}

	fields := cfg.Visible()
	for _, f := range fields {
		col := columnView{Name: f.Name, Label: f.Label}
		if cfg.IsSortable(f.Name) {
			next := spec.Sort.Next(f.Name)
			col.Link = pagination.Link(path, pagination.WithParams(current, map[string]string{
				pagination.ParamSort:  next.Field,
				pagination.ParamOrder: string(next.Direction),
				pagination.ParamPage:  "0",
			}))
		}
		if f.Name == spec.Sort.Field {
			col.Active = true
			col.Direction = string(spec.Sort.Direction)
		}
		table.Columns = append(table.Columns, col)
	}

	for _, rec := range listing.Result.Items {
		row := rowView{ID: rec.ID(), Cells: make([]string, len(fields))}
		for i, f := range fields {
			row.Cells[i] = f.Format(rec)
		}
		table.Rows = append(table.Rows, row)
	}

	if meta.HasPrev {
		table.Prev = pagination.PageLink(path, current, meta.Page-1)
	}
	if meta.HasNext {
		table.Next = pagination.PageLink(path, current, meta.Page+1)
	}
	for _, p := range pagination.Window(meta.Page, meta.TotalPages, pageWindowRadius) {
		if p < 0 {
			table.Pages = append(table.Pages, pageLinkView{Gap: true})
			continue
		}
		table.Pages = append(table.Pages, pageLinkView{Number: p, Link: pagination.PageLink(path, current, p), Current: p == meta.Page})
	}
	return table
}

func hasOption(options []entity.Option, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}

func statOrder(cfg *entity.Config, name string) int {
	for i, s := range cfg.Statistics {
		if s.Name == name {
			return i
		}
	}
	return len(cfg.Statistics)
}
