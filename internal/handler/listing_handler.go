package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/service"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
	"github.com/noah-isme/remui-admin-api/pkg/pagination"
	"github.com/noah-isme/remui-admin-api/pkg/response"
)

// AJAX actions served on every listing page.
const (
	ActionSuggestions = "search_suggestions"
	ActionList        = "list"
	ActionExport      = "export"
)

type listingService interface {
	List(ctx context.Context, cfg *entity.Config, spec models.SearchSpec) (*service.Listing, error)
}

type suggestionService interface {
	Suggest(ctx context.Context, cfg *entity.Config, q models.SuggestionQuery) ([]models.Suggestion, error)
}

type statisticsService interface {
	Compute(ctx context.Context, cfg *entity.Config) (models.Statistics, error)
}

type exportService interface {
	Export(ctx context.Context, cfg *entity.Config, spec models.SearchSpec, format string) (*service.ExportFile, error)
}

// ClientSettings are handed to the browser list controller.
type ClientSettings struct {
	Debounce       time.Duration
	BlurGrace      time.Duration
	RequestTimeout time.Duration
	MinChars       int
	// Mode is "reload" (navigate on every change) or "ajax" (refresh the
	// table in place).
	Mode string
}

// ListingConfig tunes page rendering.
type ListingConfig struct {
	BasePath       string
	AssetBase      string
	PerPageOptions []int
	Client         ClientSettings
}

// ListingHandler serves every configured listing page and its AJAX actions.
type ListingHandler struct {
	registry    *entity.Registry
	lists       listingService
	suggestions suggestionService
	statistics  statisticsService
	exports     exportService
	cfg         ListingConfig
	logger      *zap.Logger
}

// NewListingHandler constructs a ListingHandler.
func NewListingHandler(registry *entity.Registry, lists listingService, suggestions suggestionService, statistics statisticsService, exports exportService, cfg ListingConfig, logger *zap.Logger) *ListingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.PerPageOptions) == 0 {
		cfg.PerPageOptions = []int{10, 20, 50, 100}
	}
	if cfg.Client.Mode == "" {
		cfg.Client.Mode = "reload"
	}
	return &ListingHandler{
		registry:    registry,
		lists:       lists,
		suggestions: suggestions,
		statistics:  statistics,
		exports:     exports,
		cfg:         cfg,
		logger:      logger,
	}
}

// Page godoc
// @Summary Listing page and its AJAX actions
// @Description Renders the HTML listing, or answers action=search_suggestions, action=get_<items>|list and action=export.
// @Tags Listings
// @Produce html
// @Produce json
// @Param page path string true "Page slug, optionally with .php"
// @Param action query string false "search_suggestions | get_<items> | list | export"
// @Param q query string false "Suggestion text"
// @Param search query string false "Free text search"
// @Param sort query string false "Sort field"
// @Param order query string false "ASC or DESC"
// @Param page query int false "0-based page"
// @Param perpage query int false "Page size"
// @Param format query string false "csv or pdf"
// @Success 200 {object} ListPayload
// @Failure 404 {object} response.Envelope
// @Router /admin/{page} [get]
func (h *ListingHandler) Page(c *gin.Context) {
	cfg, ok := h.registry.Lookup(c.Param("page"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown page %q", c.Param("page"))))
		return
	}

	switch action := strings.TrimSpace(c.Query("action")); action {
	case "":
		h.render(c, cfg)
	case ActionSuggestions:
		h.suggest(c, cfg)
	case ActionList, cfg.ListAction():
		h.list(c, cfg)
	case ActionExport:
		h.export(c, cfg)
	default:
		response.AJAX(c, gin.H{"success": false, "error": fmt.Sprintf("unknown action %q", action)})
	}
}

// SuggestionPayload is the search_suggestions response.
type SuggestionPayload struct {
	Success     bool                     `json:"success"`
	Suggestions []map[string]interface{} `json:"suggestions"`
	Error       string                   `json:"error,omitempty"`
}

func (h *ListingHandler) suggest(c *gin.Context, cfg *entity.Config) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.suggestions.Suggest(c.Request.Context(), cfg, models.SuggestionQuery{Text: c.Query("q"), Limit: limit})

	payload := SuggestionPayload{Success: err == nil, Suggestions: make([]map[string]interface{}, 0, len(items))}
	for _, s := range items {
		row := make(map[string]interface{}, len(s.Record)+1)
		for k, v := range s.Record {
			row[k] = v
		}
		row["match_rank"] = s.MatchRank
		payload.Suggestions = append(payload.Suggestions, row)
	}
	if err != nil {
		payload.Error = response.ErrorMessage(err)
		_ = c.Error(err)
	}
	response.AJAX(c, payload)
}

// ListPayload documents the get_<items> response. The items key varies per
// page, so the payload is written as a map.
type ListPayload struct {
	Items       []models.Record   `json:"items"`
	TotalCount  int               `json:"total_count"`
	CurrentPage int               `json:"current_page"`
	PerPage     int               `json:"per_page"`
	TotalPages  int               `json:"total_pages"`
	Search      string            `json:"search"`
	Filters     map[string]string `json:"filters"`
	Sort        string            `json:"sort"`
	Order       string            `json:"order"`
	Statistics  models.Statistics `json:"statistics"`
	View        tableView         `json:"view"`
	Error       string            `json:"error,omitempty"`
}

func (h *ListingHandler) list(c *gin.Context, cfg *entity.Config) {
	listing, err := h.load(c, cfg)
	stats := h.computeStatistics(c, cfg)

	payload := gin.H{
		cfg.ItemsKey:   listing.Result.Items,
		"success":      err == nil,
		"total_count":  listing.Result.TotalCount,
		"current_page": listing.Result.Page,
		"per_page":     listing.Result.PageSize,
		"total_pages":  listing.Result.TotalPages,
		"search":       listing.Spec.Query,
		"filters":      listing.Spec.Filters,
		"sort":         listing.Spec.Sort.Field,
		"order":        string(listing.Spec.Sort.Direction),
		"statistics":   stats,
		"view":         h.buildTable(c, cfg, listing),
	}
	if err != nil {
		payload["error"] = response.ErrorMessage(err)
		_ = c.Error(err)
	}
	response.AJAX(c, payload)
}

func (h *ListingHandler) export(c *gin.Context, cfg *entity.Config) {
	format := c.DefaultQuery("format", service.FormatCSV)
	file, err := h.exports.Export(c.Request.Context(), cfg, ParseSpec(c, cfg), format)
	if err != nil {
		_ = c.Error(err)
		response.AJAX(c, gin.H{"success": false, "error": response.ErrorMessage(err)})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}

func (h *ListingHandler) render(c *gin.Context, cfg *entity.Config) {
	listing, err := h.load(c, cfg)
	if err != nil {
		_ = c.Error(err)
	}
	view := h.buildView(c, cfg, listing, h.computeStatistics(c, cfg), err)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "listing.html", view)
}

func (h *ListingHandler) load(c *gin.Context, cfg *entity.Config) (*service.Listing, error) {
	spec := ParseSpec(c, cfg)
	listing, err := h.lists.List(c.Request.Context(), cfg, spec)
	if listing == nil {
		listing = &service.Listing{Spec: spec, Result: models.PageResult{Items: []models.Record{}}}
	}
	return listing, err
}

func (h *ListingHandler) computeStatistics(c *gin.Context, cfg *entity.Config) models.Statistics {
	if h.statistics == nil {
		return models.Statistics{}
	}
	stats, err := h.statistics.Compute(c.Request.Context(), cfg)
	if err != nil {
		h.logger.Warn("statistics unavailable", zap.String("entity", cfg.Slug), zap.Error(err))
		return models.Statistics{}
	}
	return stats
}

// PageInfo describes one configured page for the pages index.
type PageInfo struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Path       string   `json:"path"`
	ItemsKey   string   `json:"items_key"`
	ListAction string   `json:"list_action"`
	Aliases    []string `json:"aliases,omitempty"`
	Sortable   []string `json:"sortable"`
	Filters    []string `json:"filters"`
}

// Pages godoc
// @Summary List configured listing pages
// @Tags Listings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/pages [get]
func (h *ListingHandler) Pages(c *gin.Context) {
	configs := h.registry.All()
	pages := make([]PageInfo, 0, len(configs))
	for _, cfg := range configs {
		filters := make([]string, len(cfg.Filters))
		for i, f := range cfg.Filters {
			filters[i] = f.Name
		}
		pages = append(pages, PageInfo{
			Slug:       cfg.Slug,
			Title:      cfg.Title,
			Path:       h.pagePath(cfg),
			ItemsKey:   cfg.ItemsKey,
			ListAction: cfg.ListAction(),
			Aliases:    h.registry.Aliases(cfg.Slug),
			Sortable:   cfg.Sortable,
			Filters:    filters,
		})
	}
	response.JSON(c, http.StatusOK, pages, nil)
}

func (h *ListingHandler) pagePath(cfg *entity.Config) string {
	return strings.TrimRight(h.cfg.BasePath, "/") + "/" + cfg.Slug
}

// ParseSpec reads a SearchSpec from the query string. Values are taken as
// given; the list service clamps and substitutes them.
func ParseSpec(c *gin.Context, cfg *entity.Config) models.SearchSpec {
	spec := models.SearchSpec{
		Query:   c.Query(pagination.ParamSearch),
		Filters: make(map[string]string, len(cfg.Filters)),
		Sort: models.Sort{
			Field:     c.Query(pagination.ParamSort),
			Direction: models.Direction(strings.ToUpper(c.Query(pagination.ParamOrder))),
		},
	}
	spec.Page, _ = strconv.Atoi(c.Query(pagination.ParamPage))
	for _, key := range []string{pagination.ParamPerPage, "pageSize", "per_page"} {
		if raw := c.Query(key); raw != "" {
			spec.PageSize, _ = strconv.Atoi(raw)
			break
		}
	}
	for _, f := range cfg.Filters {
		if value, ok := c.GetQuery(f.Name); ok {
			spec.Filters[f.Name] = value
		}
	}
	return spec
}
