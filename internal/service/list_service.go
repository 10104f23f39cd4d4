package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
	"github.com/noah-isme/remui-admin-api/pkg/pagination"
)

// RecordStore is the read-only capability every listing service needs.
type RecordStore interface {
	Count(ctx context.Context, sel query.Select) (int, error)
	Select(ctx context.Context, sel query.Select) ([]models.Record, error)
}

// Clock returns the current time.
type Clock func() time.Time

// Listing is a page result together with the normalized spec that produced it.
type Listing struct {
	Spec   models.SearchSpec
	Result models.PageResult
}

// ListService serves filtered, sorted and paged listings.
type ListService struct {
	store        RecordStore
	builder      *entity.Builder
	activeWindow time.Duration
	clock        Clock
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewListService constructs a ListService.
func NewListService(store RecordStore, builder *entity.Builder, activeWindow time.Duration, metrics *MetricsService, logger *zap.Logger) *ListService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListService{
		store:        store,
		builder:      builder,
		activeWindow: activeWindow,
		clock:        time.Now,
		metrics:      metrics,
		logger:       logger,
	}
}

// WithClock overrides the time source used by recency filters.
func (s *ListService) WithClock(clock Clock) *ListService {
	s.clock = clock
	return s
}

func (s *ListService) env() entity.Env {
	return entity.Env{Now: s.clock(), ActiveWindow: s.activeWindow}
}

// Normalize exposes the builder's normalisation for callers rendering state.
func (s *ListService) Normalize(cfg *entity.Config, spec models.SearchSpec) models.SearchSpec {
	return s.builder.Normalize(cfg, spec)
}

// List counts the matching records, clamps the page into range and reads it.
// Store failures return an empty listing together with a STORE_ERROR so the
// page can still render.
func (s *ListService) List(ctx context.Context, cfg *entity.Config, spec models.SearchSpec) (*Listing, error) {
	spec = s.builder.Normalize(cfg, spec)
	env := s.env()
	listing := &Listing{
		Spec:   spec,
		Result: models.PageResult{Items: []models.Record{}, Page: spec.Page, PageSize: spec.PageSize, Sort: spec.Sort},
	}

	total, err := s.store.Count(ctx, s.builder.Count(cfg, spec, env))
	if err != nil {
		return s.fail(listing, cfg, "count", err)
	}

	totalPages := pagination.TotalPages(total, spec.PageSize)
	spec.Page = pagination.Clamp(spec.Page, totalPages)
	listing.Spec = spec
	listing.Result.Page = spec.Page
	listing.Result.TotalCount = total
	listing.Result.TotalPages = totalPages
	if total == 0 {
		return listing, nil
	}

	records, err := s.store.Select(ctx, s.builder.Page(cfg, spec, env))
	if err != nil {
		listing.Result.TotalCount = 0
		listing.Result.TotalPages = 0
		listing.Result.Page = 0
		return s.fail(listing, cfg, "select", err)
	}

	items := make([]models.Record, len(records))
	for i, r := range records {
		items[i] = cfg.Decorate(r)
	}
	listing.Result.Items = items
	return listing, nil
}

func (s *ListService) fail(listing *Listing, cfg *entity.Config, op string, err error) (*Listing, error) {
	s.metrics.RecordStoreError(cfg.Slug, op)
	s.logger.Warn("listing store failure", zap.String("entity", cfg.Slug), zap.String("operation", op), zap.Error(err))
	return listing, appErrors.Store(err, "failed to load "+cfg.Title)
}
