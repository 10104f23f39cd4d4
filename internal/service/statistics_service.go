package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
)

// StatisticsService counts the records behind each configured statistic of
// a listing. It plays the metrics provider role for the pages.
type StatisticsService struct {
	store        RecordStore
	builder      *entity.Builder
	cache        *CacheService
	ttl          time.Duration
	activeWindow time.Duration
	clock        Clock
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewStatisticsService constructs a StatisticsService. cache may be nil.
func NewStatisticsService(store RecordStore, builder *entity.Builder, cache *CacheService, ttl, activeWindow time.Duration, metrics *MetricsService, logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		store:        store,
		builder:      builder,
		cache:        cache,
		ttl:          ttl,
		activeWindow: activeWindow,
		clock:        time.Now,
		metrics:      metrics,
		logger:       logger,
	}
}

// WithClock overrides the time source used by recency filters.
func (s *StatisticsService) WithClock(clock Clock) *StatisticsService {
	s.clock = clock
	return s
}

// Compute returns the named counts for cfg. Statistics ignore filter
// defaults and the current search: they describe the whole collection.
func (s *StatisticsService) Compute(ctx context.Context, cfg *entity.Config) (models.Statistics, error) {
	if len(cfg.Statistics) == 0 {
		return models.Statistics{}, nil
	}

	key := "stats:" + cfg.Slug
	var cached models.Statistics
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	env := entity.Env{Now: s.clock(), ActiveWindow: s.activeWindow}
	stats := make(models.Statistics, len(cfg.Statistics))
	for _, stat := range cfg.Statistics {
		spec := models.SearchSpec{Filters: stat.Filters}
		total, err := s.store.Count(ctx, s.builder.Count(cfg, spec, env))
		if err != nil {
			s.metrics.RecordStoreError(cfg.Slug, "statistics")
			s.logger.Warn("statistics store failure", zap.String("entity", cfg.Slug), zap.String("statistic", stat.Name), zap.Error(err))
			return models.Statistics{}, appErrors.Store(err, "failed to load statistics")
		}
		stats[stat.Name] = total
	}

	_ = s.cache.Set(ctx, key, stats, s.ttl)
	return stats, nil
}
