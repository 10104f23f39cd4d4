package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
)

// Suggestion lookup outcomes reported to metrics.
const (
	SuggestionServed       = "served"
	SuggestionShortCircuit = "short_circuit"
	SuggestionCached       = "cached"
	SuggestionFailed       = "failed"
)

// SuggestionService answers type-ahead lookups.
type SuggestionService struct {
	store   RecordStore
	builder *entity.Builder
	cache   *CacheService
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSuggestionService constructs a SuggestionService. cache may be nil.
func NewSuggestionService(store RecordStore, builder *entity.Builder, cache *CacheService, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *SuggestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SuggestionService{store: store, builder: builder, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// Suggest returns up to the clamped limit of distinct records matching the
// text, ordered by the rank of the first matching field and then by label.
// Text shorter than the activation threshold returns an empty list without
// touching the store. Store failures return an empty list and a STORE_ERROR.
func (s *SuggestionService) Suggest(ctx context.Context, cfg *entity.Config, q models.SuggestionQuery) ([]models.Suggestion, error) {
	if !s.builder.Active(q.Text) {
		s.metrics.RecordSuggestion(cfg.Slug, SuggestionShortCircuit)
		s.logger.Debug("suggestion below threshold", zap.String("entity", cfg.Slug), zap.Int("length", len([]rune(strings.TrimSpace(q.Text)))))
		return []models.Suggestion{}, nil
	}

	limit := s.builder.SuggestionLimit(q.Limit)
	key := suggestionKey(cfg.Slug, limit, q.Text)
	var cached []models.Suggestion
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		s.metrics.RecordSuggestion(cfg.Slug, SuggestionCached)
		return cached, nil
	}

	sel, cases := s.builder.Suggest(cfg, q)
	// Joined sources can repeat a record; over-fetch so dedup keeps the limit.
	sel.Limit = limit * 2
	records, err := s.store.Select(ctx, sel)
	if err != nil {
		s.metrics.RecordSuggestion(cfg.Slug, SuggestionFailed)
		s.metrics.RecordStoreError(cfg.Slug, "suggest")
		s.logger.Warn("suggestion store failure", zap.String("entity", cfg.Slug), zap.Error(err))
		return []models.Suggestion{}, appErrors.Store(err, "failed to load suggestions")
	}

	out := make([]models.Suggestion, 0, limit)
	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		id := r.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, models.Suggestion{Record: cfg.Decorate(r), MatchRank: query.RankOf(cases, r)})
		if len(out) == limit {
			break
		}
	}

	s.metrics.RecordSuggestion(cfg.Slug, SuggestionServed)
	_ = s.cache.Set(ctx, key, out, s.ttl)
	return out, nil
}

func suggestionKey(slug string, limit int, text string) string {
	return fmt.Sprintf("suggest:%s:%d:%s", slug, limit, strings.ToLower(strings.TrimSpace(text)))
}
