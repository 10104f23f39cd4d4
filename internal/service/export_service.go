package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/remui-admin-api/internal/entity"
	"github.com/noah-isme/remui-admin-api/internal/models"
	appErrors "github.com/noah-isme/remui-admin-api/pkg/errors"
	"github.com/noah-isme/remui-admin-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type renderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportFile is a rendered export ready to be served as an attachment.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders the rows behind a listing as CSV or PDF.
type ExportService struct {
	store        RecordStore
	builder      *entity.Builder
	renderers    map[string]renderer
	maxRows      int
	activeWindow time.Duration
	clock        Clock
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(store RecordStore, builder *entity.Builder, maxRows int, activeWindow time.Duration, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 5000
	}
	return &ExportService{
		store:   store,
		builder: builder,
		renderers: map[string]renderer{
			FormatCSV: export.NewCSVExporter(),
			FormatPDF: export.NewPDFExporter(),
		},
		maxRows:      maxRows,
		activeWindow: activeWindow,
		clock:        time.Now,
		metrics:      metrics,
		logger:       logger,
	}
}

// WithClock overrides the time source used by recency filters and filenames.
func (s *ExportService) WithClock(clock Clock) *ExportService {
	s.clock = clock
	return s
}

// Export renders every row matching the spec's search and filters, in the
// spec's sort order, up to the configured row cap.
func (s *ExportService) Export(ctx context.Context, cfg *entity.Config, spec models.SearchSpec, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	now := s.clock()
	spec = s.builder.Normalize(cfg, spec)
	sel := s.builder.Page(cfg, spec, entity.Env{Now: now, ActiveWindow: s.activeWindow})
	sel.Limit = s.maxRows
	sel.Offset = 0

	records, err := s.store.Select(ctx, sel)
	if err != nil {
		s.metrics.RecordStoreError(cfg.Slug, "export")
		s.logger.Warn("export store failure", zap.String("entity", cfg.Slug), zap.Error(err))
		return nil, appErrors.Store(err, "failed to load export rows")
	}

	payload, err := r.Render(buildDataset(cfg, records), cfg.Title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("%s-%s.%s", cfg.Slug, now.UTC().Format("20060102"), format),
		ContentType: r.ContentType(),
		Payload:     payload,
		Rows:        len(records),
	}, nil
}

func buildDataset(cfg *entity.Config, records []models.Record) export.Dataset {
	fields := cfg.Visible()
	data := export.Dataset{Columns: make([]export.Column, len(fields)), Rows: make([]map[string]string, len(records))}
	for i, f := range fields {
		data.Columns[i] = export.Column{Key: f.Name, Label: f.Label}
	}
	for i, rec := range records {
		row := make(map[string]string, len(fields))
		for _, f := range fields {
			row[f.Name] = f.Format(rec)
		}
		data.Rows[i] = row
	}
	return data
}
