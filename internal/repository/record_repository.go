package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/remui-admin-api/internal/models"
	"github.com/noah-isme/remui-admin-api/internal/query"
)

type queryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// RecordRepository reads listing records from the host CMS database.
type RecordRepository struct {
	db       *sqlx.DB
	observer queryObserver
	timeout  time.Duration
}

// NewRecordRepository creates a new instance of RecordRepository. A zero
// timeout leaves deadlines to the caller's context.
func NewRecordRepository(db *sqlx.DB, observer queryObserver, timeout time.Duration) *RecordRepository {
	return &RecordRepository{db: db, observer: observer, timeout: timeout}
}

// Count returns the number of rows matching the select's predicate.
func (r *RecordRepository) Count(ctx context.Context, sel query.Select) (int, error) {
	sqlText, args, err := query.CompileCount(sel)
	if err != nil {
		return 0, fmt.Errorf("compile count %s: %w", sel.Source.Name, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	defer r.observe(sel.Source.Name+"_count", time.Now())

	var total int
	if err := r.db.GetContext(ctx, &total, sqlText, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", sel.Source.Name, err)
	}
	return total, nil
}

// Select returns the rows of the select keyed by logical field name.
func (r *RecordRepository) Select(ctx context.Context, sel query.Select) ([]models.Record, error) {
	sqlText, args, err := query.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compile select %s: %w", sel.Source.Name, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	defer r.observe(sel.Source.Name+"_select", time.Now())

	rows, err := r.db.QueryxContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", sel.Source.Name, err)
	}
	defer rows.Close()

	records := make([]models.Record, 0, sel.Limit)
	for rows.Next() {
		row := make(map[string]interface{}, len(sel.Columns))
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan %s: %w", sel.Source.Name, err)
		}
		records = append(records, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", sel.Source.Name, err)
	}
	return records, nil
}

func (r *RecordRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *RecordRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// normalizeRow converts driver []byte values (text and numeric columns) to strings.
func normalizeRow(row map[string]interface{}) models.Record {
	rec := make(models.Record, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			rec[k] = string(b)
			continue
		}
		rec[k] = v
	}
	return rec
}
