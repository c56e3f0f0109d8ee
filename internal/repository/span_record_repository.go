package repository

import (
	"context"

	"github.com/jt828/functrace/pkg/circuitbreaker"
	"github.com/jt828/functrace/pkg/model"
	"github.com/jt828/functrace/pkg/retry"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SpanRecordRepository interface {
	Get(ctx context.Context, query SpanQuery) ([]*model.SpanRecord, error)
	InsertBatch(ctx context.Context, records []*model.SpanRecord) error
}

type SpanQuery struct {
	TraceIdEq    string
	NameEq       string
	StatusCodeEq string
	// Limit caps the number of rows; zero means no limit.
	Limit int
}

type SpanRecordRepositoryImpl struct {
	db    *gorm.DB
	cb    circuitbreaker.CircuitBreaker
	retry retry.Retry
}

func NewSpanRecordRepository(db *gorm.DB, cb circuitbreaker.CircuitBreaker, retry retry.Retry) SpanRecordRepository {
	return &SpanRecordRepositoryImpl{db: db, cb: cb, retry: retry}
}

func (r *SpanRecordRepositoryImpl) Get(ctx context.Context, query SpanQuery) ([]*model.SpanRecord, error) {
	result, err := r.cb.Execute(func() (any, error) {
		var records []*model.SpanRecord
		err := r.retry.Execute(ctx, func() error {
			var entities []model.SpanRecordDataEntity
			db := r.db.WithContext(ctx)
			if query.TraceIdEq != "" {
				db = db.Where("trace_id = ?", query.TraceIdEq)
			}
			if query.NameEq != "" {
				db = db.Where("name = ?", query.NameEq)
			}
			if query.StatusCodeEq != "" {
				db = db.Where("status_code = ?", query.StatusCodeEq)
			}
			db = db.Order("started_at")
			if query.Limit > 0 {
				db = db.Limit(query.Limit)
			}
			if err := db.Find(&entities).Error; err != nil {
				return err
			}
			records = make([]*model.SpanRecord, len(entities))
			for i := range entities {
				rec := entities[i].ToDomain()
				records[i] = &rec
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]*model.SpanRecord), nil
}

// InsertBatch writes records in one statement. Rows whose span_id is already
// stored are skipped, so a re-exported batch is harmless. Inside a unit of
// work each attempt runs under its own savepoint, so a failed attempt does not
// poison the surrounding transaction for the retry.
func (r *SpanRecordRepositoryImpl) InsertBatch(ctx context.Context, records []*model.SpanRecord) error {
	if len(records) == 0 {
		return nil
	}
	entities := make([]model.SpanRecordDataEntity, len(records))
	for i, rec := range records {
		entities[i] = model.SpanRecordDataEntity(*rec)
	}
	_, err := r.cb.Execute(func() (any, error) {
		err := r.retry.Execute(ctx, func() error {
			return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				return tx.
					Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "span_id"}}, DoNothing: true}).
					Create(&entities).Error
			})
		})
		return nil, err
	})
	return err
}
