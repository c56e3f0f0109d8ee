package service

import (
	"context"
	"fmt"

	"github.com/jt828/functrace/internal/repository"
	"github.com/jt828/functrace/pkg/apperror"
	"github.com/jt828/functrace/pkg/model"
)

type QueryParams struct {
	TraceIdEq    string
	NameEq       string
	StatusCodeEq string
	Limit        int
}

type SpanRecordService interface {
	Store(ctx context.Context, records []*model.SpanRecord) error
	Query(ctx context.Context, params QueryParams) ([]*model.SpanRecord, error)
}

type spanRecordService struct {
	uowFactory repository.UnitOfWorkFactory
}

func NewSpanRecordService(uowFactory repository.UnitOfWorkFactory) SpanRecordService {
	return &spanRecordService{uowFactory: uowFactory}
}

// Store persists one export batch in a single transaction.
func (s *spanRecordService) Store(ctx context.Context, records []*model.SpanRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if r.SpanId == "" || r.TraceId == "" {
			return fmt.Errorf("%w: span record without trace or span id", apperror.ErrInvalidArgument)
		}
	}

	return repository.Within(ctx, s.uowFactory, func(uow repository.UnitOfWork) error {
		return uow.SpanRecordRepository().InsertBatch(ctx, records)
	})
}

func (s *spanRecordService) Query(ctx context.Context, params QueryParams) ([]*model.SpanRecord, error) {
	if params.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", apperror.ErrInvalidArgument, params.Limit)
	}

	var records []*model.SpanRecord
	err := repository.Within(ctx, s.uowFactory, func(uow repository.UnitOfWork) error {
		var err error
		records, err = uow.SpanRecordRepository().Get(ctx, repository.SpanQuery{
			TraceIdEq:    params.TraceIdEq,
			NameEq:       params.NameEq,
			StatusCodeEq: params.StatusCodeEq,
			Limit:        params.Limit,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
