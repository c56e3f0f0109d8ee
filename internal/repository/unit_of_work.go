package repository

import (
	"context"
	"sync"

	"github.com/jt828/functrace/pkg/circuitbreaker"
	"github.com/jt828/functrace/pkg/retry"
	"gorm.io/gorm"
)

// UnitOfWork scopes repositories to one transaction. It must end with exactly
// one Commit or Abort.
type UnitOfWork interface {
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
	SpanRecordRepository() SpanRecordRepository
}

type transactionDbUnitOfWork struct {
	tx                       *gorm.DB
	cb                       circuitbreaker.CircuitBreaker
	retry                    retry.Retry
	spanRecordRepository     SpanRecordRepository
	spanRecordRepositoryOnce sync.Once
}

func (u *transactionDbUnitOfWork) SpanRecordRepository() SpanRecordRepository {
	u.spanRecordRepositoryOnce.Do(func() {
		u.spanRecordRepository = NewSpanRecordRepository(u.tx, u.cb, u.retry)
	})
	return u.spanRecordRepository
}

func (u *transactionDbUnitOfWork) Commit(ctx context.Context) error {
	return u.tx.WithContext(ctx).Commit().Error
}

func (u *transactionDbUnitOfWork) Abort(ctx context.Context) error {
	return u.tx.WithContext(ctx).Rollback().Error
}

// Within runs fn in a fresh unit of work, committing when fn succeeds and
// aborting otherwise. An abort failure is dropped in favour of fn's error.
func Within(ctx context.Context, f UnitOfWorkFactory, fn func(UnitOfWork) error) error {
	uow, err := f.New(ctx)
	if err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Abort(ctx)
		return err
	}
	return uow.Commit(ctx)
}
