package repository

import (
	"context"

	"github.com/jt828/functrace/pkg/circuitbreaker"
	"github.com/jt828/functrace/pkg/retry"
	"gorm.io/gorm"
)

type UnitOfWorkFactory interface {
	New(ctx context.Context) (UnitOfWork, error)
}

type transactionDbUnitOfWorkFactory struct {
	db    *gorm.DB
	cb    circuitbreaker.CircuitBreaker
	retry retry.Retry
}

func NewTransactionDbUnitOfWorkFactory(db *gorm.DB, cb circuitbreaker.CircuitBreaker, retry retry.Retry) UnitOfWorkFactory {
	return &transactionDbUnitOfWorkFactory{db: db, cb: cb, retry: retry}
}

func (f *transactionDbUnitOfWorkFactory) New(ctx context.Context) (UnitOfWork, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &transactionDbUnitOfWork{tx: tx, cb: f.cb, retry: f.retry}, nil
}
