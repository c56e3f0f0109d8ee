package bootstrap

import (
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jt828/functrace/internal/repository"
	"github.com/jt828/functrace/pkg/circuitbreaker"
	cbImpl "github.com/jt828/functrace/pkg/circuitbreaker/implementation"
	"github.com/jt828/functrace/pkg/observability"
	obsImpl "github.com/jt828/functrace/pkg/observability/implementation"
	"github.com/jt828/functrace/pkg/retry"
	retryImpl "github.com/jt828/functrace/pkg/retry/implementation"
	"github.com/sony/gobreaker/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB                *gorm.DB
	CircuitBreaker    circuitbreaker.CircuitBreaker
	UnitOfWorkFactory repository.UnitOfWorkFactory
}

func InitializeDatabase(dsn string, meter observability.Meter) (*Database, error) {
	// gorm's own query logging would go to stdout next to the console exporter
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, err
	}

	if err := db.Use(obsImpl.NewGormMetricsPlugin(meter)); err != nil {
		return nil, err
	}

	cb := cbImpl.NewCircuitBreaker(gobreaker.Settings{
		Name: "span-store",
	})

	r := retryImpl.NewRetry(3,
		retry.WithInterval(100*time.Millisecond),
		retry.WithJitterPercent(20),
		retry.WithRetryable(IsRetryableDBError),
	)
	uowFactory := repository.NewTransactionDbUnitOfWorkFactory(db, cb, r)

	return &Database{
		DB:                db,
		CircuitBreaker:    cb,
		UnitOfWorkFactory: uowFactory,
	}, nil
}

// IsRetryableDBError reports transient Postgres and network failures.
func IsRetryableDBError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001": // serialization_failure
			return true
		case "40P01": // deadlock_detected
			return true
		case "08006": // connection_failure
			return true
		case "08001": // sqlclient_unable_to_establish_sqlconnection
			return true
		case "08004": // sqlserver_rejected_establishment_of_sqlconnection
			return true
		}
	}

	var netErr *net.OpError
	return errors.As(err, &netErr)
}
