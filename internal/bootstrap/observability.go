package bootstrap

import (
	"context"
	"fmt"

	"github.com/jt828/functrace/internal/config"
	"github.com/jt828/functrace/internal/service"
	"github.com/jt828/functrace/pkg/observability"
	obsImpl "github.com/jt828/functrace/pkg/observability/implementation"
	"github.com/jt828/functrace/pkg/spanstore"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitializeObservability builds the tracing pipeline described by cfg around
// an existing logger and meter. store is only used by the store exporter.
func InitializeObservability(
	ctx context.Context,
	cfg *config.Config,
	store sdktrace.SpanExporter,
	log observability.Logger,
	meter observability.Meter,
) (observability.Observability, error) {
	return obsImpl.NewObservability(ctx, obsImpl.Config{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Enabled:        cfg.Tracing.Enabled(),
		SampleRatio:    cfg.Tracing.SampleRatio,
		Exporter: obsImpl.ExporterConfig{
			Type:     cfg.Tracing.ExporterType,
			Endpoint: cfg.Tracing.Endpoint,
			Insecure: cfg.Tracing.Insecure,
			Store:    store,
		},
		LogLevel:       cfg.Logging.Level,
		LogDevelopment: cfg.Logging.Development,
		MetricsAddr:    cfg.Metrics.Addr,
		Logger:         log,
		Meter:          meter,
	})
}

// SpanStore bundles the exporter writing to Postgres with the service that
// reads spans back.
type SpanStore struct {
	Database *Database
	Service  service.SpanRecordService
	Exporter *spanstore.Exporter
}

func InitializeSpanStore(dsn string, meter observability.Meter, log observability.Logger) (*SpanStore, error) {
	ids, err := InitializeSnowflake()
	if err != nil {
		return nil, fmt.Errorf("initialize snowflake: %w", err)
	}
	db, err := InitializeDatabase(dsn, meter)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	svc := service.NewSpanRecordService(db.UnitOfWorkFactory)
	return &SpanStore{
		Database: db,
		Service:  svc,
		Exporter: spanstore.NewExporter(svc, ids, log),
	}, nil
}
