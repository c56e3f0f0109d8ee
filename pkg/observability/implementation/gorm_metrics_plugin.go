package implementation

import (
	"context"
	"time"

	"github.com/jt828/functrace/pkg/observability"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// GormMetricsPlugin records span store query counts, failures and latency per
// operation and table.
type GormMetricsPlugin struct {
	queryLatency observability.Histogram
	queryTotal   observability.Counter
	queryErrors  observability.Counter
}

func NewGormMetricsPlugin(meter observability.Meter) *GormMetricsPlugin {
	if meter == nil {
		meter = observability.NopMeter()
	}
	labels := []string{"operation", "table"}
	return &GormMetricsPlugin{
		queryLatency: meter.Histogram("spanstore_query_duration", observability.MetricOpt{
			Help:      "Duration of span store queries in seconds",
			Unit:      "seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			LabelKeys: labels,
		}),
		queryTotal: meter.Counter("spanstore_query_total", observability.MetricOpt{
			Help:      "Total number of span store queries",
			LabelKeys: labels,
		}),
		queryErrors: meter.Counter("spanstore_query_errors_total", observability.MetricOpt{
			Help:      "Total number of failed span store queries",
			LabelKeys: labels,
		}),
	}
}

func (p *GormMetricsPlugin) Name() string {
	return "spanstore:metrics"
}

func (p *GormMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("spanstore:before_create", p.before); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("spanstore:after_create", p.after("create")); err != nil {
		return err
	}

	if err := cb.Query().Before("gorm:query").Register("spanstore:before_query", p.before); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("spanstore:after_query", p.after("query")); err != nil {
		return err
	}

	if err := cb.Delete().Before("gorm:delete").Register("spanstore:before_delete", p.before); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("spanstore:after_delete", p.after("delete")); err != nil {
		return err
	}

	if err := cb.Raw().Before("gorm:raw").Register("spanstore:before_raw", p.before); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("spanstore:after_raw", p.after("raw"))
}

func (p *GormMetricsPlugin) before(db *gorm.DB) {
	db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
}

func (p *GormMetricsPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		labels := observability.Labels("operation", operation, "table", db.Statement.Table)

		p.queryTotal.Inc(1, labels...)

		if db.Error != nil {
			p.queryErrors.Inc(1, labels...)
		}

		if start, ok := db.Statement.Context.Value(queryStartKey{}).(time.Time); ok {
			p.queryLatency.Observe(time.Since(start).Seconds(), labels...)
		}
	}
}
