package implementation

import (
	"context"
	"time"

	cbImpl "github.com/jt828/functrace/pkg/circuitbreaker/implementation"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/retry"
	retryImpl "github.com/jt828/functrace/pkg/retry/implementation"
	"github.com/sony/gobreaker/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Config struct {
	ServiceName    string
	ServiceVersion string
	// Enabled false leaves Tracer() nil so wrapped functions run untouched.
	Enabled     bool
	SampleRatio float64
	Exporter    ExporterConfig

	LogLevel       string
	LogDevelopment bool
	// MetricsAddr is where Start serves /metrics; empty disables the server.
	MetricsAddr string

	// Logger replaces the zap logger built from LogLevel.
	Logger observability.Logger
	// Meter replaces the fresh Prometheus meter, e.g. one already handed to the
	// span store.
	Meter observability.Meter
}

func NewObservability(ctx context.Context, cfg Config) (observability.Observability, error) {
	log := cfg.Logger
	if log == nil {
		l, err := NewZapLogger(cfg.LogLevel, cfg.LogDevelopment)
		if err != nil {
			return nil, err
		}
		log = l
	}

	meter := cfg.Meter
	if meter == nil {
		meter = NewPrometheusMeter()
	}

	o := &observabilityImplementation{
		log:         log,
		meter:       meter,
		metricsAddr: cfg.MetricsAddr,
	}

	if !cfg.Enabled {
		log.Info("tracing is disabled")
		return o, nil
	}

	exp, err := NewSpanExporter(ctx, cfg.Exporter, log, PromRegistry(meter))
	if err != nil {
		return nil, err
	}
	if cfg.Exporter.Type != ExporterConsole {
		exp = newDefaultResilientExporter(exp, log)
	}

	tracer, shutdown, err := NewOtelTracer(ctx, TracerConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		SampleRatio:    cfg.SampleRatio,
	}, exp)
	if err != nil {
		return nil, err
	}

	log.Info("tracing initialized",
		observability.String("service", cfg.ServiceName),
		observability.String("version", cfg.ServiceVersion),
		observability.String("exporter", cfg.Exporter.Type),
	)

	o.tracer = tracer
	o.traceClose = shutdown
	return o, nil
}

func newDefaultResilientExporter(exp sdktrace.SpanExporter, log observability.Logger) sdktrace.SpanExporter {
	cb := cbImpl.NewCircuitBreaker(gobreaker.Settings{
		Name:    "span-exporter",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	r := retryImpl.NewRetry(2,
		retry.WithInterval(200*time.Millisecond),
		retry.WithMaxInterval(2*time.Second),
		retry.WithJitterPercent(10),
	)
	return NewResilientExporter(exp, cb, r, log)
}
