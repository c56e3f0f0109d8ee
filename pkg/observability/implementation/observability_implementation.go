package implementation

import (
	"context"
	"errors"
	"net/http"

	"github.com/jt828/functrace/pkg/observability"
)

type observabilityImplementation struct {
	log    observability.Logger
	meter  observability.Meter
	tracer observability.Tracer

	metricsAddr   string
	metricsServer *http.Server
	traceClose    func(context.Context) error
}

func (o *observabilityImplementation) Close(ctx context.Context) error {
	var errs []error
	if o.metricsServer != nil {
		errs = append(errs, o.metricsServer.Shutdown(ctx))
	}
	if o.traceClose != nil {
		errs = append(errs, o.traceClose(ctx))
	}
	if s, ok := o.log.(interface{ Sync() error }); ok {
		// stdout/stderr sinks report EINVAL on sync
		_ = s.Sync()
	}
	return errors.Join(errs...)
}

func (o *observabilityImplementation) Logger() observability.Logger { return o.log }
func (o *observabilityImplementation) Meter() observability.Meter   { return o.meter }

func (o *observabilityImplementation) Start(ctx context.Context) error {
	if o.metricsAddr == "" {
		return nil
	}
	if reg := PromRegistry(o.meter); reg != nil {
		o.metricsServer = StartMetricsServer(o.metricsAddr, reg, o.log)
		o.log.Info("metrics server listening", observability.String("addr", o.metricsAddr))
	}
	return nil
}

// Tracer returns an untyped nil when tracing is disabled.
func (o *observabilityImplementation) Tracer() observability.Tracer {
	if o.tracer == nil {
		return nil
	}
	return o.tracer
}
