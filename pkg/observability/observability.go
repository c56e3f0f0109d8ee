package observability

import "context"

// Observability owns the process-wide logger, meter and tracer. It is built once
// at startup and closed at shutdown; Tracer returns nil when tracing is disabled.
type Observability interface {
	Close(ctx context.Context) error
	Logger() Logger
	Meter() Meter
	Start(ctx context.Context) error
	Tracer() Tracer
}
