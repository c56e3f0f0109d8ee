package implementation

import (
	"context"
	"fmt"

	"github.com/jt828/functrace/pkg/apperror"
	"github.com/jt828/functrace/pkg/circuitbreaker"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/retry"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// resilientExporter keeps an unreachable backend from stalling the batch
// processor: exports are retried, and once the breaker opens batches are
// dropped immediately until it half-opens again.
type resilientExporter struct {
	next  sdktrace.SpanExporter
	cb    circuitbreaker.CircuitBreaker
	retry retry.Retry
	log   observability.Logger
}

func NewResilientExporter(
	next sdktrace.SpanExporter,
	cb circuitbreaker.CircuitBreaker,
	r retry.Retry,
	log observability.Logger,
) sdktrace.SpanExporter {
	return &resilientExporter{next: next, cb: cb, retry: r, log: log}
}

func (e *resilientExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	_, err := e.cb.Execute(func() (any, error) {
		return nil, e.retry.Execute(ctx, func() error {
			return e.next.ExportSpans(ctx, spans)
		})
	})
	if err == nil {
		return nil
	}

	e.log.Warn("span export failed, dropping batch",
		observability.Int("spans", len(spans)),
		observability.String("breaker", e.cb.State().String()),
		observability.Err(err),
	)
	return fmt.Errorf("%w: %w", apperror.ErrExporterUnavailable, err)
}

func (e *resilientExporter) Shutdown(ctx context.Context) error {
	return e.next.Shutdown(ctx)
}
