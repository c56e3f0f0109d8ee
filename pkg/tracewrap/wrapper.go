// Package tracewrap emits one span per call of a wrapped function.
//
// A Wrapper holds the span backend. Functions are wrapped once, up front:
//
//	w := tracewrap.New(obs.Tracer(), tracewrap.WithLogger(obs.Logger()))
//	fib, err := tracewrap.Wrap1(w, workload.Fibonacci, tracewrap.Config{
//		CaptureArgs:   []string{"n"},
//		CaptureReturn: true,
//		Signature:     tracewrap.Params("n"),
//	})
//
// The wrapped function has the same signature and returns exactly what the
// original returns. Errors and panics are recorded on the span and then handed
// back unchanged. With a nil tracer the original function itself is returned.
package tracewrap

import (
	"github.com/jt828/functrace/pkg/observability"
)

type Wrapper struct {
	tracer  observability.Tracer
	log     observability.Logger
	metrics *Metrics
}

type Option func(*Wrapper)

func WithLogger(l observability.Logger) Option {
	return func(w *Wrapper) {
		w.log = l
	}
}

// WithMetrics records call counts, failures and durations per span name.
func WithMetrics(m *Metrics) Option {
	return func(w *Wrapper) {
		w.metrics = m
	}
}

// New returns a Wrapper emitting spans on tracer. A nil tracer disables tracing.
func New(tracer observability.Tracer, opts ...Option) *Wrapper {
	w := &Wrapper{tracer: tracer, log: observability.NopLogger()}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = observability.NopLogger()
	}
	return w
}

func (w *Wrapper) Enabled() bool {
	return w != nil && w.tracer != nil
}

func (w *Wrapper) logger() observability.Logger {
	if w == nil || w.log == nil {
		return observability.NopLogger()
	}
	return w.log
}
