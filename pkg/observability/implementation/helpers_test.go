package implementation_test

import (
	"context"
	"sync"

	"github.com/jt828/functrace/pkg/circuitbreaker"
	"github.com/jt828/functrace/pkg/observability"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type recordingLogger struct {
	mu   sync.Mutex
	msgs map[string][]string
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{msgs: map[string][]string{}}
}

func (l *recordingLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs[level] = append(l.msgs[level], msg)
}

func (l *recordingLogger) Debug(msg string, _ ...observability.Field) { l.log("debug", msg) }
func (l *recordingLogger) Error(msg string, _ ...observability.Field) { l.log("error", msg) }
func (l *recordingLogger) Fatal(msg string, _ ...observability.Field) { l.log("fatal", msg) }
func (l *recordingLogger) Info(msg string, _ ...observability.Field)  { l.log("info", msg) }
func (l *recordingLogger) Warn(msg string, _ ...observability.Field)  { l.log("warn", msg) }
func (l *recordingLogger) With(_ ...observability.Field) observability.Logger {
	return l
}

func (l *recordingLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.msgs[level]...)
}

type passthroughCB struct{}

func (p *passthroughCB) Execute(fn func() (any, error)) (any, error) { return fn() }
func (p *passthroughCB) State() circuitbreaker.State                 { return circuitbreaker.Closed }

type passthroughRetry struct{}

func (p *passthroughRetry) Execute(ctx context.Context, fn func() error) error { return fn() }

type stubExporter struct {
	mu       sync.Mutex
	err      error
	calls    int
	exported int
	shutdown bool
}

func (e *stubExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.err != nil {
		return e.err
	}
	e.exported += len(spans)
	return nil
}

func (e *stubExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}
