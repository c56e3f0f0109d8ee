package tracewrap_test

import (
	"context"
	"sync"

	"github.com/jt828/functrace/pkg/observability"
)

type spanKey struct{}

type fakeSpan struct {
	mu        sync.Mutex
	name      string
	attrs     map[string]string
	errs      []error
	status    observability.StatusCode
	statusMsg string
	ended     int
}

func (s *fakeSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended++
}

func (s *fakeSpan) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *fakeSpan) SetAttribute(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[key] = value
}

func (s *fakeSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
	s.statusMsg = description
}

func (s *fakeSpan) snapshot() (attrs map[string]string, status observability.StatusCode, msg string, ended int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs = make(map[string]string, len(s.attrs))
	for k, v := range s.attrs {
		attrs[k] = v
	}
	return attrs, s.status, s.statusMsg, s.ended
}

type fakeTracer struct {
	mu    sync.Mutex
	spans []*fakeSpan
}

func (t *fakeTracer) Start(ctx context.Context, name string) (context.Context, observability.Span) {
	s := &fakeSpan{name: name, attrs: map[string]string{}}
	t.mu.Lock()
	t.spans = append(t.spans, s)
	t.mu.Unlock()
	return context.WithValue(ctx, spanKey{}, s), s
}

func (t *fakeTracer) all() []*fakeSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*fakeSpan(nil), t.spans...)
}

func (t *fakeTracer) last() *fakeSpan {
	spans := t.all()
	if len(spans) == 0 {
		return nil
	}
	return spans[len(spans)-1]
}

type panickingTracer struct{}

func (panickingTracer) Start(context.Context, string) (context.Context, observability.Span) {
	panic("backend down")
}

type mockLogger struct {
	mu    sync.Mutex
	calls []logCall
}

type logCall struct {
	level  string
	msg    string
	fields []observability.Field
}

func (m *mockLogger) record(level, msg string, fields []observability.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, logCall{level: level, msg: msg, fields: fields})
}

func (m *mockLogger) Debug(msg string, fields ...observability.Field) { m.record("debug", msg, fields) }
func (m *mockLogger) Error(msg string, fields ...observability.Field) { m.record("error", msg, fields) }
func (m *mockLogger) Fatal(msg string, fields ...observability.Field) { m.record("fatal", msg, fields) }
func (m *mockLogger) Info(msg string, fields ...observability.Field)  { m.record("info", msg, fields) }
func (m *mockLogger) Warn(msg string, fields ...observability.Field)  { m.record("warn", msg, fields) }
func (m *mockLogger) With(fields ...observability.Field) observability.Logger {
	return m
}

func (m *mockLogger) messages(level string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.level == level {
			out = append(out, c.msg)
		}
	}
	return out
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (c *fakeCounter) Inc(v float64, labels ...observability.Label) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range labels {
		c.counts[l.Value] += v
	}
}

func (c *fakeCounter) get(label string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[label]
}

type fakeTimer struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (t *fakeTimer) Start(labels ...observability.Label) func() {
	t.mu.Lock()
	t.started++
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.stopped++
		t.mu.Unlock()
	}
}

type fakeMeter struct {
	counters map[string]*fakeCounter
	timers   map[string]*fakeTimer
}

func newFakeMeter() *fakeMeter {
	return &fakeMeter{counters: map[string]*fakeCounter{}, timers: map[string]*fakeTimer{}}
}

func (m *fakeMeter) Counter(name string, opts ...observability.MetricOpt) observability.Counter {
	c := &fakeCounter{counts: map[string]float64{}}
	m.counters[name] = c
	return c
}

func (m *fakeMeter) Histogram(name string, opts ...observability.MetricOpt) observability.Histogram {
	return nil
}

func (m *fakeMeter) Gauge(name string, opts ...observability.MetricOpt) observability.Gauge {
	return nil
}

func (m *fakeMeter) Timer(name string, opts ...observability.MetricOpt) observability.Timer {
	t := &fakeTimer{}
	m.timers[name] = t
	return t
}
