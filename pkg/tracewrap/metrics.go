package tracewrap

import "github.com/jt828/functrace/pkg/observability"

// Metrics holds the metric families shared by every function of a Wrapper.
type Metrics struct {
	calls    observability.Counter
	errors   observability.Counter
	duration observability.Timer
}

// NewMetrics registers the families on meter. A nil meter records nothing.
func NewMetrics(meter observability.Meter) *Metrics {
	if meter == nil {
		meter = observability.NopMeter()
	}
	return &Metrics{
		calls: meter.Counter("traced_function_calls_total", observability.MetricOpt{
			Help:      "Total number of traced function calls",
			LabelKeys: []string{"function"},
		}),
		errors: meter.Counter("traced_function_errors_total", observability.MetricOpt{
			Help:      "Total number of traced function calls that failed",
			LabelKeys: []string{"function"},
		}),
		duration: meter.Timer("traced_function_duration_seconds", observability.MetricOpt{
			Help:      "Duration of traced function calls in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			LabelKeys: []string{"function"},
			Unit:      "seconds",
		}),
	}
}

func (m *Metrics) start(function string) func(failed bool) {
	if m == nil {
		return func(bool) {}
	}
	labels := observability.Labels("function", function)
	stop := m.duration.Start(labels...)
	return func(failed bool) {
		stop()
		m.calls.Inc(1, labels...)
		if failed {
			m.errors.Inc(1, labels...)
		}
	}
}
