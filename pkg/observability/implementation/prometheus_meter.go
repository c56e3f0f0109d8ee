package implementation

import (
	"errors"
	"strings"

	"github.com/jt828/functrace/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

type prometheusMeter struct {
	registry *prometheus.Registry
}

func NewPrometheusMeter() observability.Meter {
	return NewPrometheusMeterWithRegistry(prometheus.NewRegistry())
}

func NewPrometheusMeterWithRegistry(reg *prometheus.Registry) observability.Meter {
	return &prometheusMeter{registry: reg}
}

// PromRegistry exposes the registry behind m, or nil when m is not backed by
// Prometheus.
func PromRegistry(m observability.Meter) *prometheus.Registry {
	if pm, ok := m.(*prometheusMeter); ok {
		return pm.registry
	}
	return nil
}

// register returns the collector already registered under the same descriptor
// instead of failing, so a metric family may be requested more than once.
func register[C prometheus.Collector](reg *prometheus.Registry, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

type promCounter struct{ vec *prometheus.CounterVec }

func (m *prometheusMeter) Counter(name string, opts ...observability.MetricOpt) observability.Counter {
	opt := firstOpt(opts)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        metricName(name, opt.Unit),
		Help:        opt.Help,
		ConstLabels: toPromLabels(opt.ConstLabels),
	}, opt.LabelKeys)
	return &promCounter{vec: register(m.registry, vec)}
}

func (c *promCounter) Inc(v float64, labels ...observability.Label) {
	c.vec.With(toPromLabels(labels)).Add(v)
}

type promHistogram struct{ vec *prometheus.HistogramVec }

func (m *prometheusMeter) Histogram(name string, opts ...observability.MetricOpt) observability.Histogram {
	return &promHistogram{vec: m.histogramVec(name, firstOpt(opts))}
}

func (h *promHistogram) Observe(v float64, labels ...observability.Label) {
	h.vec.With(toPromLabels(labels)).Observe(v)
}

type promGauge struct{ vec *prometheus.GaugeVec }

func (m *prometheusMeter) Gauge(name string, opts ...observability.MetricOpt) observability.Gauge {
	opt := firstOpt(opts)
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        metricName(name, opt.Unit),
		Help:        opt.Help,
		ConstLabels: toPromLabels(opt.ConstLabels),
	}, opt.LabelKeys)
	return &promGauge{vec: register(m.registry, vec)}
}

func (g *promGauge) Set(v float64, labels ...observability.Label) {
	g.vec.With(toPromLabels(labels)).Set(v)
}

func (g *promGauge) Add(v float64, labels ...observability.Label) {
	g.vec.With(toPromLabels(labels)).Add(v)
}

// promTimer is a histogram of seconds.
type promTimer struct{ vec *prometheus.HistogramVec }

func (m *prometheusMeter) Timer(name string, opts ...observability.MetricOpt) observability.Timer {
	return &promTimer{vec: m.histogramVec(name, firstOpt(opts))}
}

func (t *promTimer) Start(labels ...observability.Label) func() {
	timer := prometheus.NewTimer(t.vec.With(toPromLabels(labels)))
	return func() { timer.ObserveDuration() }
}

func (m *prometheusMeter) histogramVec(name string, opt observability.MetricOpt) *prometheus.HistogramVec {
	buckets := opt.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        metricName(name, opt.Unit),
		Help:        opt.Help,
		Buckets:     buckets,
		ConstLabels: toPromLabels(opt.ConstLabels),
	}, opt.LabelKeys)
	return register(m.registry, vec)
}

// metricName appends the unit unless the name already ends with it, so
// "query_duration" with unit "seconds" becomes "query_duration_seconds".
func metricName(name, unit string) string {
	if unit == "" || strings.HasSuffix(name, "_"+unit) {
		return name
	}
	return name + "_" + unit
}

func firstOpt(opts []observability.MetricOpt) observability.MetricOpt {
	if len(opts) == 0 {
		return observability.MetricOpt{}
	}
	return opts[0]
}

func toPromLabels(labels []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(labels))
	for _, l := range labels {
		m[l.Key] = l.Value
	}
	return m
}
