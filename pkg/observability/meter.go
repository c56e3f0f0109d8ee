package observability

// Meter creates metric families. Asking twice for the same name returns the
// family registered first.
type Meter interface {
	Counter(name string, opts ...MetricOpt) Counter
	Histogram(name string, opts ...MetricOpt) Histogram
	Gauge(name string, opts ...MetricOpt) Gauge
	Timer(name string, opts ...MetricOpt) Timer
}

type Counter interface {
	Inc(v float64, labels ...Label)
}

type Histogram interface {
	Observe(v float64, labels ...Label)
}

type Gauge interface {
	Set(v float64, labels ...Label)
	Add(v float64, labels ...Label)
}

// Timer observes elapsed seconds. Start returns the function that stops it.
type Timer interface {
	Start(labels ...Label) func()
}

type nopMeter struct{}

// NopMeter returns a Meter whose metrics record nothing.
func NopMeter() Meter { return nopMeter{} }

func (nopMeter) Counter(string, ...MetricOpt) Counter     { return nopMetric{} }
func (nopMeter) Histogram(string, ...MetricOpt) Histogram { return nopMetric{} }
func (nopMeter) Gauge(string, ...MetricOpt) Gauge         { return nopMetric{} }
func (nopMeter) Timer(string, ...MetricOpt) Timer         { return nopMetric{} }

type nopMetric struct{}

func (nopMetric) Inc(float64, ...Label)     {}
func (nopMetric) Observe(float64, ...Label) {}
func (nopMetric) Set(float64, ...Label)     {}
func (nopMetric) Add(float64, ...Label)     {}
func (nopMetric) Start(...Label) func()     { return func() {} }
