package observability

// Label is one metric label value. Keys must appear in the family's LabelKeys.
type Label struct {
	Key   string
	Value string
}

// Labels builds labels from alternating key/value pairs. A trailing key
// without a value gets an empty value.
func Labels(kv ...string) []Label {
	out := make([]Label, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		l := Label{Key: kv[i]}
		if i+1 < len(kv) {
			l.Value = kv[i+1]
		}
		out = append(out, l)
	}
	return out
}

// MetricOpt describes a metric family. Buckets apply to histograms and timers.
type MetricOpt struct {
	Help        string
	Buckets     []float64
	ConstLabels []Label
	LabelKeys   []string
	Unit        string
}
