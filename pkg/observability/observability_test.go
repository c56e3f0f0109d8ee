package observability_test

import (
	"testing"

	"github.com/jt828/functrace/pkg/observability"
	"github.com/stretchr/testify/assert"
)

func TestLabels(t *testing.T) {
	assert.Equal(t, []observability.Label{
		{Key: "operation", Value: "query"},
		{Key: "table", Value: "spans"},
	}, observability.Labels("operation", "query", "table", "spans"))

	assert.Equal(t, []observability.Label{{Key: "orphan"}}, observability.Labels("orphan"))
	assert.Empty(t, observability.Labels())
}

func TestStatusCode_String(t *testing.T) {
	assert.Equal(t, "OK", observability.StatusOK.String())
	assert.Equal(t, "ERROR", observability.StatusError.String())
	assert.Equal(t, "UNSET", observability.StatusUnset.String())
}

func TestNopMeter(t *testing.T) {
	m := observability.NopMeter()
	assert.NotPanics(t, func() {
		m.Counter("c").Inc(1)
		m.Histogram("h").Observe(1)
		m.Gauge("g").Set(1)
		m.Gauge("g").Add(1)
		m.Timer("t").Start(observability.Labels("k", "v")...)()
	})
}

func TestNopLogger(t *testing.T) {
	log := observability.NopLogger().With(observability.String("k", "v"))
	assert.NotPanics(t, func() {
		log.Info("hello", observability.Int("n", 1), observability.Err(nil))
	})
}
