package implementation_test

import (
	"errors"
	"testing"

	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/observability/implementation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger(t *testing.T) {
	t.Run("writes fields and named errors", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		log := implementation.NewZapLoggerFrom(zap.New(core))

		log.With(observability.String("span", "add")).Warn("instrumentation failed",
			observability.Int("attempt", 2),
			observability.Err(errors.New("boom")),
		)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "instrumentation failed", entries[0].Message)
		ctx := entries[0].ContextMap()
		assert.Equal(t, "add", ctx["span"])
		assert.EqualValues(t, 2, ctx["attempt"])
		assert.Equal(t, "boom", ctx["error"])
	})

	t.Run("levels below the threshold are dropped", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		log := implementation.NewZapLoggerFrom(zap.New(core))

		log.Debug("hidden")
		log.Info("shown")
		log.Error("also shown")

		assert.Equal(t, 2, logs.Len())
		assert.Equal(t, 1, logs.FilterMessage("also shown").Len())
	})

	t.Run("level is parsed", func(t *testing.T) {
		_, err := implementation.NewZapLogger("debug", false)
		require.NoError(t, err)
		_, err = implementation.NewZapLogger("", true)
		require.NoError(t, err)
		_, err = implementation.NewZapLogger("loud", false)
		assert.Error(t, err)
	})
}
