package tracewrap_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jt828/functrace/pkg/apperror"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/tracewrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}

func divmod(ctx context.Context, a, b int) (int, int, error) {
	if b == 0 {
		return 0, 0, errors.New("division by zero")
	}
	return a / b, a % b, nil
}

func TestWrapFunc(t *testing.T) {
	t.Run("plain function keeps its type and result", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), strings.Repeat, tracewrap.Config{
			CaptureArgs:   []string{"s", "count"},
			CaptureReturn: true,
			Signature:     tracewrap.Params("s", "count"),
		})
		require.NoError(t, err)

		repeat, ok := wrapped.(func(string, int) string)
		require.True(t, ok)
		assert.Equal(t, "ababab", repeat("ab", 3))

		span := tr.last()
		assert.Equal(t, "strings.Repeat", span.name)
		attrs, status, _, ended := span.snapshot()
		assert.Equal(t, "ab", attrs["function.s"])
		assert.Equal(t, "3", attrs["function.count"])
		assert.Equal(t, "ababab", attrs["function.return"])
		assert.Equal(t, observability.StatusOK, status)
		assert.Equal(t, 1, ended)
	})

	t.Run("leading context receives the span context", func(t *testing.T) {
		tr := &fakeTracer{}
		var seen any
		fn := func(ctx context.Context, n int) int {
			seen = ctx.Value(spanKey{})
			return n
		}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), fn, tracewrap.Config{})
		require.NoError(t, err)

		assert.Equal(t, 4, wrapped.(func(context.Context, int) int)(context.Background(), 4))
		assert.Same(t, tr.last(), seen)
	})

	t.Run("multiple results are recorded together", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), divmod, tracewrap.Config{CaptureReturn: true})
		require.NoError(t, err)

		q, r, err := wrapped.(func(context.Context, int, int) (int, int, error))(context.Background(), 7, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, q)
		assert.Equal(t, 1, r)

		attrs, _, _, _ := tr.last().snapshot()
		assert.Equal(t, "[3 1]", attrs["function.return"])
	})

	t.Run("trailing error marks the span", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), divmod, tracewrap.Config{CaptureReturn: true})
		require.NoError(t, err)

		_, _, err = wrapped.(func(context.Context, int, int) (int, int, error))(context.Background(), 1, 0)
		assert.EqualError(t, err, "division by zero")

		attrs, status, msg, _ := tr.last().snapshot()
		assert.Equal(t, observability.StatusError, status)
		assert.Equal(t, "division by zero", msg)
		assert.NotContains(t, attrs, "function.return")
	})

	t.Run("panics propagate unchanged", func(t *testing.T) {
		tr := &fakeTracer{}
		boom := errors.New("boom")
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), func() { panic(boom) }, tracewrap.Config{})
		require.NoError(t, err)

		assert.PanicsWithError(t, "boom", wrapped.(func()))
		_, status, msg, ended := tr.last().snapshot()
		assert.Equal(t, observability.StatusError, status)
		assert.Equal(t, "boom", msg)
		assert.Equal(t, 1, ended)
	})

	t.Run("empty variadic binds the declared default", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), join, tracewrap.Config{
			CaptureArgs: []string{"sep", "parts"},
			Signature:   tracewrap.Params("sep", "parts").WithDefault("parts", "none"),
		})
		require.NoError(t, err)

		j := wrapped.(func(string, ...string) string)
		assert.Equal(t, "", j(","))
		attrs, _, _, _ := tr.last().snapshot()
		assert.Equal(t, ",", attrs["function.sep"])
		assert.Equal(t, "none", attrs["function.parts"])

		assert.Equal(t, "a,b", j(",", "a", "b"))
		attrs, _, _, _ = tr.last().snapshot()
		assert.Equal(t, "[a b]", attrs["function.parts"])
	})

	t.Run("disabled returns the function itself", func(t *testing.T) {
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(nil), strconv.Itoa, tracewrap.Config{})
		require.NoError(t, err)
		assert.Equal(t, "12", wrapped.(func(int) string)(12))
	})

	t.Run("non-function values are rejected", func(t *testing.T) {
		_, err := tracewrap.WrapFunc(tracewrap.New(&fakeTracer{}), 42, tracewrap.Config{})
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)

		_, err = tracewrap.WrapFunc(tracewrap.New(nil), nil, tracewrap.Config{})
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})

	t.Run("signature arity excludes the context", func(t *testing.T) {
		_, err := tracewrap.WrapFunc(tracewrap.New(&fakeTracer{}), divmod, tracewrap.Config{
			Signature: tracewrap.Params("ctx", "a", "b"),
		})
		assert.ErrorIs(t, err, apperror.ErrInvalidConfig)
	})
}

func sumLater(ctx context.Context, values []float64, delay time.Duration) <-chan tracewrap.Result[float64] {
	out := make(chan tracewrap.Result[float64], 1)
	go func() {
		defer close(out)
		select {
		case <-time.After(delay):
			total := 0.0
			for _, v := range values {
				total += v
			}
			out <- tracewrap.Result[float64]{Value: total}
		case <-ctx.Done():
			out <- tracewrap.Result[float64]{Err: ctx.Err()}
		}
	}()
	return out
}

func TestWrapFunc_Async(t *testing.T) {
	t.Run("span stays open until the result is delivered", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), sumLater, tracewrap.Config{
			CaptureArgs:   []string{"values"},
			CaptureReturn: true,
			Signature:     tracewrap.Params("values", "delay"),
		})
		require.NoError(t, err)

		fn, ok := wrapped.(func(context.Context, []float64, time.Duration) <-chan tracewrap.Result[float64])
		require.True(t, ok)

		ch := fn(context.Background(), []float64{1, 2}, 50*time.Millisecond)
		require.NotNil(t, ch)

		_, status, _, ended := tr.last().snapshot()
		assert.Equal(t, 0, ended)
		assert.Equal(t, observability.StatusUnset, status)

		res := <-ch
		require.NoError(t, res.Err)
		assert.Equal(t, 3.0, res.Value)
		_, open := <-ch
		assert.False(t, open)

		attrs, status, _, ended := tr.last().snapshot()
		assert.Equal(t, "[1 2]", attrs["function.values"])
		assert.Equal(t, "3", attrs["function.return"])
		assert.Equal(t, observability.StatusOK, status)
		assert.Equal(t, 1, ended)
	})

	t.Run("failed result marks the span", func(t *testing.T) {
		tr := &fakeTracer{}
		want := errors.New("upstream down")
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), func() <-chan tracewrap.Result[string] {
			out := make(chan tracewrap.Result[string], 1)
			out <- tracewrap.Result[string]{Err: want}
			return out
		}, tracewrap.Config{CaptureReturn: true})
		require.NoError(t, err)

		res := <-wrapped.(func() <-chan tracewrap.Result[string])()
		assert.Same(t, want, res.Err)

		attrs, status, msg, ended := tr.last().snapshot()
		assert.Equal(t, observability.StatusError, status)
		assert.Equal(t, "upstream down", msg)
		assert.Equal(t, 1, ended)
		assert.NotContains(t, attrs, "function.return")
	})

	t.Run("cancellation closes the span", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), sumLater, tracewrap.Config{})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		ch := wrapped.(func(context.Context, []float64, time.Duration) <-chan tracewrap.Result[float64])(ctx, []float64{1}, time.Hour)
		cancel()

		res := <-ch
		assert.ErrorIs(t, res.Err, context.Canceled)
		_, status, msg, ended := tr.last().snapshot()
		assert.Equal(t, observability.StatusError, status)
		assert.Equal(t, "context canceled", msg)
		assert.Equal(t, 1, ended)
	})

	t.Run("nil channel", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), func(context.Context) <-chan tracewrap.Result[int] {
			return nil
		}, tracewrap.Config{})
		require.NoError(t, err)

		assert.Nil(t, wrapped.(func(context.Context) <-chan tracewrap.Result[int])(context.Background()))
		span := tr.last()
		_, status, _, ended := span.snapshot()
		assert.Equal(t, observability.StatusError, status)
		assert.Equal(t, 1, ended)
		require.Len(t, span.errs, 1)
		assert.ErrorIs(t, span.errs[0], tracewrap.ErrNoResult)
	})

	t.Run("other channels are plain results", func(t *testing.T) {
		tr := &fakeTracer{}
		wrapped, err := tracewrap.WrapFunc(tracewrap.New(tr), func() <-chan int {
			out := make(chan int)
			return out
		}, tracewrap.Config{})
		require.NoError(t, err)

		assert.NotNil(t, wrapped.(func() <-chan int)())
		_, status, _, ended := tr.last().snapshot()
		assert.Equal(t, observability.StatusOK, status)
		assert.Equal(t, 1, ended)
	})
}
