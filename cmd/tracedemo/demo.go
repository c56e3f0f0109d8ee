package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jt828/functrace/internal/workload"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/tracewrap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// demo holds the traced versions of the workloads.
type demo struct {
	w   *tracewrap.Wrapper
	log observability.Logger

	fibonacci       func(context.Context, int) (int, error)
	traverse        func(context.Context, map[int64][]int64, int64) ([]int64, error)
	gradientDescent func(context.Context, *mat.Dense, []float64) ([]float64, error)
	describe        func(context.Context, []float64) (workload.Summary, error)
	lookup          func(context.Context, string) (string, error)
	sumLater        func(context.Context, []float64) <-chan tracewrap.Result[float64]
}

func newDemo(w *tracewrap.Wrapper, log observability.Logger) (*demo, error) {
	d := &demo{w: w, log: log}
	var err error

	if d.fibonacci, err = tracewrap.Wrap1(w, workload.Fibonacci, tracewrap.Config{
		CaptureArgs:   []string{"n"},
		CaptureReturn: true,
		Signature:     tracewrap.Params("n"),
	}); err != nil {
		return nil, err
	}

	if d.traverse, err = tracewrap.Wrap2(w, workload.Traverse, tracewrap.Config{
		SpanName:      "graph/{{.Function}}",
		CaptureArgs:   []string{"start"},
		CaptureReturn: true,
		Signature:     tracewrap.Params("adjacency", "start"),
	}); err != nil {
		return nil, err
	}

	fit := func(ctx context.Context, x *mat.Dense, y []float64) ([]float64, error) {
		return workload.GradientDescent(ctx, x, y, 0.1, 1000)
	}
	if d.gradientDescent, err = tracewrap.Wrap2(w, fit, tracewrap.Config{
		SpanName:      "numerical.gradient_descent",
		CaptureArgs:   []string{"y"},
		CaptureReturn: true,
		Signature:     tracewrap.Params("x", "y"),
		Attributes:    map[string]string{"learning_rate": "0.1", "iterations": "1000"},
	}); err != nil {
		return nil, err
	}

	if d.describe, err = tracewrap.Wrap1(w, workload.Describe, tracewrap.Config{
		CaptureArgs:   []string{"values"},
		CaptureReturn: true,
		Signature:     tracewrap.Params("values"),
	}); err != nil {
		return nil, err
	}

	if d.lookup, err = tracewrap.Wrap1(w, workload.Lookup, tracewrap.Config{
		CaptureArgs: []string{"key"},
		Signature:   tracewrap.Params("key"),
	}); err != nil {
		return nil, err
	}

	sum := func(ctx context.Context, values []float64) <-chan tracewrap.Result[float64] {
		return workload.SumLater(ctx, values, 20*time.Millisecond)
	}
	if d.sumLater, err = tracewrap.WrapAsync1(w, sum, tracewrap.Config{
		SpanName:      "async.sum_later",
		CaptureArgs:   []string{"values"},
		CaptureReturn: true,
		Signature:     tracewrap.Params("values"),
	}); err != nil {
		return nil, err
	}

	return d, nil
}

var demoGraph = map[int64][]int64{
	1: {2, 3},
	2: {4, 5},
	3: {6},
	4: {1},
	5: {6},
	6: {},
	7: {8},
}

func demoSamples() []float64 {
	return []float64{12.5, 7, 3.25, 9, 14, 2, 8.75, 11, 5.5}
}

func demoRegression() (*mat.Dense, []float64) {
	// y = 1.5*x0 - 0.5*x1 + 2
	x := mat.NewDense(6, 3, []float64{
		1, 0, 1,
		2, 1, 1,
		3, 1, 1,
		0, 2, 1,
		4, 3, 1,
		1, 4, 1,
	})
	y := make([]float64, 6)
	for i := range y {
		y[i] = 1.5*x.At(i, 0) - 0.5*x.At(i, 1) + 2*x.At(i, 2)
	}
	return x, y
}

// runSequential calls every workload once. Failures are expected for lookup
// and are only logged.
func (d *demo) runSequential(ctx context.Context, fibN int) {
	if v, err := d.fibonacci(ctx, fibN); err == nil {
		d.log.Info("fibonacci", observability.Int("n", fibN), observability.Int("result", v))
	}

	if visited, err := d.traverse(ctx, demoGraph, 1); err == nil {
		d.log.Info("graph traversal", observability.Any("visited", visited))
	}

	x, y := demoRegression()
	if weights, err := d.gradientDescent(ctx, x, y); err == nil {
		d.log.Info("gradient descent", observability.Any("weights", weights))
	}

	if s, err := d.describe(ctx, demoSamples()); err == nil {
		d.log.Info("describe", observability.Any("summary", s))
	}

	if _, err := d.lookup(ctx, "no-such-key"); err != nil {
		d.log.Info("lookup failed as expected", observability.Err(err))
	}

	res := <-d.sumLater(ctx, demoSamples())
	if res.Err == nil {
		d.log.Info("async sum", observability.Any("sum", res.Value))
	}
}

// runConcurrent runs rounds of traced calls in parallel; each round gets its
// own goroutines and therefore its own root spans.
func (d *demo) runConcurrent(ctx context.Context, rounds, fibN int) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < rounds; i++ {
		n := fibN - i
		if n < 0 {
			n = 0
		}
		g.Go(func() error {
			_, err := d.fibonacci(ctx, n)
			return err
		})
		g.Go(func() error {
			_, err := d.traverse(ctx, demoGraph, int64(i%7+1))
			return err
		})
		g.Go(func() error {
			res := <-d.sumLater(ctx, demoSamples())
			return res.Err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("concurrent round: %w", err)
	}
	d.log.Info("concurrent run complete", observability.Int("rounds", rounds))
	return nil
}

// runInstrumented wraps the whole workload package in one go and calls a few
// of the resulting functions.
func (d *demo) runInstrumented(ctx context.Context) {
	in := tracewrap.NewInstrumenter(d.w, tracewrap.Exclude("internal/bootstrap"))
	all, n := in.InstrumentAll(workload.Package())
	if n == 0 {
		return
	}
	funcs := all[workload.PackagePath]

	if fib, ok := funcs["Fibonacci"].(func(context.Context, int) (int, error)); ok {
		_, _ = fib(ctx, 10)
	}
	if describe, ok := funcs["Describe"].(func(context.Context, []float64) (workload.Summary, error)); ok {
		_, _ = describe(ctx, demoSamples())
	}
	if sum, ok := funcs["SumLater"].(func(context.Context, []float64, time.Duration) <-chan tracewrap.Result[float64]); ok {
		if ch := sum(ctx, demoSamples(), 10*time.Millisecond); ch != nil {
			<-ch
		}
	}
}
