// Package workload holds the computations the demo traces: recursion, graph
// walks, linear algebra and descriptive statistics.
package workload

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jt828/functrace/pkg/apperror"
	"github.com/jt828/functrace/pkg/tracewrap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Fibonacci computes the n-th Fibonacci number the slow, recursive way.
func Fibonacci(ctx context.Context, n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: fibonacci of %d", apperror.ErrInvalidArgument, n)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return fib(n), nil
}

func fib(n int) int {
	if n <= 1 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

// Traverse walks the directed graph given as adjacency lists depth first from
// start and returns the reachable node ids, start first and the rest ascending.
func Traverse(ctx context.Context, adjacency map[int64][]int64, start int64) ([]int64, error) {
	g := simple.NewDirectedGraph()
	for from, tos := range adjacency {
		if g.Node(from) == nil {
			g.AddNode(simple.Node(from))
		}
		for _, to := range tos {
			if from == to {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
		}
	}
	if g.Node(start) == nil {
		return nil, fmt.Errorf("%w: node %d", apperror.ErrNotFound, start)
	}

	var visited []int64
	dfs := traverse.DepthFirst{
		Visit: func(n graph.Node) {
			if n.ID() != start {
				visited = append(visited, n.ID())
			}
		},
	}
	dfs.Walk(g, simple.Node(start), func(graph.Node) bool {
		return ctx.Err() != nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(visited, func(i, j int) bool { return visited[i] < visited[j] })
	return append([]int64{start}, visited...), nil
}

// GradientDescent fits linear weights w minimising |Xw - y|² by batch gradient
// descent starting from zero.
func GradientDescent(ctx context.Context, x *mat.Dense, y []float64, learningRate float64, iterations int) ([]float64, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil design matrix", apperror.ErrInvalidArgument)
	}
	m, n := x.Dims()
	if len(y) != m {
		return nil, fmt.Errorf("%w: %d targets for %d rows", apperror.ErrInvalidArgument, len(y), m)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("%w: negative iteration count", apperror.ErrInvalidArgument)
	}

	w := mat.NewVecDense(n, nil)
	target := mat.NewVecDense(m, append([]float64(nil), y...))
	residual := mat.NewVecDense(m, nil)
	grad := mat.NewVecDense(n, nil)

	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		residual.MulVec(x, w)
		residual.SubVec(residual, target)
		grad.MulVec(x.T(), residual)
		w.AddScaledVec(w, -learningRate/float64(m), grad)
	}

	return mat.Col(nil, 0, w), nil
}

// Summary is a descriptive statistics report. Std is the population standard
// deviation; the zero-count summary carries NaN everywhere else.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Describe summarises values, ignoring NaNs.
func Describe(ctx context.Context, values []float64) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan}, nil
	}

	sort.Float64s(clean)
	mean, variance := stat.PopMeanVariance(clean, nil)
	return Summary{
		Count: len(clean),
		Mean:  mean,
		Std:   math.Sqrt(variance),
		Min:   clean[0],
		P25:   stat.Quantile(0.25, stat.Empirical, clean, nil),
		P50:   stat.Quantile(0.5, stat.Empirical, clean, nil),
		P75:   stat.Quantile(0.75, stat.Empirical, clean, nil),
		Max:   clean[len(clean)-1],
	}, nil
}

// Lookup always fails; it stands in for a call whose errors the tracer records.
func Lookup(_ context.Context, key string) (string, error) {
	return "", fmt.Errorf("lookup %q: %w", key, apperror.ErrNotFound)
}

// SumLater adds values after delay, delivering the total on the returned
// channel unless ctx ends first.
func SumLater(ctx context.Context, values []float64, delay time.Duration) <-chan tracewrap.Result[float64] {
	out := make(chan tracewrap.Result[float64], 1)
	go func() {
		defer close(out)
		select {
		case <-time.After(delay):
			out <- tracewrap.Result[float64]{Value: floats.Sum(values)}
		case <-ctx.Done():
			out <- tracewrap.Result[float64]{Err: ctx.Err()}
		}
	}()
	return out
}
