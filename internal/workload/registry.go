package workload

import "github.com/jt828/functrace/pkg/tracewrap"

const PackagePath = "github.com/jt828/functrace/internal/workload"

// Package lists the exported workloads for bulk instrumentation.
func Package() tracewrap.Package {
	return tracewrap.Package{
		Path: PackagePath,
		Funcs: map[string]any{
			"Fibonacci":       Fibonacci,
			"Traverse":        Traverse,
			"GradientDescent": GradientDescent,
			"Describe":        Describe,
			"Lookup":          Lookup,
			"SumLater":        SumLater,
		},
		Signatures: map[string]tracewrap.Signature{
			"Fibonacci":       tracewrap.Params("n"),
			"Traverse":        tracewrap.Params("adjacency", "start"),
			"GradientDescent": tracewrap.Params("x", "y", "learning_rate", "iterations"),
			"Describe":        tracewrap.Params("values"),
			"Lookup":          tracewrap.Params("key"),
			"SumLater":        tracewrap.Params("values", "delay"),
		},
	}
}
