// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package monitoring

import (
	"github.com/bricks-ml/bricks/internal/monitoring"
)

// AggregationScheme describes how a monitored quantity accumulates
// across the batches of a dataset pass.
type AggregationScheme = monitoring.AggregationScheme

// Aggregator is one pass's accumulation state.
type Aggregator = monitoring.Aggregator

// Mean aggregates a ratio of sums: accumulated numerators over
// accumulated denominators. The default scheme.
type Mean = monitoring.Mean

// TakeLast keeps only the value from the final batch.
type TakeLast = monitoring.TakeLast

// DataIndependent reads a value once at readout time, for quantities
// that do not depend on the data at all.
type DataIndependent = monitoring.DataIndependent

// MonitorChannel is a named quantity computed per batch.
type MonitorChannel[T any] = monitoring.MonitorChannel[T]

// DatasetEvaluator runs monitor channels over dataset batches and
// aggregates their values.
type DatasetEvaluator[T any] = monitoring.DatasetEvaluator[T]

// NewDatasetEvaluator creates an evaluator over the given channels.
//
// Example:
//
//	costChannel := &monitoring.MonitorChannel[Batch]{
//	    Name: "cost",
//	    Compute: func(b Batch) (float64, float64) {
//	        return b.TotalCost, float64(b.Size)
//	    },
//	}
//	evaluator := monitoring.NewDatasetEvaluator(costChannel)
//	values := evaluator.Evaluate(batches)
func NewDatasetEvaluator[T any](channels ...*MonitorChannel[T]) *DatasetEvaluator[T] {
	return monitoring.NewDatasetEvaluator(channels...)
}
