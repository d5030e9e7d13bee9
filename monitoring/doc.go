// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package monitoring provides dataset-level aggregation of monitored
// quantities for the Bricks ML toolkit.
//
// # Overview
//
// Training code watches quantities batch by batch, but the numbers that
// matter are dataset-level: the mean cost over a validation set, not
// the cost of its last batch. A MonitorChannel pairs a per-batch
// computation with an AggregationScheme saying how batch values
// combine:
//
//   - Mean: ratio of accumulated numerators and denominators. Batches
//     of different sizes weigh in proportionally, which a naive average
//     of batch means would get wrong.
//   - TakeLast: the final batch's value.
//   - DataIndependent: a value read once at readout time.
//
// A DatasetEvaluator runs a set of channels over the batches of a
// dataset and returns the aggregated values by channel name.
package monitoring
