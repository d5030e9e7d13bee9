// Package monitoring incrementally evaluates named quantities over
// batch streams.
//
// An AggregationScheme describes how per-batch values combine into a
// dataset-level value and allocates Aggregators that do the combining.
// MonitorChannel pairs a named quantity with its scheme, and
// DatasetEvaluator runs a set of channels over a stream of batches.
package monitoring

import (
	"fmt"
)

// AggregationScheme allocates aggregators for one monitored quantity.
type AggregationScheme interface {
	// NewAggregator returns a fresh, initialized aggregator.
	NewAggregator() Aggregator
}

// Aggregator incrementally combines per-batch contributions.
//
// Every batch contributes a numerator and a denominator; what they
// mean is up to the scheme. Initialize resets the aggregator so it can
// be reused across evaluation passes.
type Aggregator interface {
	Initialize()
	Accumulate(numerator, denominator float64)
	Readout() float64
}

// Mean aggregates the ratio of summed numerators to summed
// denominators, e.g. a summed cost over a summed element count.
type Mean struct{}

// NewAggregator returns a mean aggregator with zeroed accumulators.
func (Mean) NewAggregator() Aggregator {
	return &meanAggregator{}
}

type meanAggregator struct {
	numerator   float64
	denominator float64
}

func (a *meanAggregator) Initialize() {
	a.numerator = 0
	a.denominator = 0
}

func (a *meanAggregator) Accumulate(numerator, denominator float64) {
	a.numerator += numerator
	a.denominator += denominator
}

func (a *meanAggregator) Readout() float64 {
	return a.numerator / a.denominator
}

// TakeLast remembers only the most recent batch value. The
// denominator contribution is ignored.
type TakeLast struct{}

// NewAggregator returns an aggregator holding the last seen value.
func (TakeLast) NewAggregator() Aggregator {
	return &takeLastAggregator{}
}

type takeLastAggregator struct {
	value float64
}

func (a *takeLastAggregator) Initialize()                 { a.value = 0 }
func (a *takeLastAggregator) Accumulate(value, _ float64) { a.value = value }
func (a *takeLastAggregator) Readout() float64            { return a.value }

// DataIndependent reads a value that does not depend on the data, such
// as a hyperparameter or the current value of a model parameter. The
// value is read at readout time.
type DataIndependent struct {
	Value func() float64
}

// NewAggregator returns an aggregator that ignores batches.
func (s DataIndependent) NewAggregator() Aggregator {
	if s.Value == nil {
		panic("monitoring: DataIndependent needs a value function")
	}
	return &dataIndependentAggregator{value: s.Value}
}

type dataIndependentAggregator struct {
	value func() float64
}

func (a *dataIndependentAggregator) Initialize()             {}
func (a *dataIndependentAggregator) Accumulate(_, _ float64) {}
func (a *dataIndependentAggregator) Readout() float64        { return a.value() }

// MonitorChannel is one named quantity computed per batch and
// aggregated per its scheme.
type MonitorChannel[T any] struct {
	// Name identifies the channel in evaluation results.
	Name string
	// Compute returns the batch's numerator and denominator
	// contribution.
	Compute func(batch T) (numerator, denominator float64)
	// Scheme combines the contributions; nil means Mean.
	Scheme AggregationScheme
}

func (c *MonitorChannel[T]) scheme() AggregationScheme {
	if c.Scheme == nil {
		return Mean{}
	}
	return c.Scheme
}

func validateChannels[T any](channels []*MonitorChannel[T]) {
	seen := make(map[string]bool, len(channels))
	for _, channel := range channels {
		if channel.Name == "" {
			panic("monitoring: channel without a name")
		}
		if channel.Compute == nil {
			panic(fmt.Sprintf("monitoring: channel %q without a compute function", channel.Name))
		}
		if seen[channel.Name] {
			panic(fmt.Sprintf("monitoring: duplicate channel %q", channel.Name))
		}
		seen[channel.Name] = true
	}
}
