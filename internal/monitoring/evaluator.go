package monitoring

// DatasetEvaluator runs monitor channels over a stream of batches and
// reads out one aggregated value per channel.
//
// The evaluation protocol is InitializeAggregators, ProcessBatch for
// every batch, then AggregatedValues; Evaluate bundles the three for a
// materialized batch slice.
type DatasetEvaluator[T any] struct {
	channels    []*MonitorChannel[T]
	aggregators []Aggregator
}

// NewDatasetEvaluator creates an evaluator over the given channels.
// Channel names must be non-empty and unique.
func NewDatasetEvaluator[T any](channels ...*MonitorChannel[T]) *DatasetEvaluator[T] {
	validateChannels(channels)
	aggregators := make([]Aggregator, len(channels))
	for i, channel := range channels {
		aggregators[i] = channel.scheme().NewAggregator()
	}
	return &DatasetEvaluator[T]{channels: channels, aggregators: aggregators}
}

// InitializeAggregators resets all aggregators for a new pass.
func (e *DatasetEvaluator[T]) InitializeAggregators() {
	for _, aggregator := range e.aggregators {
		aggregator.Initialize()
	}
}

// ProcessBatch folds one batch into every channel.
func (e *DatasetEvaluator[T]) ProcessBatch(batch T) {
	for i, channel := range e.channels {
		numerator, denominator := channel.Compute(batch)
		e.aggregators[i].Accumulate(numerator, denominator)
	}
}

// AggregatedValues reads out the channel values accumulated so far.
func (e *DatasetEvaluator[T]) AggregatedValues() map[string]float64 {
	values := make(map[string]float64, len(e.channels))
	for i, channel := range e.channels {
		values[channel.Name] = e.aggregators[i].Readout()
	}
	return values
}

// Evaluate runs a full pass over the batches.
func (e *DatasetEvaluator[T]) Evaluate(batches []T) map[string]float64 {
	e.InitializeAggregators()
	for _, batch := range batches {
		e.ProcessBatch(batch)
	}
	return e.AggregatedValues()
}
