package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowMeanChannel contributes the sum of row means as numerator and the
// row count as denominator, so the aggregate is the mean row mean over
// the whole dataset.
func rowMeanChannel() *MonitorChannel[[][]float64] {
	return &MonitorChannel[[][]float64]{
		Name: "mean_row_mean",
		Compute: func(batch [][]float64) (float64, float64) {
			var total float64
			for _, row := range batch {
				var sum float64
				for _, v := range row {
					sum += v
				}
				total += sum / float64(len(row))
			}
			return total, float64(len(batch))
		},
		Scheme: Mean{},
	}
}

func TestMeanAggregation(t *testing.T) {
	evaluator := NewDatasetEvaluator(rowMeanChannel())

	// Batches of two and three rows: row means are 0.5 and 2.5, then
	// 4.5, 6.5 and 8.5. The aggregate must weight them uniformly,
	// (3 + 19.5) / (2 + 3), not average the two batch means.
	values := evaluator.Evaluate([][][]float64{
		{{0, 1}, {2, 3}},
		{{4, 5}, {6, 7}, {8, 9}},
	})
	assert.InDelta(t, 4.5, values["mean_row_mean"], 1e-9)
}

func TestTakeLastAggregation(t *testing.T) {
	evaluator := NewDatasetEvaluator(&MonitorChannel[float64]{
		Name:    "last",
		Compute: func(batch float64) (float64, float64) { return batch, 1 },
		Scheme:  TakeLast{},
	})
	values := evaluator.Evaluate([]float64{3, 1, 7})
	assert.Equal(t, 7.0, values["last"])
}

func TestDataIndependentAggregation(t *testing.T) {
	current := 0.1
	evaluator := NewDatasetEvaluator(&MonitorChannel[float64]{
		Name:    "learning_rate",
		Compute: func(float64) (float64, float64) { return 0, 0 },
		Scheme:  DataIndependent{Value: func() float64 { return current }},
	})

	// The value is read at readout time, not captured at construction.
	current = 0.01
	values := evaluator.Evaluate([]float64{1, 2})
	assert.Equal(t, 0.01, values["learning_rate"])
}

func TestEvaluatorReusableAcrossPasses(t *testing.T) {
	evaluator := NewDatasetEvaluator(&MonitorChannel[float64]{
		Name:    "mean",
		Compute: func(batch float64) (float64, float64) { return batch, 1 },
	})

	first := evaluator.Evaluate([]float64{2, 4})
	require.Equal(t, 3.0, first["mean"])

	// A second pass must not see the first pass's accumulators.
	second := evaluator.Evaluate([]float64{10})
	assert.Equal(t, 10.0, second["mean"])
}

func TestChannelValidation(t *testing.T) {
	assert.Panics(t, func() {
		NewDatasetEvaluator(&MonitorChannel[int]{Name: "", Compute: func(int) (float64, float64) { return 0, 0 }})
	})
	assert.Panics(t, func() {
		NewDatasetEvaluator(&MonitorChannel[int]{Name: "x"})
	})
	assert.Panics(t, func() {
		NewDatasetEvaluator(
			&MonitorChannel[int]{Name: "x", Compute: func(int) (float64, float64) { return 0, 0 }},
			&MonitorChannel[int]{Name: "x", Compute: func(int) (float64, float64) { return 0, 0 }},
		)
	})
}

func TestIncrementalProtocol(t *testing.T) {
	evaluator := NewDatasetEvaluator(&MonitorChannel[float64]{
		Name:    "mean",
		Compute: func(batch float64) (float64, float64) { return batch, 1 },
	})
	evaluator.InitializeAggregators()
	evaluator.ProcessBatch(1)
	evaluator.ProcessBatch(5)
	assert.Equal(t, 3.0, evaluator.AggregatedValues()["mean"])
}
