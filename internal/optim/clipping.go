package optim

import (
	"math"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// StepClipping rescales all steps so their combined L2 norm does not
// exceed a threshold. The norm is taken over every step together, not
// per parameter, so the update direction is preserved.
type StepClipping[B tensor.Backend] struct {
	threshold float32
}

// NewStepClipping creates a StepClipping rule. A threshold of zero or
// less disables clipping.
func NewStepClipping[B tensor.Backend](threshold float32) *StepClipping[B] {
	return &StepClipping[B]{threshold: threshold}
}

// ComputeSteps rescales the steps when their joint norm exceeds the
// threshold.
func (c *StepClipping[B]) ComputeSteps(steps []*tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B] {
	if c.threshold <= 0 {
		return steps
	}
	var squares float64
	for _, step := range steps {
		if step == nil {
			continue
		}
		squares += float64(step.Mul(step).Sum().Raw().AsFloat32()[0])
	}
	norm := float32(math.Sqrt(squares))
	if norm <= c.threshold {
		return steps
	}
	multiplier := c.threshold / norm
	out := make([]*tensor.Tensor[float32, B], len(steps))
	for i, step := range steps {
		if step == nil {
			continue
		}
		out[i] = step.MulScalar(multiplier)
	}
	return out
}

// Threshold returns the configured norm threshold.
func (c *StepClipping[B]) Threshold() float32 { return c.threshold }
