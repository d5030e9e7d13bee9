// Package optim implements gradient-descent training for neural networks.
//
// This package provides:
//   - StepRule interface: composable transformations from gradients to
//     parameter updates
//   - Scale, BasicMomentum, Momentum, StepClipping, AdaDelta: the stock
//     rules
//   - CompositeRule: chains rules so the output of one feeds the next
//   - GradientDescent: applies the resulting steps to parameters
//
// Gradients are computed elsewhere and handed in as a map from parameter
// data to gradient data; the package does not care how they were obtained.
//
// Example usage:
//
//	descent := optim.NewGradientDescent(model.Parameters(),
//	    optim.NewMomentum[B](0.01, 0.9), backend)
//
//	for epoch := range epochs {
//	    grads := computeGradients(model, batch)
//	    descent.Step(grads)
//	    descent.ZeroGrad()
//	}
package optim

import (
	"github.com/bricks-ml/bricks/internal/tensor"
)

// StepRule transforms gradients into parameter update steps.
//
// ComputeSteps receives one entry per parameter, aligned with the
// parameter list the rule is used for; entries without a gradient are
// nil and must stay nil. Rules may carry state between calls (momentum
// velocities, squared-gradient accumulators), keyed by position, so a
// rule instance must always be fed the same parameter list.
type StepRule[B tensor.Backend] interface {
	ComputeSteps(steps []*tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B]
}

// Scale multiplies every step by a fixed learning rate.
type Scale[B tensor.Backend] struct {
	learningRate float32
}

// NewScale creates a Scale rule. A zero learning rate falls back to 1,
// which makes the plain rule a no-op passthrough.
func NewScale[B tensor.Backend](learningRate float32) *Scale[B] {
	if learningRate == 0 {
		learningRate = 1
	}
	return &Scale[B]{learningRate: learningRate}
}

// ComputeSteps scales every non-nil step.
func (s *Scale[B]) ComputeSteps(steps []*tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B] {
	out := make([]*tensor.Tensor[float32, B], len(steps))
	for i, step := range steps {
		if step == nil {
			continue
		}
		out[i] = step.MulScalar(s.learningRate)
	}
	return out
}

// LearningRate returns the configured learning rate.
func (s *Scale[B]) LearningRate() float32 { return s.learningRate }

// SetLearningRate updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (s *Scale[B]) SetLearningRate(learningRate float32) {
	s.learningRate = learningRate
}

// CompositeRule chains step rules: the steps computed by each
// component are the input of the next one.
type CompositeRule[B tensor.Backend] struct {
	components []StepRule[B]
}

// NewCompositeRule creates a rule applying the components in order.
func NewCompositeRule[B tensor.Backend](components ...StepRule[B]) *CompositeRule[B] {
	return &CompositeRule[B]{components: components}
}

// ComputeSteps runs the chain.
func (c *CompositeRule[B]) ComputeSteps(steps []*tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B] {
	for _, component := range c.components {
		steps = component.ComputeSteps(steps)
	}
	return steps
}

// Components returns the chained rules in application order.
func (c *CompositeRule[B]) Components() []StepRule[B] { return c.components }
