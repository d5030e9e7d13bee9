// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/optim"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// StepRule transforms gradients into parameter update steps.
type StepRule[B tensor.Backend] = optim.StepRule[B]

// Scale multiplies every step by the learning rate.
type Scale[B tensor.Backend] = optim.Scale[B]

// NewScale creates a scaling rule. A zero learning rate means 1: a
// pure pass-through.
func NewScale[B tensor.Backend](learningRate float32) *Scale[B] {
	return optim.NewScale[B](learningRate)
}

// BasicMomentum accumulates a velocity per parameter and steps along it.
type BasicMomentum[B tensor.Backend] = optim.BasicMomentum[B]

// NewBasicMomentum creates a momentum accumulator with the given decay.
func NewBasicMomentum[B tensor.Backend](momentum float32) *BasicMomentum[B] {
	return optim.NewBasicMomentum[B](momentum)
}

// NewMomentum chains learning-rate scaling with momentum accumulation,
// the usual SGD-with-momentum step rule.
//
// Example:
//
//	descent := optim.NewGradientDescent(params, optim.NewMomentum[*cpu.Backend](0.01, 0.9), backend)
func NewMomentum[B tensor.Backend](learningRate, momentum float32) *CompositeRule[B] {
	return optim.NewMomentum[B](learningRate, momentum)
}

// StepClipping rescales steps whose global L2 norm exceeds a threshold.
type StepClipping[B tensor.Backend] = optim.StepClipping[B]

// NewStepClipping creates a global-norm clipping rule. A threshold of
// zero or less disables clipping.
func NewStepClipping[B tensor.Backend](threshold float32) *StepClipping[B] {
	return optim.NewStepClipping[B](threshold)
}

// AdaDelta adapts per-parameter learning rates from running averages of
// squared gradients and squared steps.
type AdaDelta[B tensor.Backend] = optim.AdaDelta[B]

// NewAdaDelta creates an AdaDelta rule. Zero decayRate and epsilon fall
// back to 0.95 and 1e-6.
func NewAdaDelta[B tensor.Backend](decayRate, epsilon float32) *AdaDelta[B] {
	return optim.NewAdaDelta[B](decayRate, epsilon)
}

// CompositeRule chains step rules so the output of one feeds the next.
type CompositeRule[B tensor.Backend] = optim.CompositeRule[B]

// NewCompositeRule chains the given rules in order.
func NewCompositeRule[B tensor.Backend](components ...StepRule[B]) *CompositeRule[B] {
	return optim.NewCompositeRule(components...)
}

// GradientDescent applies a step rule's updates to parameters in place.
type GradientDescent[B tensor.Backend] = optim.GradientDescent[B]

// NewGradientDescent creates a training loop driver over the given
// parameters. A nil rule means plain gradient descent with step size 1.
func NewGradientDescent[B tensor.Backend](params []*nn.Parameter[B], rule StepRule[B], backend B) *GradientDescent[B] {
	return optim.NewGradientDescent(params, rule, backend)
}
