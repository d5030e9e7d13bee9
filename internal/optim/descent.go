package optim

import (
	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// GradientDescent updates parameters by subtracting the steps a
// StepRule computes from their gradients.
type GradientDescent[B tensor.Backend] struct {
	params  []*nn.Parameter[B]
	rule    StepRule[B]
	backend B
}

// NewGradientDescent creates a gradient descent over the given
// parameters. A nil rule applies the gradients unchanged.
func NewGradientDescent[B tensor.Backend](params []*nn.Parameter[B], rule StepRule[B], backend B) *GradientDescent[B] {
	if rule == nil {
		rule = NewScale[B](1)
	}
	return &GradientDescent[B]{params: params, rule: rule, backend: backend}
}

// Step applies one update.
//
// The gradient map is keyed by parameter data, so callers can supply
// gradients however they obtain them. Parameters without a gradient
// are skipped.
func (g *GradientDescent[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	steps := make([]*tensor.Tensor[float32, B], len(g.params))
	for i, param := range g.params {
		raw := grads[param.Tensor().Raw()]
		if raw == nil {
			continue
		}
		steps[i] = tensor.New[float32, B](raw, g.backend)
	}

	steps = g.rule.ComputeSteps(steps)

	for i, param := range g.params {
		if steps[i] == nil {
			continue
		}
		updated := param.Tensor().Sub(steps[i])
		copy(param.Tensor().Raw().AsFloat32(), updated.Raw().AsFloat32())
	}
}

// ZeroGrad clears gradients for all parameters.
func (g *GradientDescent[B]) ZeroGrad() {
	for _, param := range g.params {
		param.ZeroGrad()
	}
}

// Parameters returns the parameters being optimized.
func (g *GradientDescent[B]) Parameters() []*nn.Parameter[B] { return g.params }

// Rule returns the step rule in use.
func (g *GradientDescent[B]) Rule() StepRule[B] { return g.rule }
