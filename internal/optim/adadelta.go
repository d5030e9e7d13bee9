package optim

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// AdaDelta adapts every step by the ratio of the running RMS of past
// steps to the running RMS of past gradients.
//
// Update rule, with g the incoming step:
//
//	msGrad  = decay * msGrad + (1 - decay) * g^2
//	step    = sqrt(msStep + eps) / sqrt(msGrad + eps) * g
//	msStep  = decay * msStep + (1 - decay) * step^2
//
// See Zeiler, "ADADELTA: An Adaptive Learning Rate Method".
type AdaDelta[B tensor.Backend] struct {
	decayRate float32
	epsilon   float32

	msGrads []*tensor.Tensor[float32, B]
	msSteps []*tensor.Tensor[float32, B]
}

// NewAdaDelta creates an AdaDelta rule. Zero values fall back to the
// defaults of decay rate 0.95 and epsilon 1e-6.
func NewAdaDelta[B tensor.Backend](decayRate, epsilon float32) *AdaDelta[B] {
	if decayRate == 0 {
		decayRate = 0.95
	}
	if epsilon == 0 {
		epsilon = 1e-6
	}
	if decayRate < 0 || decayRate > 1 {
		panic(fmt.Sprintf("optim: decay rate must lie in [0, 1], got %v", decayRate))
	}
	return &AdaDelta[B]{decayRate: decayRate, epsilon: epsilon}
}

// ComputeSteps rescales every step by the accumulated RMS ratio.
func (a *AdaDelta[B]) ComputeSteps(steps []*tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B] {
	if a.msGrads == nil {
		a.msGrads = make([]*tensor.Tensor[float32, B], len(steps))
		a.msSteps = make([]*tensor.Tensor[float32, B], len(steps))
	}
	out := make([]*tensor.Tensor[float32, B], len(steps))
	for i, step := range steps {
		if step == nil {
			continue
		}
		msGrad, msStep := a.msGrads[i], a.msSteps[i]
		if msGrad == nil {
			msGrad = tensor.Zeros[float32](step.Shape(), step.Backend())
			msStep = tensor.Zeros[float32](step.Shape(), step.Backend())
			a.msGrads[i] = msGrad
			a.msSteps[i] = msStep
		}

		nextMSGrad := msGrad.MulScalar(a.decayRate).
			Add(step.Mul(step).MulScalar(1 - a.decayRate))
		scaled := msStep.AddScalar(a.epsilon).Sqrt().
			Div(nextMSGrad.AddScalar(a.epsilon).Sqrt()).
			Mul(step)
		nextMSStep := msStep.MulScalar(a.decayRate).
			Add(scaled.Mul(scaled).MulScalar(1 - a.decayRate))

		copy(msGrad.Raw().AsFloat32(), nextMSGrad.Raw().AsFloat32())
		copy(msStep.Raw().AsFloat32(), nextMSStep.Raw().AsFloat32())
		out[i] = scaled
	}
	return out
}
