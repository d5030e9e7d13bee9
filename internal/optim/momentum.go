package optim

import (
	"github.com/bricks-ml/bricks/internal/tensor"
)

// BasicMomentum accumulates steps into per-parameter velocities.
//
// Update rule:
//
//	velocity = momentum * velocity + step
//
// and the velocity is the next step. Combine with Scale to get the
// classic momentum optimizer, or use Momentum which does exactly that.
type BasicMomentum[B tensor.Backend] struct {
	momentum   float32
	velocities []*tensor.Tensor[float32, B]
}

// NewBasicMomentum creates a BasicMomentum rule. The momentum factor
// should lie in [0, 1).
func NewBasicMomentum[B tensor.Backend](momentum float32) *BasicMomentum[B] {
	return &BasicMomentum[B]{momentum: momentum}
}

// ComputeSteps folds every step into its velocity and returns the
// velocities.
func (m *BasicMomentum[B]) ComputeSteps(steps []*tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B] {
	if m.velocities == nil {
		m.velocities = make([]*tensor.Tensor[float32, B], len(steps))
	}
	out := make([]*tensor.Tensor[float32, B], len(steps))
	for i, step := range steps {
		if step == nil {
			continue
		}
		velocity := m.velocities[i]
		if velocity == nil {
			velocity = tensor.Zeros[float32](step.Shape(), step.Backend())
			m.velocities[i] = velocity
		}
		next := velocity.MulScalar(m.momentum).Add(step)
		copy(velocity.Raw().AsFloat32(), next.Raw().AsFloat32())
		out[i] = next
	}
	return out
}

// NewMomentum creates the standard momentum optimizer rule: steps are
// scaled by the learning rate and then accumulated into velocities.
func NewMomentum[B tensor.Backend](learningRate, momentum float32) *CompositeRule[B] {
	return NewCompositeRule[B](NewScale[B](learningRate), NewBasicMomentum[B](momentum))
}
