package rnn

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// GatedRecurrent is a gated recurrent transition with update and reset
// gates. It consumes two sequential inputs: "inputs" of the state width
// feeding the candidate activation and "gate_inputs" of twice the state
// width feeding the gates, update values first, reset values second.
type GatedRecurrent[B tensor.Backend] struct {
	dim          int
	stateToState *nn.Parameter[B]
	stateToGates *nn.Parameter[B]
	backend      B
}

// NewGatedRecurrent creates a gated transition of the given state width.
func NewGatedRecurrent[B tensor.Backend](dim int, backend B) *GatedRecurrent[B] {
	if dim <= 0 {
		panic(fmt.Sprintf("rnn: state dimension must be positive, got %d", dim))
	}
	return &GatedRecurrent[B]{
		dim: dim,
		stateToState: nn.NewParameter("state_to_state",
			nn.IsotropicGaussian(0.1, tensor.Shape{dim, dim}, backend)),
		stateToGates: nn.NewParameter("state_to_gates",
			nn.IsotropicGaussian(0.1, tensor.Shape{dim, 2 * dim}, backend)),
		backend: backend,
	}
}

func (r *GatedRecurrent[B]) StateNames() []string { return []string{"states"} }

func (r *GatedRecurrent[B]) SequentialInputNames() []string {
	return []string{"inputs", "gate_inputs"}
}

func (r *GatedRecurrent[B]) Dim(name string) (int, bool) {
	switch name {
	case "states", "inputs":
		return r.dim, true
	case "gate_inputs":
		return 2 * r.dim, true
	}
	return 0, false
}

func (r *GatedRecurrent[B]) InitialStates(batchSize int) Signals[B] {
	return Signals[B]{
		"states": tensor.Zeros[float32](tensor.Shape{batchSize, r.dim}, r.backend),
	}
}

func (r *GatedRecurrent[B]) Step(inputs, states Signals[B]) Signals[B] {
	x := inputs["inputs"]
	gx := inputs["gate_inputs"]
	s := states["states"]
	if x == nil || gx == nil || s == nil {
		panic("rnn: GatedRecurrent step requires \"inputs\", \"gate_inputs\" and \"states\"")
	}
	gates := gx.Add(s.MatMul(r.stateToGates.Tensor())).Sigmoid()
	halves := gates.Chunk(2, 1)
	update, reset := halves[0], halves[1]
	candidate := x.Add(s.Mul(reset).MatMul(r.stateToState.Tensor())).Tanh()
	next := candidate.Mul(update).Add(s.Mul(update.MulScalar(-1).AddScalar(1)))
	return Signals[B]{"states": next}
}

func (r *GatedRecurrent[B]) ApplySequence(inputs Signals[B], mask *tensor.Tensor[float32, B]) Signals[B] {
	return applyTransitionSequence[B](r, inputs, mask)
}

func (r *GatedRecurrent[B]) Parameters() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{r.stateToState, r.stateToGates}
}
