package rnn

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// SimpleRecurrent is the plain recurrent transition
//
//	states_t = tanh(inputs_t + states_{t-1} W)
//
// with a single state signal "states" and a single sequential input
// "inputs", both of the same width.
type SimpleRecurrent[B tensor.Backend] struct {
	dim     int
	weight  *nn.Parameter[B]
	backend B
}

// NewSimpleRecurrent creates a transition of the given state width. The
// recurrent weight starts from a small isotropic Gaussian.
func NewSimpleRecurrent[B tensor.Backend](dim int, backend B) *SimpleRecurrent[B] {
	if dim <= 0 {
		panic(fmt.Sprintf("rnn: state dimension must be positive, got %d", dim))
	}
	w := nn.IsotropicGaussian(0.1, tensor.Shape{dim, dim}, backend)
	return &SimpleRecurrent[B]{
		dim:     dim,
		weight:  nn.NewParameter("W", w),
		backend: backend,
	}
}

func (r *SimpleRecurrent[B]) StateNames() []string { return []string{"states"} }

func (r *SimpleRecurrent[B]) SequentialInputNames() []string { return []string{"inputs"} }

func (r *SimpleRecurrent[B]) Dim(name string) (int, bool) {
	switch name {
	case "states", "inputs":
		return r.dim, true
	}
	return 0, false
}

func (r *SimpleRecurrent[B]) InitialStates(batchSize int) Signals[B] {
	return Signals[B]{
		"states": tensor.Zeros[float32](tensor.Shape{batchSize, r.dim}, r.backend),
	}
}

func (r *SimpleRecurrent[B]) Step(inputs, states Signals[B]) Signals[B] {
	x := inputs["inputs"]
	s := states["states"]
	if x == nil || s == nil {
		panic("rnn: SimpleRecurrent step requires \"inputs\" and \"states\"")
	}
	next := x.Add(s.MatMul(r.weight.Tensor())).Tanh()
	return Signals[B]{"states": next}
}

func (r *SimpleRecurrent[B]) ApplySequence(inputs Signals[B], mask *tensor.Tensor[float32, B]) Signals[B] {
	return applyTransitionSequence[B](r, inputs, mask)
}

func (r *SimpleRecurrent[B]) Parameters() []*nn.Parameter[B] {
	return []*nn.Parameter[B]{r.weight}
}
