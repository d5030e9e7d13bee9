package nn

import (
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Tanh is a hyperbolic tangent activation module. It squashes values
// to (-1, 1) and has no trainable parameters.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies the activation elementwise.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Tanh()
}

func (t *Tanh[B]) Parameters() []*Parameter[B] { return nil }

// Sigmoid is a logistic activation module. It squashes values to
// (0, 1) and has no trainable parameters.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies the activation elementwise.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Sigmoid()
}

func (s *Sigmoid[B]) Parameters() []*Parameter[B] { return nil }
