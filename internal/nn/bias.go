package nn

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// Bias adds a learnable offset vector to its input.
//
// It is the standard closing block of a merge: several bias-free Linear
// projections are summed and a single Bias supplies the shared offset.
type Bias[B tensor.Backend] struct {
	dim     int
	bias    *Parameter[B]
	backend B
}

// NewBias creates a Bias block of the given width, initialized to zero.
func NewBias[B tensor.Backend](dim int, backend B) *Bias[B] {
	if dim <= 0 {
		panic(fmt.Sprintf("Bias: invalid dimension %d", dim))
	}
	return &Bias[B]{
		dim:     dim,
		bias:    NewParameter("bias", Zeros(tensor.Shape{dim}, backend)),
		backend: backend,
	}
}

// Forward returns input + b, broadcasting over the batch dimension.
// The trailing dimension of the input must equal the bias width.
func (b *Bias[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if shape[len(shape)-1] != b.dim {
		panic(fmt.Sprintf("Bias.Forward: expected trailing dimension %d, got shape %v", b.dim, shape))
	}
	return input.Add(b.bias.Tensor())
}

// Parameters returns the bias parameter.
func (b *Bias[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{b.bias}
}

// Dim returns the bias width.
func (b *Bias[B]) Dim() int {
	return b.dim
}
