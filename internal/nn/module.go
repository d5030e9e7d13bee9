// Package nn implements the neural network building blocks of the Bricks
// toolkit.
//
// The pieces here are deliberately small:
//   - Module interface: anything with a forward pass and parameters
//   - Parameter: a named trainable tensor with an attached gradient slot
//   - Linear: fully connected transformation, with or without bias
//   - Bias: a learnable additive offset
//   - Embedding: index-to-vector lookup table
//   - Initializers: Xavier, isotropic Gaussian, constants
//
// Higher-level structures (recurrent transitions, readouts, sequence
// generators) live in their own packages and compose these blocks.
package nn

import (
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Module is the base interface for components with a single-tensor
// forward pass.
//
// Not every building block fits this signature: Embedding consumes
// integer indices and recurrent transitions carry state, so they expose
// Parameters without satisfying Module. Anything that does satisfy it
// can be dropped into generic training loops.
type Module[B tensor.Backend] interface {
	// Forward computes the module output for the given input.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters, including those of
	// nested modules. Parameter-free modules return nil.
	Parameters() []*Parameter[B]
}
