package nn

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// Embedding maps discrete indices to dense vectors through a learnable
// [NumEmbed, EmbedDim] lookup table.
//
// It does not satisfy Module because its forward pass consumes integer
// indices rather than a float tensor.
type Embedding[B tensor.Backend] struct {
	Weight   *Parameter[B]
	NumEmbed int
	EmbedDim int
}

// NewEmbedding creates an Embedding with weights drawn from N(0, 1).
func NewEmbedding[B tensor.Backend](numEmbeddings, embeddingDim int, backend B) *Embedding[B] {
	if numEmbeddings <= 0 || embeddingDim <= 0 {
		panic(fmt.Sprintf("Embedding: invalid dimensions %dx%d", numEmbeddings, embeddingDim))
	}
	weight := Randn(tensor.Shape{numEmbeddings, embeddingDim}, backend)
	return &Embedding[B]{
		Weight:   NewParameter("embedding.weight", weight),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
	}
}

// NewEmbeddingWithWeight wraps a pre-initialized [vocab, dim] weight
// tensor as an Embedding.
func NewEmbeddingWithWeight[B tensor.Backend](weight *tensor.Tensor[float32, B]) *Embedding[B] {
	shape := weight.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Embedding: weight must be 2D, got shape %v", shape))
	}
	return &Embedding[B]{
		Weight:   NewParameter("embedding.weight", weight),
		NumEmbed: shape[0],
		EmbedDim: shape[1],
	}
}

// Forward looks up the embedding vector for every index. The result
// appends EmbedDim to the index tensor's shape. Panics if an index
// falls outside [0, NumEmbed).
func (e *Embedding[B]) Forward(indices *tensor.Tensor[int32, B]) *tensor.Tensor[float32, B] {
	return e.Weight.Tensor().Embedding(indices)
}

// Parameters returns the lookup table weight.
func (e *Embedding[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{e.Weight}
}
