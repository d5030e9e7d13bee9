package cpu

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// Gather selects values along dim using an index tensor of the same
// rank. The output takes the index tensor's shape; every non-gather
// dimension of index must match t.
func (c *Backend) Gather(t *tensor.RawTensor, dim int, index *tensor.RawTensor) *tensor.RawTensor {
	rank := len(t.Shape())
	d := normDim("gather", dim, rank)
	if len(index.Shape()) != rank {
		panic(fmt.Sprintf("gather: index rank %d does not match tensor rank %d", len(index.Shape()), rank))
	}
	for i, s := range index.Shape() {
		if i != d && s != t.Shape()[i] {
			panic(fmt.Sprintf("gather: index shape %v incompatible with tensor shape %v along dim %d",
				index.Shape(), t.Shape(), i))
		}
	}

	result := tensor.MustNewRaw(index.Shape().Clone(), t.DType(), c.device)
	elem := t.DType().Size()
	strides := t.Strides()
	src, dst := t.Data(), result.Data()
	ind := indexValues(index)
	extent := t.Shape()[d]

	idx := make([]int, rank)
	for pos := 0; pos < len(ind); pos++ {
		j := ind[pos]
		if j < 0 || j >= extent {
			panic(fmt.Sprintf("gather: index %d out of range for dim %d of extent %d", j, d, extent))
		}
		srcOff := j * strides[d]
		for i := 0; i < rank; i++ {
			if i != d {
				srcOff += idx[i] * strides[i]
			}
		}
		copy(dst[pos*elem:(pos+1)*elem], src[srcOff*elem:(srcOff+1)*elem])
		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < index.Shape()[i] {
				break
			}
			idx[i] = 0
		}
	}
	return result
}

// Embedding looks up rows of a [vocab, dim] weight matrix. The result
// appends dim to the index tensor's shape.
func (c *Backend) Embedding(weight, indices *tensor.RawTensor) *tensor.RawTensor {
	if len(weight.Shape()) != 2 {
		panic(fmt.Sprintf("embedding: weight must be 2D, got %v", weight.Shape()))
	}
	vocab, dim := weight.Shape()[0], weight.Shape()[1]
	outShape := append(indices.Shape().Clone(), dim)
	result := tensor.MustNewRaw(outShape, weight.DType(), c.device)

	row := dim * weight.DType().Size()
	src, dst := weight.Data(), result.Data()
	for i, j := range indexValues(indices) {
		if j < 0 || j >= vocab {
			panic(fmt.Sprintf("embedding: index %d out of range for vocabulary of %d", j, vocab))
		}
		copy(dst[i*row:(i+1)*row], src[j*row:(j+1)*row])
	}
	return result
}

func indexValues(index *tensor.RawTensor) []int {
	out := make([]int, index.NumElements())
	switch index.DType() {
	case tensor.Int32:
		for i, v := range index.AsInt32() {
			out[i] = int(v)
		}
	case tensor.Int64:
		for i, v := range index.AsInt64() {
			out[i] = int(v)
		}
	default:
		panic(fmt.Sprintf("index tensor dtype must be int32 or int64, got %s", index.DType()))
	}
	return out
}
