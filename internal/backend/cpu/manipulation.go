package cpu

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// Reshape returns a view of t with a new shape. The element count must
// be preserved; the underlying buffer is shared, not copied.
func (c *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}
	return t.WithShape(newShape)
}

// Transpose permutes the dimensions of t. With no axes it reverses the
// two dimensions of a matrix; otherwise axes must be a permutation of
// [0, rank). The result owns fresh contiguous storage.
func (c *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	rank := len(t.Shape())
	if len(axes) == 0 {
		if rank != 2 {
			panic(fmt.Sprintf("transpose: axes required for rank-%d tensor", rank))
		}
		axes = []int{1, 0}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("transpose: got %d axes for rank-%d tensor", len(axes), rank))
	}
	seen := make([]bool, rank)
	newShape := make(tensor.Shape, rank)
	for i, a := range axes {
		a = normDim("transpose", a, rank)
		if seen[a] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", a))
		}
		seen[a] = true
		axes[i] = a
		newShape[i] = t.Shape()[a]
	}

	result := tensor.MustNewRaw(newShape, t.DType(), c.device)
	elem := t.DType().Size()
	srcStrides := t.Strides()
	src, dst := t.Data(), result.Data()

	// Walk output positions in order, mapping each back to its source
	// offset through the permuted strides.
	n := t.NumElements()
	idx := make([]int, rank)
	for pos := 0; pos < n; pos++ {
		srcOff := 0
		for d := 0; d < rank; d++ {
			srcOff += idx[d] * srcStrides[axes[d]]
		}
		copy(dst[pos*elem:(pos+1)*elem], src[srcOff*elem:(srcOff+1)*elem])
		for d := rank - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < newShape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return result
}

// Unsqueeze inserts a size-1 dimension at dim. Valid positions run from
// 0 through rank inclusive. The buffer is shared with t.
func (c *Backend) Unsqueeze(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	rank := len(t.Shape())
	if dim < 0 {
		dim += rank + 1
	}
	if dim < 0 || dim > rank {
		panic(fmt.Sprintf("unsqueeze: dimension %d out of range for rank %d", dim, rank))
	}
	newShape := make(tensor.Shape, 0, rank+1)
	newShape = append(newShape, t.Shape()[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, t.Shape()[dim:]...)
	return t.WithShape(newShape)
}

// Slice narrows t along its first dimension to rows [start, end).
// The result owns fresh storage.
func (c *Backend) Slice(t *tensor.RawTensor, start, end int) *tensor.RawTensor {
	if len(t.Shape()) == 0 {
		panic("slice: cannot slice a scalar")
	}
	n := t.Shape()[0]
	if start < 0 || end > n || start >= end {
		panic(fmt.Sprintf("slice: range [%d, %d) invalid for leading dimension %d", start, end, n))
	}
	newShape := t.Shape().Clone()
	newShape[0] = end - start
	result := tensor.MustNewRaw(newShape, t.DType(), c.device)

	rowBytes := t.ByteSize() / n
	copy(result.Data(), t.Data()[start*rowBytes:end*rowBytes])
	return result
}

// Cat concatenates tensors along dim. All inputs must share dtype and
// agree on every dimension except dim.
func (c *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: no tensors given")
	}
	first := tensors[0]
	rank := len(first.Shape())
	d := normDim("cat", dim, rank)

	total := 0
	for _, t := range tensors {
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: dtype mismatch: %s vs %s", first.DType(), t.DType()))
		}
		if len(t.Shape()) != rank {
			panic(fmt.Sprintf("cat: rank mismatch: %v vs %v", first.Shape(), t.Shape()))
		}
		for i, s := range t.Shape() {
			if i != d && s != first.Shape()[i] {
				panic(fmt.Sprintf("cat: shape mismatch along dim %d: %v vs %v", i, first.Shape(), t.Shape()))
			}
		}
		total += t.Shape()[d]
	}

	newShape := first.Shape().Clone()
	newShape[d] = total
	result := tensor.MustNewRaw(newShape, first.DType(), c.device)

	outer, _, inner := splitAt(newShape, d)
	elem := first.DType().Size()
	dst := result.Data()
	for o := 0; o < outer; o++ {
		off := 0
		for _, t := range tensors {
			size := t.Shape()[d]
			block := size * inner * elem
			srcStart := o * block
			dstStart := ((o*total + off) * inner) * elem
			copy(dst[dstStart:dstStart+block], t.Data()[srcStart:srcStart+block])
			off += size
		}
	}
	return result
}

// Chunk splits t into n equal pieces along dim. The extent of dim must
// be divisible by n. Each piece owns fresh storage.
func (c *Backend) Chunk(t *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	d := normDim("chunk", dim, len(t.Shape()))
	size := t.Shape()[d]
	if n <= 0 || size%n != 0 {
		panic(fmt.Sprintf("chunk: cannot split dim %d of extent %d into %d pieces", d, size, n))
	}
	part := size / n

	partShape := t.Shape().Clone()
	partShape[d] = part
	outer, _, inner := splitAt(t.Shape(), d)
	elem := t.DType().Size()
	src := t.Data()

	pieces := make([]*tensor.RawTensor, n)
	for k := 0; k < n; k++ {
		piece := tensor.MustNewRaw(partShape, t.DType(), c.device)
		dst := piece.Data()
		block := part * inner * elem
		for o := 0; o < outer; o++ {
			srcStart := ((o*size + k*part) * inner) * elem
			copy(dst[o*block:(o+1)*block], src[srcStart:srcStart+block])
		}
		pieces[k] = piece
	}
	return pieces
}
