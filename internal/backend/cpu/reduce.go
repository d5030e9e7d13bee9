package cpu

import (
	"fmt"
	"math"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// normDim resolves a possibly negative dimension index against rank.
func normDim(name string, dim, rank int) int {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("%s: dimension %d out of range for rank %d", name, dim, rank))
	}
	return dim
}

// splitAt factors a shape into the loop bounds of a reduction along dim:
// the product of leading dims, the reduced extent, and the product of
// trailing dims.
func splitAt(shape tensor.Shape, dim int) (outer, dimSize, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, s := range shape {
		if i == dim {
			if keepDim {
				out = append(out, 1)
			}
			continue
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}

// Sum reduces every element to a single value, keeping the dtype.
func (c *Backend) Sum(t *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{1}, t.DType(), c.device)
	switch t.DType() {
	case tensor.Float32:
		var acc float32
		for _, v := range t.AsFloat32() {
			acc += v
		}
		result.AsFloat32()[0] = acc
	case tensor.Float64:
		var acc float64
		for _, v := range t.AsFloat64() {
			acc += v
		}
		result.AsFloat64()[0] = acc
	case tensor.Int32:
		var acc int32
		for _, v := range t.AsInt32() {
			acc += v
		}
		result.AsInt32()[0] = acc
	case tensor.Int64:
		var acc int64
		for _, v := range t.AsInt64() {
			acc += v
		}
		result.AsInt64()[0] = acc
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", t.DType()))
	}
	return result
}

// SumDim sums along a single dimension.
func (c *Backend) SumDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	d := normDim("sum_dim", dim, len(t.Shape()))
	outer, dimSize, inner := splitAt(t.Shape(), d)
	result := tensor.MustNewRaw(reducedShape(t.Shape(), d, keepDim), t.DType(), c.device)
	switch t.DType() {
	case tensor.Float32:
		sumLanes(t.AsFloat32(), result.AsFloat32(), outer, dimSize, inner)
	case tensor.Float64:
		sumLanes(t.AsFloat64(), result.AsFloat64(), outer, dimSize, inner)
	case tensor.Int32:
		sumLanes(t.AsInt32(), result.AsInt32(), outer, dimSize, inner)
	case tensor.Int64:
		sumLanes(t.AsInt64(), result.AsInt64(), outer, dimSize, inner)
	default:
		panic(fmt.Sprintf("sum_dim: unsupported dtype %s", t.DType()))
	}
	return result
}

// MeanDim averages along a single dimension. Float tensors only.
func (c *Backend) MeanDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	d := normDim("mean_dim", dim, len(t.Shape()))
	if t.DType() != tensor.Float32 && t.DType() != tensor.Float64 {
		panic(fmt.Sprintf("mean_dim: unsupported dtype %s", t.DType()))
	}
	n := t.Shape()[d]
	return c.MulScalar(c.SumDim(t, d, keepDim), 1.0/float64(n))
}

// MaxDim takes the maximum along a single dimension.
func (c *Backend) MaxDim(t *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	d := normDim("max_dim", dim, len(t.Shape()))
	outer, dimSize, inner := splitAt(t.Shape(), d)
	result := tensor.MustNewRaw(reducedShape(t.Shape(), d, keepDim), t.DType(), c.device)
	switch t.DType() {
	case tensor.Float32:
		maxLanes(t.AsFloat32(), result.AsFloat32(), outer, dimSize, inner)
	case tensor.Float64:
		maxLanes(t.AsFloat64(), result.AsFloat64(), outer, dimSize, inner)
	case tensor.Int32:
		maxLanes(t.AsInt32(), result.AsInt32(), outer, dimSize, inner)
	case tensor.Int64:
		maxLanes(t.AsInt64(), result.AsInt64(), outer, dimSize, inner)
	default:
		panic(fmt.Sprintf("max_dim: unsupported dtype %s", t.DType()))
	}
	return result
}

func sumLanes[T number](src, dst []T, outer, dimSize, inner int) {
	for o := 0; o < outer; o++ {
		base := o * dimSize * inner
		outBase := o * inner
		for j := 0; j < dimSize; j++ {
			row := base + j*inner
			for i := 0; i < inner; i++ {
				dst[outBase+i] += src[row+i]
			}
		}
	}
}

func maxLanes[T number](src, dst []T, outer, dimSize, inner int) {
	for o := 0; o < outer; o++ {
		base := o * dimSize * inner
		outBase := o * inner
		copy(dst[outBase:outBase+inner], src[base:base+inner])
		for j := 1; j < dimSize; j++ {
			row := base + j*inner
			for i := 0; i < inner; i++ {
				if src[row+i] > dst[outBase+i] {
					dst[outBase+i] = src[row+i]
				}
			}
		}
	}
}

// Softmax applies a numerically stable softmax along dim: the lane
// maximum is subtracted before exponentiation so large logits cannot
// overflow.
func (c *Backend) Softmax(t *tensor.RawTensor, dim int) *tensor.RawTensor {
	d := normDim("softmax", dim, len(t.Shape()))
	outer, dimSize, inner := splitAt(t.Shape(), d)
	result := tensor.MustNewRaw(t.Shape(), t.DType(), c.device)
	switch t.DType() {
	case tensor.Float32:
		softmaxLanes(t.AsFloat32(), result.AsFloat32(), outer, dimSize, inner)
	case tensor.Float64:
		softmaxLanes(t.AsFloat64(), result.AsFloat64(), outer, dimSize, inner)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", t.DType()))
	}
	return result
}

func softmaxLanes[T float32 | float64](src, dst []T, outer, dimSize, inner int) {
	for o := 0; o < outer; o++ {
		base := o * dimSize * inner
		for i := 0; i < inner; i++ {
			maxVal := src[base+i]
			for j := 1; j < dimSize; j++ {
				if v := src[base+j*inner+i]; v > maxVal {
					maxVal = v
				}
			}
			var sum T
			for j := 0; j < dimSize; j++ {
				idx := base + j*inner + i
				e := T(math.Exp(float64(src[idx] - maxVal)))
				dst[idx] = e
				sum += e
			}
			for j := 0; j < dimSize; j++ {
				dst[base+j*inner+i] /= sum
			}
		}
	}
}
