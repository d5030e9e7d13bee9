package tensor

import (
	"fmt"
	"math/rand"
)

// Randn creates a float tensor with values drawn from N(0, 1).
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T](shape, b)
	switch data := any(t.Data()).(type) {
	case []float32:
		for i := range data {
			//nolint:gosec // math/rand is fine for weight initialization
			data[i] = float32(rand.NormFloat64())
		}
	case []float64:
		for i := range data {
			//nolint:gosec // math/rand is fine for weight initialization
			data[i] = rand.NormFloat64()
		}
	default:
		panic(fmt.Sprintf("Randn requires a float dtype, got %s", t.DType()))
	}
	return t
}

// Arange creates a 1D int32 tensor holding 0..n-1.
func Arange[B Backend](n int, b B) *Tensor[int32, B] {
	t := Zeros[int32](Shape{n}, b)
	data := t.Data()
	for i := range data {
		data[i] = int32(i)
	}
	return t
}

// Add returns t + other (element-wise, broadcasting).
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Add(t.raw, other.raw), backend: t.backend}
}

// Sub returns t - other (element-wise, broadcasting).
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Sub(t.raw, other.raw), backend: t.backend}
}

// Mul returns t * other (element-wise, broadcasting).
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Mul(t.raw, other.raw), backend: t.backend}
}

// Div returns t / other (element-wise, broadcasting).
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Div(t.raw, other.raw), backend: t.backend}
}

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.MatMul(t.raw, other.raw), backend: t.backend}
}

// Reshape returns a view with a new shape. Element count must match.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Reshape(t.raw, Shape(newShape)), backend: t.backend}
}

// Transpose permutes axes. Without arguments the axes are reversed.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Transpose(t.raw, axes...), backend: t.backend}
}

// T is shorthand for a full transpose.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	return t.Transpose()
}

// Slice narrows the tensor along its first dimension to rows [start, end).
func (t *Tensor[T, B]) Slice(start, end int) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Slice(t.raw, start, end), backend: t.backend}
}

// Unsqueeze inserts a dimension of size 1 at the given axis.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Unsqueeze(t.raw, dim), backend: t.backend}
}

// AddScalar returns t + scalar.
func (t *Tensor[T, B]) AddScalar(scalar T) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.AddScalar(t.raw, scalar), backend: t.backend}
}

// MulScalar returns t * scalar.
func (t *Tensor[T, B]) MulScalar(scalar T) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.MulScalar(t.raw, scalar), backend: t.backend}
}

// Exp applies e^x element-wise.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Exp(t.raw), backend: t.backend}
}

// Log applies the natural logarithm element-wise.
func (t *Tensor[T, B]) Log() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Log(t.raw), backend: t.backend}
}

// Sqrt applies the square root element-wise.
func (t *Tensor[T, B]) Sqrt() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Sqrt(t.raw), backend: t.backend}
}

// Tanh applies the hyperbolic tangent element-wise.
func (t *Tensor[T, B]) Tanh() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Tanh(t.raw), backend: t.backend}
}

// Sigmoid applies the logistic function element-wise.
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Sigmoid(t.raw), backend: t.backend}
}

// Softmax normalizes along the given dimension.
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Softmax(t.raw, dim), backend: t.backend}
}

// Equal compares element-wise, returning a bool tensor.
func (t *Tensor[T, B]) Equal(other *Tensor[T, B]) *Tensor[bool, B] {
	return &Tensor[bool, B]{raw: t.backend.Equal(t.raw, other.raw), backend: t.backend}
}

// NotEqual compares element-wise, returning a bool tensor.
func (t *Tensor[T, B]) NotEqual(other *Tensor[T, B]) *Tensor[bool, B] {
	return &Tensor[bool, B]{raw: t.backend.NotEqual(t.raw, other.raw), backend: t.backend}
}

// Sum reduces all elements to a scalar tensor.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Sum(t.raw), backend: t.backend}
}

// SumDim sums along one dimension.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.SumDim(t.raw, dim, keepDim), backend: t.backend}
}

// MeanDim averages along one dimension.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.MeanDim(t.raw, dim, keepDim), backend: t.backend}
}

// MaxDim takes the maximum along one dimension.
func (t *Tensor[T, B]) MaxDim(dim int, keepDim bool) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.MaxDim(t.raw, dim, keepDim), backend: t.backend}
}

// Gather selects elements along dim using an index tensor of the same rank.
func (t *Tensor[T, B]) Gather(dim int, index *Tensor[int32, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Gather(t.raw, dim, index.raw), backend: t.backend}
}

// Embedding treats t as a [vocab, dim] table and gathers rows by index.
// The result appends the row width to the index tensor's shape.
func (t *Tensor[T, B]) Embedding(indices *Tensor[int32, B]) *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.backend.Embedding(t.raw, indices.raw), backend: t.backend}
}

// Int32 casts the tensor to int32 elements.
func (t *Tensor[T, B]) Int32() *Tensor[int32, B] {
	return &Tensor[int32, B]{raw: t.backend.Cast(t.raw, Int32), backend: t.backend}
}

// Float32 casts the tensor to float32 elements.
func (t *Tensor[T, B]) Float32() *Tensor[float32, B] {
	return &Tensor[float32, B]{raw: t.backend.Cast(t.raw, Float32), backend: t.backend}
}

// Cat concatenates tensors along a dimension.
func Cat[T DType, B Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	if len(tensors) == 0 {
		panic("Cat: no tensors given")
	}
	raws := make([]*RawTensor, len(tensors))
	for i, t := range tensors {
		raws[i] = t.raw
	}
	b := tensors[0].backend
	return &Tensor[T, B]{raw: b.Cat(raws, dim), backend: b}
}

// Chunk splits a tensor into n equal parts along a dimension.
func (t *Tensor[T, B]) Chunk(n, dim int) []*Tensor[T, B] {
	raws := t.backend.Chunk(t.raw, n, dim)
	out := make([]*Tensor[T, B], len(raws))
	for i, raw := range raws {
		out[i] = &Tensor[T, B]{raw: raw, backend: t.backend}
	}
	return out
}
