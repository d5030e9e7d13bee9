package tensor

import "fmt"

// Shape represents tensor dimensions, e.g. Shape{2, 3} is a 2x3 matrix.
type Shape []int

// NumElements returns the total number of elements for this shape.
// The empty shape describes a scalar and has one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("dimension %d must be positive, got %d", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// ComputeStrides returns row-major strides for this shape.
//
// For Shape{2, 3, 4} the strides are [12, 4, 1]: moving one position
// along axis 0 skips 12 elements, along axis 2 just 1.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// BroadcastShapes computes the result shape of a broadcast binary operation
// following NumPy rules: trailing dimensions are aligned, and each pair must
// be equal or one of them must be 1.
//
// Returns the broadcast shape, whether any broadcasting is needed, and an
// error when the shapes are incompatible.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	result := make(Shape, maxLen)
	needed := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		dimA, dimB := 1, 1
		if i < len(a) {
			dimA = a[len(a)-1-i]
		}
		if i < len(b) {
			dimB = b[len(b)-1-i]
		}

		switch {
		case dimA == dimB:
			result[maxLen-1-i] = dimA
		case dimA == 1:
			result[maxLen-1-i] = dimB
			needed = true
		case dimB == 1:
			result[maxLen-1-i] = dimA
			needed = true
		default:
			return nil, false, fmt.Errorf(
				"shapes %v and %v are not broadcastable (axis %d: %d vs %d)",
				a, b, maxLen-1-i, dimA, dimB)
		}
	}
	return result, needed, nil
}
