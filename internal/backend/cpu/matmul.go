package cpu

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/parallel"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// MatMul computes the 2D matrix product a @ b.
//
// a must have shape [M, K] and b shape [K, N]. The result has shape
// [M, N]. Rows of the output are computed in parallel; the inner loops
// walk both operands row-major (ikj order) in column blocks sized to
// the L1 data cache, so the hot b-row segment stays resident.
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch: %s vs %s", a.DType(), b.DType()))
	}
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", a.Shape(), b.Shape()))
	}
	m, k := a.Shape()[0], a.Shape()[1]
	kb, n := b.Shape()[0], b.Shape()[1]
	if k != kb {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v @ %v", a.Shape(), b.Shape()))
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), c.device)
	switch a.DType() {
	case tensor.Float32:
		matmulRows(a.AsFloat32(), b.AsFloat32(), result.AsFloat32(), m, k, n, c.tileN, c.pcfg)
	case tensor.Float64:
		matmulRows(a.AsFloat64(), b.AsFloat64(), result.AsFloat64(), m, k, n, c.tileN, c.pcfg)
	default:
		panic(fmt.Sprintf("matmul: unsupported dtype %s", a.DType()))
	}
	return result
}

func matmulRows[T float32 | float64](a, b, dst []T, m, k, n, tileN int, cfg parallel.Config) {
	parallel.For(m, func(i int) {
		rowA := a[i*k : (i+1)*k]
		rowC := dst[i*n : (i+1)*n]
		for j0 := 0; j0 < n; j0 += tileN {
			j1 := j0 + tileN
			if j1 > n {
				j1 = n
			}
			for l := 0; l < k; l++ {
				av := rowA[l]
				if av == 0 {
					continue
				}
				rowB := b[l*n : (l+1)*n]
				for j := j0; j < j1; j++ {
					rowC[j] += av * rowB[j]
				}
			}
		}
	}, cfg)
}
