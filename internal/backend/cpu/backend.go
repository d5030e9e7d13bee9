// Package cpu implements the pure-Go CPU backend.
//
// Kernels are written against flat typed slices obtained from RawTensor
// buffers. Large loops are chunked across goroutines via internal/parallel;
// tile sizes for the matmul kernel are derived from the cache topology
// reported by the cpuid package.
package cpu

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"

	"github.com/bricks-ml/bricks/internal/parallel"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Backend implements tensor.Backend on the host CPU.
type Backend struct {
	device tensor.Device
	pcfg   parallel.Config
	tileN  int // matmul column tile, sized to the L1 data cache
}

// New creates a CPU backend tuned to the running machine.
func New() *Backend {
	pcfg := parallel.DefaultConfig()
	if n := cpuid.CPU.LogicalCores; n > 0 {
		pcfg.NumWorkers = n
		pcfg.Enabled = n > 1
	}

	l1 := cpuid.CPU.Cache.L1D
	if l1 <= 0 {
		l1 = 32 * 1024
	}
	// Keep one output tile and one operand row chunk resident in L1.
	tileN := l1 / 16
	if tileN < 256 {
		tileN = 256
	}
	if tileN > 4096 {
		tileN = 4096
	}

	return &Backend{
		device: tensor.CPU,
		pcfg:   pcfg,
		tileN:  tileN,
	}
}

// Name returns the backend name.
func (c *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *Backend) Device() tensor.Device {
	return c.device
}

// number covers the dtypes arithmetic kernels operate on.
type number interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y },
		func(x, y int32) int32 { return x + y },
		func(x, y int64) int64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y },
		func(x, y int32) int32 { return x - y },
		func(x, y int64) int64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y },
		func(x, y int32) int32 { return x * y },
		func(x, y int64) int64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binary("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y },
		func(x, y int32) int32 { return x / y },
		func(x, y int64) int64 { return x / y })
}

// binary runs a broadcasting binary kernel with dtype dispatch.
func (c *Backend) binary(name string, a, b *tensor.RawTensor,
	f32 func(float32, float32) float32,
	f64 func(float64, float64) float64,
	i32 func(int32, int32) int32,
	i64 func(int64, int64) int64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	result := tensor.MustNewRaw(outShape, a.DType(), c.device)

	switch a.DType() {
	case tensor.Float32:
		broadcastLoop(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, f32)
	case tensor.Float64:
		broadcastLoop(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, f64)
	case tensor.Int32:
		broadcastLoop(result.AsInt32(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, i32)
	case tensor.Int64:
		broadcastLoop(result.AsInt64(), a.AsInt64(), b.AsInt64(), a.Shape(), b.Shape(), outShape, i64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return result
}

// Equal compares element-wise, returning a Bool tensor.
func (c *Backend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.compare("equal", a, b,
		func(x, y float32) bool { return x == y },
		func(x, y int32) bool { return x == y })
}

// NotEqual compares element-wise, returning a Bool tensor.
func (c *Backend) NotEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.compare("not_equal", a, b,
		func(x, y float32) bool { return x != y },
		func(x, y int32) bool { return x != y })
}

func (c *Backend) compare(name string, a, b *tensor.RawTensor,
	f32 func(float32, float32) bool,
	i32 func(int32, int32) bool,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}
	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	result := tensor.MustNewRaw(outShape, tensor.Bool, c.device)

	switch a.DType() {
	case tensor.Float32:
		broadcastLoop(result.AsBool(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, f32)
	case tensor.Int32:
		broadcastLoop(result.AsBool(), a.AsInt32(), b.AsInt32(), a.Shape(), b.Shape(), outShape, i32)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, a.DType()))
	}
	return result
}

// broadcastLoop applies f over broadcast-aligned operands into dst.
func broadcastLoop[T number, R any](dst []R, a, b []T, aShape, bShape, outShape tensor.Shape, f func(T, T) R) {
	if aShape.Equal(bShape) {
		for i := range dst {
			dst[i] = f(a[i], b[i])
		}
		return
	}

	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)
	outStrides := outShape.ComputeStrides()

	n := outShape.NumElements()
	for i := 0; i < n; i++ {
		ai, bi, rem := 0, 0, i
		for d := 0; d < len(outShape); d++ {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			ai += idx * aStrides[d]
			bi += idx * bStrides[d]
		}
		dst[i] = f(a[ai], b[bi])
	}
}

// broadcastStrides aligns a shape's strides to the output rank, zeroing
// strides on broadcast (size-1 or missing) axes.
func broadcastStrides(shape, out tensor.Shape) []int {
	strides := make([]int, len(out))
	src := shape.ComputeStrides()
	offset := len(out) - len(shape)
	for d := range out {
		if d < offset {
			continue
		}
		if shape[d-offset] == 1 && out[d] != 1 {
			continue
		}
		strides[d] = src[d-offset]
	}
	return strides
}
