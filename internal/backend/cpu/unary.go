package cpu

import (
	"fmt"
	"math"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// Exp applies e^x element-wise.
func (c *Backend) Exp(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("exp", t, math.Exp)
}

// Log applies the natural logarithm element-wise.
func (c *Backend) Log(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("log", t, math.Log)
}

// Sqrt applies the square root element-wise.
func (c *Backend) Sqrt(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("sqrt", t, math.Sqrt)
}

// Tanh applies the hyperbolic tangent element-wise.
func (c *Backend) Tanh(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("tanh", t, math.Tanh)
}

// Sigmoid applies the logistic function element-wise.
func (c *Backend) Sigmoid(t *tensor.RawTensor) *tensor.RawTensor {
	return c.unary("sigmoid", t, func(x float64) float64 {
		return 1.0 / (1.0 + math.Exp(-x))
	})
}

// unary runs a float math kernel with dtype dispatch.
func (c *Backend) unary(name string, t *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(t.Shape(), t.DType(), c.device)
	switch t.DType() {
	case tensor.Float32:
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(f(float64(v)))
		}
	case tensor.Float64:
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f(v)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, t.DType()))
	}
	return result
}

// AddScalar returns t + scalar.
func (c *Backend) AddScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("add_scalar", t, scalar,
		func(x, s float32) float32 { return x + s },
		func(x, s float64) float64 { return x + s },
		func(x, s int32) int32 { return x + s },
		func(x, s int64) int64 { return x + s })
}

// MulScalar returns t * scalar.
func (c *Backend) MulScalar(t *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return c.scalarOp("mul_scalar", t, scalar,
		func(x, s float32) float32 { return x * s },
		func(x, s float64) float64 { return x * s },
		func(x, s int32) int32 { return x * s },
		func(x, s int64) int64 { return x * s })
}

func (c *Backend) scalarOp(name string, t *tensor.RawTensor, scalar any,
	f32 func(float32, float32) float32,
	f64 func(float64, float64) float64,
	i32 func(int32, int32) int32,
	i64 func(int64, int64) int64,
) *tensor.RawTensor {
	result := tensor.MustNewRaw(t.Shape(), t.DType(), c.device)
	switch t.DType() {
	case tensor.Float32:
		s := float32(scalarToFloat(name, scalar))
		src, dst := t.AsFloat32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = f32(v, s)
		}
	case tensor.Float64:
		s := scalarToFloat(name, scalar)
		src, dst := t.AsFloat64(), result.AsFloat64()
		for i, v := range src {
			dst[i] = f64(v, s)
		}
	case tensor.Int32:
		s := int32(scalarToInt(name, scalar))
		src, dst := t.AsInt32(), result.AsInt32()
		for i, v := range src {
			dst[i] = i32(v, s)
		}
	case tensor.Int64:
		s := scalarToInt(name, scalar)
		src, dst := t.AsInt64(), result.AsInt64()
		for i, v := range src {
			dst[i] = i64(v, s)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", name, t.DType()))
	}
	return result
}

func scalarToFloat(name string, scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	case int32:
		return float64(s)
	case int64:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}

func scalarToInt(name string, scalar any) int64 {
	switch s := scalar.(type) {
	case int:
		return int64(s)
	case int32:
		return int64(s)
	case int64:
		return s
	case float32:
		return int64(s)
	case float64:
		return int64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", name, scalar))
	}
}

// Cast converts a tensor to a different data type.
func (c *Backend) Cast(t *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if t.DType() == dtype {
		return t.Clone()
	}
	result := tensor.MustNewRaw(t.Shape(), dtype, c.device)

	// Read through float64: exact for every supported integer width in use.
	src := make([]float64, t.NumElements())
	switch t.DType() {
	case tensor.Float32:
		for i, v := range t.AsFloat32() {
			src[i] = float64(v)
		}
	case tensor.Float64:
		copy(src, t.AsFloat64())
	case tensor.Int32:
		for i, v := range t.AsInt32() {
			src[i] = float64(v)
		}
	case tensor.Int64:
		for i, v := range t.AsInt64() {
			src[i] = float64(v)
		}
	case tensor.Uint8:
		for i, v := range t.AsUint8() {
			src[i] = float64(v)
		}
	case tensor.Bool:
		for i, v := range t.AsBool() {
			if v {
				src[i] = 1
			}
		}
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", t.DType()))
	}

	switch dtype {
	case tensor.Float32:
		dst := result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(result.AsFloat64(), src)
	case tensor.Int32:
		dst := result.AsInt32()
		for i, v := range src {
			dst[i] = int32(v)
		}
	case tensor.Int64:
		dst := result.AsInt64()
		for i, v := range src {
			dst[i] = int64(v)
		}
	case tensor.Uint8:
		dst := result.AsUint8()
		for i, v := range src {
			dst[i] = uint8(v)
		}
	case tensor.Bool:
		dst := result.AsBool()
		for i, v := range src {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", dtype))
	}
	return result
}
