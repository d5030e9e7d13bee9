// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for the Bricks ML toolkit.
//
// # Overview
//
// Tensors are the fundamental data structure in Bricks. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - Device abstraction
//   - The Backend interface every compute implementation satisfies
//
// # Basic Usage
//
//	import (
//	    "github.com/bricks-ml/bricks/backend/cpu"
//	    "github.com/bricks-ml/bricks/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Create tensors
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    // Tensor operations
//	    z := x.Add(y)
//	    result := x.MatMul(y.Transpose())
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point)
//   - int32, int64 (signed integers; int32 carries symbol indices in sequence generation)
//   - uint8 (unsigned integers)
//   - bool (boolean masks)
//
// # Broadcasting
//
// Element-wise binary operations follow NumPy broadcasting rules: shapes align
// from the trailing dimension and size-one dimensions stretch to match.
// Incompatible shapes panic. Shape and dtype mismatches are programmer errors,
// not recoverable runtime conditions.
package tensor
