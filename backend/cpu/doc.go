// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Cache-aware matmul tiling derived from the CPU topology
//   - Batch parallelism across goroutines
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/bricks-ml/bricks/backend/cpu"
//	    "github.com/bricks-ml/bricks/nn"
//	    "github.com/bricks-ml/bricks/tensor"
//	)
//
//	func main() {
//	    // Create CPU backend
//	    backend := cpu.New()
//
//	    // Use with tensors
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//
//	    // Use with neural networks
//	    layer := nn.NewLinear(784, 10, backend)
//	}
package cpu
