// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/bricks-ml/bricks/internal/backend/cpu"
	"github.com/bricks-ml/bricks/tensor"
)

// Backend is the CPU backend implementation.
//
// It provides pure Go kernels for all tensor operations, with matmul
// tiling and worker counts tuned to the running machine at construction.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/bricks-ml/bricks/backend/cpu"
//	    "github.com/bricks-ml/bricks/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
