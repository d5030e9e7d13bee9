// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks for the Bricks ML toolkit.
//
// # Overview
//
// The blocks here are deliberately small:
//   - Module: the interface for components with a forward pass
//   - Parameter: a named trainable tensor with an attached gradient slot
//   - Linear: fully connected transformation, with or without bias
//   - Bias: a learnable additive offset
//   - Embedding: index-to-vector lookup table
//   - Tanh, Sigmoid: parameter-free activation modules
//   - Initializers: Xavier, isotropic Gaussian, constants
//
// Higher-level structures compose these blocks: recurrent transitions live
// in package rnn, readouts and sequence generators in package seqgen.
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
//	    backend := cpu.New()
//
//	    layer := nn.NewLinear(784, 128, backend)
//	    x := tensor.Randn[float32](tensor.Shape{32, 784}, backend)
//	    y := layer.Forward(x) // [32, 128]
//
//	    for _, p := range layer.Parameters() {
//	        _ = p.Name() // "weight", "bias"
//	    }
//	}
package nn
