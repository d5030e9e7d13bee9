// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package seqgen provides the autoregressive sequence-generation framework
// of the Bricks ML toolkit.
//
// # Overview
//
// A SequenceGenerator ties four collaborators together:
//   - a recurrent transition advancing hidden states (package rnn)
//   - a Readout predicting from states and glimpses
//   - an Emitter turning readouts into outputs and costs
//   - a Feedback embedding previous outputs for the next step
//
// The generator evaluates the cost of known output sequences, generates
// new ones step by step, and exposes the per-step computers that beam
// search (package search) drives.
//
// # Basic Usage
//
//	import (
//	    "github.com/bricks-ml/bricks/backend/cpu"
//	    "github.com/bricks-ml/bricks/rnn"
//	    "github.com/bricks-ml/bricks/seqgen"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    vocab, feedbackDim, stateDim := 44, 64, 100
//
//	    readout := seqgen.NewReadout(
//	        []string{"states", "feedback"}, vocab,
//	        seqgen.NewSoftmaxEmitter(backend, seqgen.WithInitialOutput(42)),
//	        seqgen.NewLookupFeedback(vocab, feedbackDim, backend),
//	        backend)
//	    generator := seqgen.New(readout, rnn.NewSimpleRecurrent(stateDim, backend), backend)
//
//	    result := generator.Generate(2, 10, nil) // batch of 2, 10 steps
//	    _ = result.Outputs                       // [10, 2] int32 symbols
//	}
package seqgen
