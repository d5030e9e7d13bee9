// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package rnn provides recurrent transitions and attention for the Bricks
// ML toolkit.
//
// # Overview
//
// A Transition owns the recurrent state of a network: it declares the
// names and widths of its state and input signals, produces initial
// states, and advances one step at a time. SimpleRecurrent and
// GatedRecurrent are the stock transitions.
//
// A sequence generator does not consume a Transition directly. It works
// against the AttentionTransition interface, which presents a uniform
// (states, contexts, glimpses) view whether or not attention is in use:
//   - AttentionRecurrent couples a transition with SequenceContentAttention
//   - FakeAttentionRecurrent wraps a plain transition with no glimpses
//
// # Basic Usage
//
//	import (
//	    "github.com/bricks-ml/bricks/backend/cpu"
//	    "github.com/bricks-ml/bricks/rnn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    transition := rnn.NewSimpleRecurrent(100, backend)
//	    attention := rnn.NewSequenceContentAttention(30, 20, backend)
//	    wrapped := rnn.NewAttentionRecurrent(transition, attention, backend)
//	    wrapped.ResolveDimensions()
//	}
package rnn
