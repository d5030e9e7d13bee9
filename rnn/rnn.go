// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package rnn

import (
	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Signals is a named bundle of float tensors flowing through a
// transition: states, per-step inputs, contexts or glimpses.
type Signals[B tensor.Backend] = rnn.Signals[B]

// Transition is the recurrent state-update contract. All state and
// input tensors are [batch, dim]; bulk application over a sequence uses
// time-major [steps, batch, dim] tensors.
type Transition[B tensor.Backend] = rnn.Transition[B]

// AttentionTransition is the transition interface a sequence generator
// works against: a recurrent core plus a glimpse computation, with
// read-only contexts threaded through every operation.
type AttentionTransition[B tensor.Backend] = rnn.AttentionTransition[B]

// Context names used by attention wrappers.
const (
	AttendedName             = rnn.AttendedName
	AttendedMaskName         = rnn.AttendedMaskName
	PreprocessedAttendedName = rnn.PreprocessedAttendedName
)

// Transitions

// SimpleRecurrent is a plain tanh recurrent transition with a single
// "states" signal.
type SimpleRecurrent[B tensor.Backend] = rnn.SimpleRecurrent[B]

// NewSimpleRecurrent creates a simple recurrent transition of the given
// state dimension.
//
// Example:
//
//	backend := cpu.New()
//	transition := rnn.NewSimpleRecurrent(100, backend)
func NewSimpleRecurrent[B tensor.Backend](dim int, backend B) *SimpleRecurrent[B] {
	return rnn.NewSimpleRecurrent(dim, backend)
}

// GatedRecurrent is a GRU-style transition with update and reset gates.
type GatedRecurrent[B tensor.Backend] = rnn.GatedRecurrent[B]

// NewGatedRecurrent creates a gated recurrent transition of the given
// state dimension.
func NewGatedRecurrent[B tensor.Backend](dim int, backend B) *GatedRecurrent[B] {
	return rnn.NewGatedRecurrent(dim, backend)
}

// Attention

// SequenceContentAttention is content-based attention over a variable
// length attended sequence, producing weighted averages and weights as
// glimpses.
type SequenceContentAttention[B tensor.Backend] = rnn.SequenceContentAttention[B]

// NewSequenceContentAttention creates an attention mechanism matching
// states against attendedDim-wide vectors in a matchDim-wide space.
//
// Example:
//
//	backend := cpu.New()
//	attention := rnn.NewSequenceContentAttention(30, 20, backend)
func NewSequenceContentAttention[B tensor.Backend](matchDim, attendedDim int, backend B) *SequenceContentAttention[B] {
	return rnn.NewSequenceContentAttention(matchDim, attendedDim, backend)
}

// AttentionRecurrent couples a transition with an attention mechanism,
// distributing each step's weighted averages into the transition inputs.
type AttentionRecurrent[B tensor.Backend] = rnn.AttentionRecurrent[B]

// NewAttentionRecurrent wraps a transition with an attention mechanism.
// ResolveDimensions must run before the wrapper is applied.
func NewAttentionRecurrent[B tensor.Backend](transition Transition[B],
	attention *SequenceContentAttention[B], backend B) *AttentionRecurrent[B] {
	return rnn.NewAttentionRecurrent(transition, attention, backend)
}

// FakeAttentionRecurrent wraps a plain transition with an empty glimpse
// set, so generators run against one interface whether or not attention
// is in use.
type FakeAttentionRecurrent[B tensor.Backend] = rnn.FakeAttentionRecurrent[B]

// NewFakeAttentionRecurrent wraps a transition without attention.
func NewFakeAttentionRecurrent[B tensor.Backend](transition Transition[B]) *FakeAttentionRecurrent[B] {
	return rnn.NewFakeAttentionRecurrent(transition)
}
