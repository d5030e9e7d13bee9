// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package seqgen

import (
	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/seqgen"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Emitters

// Emitter turns readouts into outputs and costs.
type Emitter[B tensor.Backend] = seqgen.Emitter[B]

// CategoricalEmitter is an Emitter over a finite symbol vocabulary,
// able to report per-symbol candidate costs for beam search.
type CategoricalEmitter[B tensor.Backend] = seqgen.CategoricalEmitter[B]

// SoftmaxEmitter emits symbols from a softmax over the readouts.
type SoftmaxEmitter[B tensor.Backend] = seqgen.SoftmaxEmitter[B]

// SoftmaxOption configures a SoftmaxEmitter.
type SoftmaxOption = seqgen.SoftmaxOption

// WithInitialOutput sets the symbol fed back before the first real
// output, conventionally the beginning-of-sequence marker.
func WithInitialOutput(output int32) SoftmaxOption {
	return seqgen.WithInitialOutput(output)
}

// WithSeed fixes the emitter's sampling seed for reproducible draws.
func WithSeed(seed int64) SoftmaxOption {
	return seqgen.WithSeed(seed)
}

// NewSoftmaxEmitter creates a softmax emitter.
//
// Example:
//
//	backend := cpu.New()
//	emitter := seqgen.NewSoftmaxEmitter(backend, seqgen.WithSeed(1))
func NewSoftmaxEmitter[B tensor.Backend](backend B, opts ...SoftmaxOption) *SoftmaxEmitter[B] {
	return seqgen.NewSoftmaxEmitter(backend, opts...)
}

// TrivialEmitter emits the readouts themselves at zero cost. Useful as
// a placeholder and in tests.
type TrivialEmitter[B tensor.Backend] = seqgen.TrivialEmitter[B]

// NewTrivialEmitter creates a trivial emitter of the given readout
// dimension.
func NewTrivialEmitter[B tensor.Backend](readoutDim int, backend B) *TrivialEmitter[B] {
	return seqgen.NewTrivialEmitter(readoutDim, backend)
}

// Feedbacks

// Feedback embeds previous outputs for the next step.
type Feedback[B tensor.Backend] = seqgen.Feedback[B]

// TrivialFeedback feeds outputs back unchanged.
type TrivialFeedback[B tensor.Backend] = seqgen.TrivialFeedback[B]

// NewTrivialFeedback creates a pass-through feedback of the given
// output dimension.
func NewTrivialFeedback[B tensor.Backend](outputDim int, backend B) *TrivialFeedback[B] {
	return seqgen.NewTrivialFeedback(outputDim, backend)
}

// LookupFeedback embeds integer outputs through a lookup table. It
// requires a categorical emitter, since its input is a symbol index.
type LookupFeedback[B tensor.Backend] = seqgen.LookupFeedback[B]

// NewLookupFeedback creates a lookup feedback over numOutputs symbols.
func NewLookupFeedback[B tensor.Backend](numOutputs, feedbackDim int, backend B) *LookupFeedback[B] {
	return seqgen.NewLookupFeedback(numOutputs, feedbackDim, backend)
}

// Readout and fork

// Readout merges named source signals into readouts and owns the
// emitter and feedback.
type Readout[B tensor.Backend] = seqgen.Readout[B]

// NewReadout creates a readout merging the named sources.
//
// Example:
//
//	readout := seqgen.NewReadout(
//	    []string{"states", "weighted_averages", "feedback"}, vocabSize,
//	    seqgen.NewSoftmaxEmitter(backend), seqgen.NewLookupFeedback(vocabSize, dim, backend),
//	    backend)
func NewReadout[B tensor.Backend](sourceNames []string, readoutDim int,
	emitter Emitter[B], feedback Feedback[B], backend B) *Readout[B] {
	return seqgen.NewReadout(sourceNames, readoutDim, emitter, feedback, backend)
}

// Fork distributes the feedback into the transition's sequential
// inputs through per-input projections.
type Fork[B tensor.Backend] = seqgen.Fork[B]

// NewFork creates a fork producing the named outputs.
func NewFork[B tensor.Backend](outputNames []string, backend B) *Fork[B] {
	return seqgen.NewFork(outputNames, backend)
}

// Generator

// SequenceGenerator evaluates and generates output sequences
// autoregressively.
type SequenceGenerator[B tensor.Backend] = seqgen.SequenceGenerator[B]

// Option configures a SequenceGenerator.
type Option[B tensor.Backend] = seqgen.Option[B]

// WithAttention couples the transition with a content-based attention
// mechanism over an attended context sequence.
func WithAttention[B tensor.Backend](attention *rnn.SequenceContentAttention[B]) Option[B] {
	return seqgen.WithAttention[B](attention)
}

// New assembles a sequence generator from a readout and a transition.
// All dimension-dependent parameters are resolved before New returns.
//
// Example:
//
//	backend := cpu.New()
//	generator := seqgen.New(readout, rnn.NewSimpleRecurrent(100, backend), backend,
//	    seqgen.WithAttention[*cpu.Backend](attention))
func New[B tensor.Backend](readout *Readout[B], transition rnn.Transition[B],
	backend B, opts ...Option[B]) *SequenceGenerator[B] {
	return seqgen.New(readout, transition, backend, opts...)
}

// Evaluation bundles the tensors recorded while scoring a known
// output sequence: costs, states, glimpses and readouts by name.
type Evaluation[B tensor.Backend] = seqgen.Evaluation[B]

// StepResult bundles one generation step's outputs, costs and states.
type StepResult[B tensor.Backend] = seqgen.StepResult[B]

// GenerateResult bundles a full generated batch: outputs, per-step
// costs and the final recurrent states.
type GenerateResult[B tensor.Backend] = seqgen.GenerateResult[B]
