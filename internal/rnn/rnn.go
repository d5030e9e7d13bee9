// Package rnn implements recurrent transitions and attention for the
// Bricks sequence-generation toolkit.
//
// A Transition owns the recurrent state of a network: it declares the
// names and widths of its state and input signals, produces initial
// states, and advances one step at a time. SimpleRecurrent and
// GatedRecurrent are the stock transitions.
//
// A sequence generator does not consume a Transition directly. It works
// against the AttentionTransition interface, which presents a uniform
// (states, contexts, glimpses) view whether or not attention is in use:
// AttentionRecurrent couples a transition with a content-based attention
// mechanism, while FakeAttentionRecurrent wraps a plain transition with
// an empty glimpse set.
package rnn

import (
	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Signals is a named bundle of float tensors flowing through a
// transition: states, per-step inputs, contexts or glimpses.
type Signals[B tensor.Backend] map[string]*tensor.Tensor[float32, B]

// Transition is the recurrent state-update contract.
//
// All state and input tensors are [batch, dim]. Bulk application over a
// sequence uses time-major [steps, batch, dim] tensors.
type Transition[B tensor.Backend] interface {
	// StateNames lists the recurrent state signals.
	StateNames() []string

	// SequentialInputNames lists the per-step input signals the
	// transition consumes, mask excluded.
	SequentialInputNames() []string

	// Dim reports the width of a named signal, with ok=false for
	// names the transition does not own.
	Dim(name string) (int, bool)

	// InitialStates builds the step-zero states for a batch.
	InitialStates(batchSize int) Signals[B]

	// Step advances one time step, returning the next states.
	Step(inputs, states Signals[B]) Signals[B]

	// ApplySequence runs the transition over [steps, batch, dim]
	// inputs, starting from the initial states. Entry t of each
	// returned state sequence is the state after consuming input t.
	// Rows where the mask is zero carry the previous state forward;
	// a nil mask means all steps are live.
	ApplySequence(inputs Signals[B], mask *tensor.Tensor[float32, B]) Signals[B]

	// Parameters returns the trainable parameters.
	Parameters() []*nn.Parameter[B]
}

// AttentionTransition is the transition interface a sequence generator
// works against: a recurrent core plus a glimpse computation, with
// read-only contexts threaded through every operation.
type AttentionTransition[B tensor.Backend] interface {
	StateNames() []string
	GlimpseNames() []string
	SequentialInputNames() []string
	ContextNames() []string

	// Dim reports the width of any state, glimpse, context or input
	// signal owned by the wrapper or its inner transition.
	Dim(name string) (int, bool)

	// ResolveDimensions allocates any dimension-dependent parameters
	// (attention projections). Idempotent.
	ResolveDimensions()

	// Preprocess augments contexts with entries that are derived from
	// them once per sequence, such as the preprocessed attended.
	// Operations that need such entries compute them on the fly when
	// absent, so calling Preprocess is an optimization, not a duty.
	Preprocess(contexts Signals[B]) Signals[B]

	// InitialStates builds step-zero states and glimpses for a batch.
	InitialStates(batchSize int, contexts Signals[B]) Signals[B]

	// TakeGlimpses computes this step's glimpses from the previous
	// step's states and glimpses and the contexts.
	TakeGlimpses(states, glimpses, contexts Signals[B]) Signals[B]

	// ComputeStates advances the inner transition one step. The
	// glimpses are the ones TakeGlimpses produced for this step.
	ComputeStates(inputs, states, glimpses, contexts Signals[B]) Signals[B]

	// ApplySequence runs the generation recurrence over a whole
	// sequence of [steps, batch, dim] inputs. Entry t of each returned
	// state sequence is the state BEFORE consuming input t, and entry
	// t of each glimpse sequence is the glimpse computed AT step t.
	// The state after the final step is discarded: no output is
	// predicted from it. This discard is part of the contract, so a
	// transition must not rely on observing its final state here.
	ApplySequence(inputs Signals[B], mask *tensor.Tensor[float32, B],
		contexts Signals[B]) (states, glimpses Signals[B])

	Parameters() []*nn.Parameter[B]
}

// timeStep extracts the t-th step of a time-major sequence tensor,
// dropping the leading axis.
func timeStep[B tensor.Backend](seq *tensor.Tensor[float32, B], t int) *tensor.Tensor[float32, B] {
	rest := seq.Shape()[1:]
	return seq.Slice(t, t+1).Reshape(rest...)
}

// stackSteps assembles per-step tensors into one time-major tensor.
func stackSteps[B tensor.Backend](steps []*tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	rows := make([]*tensor.Tensor[float32, B], len(steps))
	for i, s := range steps {
		rows[i] = s.Unsqueeze(0)
	}
	return tensor.Cat(rows, 0)
}

// maskBlend returns mask*next + (1-mask)*prev, with the [batch] mask row
// broadcast across the trailing dimensions of the signals.
func maskBlend[B tensor.Backend](next, prev, maskRow *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	batch := maskRow.NumElements()
	cols := make([]int, len(next.Shape()))
	cols[0] = batch
	for i := 1; i < len(cols); i++ {
		cols[i] = 1
	}
	m := maskRow.Reshape(cols...)
	keep := tensor.Ones[float32](m.Shape(), next.Backend()).Sub(m)
	return next.Mul(m).Add(prev.Mul(keep))
}
