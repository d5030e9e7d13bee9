package rnn

import (
	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// FakeAttentionRecurrent presents a plain transition through the
// AttentionTransition interface with an empty glimpse set. It lets a
// sequence generator treat attention-free and attention-based
// transitions uniformly.
type FakeAttentionRecurrent[B tensor.Backend] struct {
	transition Transition[B]
}

// NewFakeAttentionRecurrent wraps a plain transition.
func NewFakeAttentionRecurrent[B tensor.Backend](transition Transition[B]) *FakeAttentionRecurrent[B] {
	return &FakeAttentionRecurrent[B]{transition: transition}
}

func (t *FakeAttentionRecurrent[B]) StateNames() []string { return t.transition.StateNames() }

func (t *FakeAttentionRecurrent[B]) GlimpseNames() []string { return nil }

func (t *FakeAttentionRecurrent[B]) SequentialInputNames() []string {
	return t.transition.SequentialInputNames()
}

func (t *FakeAttentionRecurrent[B]) ContextNames() []string { return nil }

func (t *FakeAttentionRecurrent[B]) Dim(name string) (int, bool) {
	return t.transition.Dim(name)
}

func (t *FakeAttentionRecurrent[B]) ResolveDimensions() {}

func (t *FakeAttentionRecurrent[B]) Preprocess(contexts Signals[B]) Signals[B] {
	return contexts
}

func (t *FakeAttentionRecurrent[B]) InitialStates(batchSize int, contexts Signals[B]) Signals[B] {
	return t.transition.InitialStates(batchSize)
}

func (t *FakeAttentionRecurrent[B]) TakeGlimpses(states, glimpses, contexts Signals[B]) Signals[B] {
	return Signals[B]{}
}

func (t *FakeAttentionRecurrent[B]) ComputeStates(inputs, states, glimpses, contexts Signals[B]) Signals[B] {
	return t.transition.Step(inputs, states)
}

func (t *FakeAttentionRecurrent[B]) ApplySequence(inputs Signals[B], mask *tensor.Tensor[float32, B],
	contexts Signals[B]) (Signals[B], Signals[B]) {
	return generationScan[B](t, inputs, mask, contexts)
}

func (t *FakeAttentionRecurrent[B]) Parameters() []*nn.Parameter[B] {
	return t.transition.Parameters()
}
