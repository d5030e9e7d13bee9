// Package seqgen implements an autoregressive sequence-generation
// framework.
//
// A SequenceGenerator ties four collaborators together: a recurrent
// transition advancing hidden states, a Readout predicting from states
// and glimpses, an Emitter turning readouts into outputs, and a
// Feedback embedding previous outputs for the next step. The generator
// evaluates the cost of known output sequences, generates new ones
// step by step, and exposes the per-step computers that beam search
// drives.
//
// Dimensions flow through the assembly at construction time: the
// transition dictates the widths of its states and inputs, the readout
// the widths of outputs, readouts and feedback, and every
// dimension-dependent projection is allocated from those in a single
// resolution pass.
package seqgen

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// SequenceGenerator generates output sequences with a recurrent
// transition and scores given ones.
type SequenceGenerator[B tensor.Backend] struct {
	readout    *Readout[B]
	transition rnn.AttentionTransition[B]
	fork       *Fork[B]
	backend    B
	resolved   bool
}

// Option configures a SequenceGenerator.
type Option[B tensor.Backend] func(*options[B])

type options[B tensor.Backend] struct {
	attention *rnn.SequenceContentAttention[B]
}

// WithAttention couples the transition with a content-based attention
// mechanism over an attended context sequence.
func WithAttention[B tensor.Backend](attention *rnn.SequenceContentAttention[B]) Option[B] {
	return func(o *options[B]) {
		o.attention = attention
	}
}

// New assembles a sequence generator from a readout and a plain
// transition. The transition is wrapped for the generator's uniform
// (states, contexts, glimpses) view: with an attention mechanism when
// one is given, with an empty glimpse set otherwise. All
// dimension-dependent parameters are resolved before New returns.
func New[B tensor.Backend](readout *Readout[B], transition rnn.Transition[B],
	backend B, opts ...Option[B]) *SequenceGenerator[B] {
	o := &options[B]{}
	for _, opt := range opts {
		opt(o)
	}

	var wrapped rnn.AttentionTransition[B]
	if o.attention != nil {
		wrapped = rnn.NewAttentionRecurrent(transition, o.attention, backend)
	} else {
		wrapped = rnn.NewFakeAttentionRecurrent[B](transition)
	}

	g := &SequenceGenerator[B]{
		readout:    readout,
		transition: wrapped,
		fork:       NewFork(transition.SequentialInputNames(), backend),
		backend:    backend,
	}
	g.ResolveDimensions()
	return g
}

// ResolveDimensions walks the assembly and allocates every
// dimension-dependent parameter: attention projections, readout merge
// projections and fork projections. Idempotent; running it again
// leaves the resolved dimensions unchanged.
func (g *SequenceGenerator[B]) ResolveDimensions() {
	if g.resolved {
		return
	}
	g.transition.ResolveDimensions()

	sourceDims := make(map[string]int, len(g.readout.SourceNames()))
	for _, name := range g.readout.SourceNames() {
		sourceDims[name] = g.Dim(name)
	}
	g.readout.resolve(sourceDims)

	forkDims := make(map[string]int, len(g.fork.OutputNames()))
	for _, name := range g.fork.OutputNames() {
		dim, ok := g.transition.Dim(name)
		if !ok {
			panic(fmt.Sprintf("seqgen: transition does not know the dimension of input %q", name))
		}
		forkDims[name] = dim
	}
	feedbackDim, _ := g.readout.Dim("feedback")
	g.fork.resolve(feedbackDim, forkDims)

	g.resolved = true
}

// Dim resolves the width of a named signal, asking the transition
// first and the readout second.
func (g *SequenceGenerator[B]) Dim(name string) int {
	if dim, ok := g.transition.Dim(name); ok {
		return dim
	}
	if dim, ok := g.readout.Dim(name); ok {
		return dim
	}
	panic(fmt.Sprintf("seqgen: unknown dimension %q", name))
}

// Evaluation bundles the per-step signals of a cost evaluation.
type Evaluation[B tensor.Backend] struct {
	// Costs holds one cost per step and batch row, zeroed where the
	// mask is zero.
	Costs *tensor.Tensor[float32, B]
	// States holds per state name the state the readout saw at each
	// step, starting with the initial state.
	States rnn.Signals[B]
	// Glimpses holds per glimpse name the glimpse taken at each step.
	Glimpses rnn.Signals[B]
	// Readouts holds the pre-emission readout vectors, [steps, batch,
	// readoutDim]. Training code derives readout-level gradients from
	// them.
	Readouts *tensor.Tensor[float32, B]
}

// Evaluate scores a known output sequence under the generator's
// distribution and returns the per-step costs together with the
// recorded states and glimpses.
//
// outputs is time-major: [steps, batch] for scalar symbols or [steps,
// batch, dim] for vector outputs. mask is [steps, batch] with zero
// rows carrying states unchanged past padding; nil means all steps are
// live. contexts supplies the attended sequence and its mask when the
// transition attends.
func (g *SequenceGenerator[B]) Evaluate(outputs *tensor.RawTensor,
	mask *tensor.Tensor[float32, B], contexts rnn.Signals[B]) *Evaluation[B] {
	shape := outputs.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("seqgen: outputs must be time-major [steps, batch, ...], got %v", shape))
	}
	steps, batch := shape[0], shape[1]

	// The readout at step t sees the feedback of output t-1; the first
	// step sees the feedback of the initial outputs.
	feedbackSeq := g.readout.Feedback(outputs)
	initialRow := g.readout.Feedback(g.readout.InitialOutputs(batch)).Unsqueeze(0)
	shifted := initialRow
	if steps > 1 {
		shifted = tensor.Cat([]*tensor.Tensor[float32, B]{
			initialRow, feedbackSeq.Slice(0, steps-1),
		}, 0)
	}

	inputs := g.fork.Apply(shifted)
	stateSeqs, glimpseSeqs := g.transition.ApplySequence(inputs, mask, contexts)

	sources := make(rnn.Signals[B], len(stateSeqs)+len(glimpseSeqs)+len(contexts)+1)
	for name, v := range contexts {
		sources[name] = v
	}
	for name, v := range stateSeqs {
		sources[name] = v
	}
	for name, v := range glimpseSeqs {
		sources[name] = v
	}
	sources["feedback"] = shifted

	readouts := g.readout.Readouts(sources)
	costs := g.readout.Cost(readouts, outputs)
	if mask != nil {
		costs = costs.Mul(mask)
	}
	return &Evaluation[B]{
		Costs:    costs,
		States:   stateSeqs,
		Glimpses: glimpseSeqs,
		Readouts: readouts,
	}
}

// CostMatrix returns the per-step costs of a known output sequence.
func (g *SequenceGenerator[B]) CostMatrix(outputs *tensor.RawTensor,
	mask *tensor.Tensor[float32, B], contexts rnn.Signals[B]) *tensor.Tensor[float32, B] {
	return g.Evaluate(outputs, mask, contexts).Costs
}

// Cost reduces the cost matrix to the mean total cost per sequence.
// The second value is the mean cost per live sequence element, the
// quantity usually monitored during training.
func (g *SequenceGenerator[B]) Cost(outputs *tensor.RawTensor,
	mask *tensor.Tensor[float32, B], contexts rnn.Signals[B]) (cost, perElement float32) {
	costs := g.CostMatrix(outputs, mask, contexts)
	cost = costs.SumDim(0, false).MeanDim(0, false).Raw().AsFloat32()[0]

	total := costs.Sum().Raw().AsFloat32()[0]
	if mask != nil {
		perElement = total / mask.Sum().Raw().AsFloat32()[0]
	} else {
		perElement = total / float32(costs.NumElements())
	}
	return cost, perElement
}

// StepResult holds the signals produced by one generation step.
type StepResult[B tensor.Backend] struct {
	States   rnn.Signals[B]
	Glimpses rnn.Signals[B]
	Outputs  *tensor.RawTensor
	Costs    *tensor.Tensor[float32, B]
}

// GenerateStep advances generation by one step: it takes fresh
// glimpses, reads out, emits an output, scores it and computes the
// next states from its feedback.
func (g *SequenceGenerator[B]) GenerateStep(contexts, states, glimpses rnn.Signals[B],
	outputs *tensor.RawTensor) *StepResult[B] {
	nextGlimpses := g.transition.TakeGlimpses(states, glimpses, contexts)
	readouts := g.readout.Readouts(g.stepSources(outputs, states, nextGlimpses, contexts))
	nextOutputs := g.readout.Emit(readouts)
	costs := g.readout.Cost(readouts, nextOutputs)
	inputs := g.fork.Apply(g.readout.Feedback(nextOutputs))
	nextStates := g.transition.ComputeStates(inputs, states, nextGlimpses, contexts)
	return &StepResult[B]{
		States:   nextStates,
		Glimpses: nextGlimpses,
		Outputs:  nextOutputs,
		Costs:    costs,
	}
}

// GenerateResult holds a generated batch of sequences.
type GenerateResult[B tensor.Backend] struct {
	// Outputs is time-major, [steps, batch] for scalar symbols.
	Outputs *tensor.RawTensor
	// Costs holds the cost of each emitted output.
	Costs *tensor.Tensor[float32, B]
	// States and Glimpses are the final step's values.
	States   rnn.Signals[B]
	Glimpses rnn.Signals[B]
}

// Generate samples a batch of sequences for a fixed number of steps.
func (g *SequenceGenerator[B]) Generate(batchSize, steps int, contexts rnn.Signals[B]) *GenerateResult[B] {
	if steps <= 0 {
		panic(fmt.Sprintf("seqgen: steps must be positive, got %d", steps))
	}
	contexts = g.transition.Preprocess(contexts)
	states, outputs := g.InitialStates(batchSize, contexts)
	glimpses := make(rnn.Signals[B], len(g.transition.GlimpseNames()))
	for _, name := range g.transition.GlimpseNames() {
		glimpses[name] = states[name]
		delete(states, name)
	}

	outputSteps := make([]*tensor.RawTensor, 0, steps)
	costSteps := make([]*tensor.Tensor[float32, B], 0, steps)
	for i := 0; i < steps; i++ {
		step := g.GenerateStep(contexts, states, glimpses, outputs)
		states, glimpses, outputs = step.States, step.Glimpses, step.Outputs
		outputSteps = append(outputSteps, outputs)
		costSteps = append(costSteps, step.Costs.Unsqueeze(0))
	}

	return &GenerateResult[B]{
		Outputs:  stackRaw(outputSteps),
		Costs:    tensor.Cat(costSteps, 0),
		States:   states,
		Glimpses: glimpses,
	}
}

// InitialStates builds the step-zero states and glimpses of the
// transition together with the initial outputs of the emitter.
func (g *SequenceGenerator[B]) InitialStates(batchSize int,
	contexts rnn.Signals[B]) (rnn.Signals[B], *tensor.RawTensor) {
	return g.transition.InitialStates(batchSize, contexts), g.readout.InitialOutputs(batchSize)
}

// TrackedStateNames lists the float state signals a search must carry
// between steps. Glimpses are excluded: they are recomputed from the
// states at every step and never consumed.
func (g *SequenceGenerator[B]) TrackedStateNames() []string {
	return g.transition.StateNames()
}

// PrepareContexts augments contexts with entries derived once per
// search, delegating to the transition.
func (g *SequenceGenerator[B]) PrepareContexts(contexts rnn.Signals[B]) rnn.Signals[B] {
	return g.transition.Preprocess(contexts)
}

// CandidateCosts scores every candidate next output given the previous
// outputs and the tracked states, as negative log probabilities shaped
// [batch, candidates]. It requires an emitter exposing probabilities.
func (g *SequenceGenerator[B]) CandidateCosts(contexts, states rnn.Signals[B],
	outputs *tensor.RawTensor) *tensor.Tensor[float32, B] {
	emitter, ok := g.readout.Emitter().(CategoricalEmitter[B])
	if !ok {
		panic("seqgen: scoring candidates requires an emitter exposing probabilities")
	}
	glimpses := g.transition.TakeGlimpses(states, nil, contexts)
	readouts := g.readout.Readouts(g.stepSources(outputs, states, glimpses, contexts))
	return emitter.Probs(readouts).Log().MulScalar(-1)
}

// NextStates advances the tracked states one step for the chosen
// outputs.
func (g *SequenceGenerator[B]) NextStates(contexts, states rnn.Signals[B],
	outputs *tensor.RawTensor) rnn.Signals[B] {
	glimpses := g.transition.TakeGlimpses(states, nil, contexts)
	inputs := g.fork.Apply(g.readout.Feedback(outputs))
	return g.transition.ComputeStates(inputs, states, glimpses, contexts)
}

// Readout returns the readout brick.
func (g *SequenceGenerator[B]) Readout() *Readout[B] { return g.readout }

// Transition returns the wrapped transition.
func (g *SequenceGenerator[B]) Transition() rnn.AttentionTransition[B] { return g.transition }

func (g *SequenceGenerator[B]) Parameters() []*nn.Parameter[B] {
	params := append([]*nn.Parameter[B](nil), g.readout.Parameters()...)
	params = append(params, g.transition.Parameters()...)
	params = append(params, g.fork.Parameters()...)
	return params
}

func (g *SequenceGenerator[B]) stepSources(outputs *tensor.RawTensor,
	states, glimpses, contexts rnn.Signals[B]) rnn.Signals[B] {
	sources := make(rnn.Signals[B], len(states)+len(glimpses)+len(contexts)+1)
	for name, v := range contexts {
		sources[name] = v
	}
	for name, v := range states {
		sources[name] = v
	}
	for name, v := range glimpses {
		sources[name] = v
	}
	sources["feedback"] = g.readout.Feedback(outputs)
	return sources
}

// stackRaw assembles per-step raw tensors into one time-major tensor.
func stackRaw(steps []*tensor.RawTensor) *tensor.RawTensor {
	shape := append(tensor.Shape{len(steps)}, steps[0].Shape()...)
	out := tensor.MustNewRaw(shape, steps[0].DType(), steps[0].Device())
	stride := steps[0].ByteSize()
	for i, s := range steps {
		copy(out.Data()[i*stride:(i+1)*stride], s.Data())
	}
	return out
}
