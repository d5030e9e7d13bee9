package rnn

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/tensor"
)

// scanDims validates that every required sequential input is present and
// returns the step and batch counts of the time-major input tensors.
func scanDims[B tensor.Backend](required []string, inputs Signals[B]) (steps, batch int) {
	if len(required) == 0 {
		panic("rnn: transition declares no sequential inputs")
	}
	for _, name := range required {
		if inputs[name] == nil {
			panic(fmt.Sprintf("rnn: missing sequential input %q", name))
		}
	}
	shape := inputs[required[0]].Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("rnn: sequential input %q must be [steps, batch, ...], got %v",
			required[0], shape))
	}
	return shape[0], shape[1]
}

// pickSignals copies the named subset of a signal bundle.
func pickSignals[B tensor.Backend](src Signals[B], names []string) Signals[B] {
	out := make(Signals[B], len(names))
	for _, name := range names {
		out[name] = src[name]
	}
	return out
}

// applyTransitionSequence is the shared scan loop behind
// Transition.ApplySequence: it records the state after each step.
func applyTransitionSequence[B tensor.Backend](t Transition[B], inputs Signals[B],
	mask *tensor.Tensor[float32, B]) Signals[B] {
	steps, batch := scanDims(t.SequentialInputNames(), inputs)
	states := t.InitialStates(batch)
	recorded := make(map[string][]*tensor.Tensor[float32, B], len(states))
	for step := 0; step < steps; step++ {
		stepInputs := make(Signals[B], len(inputs))
		for name, seq := range inputs {
			stepInputs[name] = timeStep(seq, step)
		}
		next := t.Step(stepInputs, states)
		if mask != nil {
			row := timeStep(mask, step)
			for name := range next {
				next[name] = maskBlend(next[name], states[name], row)
			}
		}
		states = next
		for _, name := range t.StateNames() {
			recorded[name] = append(recorded[name], states[name])
		}
	}
	out := make(Signals[B], len(recorded))
	for name, seq := range recorded {
		out[name] = stackSteps(seq)
	}
	return out
}

// generationScan is the shared scan loop behind
// AttentionTransition.ApplySequence. Each step records the incoming
// states before advancing them and the glimpses after computing them,
// so the recorded pairs line up with the readout that predicts the
// step's output. The state produced by the final step is dropped.
func generationScan[B tensor.Backend](t AttentionTransition[B], inputs Signals[B],
	mask *tensor.Tensor[float32, B], contexts Signals[B]) (Signals[B], Signals[B]) {
	contexts = t.Preprocess(contexts)
	steps, batch := scanDims(t.SequentialInputNames(), inputs)
	initial := t.InitialStates(batch, contexts)
	states := pickSignals(initial, t.StateNames())
	glimpses := pickSignals(initial, t.GlimpseNames())

	recStates := make(map[string][]*tensor.Tensor[float32, B], len(states))
	recGlimpses := make(map[string][]*tensor.Tensor[float32, B], len(glimpses))
	for step := 0; step < steps; step++ {
		for _, name := range t.StateNames() {
			recStates[name] = append(recStates[name], states[name])
		}
		stepInputs := make(Signals[B], len(inputs))
		for name, seq := range inputs {
			stepInputs[name] = timeStep(seq, step)
		}
		nextGlimpses := t.TakeGlimpses(states, glimpses, contexts)
		nextStates := t.ComputeStates(stepInputs, states, nextGlimpses, contexts)
		if mask != nil {
			row := timeStep(mask, step)
			for name := range nextStates {
				nextStates[name] = maskBlend(nextStates[name], states[name], row)
			}
			for name := range nextGlimpses {
				nextGlimpses[name] = maskBlend(nextGlimpses[name], glimpses[name], row)
			}
		}
		states, glimpses = nextStates, nextGlimpses
		for _, name := range t.GlimpseNames() {
			recGlimpses[name] = append(recGlimpses[name], glimpses[name])
		}
	}

	stateSeqs := make(Signals[B], len(recStates))
	for name, seq := range recStates {
		stateSeqs[name] = stackSteps(seq)
	}
	glimpseSeqs := make(Signals[B], len(recGlimpses))
	for name, seq := range recGlimpses {
		glimpseSeqs[name] = stackSteps(seq)
	}
	return stateSeqs, glimpseSeqs
}
