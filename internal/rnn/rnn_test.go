package rnn_test

import (
	"math"
	"testing"

	"github.com/bricks-ml/bricks/internal/backend/cpu"
	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

func floatEqual(a, b, epsilon float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
}

func tensorsClose(t *testing.T, name string, got, want *tensor.Tensor[float32, *cpu.Backend], epsilon float32) {
	t.Helper()
	if !got.Shape().Equal(want.Shape()) {
		t.Fatalf("%s: shape = %v, want %v", name, got.Shape(), want.Shape())
	}
	g := got.Raw().AsFloat32()
	w := want.Raw().AsFloat32()
	for i := range g {
		if !floatEqual(g[i], w[i], epsilon) {
			t.Fatalf("%s: element %d = %f, want %f", name, i, g[i], w[i])
		}
	}
}

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

func zeroParameters(params ...*tensor.Tensor[float32, *cpu.Backend]) {
	for _, p := range params {
		data := p.Raw().AsFloat32()
		for i := range data {
			data[i] = 0
		}
	}
}

func TestSimpleRecurrentStep(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(2, backend)

	// Identity recurrent weight makes the step tanh(x + s).
	copy(transition.Parameters()[0].Tensor().Raw().AsFloat32(), []float32{1, 0, 0, 1})

	inputs := rnn.Signals[*cpu.Backend]{
		"inputs": tensor.MustFromSlice([]float32{0.5, 0.5}, tensor.Shape{1, 2}, backend),
	}
	states := rnn.Signals[*cpu.Backend]{
		"states": tensor.MustFromSlice([]float32{1, -1}, tensor.Shape{1, 2}, backend),
	}
	next := transition.Step(inputs, states)

	got := next["states"].Raw().AsFloat32()
	want := []float32{float32(math.Tanh(1.5)), float32(math.Tanh(-0.5))}
	for i := range want {
		if !floatEqual(got[i], want[i], 1e-6) {
			t.Errorf("states[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSimpleRecurrentMaskCarriesState(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(2, backend)
	zeroParameters(transition.Parameters()[0].Tensor())

	inputs := rnn.Signals[*cpu.Backend]{
		"inputs": tensor.MustFromSlice([]float32{
			0.2, -0.3, 0.8, 0.1,
			-0.5, 0.9, 0.4, 0.4,
		}, tensor.Shape{2, 2, 2}, backend),
	}
	mask := tensor.MustFromSlice([]float32{1, 1, 1, 0}, tensor.Shape{2, 2}, backend)

	states := transition.ApplySequence(inputs, mask)["states"]
	if !states.Shape().Equal(tensor.Shape{2, 2, 2}) {
		t.Fatalf("states shape = %v, want [2 2 2]", states.Shape())
	}

	// With zero recurrent weight each live step is tanh of its input.
	tanh := func(x float64) float32 { return float32(math.Tanh(x)) }
	got := states.Raw().AsFloat32()
	want := []float32{
		tanh(0.2), tanh(-0.3), tanh(0.8), tanh(0.1),
		tanh(-0.5), tanh(0.9), tanh(0.8), tanh(0.1),
	}
	for i := range want {
		if !floatEqual(got[i], want[i], 1e-6) {
			t.Errorf("element %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestSimpleRecurrentStepBulkEquivalence(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(3, backend)

	steps, batch := 4, 2
	data := make([]float32, steps*batch*3)
	for i := range data {
		data[i] = float32(i%7)*0.12 - 0.3
	}
	seq := tensor.MustFromSlice(data, tensor.Shape{steps, batch, 3}, backend)

	bulk := transition.ApplySequence(rnn.Signals[*cpu.Backend]{"inputs": seq}, nil)["states"]

	states := transition.InitialStates(batch)
	for step := 0; step < steps; step++ {
		stepInput := seq.Slice(step, step+1).Reshape(batch, 3)
		states = transition.Step(rnn.Signals[*cpu.Backend]{"inputs": stepInput}, states)
		recorded := bulk.Slice(step, step+1).Reshape(batch, 3)
		tensorsClose(t, "step", recorded, states["states"], 1e-6)
	}
}

func TestGatedRecurrentGates(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewGatedRecurrent(1, backend)

	var stateToState, stateToGates *tensor.Tensor[float32, *cpu.Backend]
	for _, p := range transition.Parameters() {
		switch p.Name() {
		case "state_to_state":
			stateToState = p.Tensor()
		case "state_to_gates":
			stateToGates = p.Tensor()
		}
	}
	zeroParameters(stateToGates)
	copy(stateToState.Raw().AsFloat32(), []float32{0.5})

	inputs := rnn.Signals[*cpu.Backend]{
		"inputs": tensor.MustFromSlice([]float32{0.7, 0.7}, tensor.Shape{2, 1}, backend),
		// Row 0 opens both gates, row 1 closes them.
		"gate_inputs": tensor.MustFromSlice([]float32{10, 10, -10, -10}, tensor.Shape{2, 2}, backend),
	}
	states := rnn.Signals[*cpu.Backend]{
		"states": tensor.MustFromSlice([]float32{0.3, 0.3}, tensor.Shape{2, 1}, backend),
	}
	next := transition.Step(inputs, states)["states"].Raw().AsFloat32()

	open := float32(math.Tanh(0.3*0.5 + 0.7))
	if !floatEqual(next[0], open, 1e-3) {
		t.Errorf("open gates: states = %f, want %f", next[0], open)
	}
	if !floatEqual(next[1], 0.3, 1e-3) {
		t.Errorf("closed gates: states = %f, want 0.3", next[1])
	}
}

func TestGatedRecurrentDims(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewGatedRecurrent(4, backend)

	if dim, ok := transition.Dim("gate_inputs"); !ok || dim != 8 {
		t.Errorf("Dim(gate_inputs) = %d, %v, want 8, true", dim, ok)
	}
	if _, ok := transition.Dim("mask"); ok {
		t.Error("Dim(mask) should not be known")
	}
	names := transition.SequentialInputNames()
	if len(names) != 2 || names[0] != "inputs" || names[1] != "gate_inputs" {
		t.Errorf("SequentialInputNames() = %v", names)
	}
}

func TestContentAttentionWeights(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(2, backend)
	attention := rnn.NewSequenceContentAttention(3, 2, backend)
	wrapper := rnn.NewAttentionRecurrent(transition, attention, backend)
	wrapper.ResolveDimensions()

	positions, batch := 3, 2
	attendedData := make([]float32, positions*batch*2)
	for i := range attendedData {
		attendedData[i] = float32(i)*0.25 - 0.6
	}
	contexts := rnn.Signals[*cpu.Backend]{
		rnn.AttendedName: tensor.MustFromSlice(attendedData, tensor.Shape{positions, batch, 2}, backend),
		rnn.AttendedMaskName: tensor.MustFromSlice([]float32{
			1, 0,
			1, 0,
			0, 0,
		}, tensor.Shape{positions, batch}, backend),
	}
	states := rnn.Signals[*cpu.Backend]{
		"states": tensor.Zeros[float32](tensor.Shape{batch, 2}, backend),
	}

	glimpses := wrapper.TakeGlimpses(states, nil, contexts)
	weights := glimpses["weights"]
	if !weights.Shape().Equal(tensor.Shape{batch, positions}) {
		t.Fatalf("weights shape = %v, want [%d %d]", weights.Shape(), batch, positions)
	}
	w := weights.Raw().AsFloat32()

	// Batch row 0 attends to the two unmasked positions only.
	sum := w[0] + w[1] + w[2]
	if !floatEqual(sum, 1, 1e-5) {
		t.Errorf("live row weights sum = %f, want 1", sum)
	}
	if w[0] <= 0 || w[1] <= 0 {
		t.Errorf("unmasked weights should be positive, got %f, %f", w[0], w[1])
	}
	if w[2] != 0 {
		t.Errorf("masked position weight = %f, want 0", w[2])
	}

	// Batch row 1 has an all-zero mask: weights must be zero, not NaN.
	for i := 3; i < 6; i++ {
		if w[i] != 0 {
			t.Errorf("fully masked row weight %d = %f, want 0", i-3, w[i])
		}
	}

	averages := glimpses["weighted_averages"]
	if !averages.Shape().Equal(tensor.Shape{batch, 2}) {
		t.Fatalf("weighted_averages shape = %v, want [%d 2]", averages.Shape(), batch)
	}
	a := averages.Raw().AsFloat32()
	for d := 0; d < 2; d++ {
		want := w[0]*attendedData[0*4+0*2+d] + w[1]*attendedData[1*4+0*2+d]
		if !floatEqual(a[d], want, 1e-5) {
			t.Errorf("weighted average dim %d = %f, want %f", d, a[d], want)
		}
	}
}

func TestContentAttentionUnresolvedPanics(t *testing.T) {
	backend := cpu.New()
	attention := rnn.NewSequenceContentAttention(3, 2, backend)
	attended := tensor.Zeros[float32](tensor.Shape{2, 1, 2}, backend)
	expectPanic(t, "preprocess before resolve", func() {
		attention.Preprocess(attended)
	})
}

func TestAttentionRecurrentInitialStates(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(2, backend)
	attention := rnn.NewSequenceContentAttention(3, 4, backend)
	wrapper := rnn.NewAttentionRecurrent(transition, attention, backend)
	wrapper.ResolveDimensions()

	contexts := rnn.Signals[*cpu.Backend]{
		rnn.AttendedName: tensor.Zeros[float32](tensor.Shape{5, 3, 4}, backend),
	}
	initial := wrapper.InitialStates(3, contexts)

	if !initial["states"].Shape().Equal(tensor.Shape{3, 2}) {
		t.Errorf("states shape = %v, want [3 2]", initial["states"].Shape())
	}
	if !initial["weighted_averages"].Shape().Equal(tensor.Shape{3, 4}) {
		t.Errorf("weighted_averages shape = %v, want [3 4]", initial["weighted_averages"].Shape())
	}
	if !initial["weights"].Shape().Equal(tensor.Shape{3, 5}) {
		t.Errorf("weights shape = %v, want [3 5]", initial["weights"].Shape())
	}
	for _, v := range initial["weights"].Raw().AsFloat32() {
		if v != 0 {
			t.Fatal("initial weights should be zero")
		}
	}

	expectPanic(t, "missing attended", func() {
		wrapper.InitialStates(3, rnn.Signals[*cpu.Backend]{})
	})
}

func TestAttentionRecurrentApplySequence(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(2, backend)
	attention := rnn.NewSequenceContentAttention(3, 2, backend)
	wrapper := rnn.NewAttentionRecurrent(transition, attention, backend)
	wrapper.ResolveDimensions()

	steps, batch, positions := 3, 2, 4
	inputData := make([]float32, steps*batch*2)
	for i := range inputData {
		inputData[i] = float32(i%5)*0.2 - 0.4
	}
	attendedData := make([]float32, positions*batch*2)
	for i := range attendedData {
		attendedData[i] = float32(i%3)*0.3 - 0.2
	}
	inputs := rnn.Signals[*cpu.Backend]{
		"inputs": tensor.MustFromSlice(inputData, tensor.Shape{steps, batch, 2}, backend),
	}
	contexts := rnn.Signals[*cpu.Backend]{
		rnn.AttendedName: tensor.MustFromSlice(attendedData, tensor.Shape{positions, batch, 2}, backend),
	}

	stateSeqs, glimpseSeqs := wrapper.ApplySequence(inputs, nil, contexts)
	states := stateSeqs["states"]
	if !states.Shape().Equal(tensor.Shape{steps, batch, 2}) {
		t.Fatalf("states shape = %v", states.Shape())
	}
	if !glimpseSeqs["weighted_averages"].Shape().Equal(tensor.Shape{steps, batch, 2}) {
		t.Fatalf("weighted_averages shape = %v", glimpseSeqs["weighted_averages"].Shape())
	}
	if !glimpseSeqs["weights"].Shape().Equal(tensor.Shape{steps, batch, positions}) {
		t.Fatalf("weights shape = %v", glimpseSeqs["weights"].Shape())
	}

	// Entry t holds the state before consuming input t, so the first
	// entry is the all-zero initial state.
	for _, v := range states.Slice(0, 1).Raw().AsFloat32() {
		if v != 0 {
			t.Fatal("first recorded state should be the initial state")
		}
	}

	// Replaying the step operations must reproduce the recorded values.
	preprocessed := wrapper.Preprocess(contexts)
	current := wrapper.InitialStates(batch, preprocessed)
	curStates := rnn.Signals[*cpu.Backend]{"states": current["states"]}
	curGlimpses := rnn.Signals[*cpu.Backend]{
		"weighted_averages": current["weighted_averages"],
		"weights":           current["weights"],
	}
	for step := 0; step < steps; step++ {
		recorded := states.Slice(step, step+1).Reshape(batch, 2)
		tensorsClose(t, "state", recorded, curStates["states"], 1e-6)

		stepInputs := rnn.Signals[*cpu.Backend]{
			"inputs": inputs["inputs"].Slice(step, step+1).Reshape(batch, 2),
		}
		curGlimpses = wrapper.TakeGlimpses(curStates, curGlimpses, preprocessed)
		curStates = wrapper.ComputeStates(stepInputs, curStates, curGlimpses, preprocessed)

		recordedGlimpse := glimpseSeqs["weighted_averages"].Slice(step, step+1).Reshape(batch, 2)
		tensorsClose(t, "glimpse", recordedGlimpse, curGlimpses["weighted_averages"], 1e-6)
	}
}

func TestAttentionRecurrentResolveIdempotent(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(2, backend)
	attention := rnn.NewSequenceContentAttention(3, 4, backend)
	wrapper := rnn.NewAttentionRecurrent(transition, attention, backend)

	wrapper.ResolveDimensions()
	first := wrapper.Parameters()
	wrapper.ResolveDimensions()
	second := wrapper.Parameters()

	if len(first) != len(second) {
		t.Fatalf("parameter count changed from %d to %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("parameter %d reallocated by second resolve", i)
		}
	}
}

func TestFakeAttentionPassthrough(t *testing.T) {
	backend := cpu.New()
	transition := rnn.NewSimpleRecurrent(2, backend)
	fake := rnn.NewFakeAttentionRecurrent[*cpu.Backend](transition)

	if len(fake.GlimpseNames()) != 0 {
		t.Errorf("GlimpseNames() = %v, want none", fake.GlimpseNames())
	}
	if len(fake.ContextNames()) != 0 {
		t.Errorf("ContextNames() = %v, want none", fake.ContextNames())
	}
	if dim, ok := fake.Dim("states"); !ok || dim != 2 {
		t.Errorf("Dim(states) = %d, %v", dim, ok)
	}

	glimpses := fake.TakeGlimpses(nil, nil, nil)
	if len(glimpses) != 0 {
		t.Errorf("TakeGlimpses() = %v, want empty", glimpses)
	}

	inputs := rnn.Signals[*cpu.Backend]{
		"inputs": tensor.MustFromSlice([]float32{0.4, -0.2}, tensor.Shape{1, 2}, backend),
	}
	states := fake.InitialStates(1, nil)
	viaFake := fake.ComputeStates(inputs, states, nil, nil)
	direct := transition.Step(inputs, states)
	tensorsClose(t, "passthrough step", viaFake["states"], direct["states"], 1e-9)

	seq := rnn.Signals[*cpu.Backend]{
		"inputs": tensor.MustFromSlice([]float32{0.4, -0.2, 0.1, 0.9}, tensor.Shape{2, 1, 2}, backend),
	}
	stateSeqs, glimpseSeqs := fake.ApplySequence(seq, nil, nil)
	if len(glimpseSeqs) != 0 {
		t.Errorf("glimpse sequences = %v, want empty", glimpseSeqs)
	}
	if !stateSeqs["states"].Shape().Equal(tensor.Shape{2, 1, 2}) {
		t.Fatalf("states shape = %v", stateSeqs["states"].Shape())
	}
	// First entry is the initial state.
	for _, v := range stateSeqs["states"].Slice(0, 1).Raw().AsFloat32() {
		if v != 0 {
			t.Fatal("first recorded state should be the initial state")
		}
	}
}
