package seqgen_test

import (
	"math"
	"testing"

	"github.com/bricks-ml/bricks/internal/backend/cpu"
	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/seqgen"
	"github.com/bricks-ml/bricks/internal/tensor"
)

func floatEqual(a, b, epsilon float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < epsilon
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

// newSymbolGenerator assembles the stock categorical generator used
// throughout these tests: a softmax emitter over vocab symbols, a
// lookup feedback and a simple recurrent transition.
func newSymbolGenerator(vocab, feedbackDim, stateDim int, backend *cpu.Backend) *seqgen.SequenceGenerator[*cpu.Backend] {
	readout := seqgen.NewReadout([]string{"states", "feedback"}, vocab,
		seqgen.NewSoftmaxEmitter(backend, seqgen.WithSeed(7)),
		seqgen.NewLookupFeedback(vocab, feedbackDim, backend),
		backend)
	return seqgen.New(readout, rnn.NewSimpleRecurrent(stateDim, backend), backend)
}

// newAttentionSymbolGenerator is the attentive variant: the readout
// additionally consumes the weighted averages glimpse.
func newAttentionSymbolGenerator(vocab, feedbackDim, stateDim, matchDim, attendedDim int,
	backend *cpu.Backend) *seqgen.SequenceGenerator[*cpu.Backend] {
	readout := seqgen.NewReadout([]string{"states", "weighted_averages", "feedback"}, vocab,
		seqgen.NewSoftmaxEmitter(backend, seqgen.WithSeed(7)),
		seqgen.NewLookupFeedback(vocab, feedbackDim, backend),
		backend)
	attention := rnn.NewSequenceContentAttention(matchDim, attendedDim, backend)
	return seqgen.New(readout, rnn.NewSimpleRecurrent(stateDim, backend), backend,
		seqgen.WithAttention[*cpu.Backend](attention))
}

func TestTrivialEmitterZeroCost(t *testing.T) {
	backend := cpu.New()
	dim := 3
	readout := seqgen.NewReadout([]string{"states", "feedback"}, dim,
		seqgen.NewTrivialEmitter(dim, backend),
		seqgen.NewTrivialFeedback(dim, backend),
		backend)
	gen := seqgen.New(readout, rnn.NewSimpleRecurrent(dim, backend), backend)

	steps, batch := 4, 2
	outputs := tensor.Zeros[float32](tensor.Shape{steps, batch, dim}, backend).Raw()
	costs := gen.CostMatrix(outputs, nil, nil)

	if !costs.Shape().Equal(tensor.Shape{steps, batch}) {
		t.Fatalf("cost matrix shape = %v, want [%d %d]", costs.Shape(), steps, batch)
	}
	for i, c := range costs.Raw().AsFloat32() {
		if c != 0 {
			t.Fatalf("cost %d = %f, want 0", i, c)
		}
	}

	cost, perElement := gen.Cost(outputs, nil, nil)
	if cost != 0 || perElement != 0 {
		t.Errorf("Cost() = %f, %f, want 0, 0", cost, perElement)
	}
}

func TestSoftmaxEmitterProbsAndCost(t *testing.T) {
	backend := cpu.New()
	emitter := seqgen.NewSoftmaxEmitter(backend, seqgen.WithSeed(1))

	readouts := tensor.MustFromSlice([]float32{
		1, 2, 3,
		0, 0, 0,
	}, tensor.Shape{2, 3}, backend)

	probs := emitter.Probs(readouts).Raw().AsFloat32()
	for row := 0; row < 2; row++ {
		sum := float32(0)
		for v := 0; v < 3; v++ {
			sum += probs[row*3+v]
		}
		if !floatEqual(sum, 1, 1e-5) {
			t.Errorf("row %d probabilities sum to %f", row, sum)
		}
	}
	if !floatEqual(probs[3], 1.0/3.0, 1e-5) {
		t.Errorf("uniform row probability = %f, want 1/3", probs[3])
	}

	outputs := tensor.MustFromSlice([]int32{2, 0}, tensor.Shape{2}, backend).Raw()
	costs := emitter.Cost(readouts, outputs).Raw().AsFloat32()

	logSumExp := math.Log(math.Exp(1) + math.Exp(2) + math.Exp(3))
	if !floatEqual(costs[0], float32(logSumExp-3), 1e-5) {
		t.Errorf("cost of symbol 2 = %f, want %f", costs[0], logSumExp-3)
	}
	if !floatEqual(costs[1], float32(math.Log(3)), 1e-5) {
		t.Errorf("cost under uniform row = %f, want ln 3", costs[1])
	}
}

func TestSoftmaxEmitterEmit(t *testing.T) {
	backend := cpu.New()
	emitter := seqgen.NewSoftmaxEmitter(backend,
		seqgen.WithSeed(3), seqgen.WithInitialOutput(5))

	// A sharply peaked distribution draws the peak regardless of seed.
	readouts := tensor.MustFromSlice([]float32{
		0, 100, 0,
		100, 0, 0,
	}, tensor.Shape{2, 3}, backend)
	emitted := emitter.Emit(readouts)
	if !emitted.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("emitted shape = %v, want [2]", emitted.Shape())
	}
	ids := emitted.AsInt32()
	if ids[0] != 1 || ids[1] != 0 {
		t.Errorf("emitted = %v, want [1 0]", ids)
	}

	initial := emitter.InitialOutputs(3)
	for _, id := range initial.AsInt32() {
		if id != 5 {
			t.Fatalf("initial output = %d, want 5", id)
		}
	}
	if emitter.OutputDim() != 0 {
		t.Errorf("OutputDim() = %d, want 0", emitter.OutputDim())
	}
}

func TestLookupFeedback(t *testing.T) {
	backend := cpu.New()
	feedback := seqgen.NewLookupFeedback(4, 2, backend)

	if feedback.Dim() != 2 {
		t.Errorf("Dim() = %d, want 2", feedback.Dim())
	}
	table := feedback.Parameters()[0].Tensor()
	copy(table.Raw().AsFloat32(), []float32{
		0, 1,
		2, 3,
		4, 5,
		6, 7,
	})

	outputs := tensor.MustFromSlice([]int32{3, 1}, tensor.Shape{2}, backend).Raw()
	got := feedback.Feedback(outputs).Raw().AsFloat32()
	want := []float32{6, 7, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("feedback = %v, want %v", got, want)
		}
	}
}

func TestGeneratorDimResolution(t *testing.T) {
	backend := cpu.New()
	gen := newSymbolGenerator(5, 2, 3, backend)

	cases := map[string]int{
		"states":   3,
		"inputs":   3,
		"outputs":  0,
		"feedback": 2,
		"readouts": 5,
	}
	for name, want := range cases {
		if got := gen.Dim(name); got != want {
			t.Errorf("Dim(%s) = %d, want %d", name, got, want)
		}
	}
	expectPanic(t, "unknown name", func() {
		gen.Dim("nonesuch")
	})
}

func TestGeneratorResolveIdempotent(t *testing.T) {
	backend := cpu.New()
	gen := newSymbolGenerator(5, 2, 3, backend)

	first := gen.Parameters()
	gen.ResolveDimensions()
	second := gen.Parameters()

	if len(first) != len(second) {
		t.Fatalf("parameter count changed from %d to %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("parameter %d reallocated by second resolve", i)
		}
	}
}

func TestLookupFeedbackRequiresScalarEmitter(t *testing.T) {
	backend := cpu.New()
	readout := seqgen.NewReadout([]string{"states", "feedback"}, 3,
		seqgen.NewTrivialEmitter(3, backend),
		seqgen.NewLookupFeedback(5, 2, backend),
		backend)
	expectPanic(t, "vector emitter with lookup feedback", func() {
		seqgen.New(readout, rnn.NewSimpleRecurrent(3, backend), backend)
	})
}

func TestCostMatrixPrefixConsistency(t *testing.T) {
	backend := cpu.New()
	gen := newSymbolGenerator(4, 2, 3, backend)

	steps, batch := 5, 2
	symbols := []int32{1, 2, 0, 3, 2, 1, 3, 0, 2, 2}
	full := gen.CostMatrix(
		tensor.MustFromSlice(symbols, tensor.Shape{steps, batch}, backend).Raw(),
		nil, nil).Raw().AsFloat32()

	// The cost of step t only depends on outputs up to t, so every
	// prefix evaluation must reproduce a prefix of the full one.
	for k := 1; k < steps; k++ {
		prefix := gen.CostMatrix(
			tensor.MustFromSlice(symbols[:k*batch], tensor.Shape{k, batch}, backend).Raw(),
			nil, nil).Raw().AsFloat32()
		for i, c := range prefix {
			if !floatEqual(c, full[i], 1e-5) {
				t.Fatalf("prefix %d cost %d = %f, full evaluation has %f", k, i, c, full[i])
			}
		}
	}
}

func TestCostMatrixMasking(t *testing.T) {
	backend := cpu.New()
	gen := newSymbolGenerator(4, 2, 3, backend)

	steps, batch := 3, 2
	outputs := tensor.MustFromSlice([]int32{1, 2, 3, 0, 2, 1},
		tensor.Shape{steps, batch}, backend).Raw()
	mask := tensor.MustFromSlice([]float32{1, 1, 1, 0, 1, 0},
		tensor.Shape{steps, batch}, backend)

	costs := gen.CostMatrix(outputs, mask, nil).Raw().AsFloat32()
	for step := 0; step < steps; step++ {
		if c := costs[step*batch+1]; step > 0 && c != 0 {
			t.Errorf("masked cost at step %d = %f, want 0", step, c)
		}
		if c := costs[step*batch]; c <= 0 {
			t.Errorf("live cost at step %d = %f, want positive", step, c)
		}
	}

	_, perElement := gen.Cost(outputs, mask, nil)
	var total float32
	for _, c := range costs {
		total += c
	}
	if !floatEqual(perElement, total/4, 1e-5) {
		t.Errorf("per-element cost = %f, want %f", perElement, total/4)
	}
}

func TestStepwiseMatchesBulk(t *testing.T) {
	backend := cpu.New()
	gen := newSymbolGenerator(4, 2, 3, backend)
	symbols := []int32{2, 0, 3, 1, 2}
	checkStepwiseMatchesBulk(t, gen, symbols, nil)
}

func TestStepwiseMatchesBulkWithAttention(t *testing.T) {
	backend := cpu.New()
	gen := newAttentionSymbolGenerator(4, 2, 3, 3, 2, backend)

	positions := 4
	attendedData := make([]float32, positions*2)
	for i := range attendedData {
		attendedData[i] = float32(i%5)*0.3 - 0.6
	}
	contexts := rnn.Signals[*cpu.Backend]{
		rnn.AttendedName:     tensor.MustFromSlice(attendedData, tensor.Shape{positions, 1, 2}, backend),
		rnn.AttendedMaskName: tensor.Ones[float32](tensor.Shape{positions, 1}, backend),
	}
	symbols := []int32{1, 3, 0, 2}
	checkStepwiseMatchesBulk(t, gen, symbols, contexts)
}

// checkStepwiseMatchesBulk replays a single sequence through the
// per-step computers beam search uses and compares every step's cost
// against the bulk cost matrix.
func checkStepwiseMatchesBulk(t *testing.T, gen *seqgen.SequenceGenerator[*cpu.Backend],
	symbols []int32, contexts rnn.Signals[*cpu.Backend]) {
	t.Helper()
	backend := cpu.New()
	steps := len(symbols)

	bulk := gen.CostMatrix(
		tensor.MustFromSlice(symbols, tensor.Shape{steps, 1}, backend).Raw(),
		nil, contexts).Raw().AsFloat32()

	prepared := gen.PrepareContexts(contexts)
	initial, outputs := gen.InitialStates(1, prepared)
	states := make(rnn.Signals[*cpu.Backend], len(gen.TrackedStateNames()))
	for _, name := range gen.TrackedStateNames() {
		states[name] = initial[name]
	}

	for step := 0; step < steps; step++ {
		candidates := gen.CandidateCosts(prepared, states, outputs)
		got := candidates.Raw().AsFloat32()[symbols[step]]
		if !floatEqual(got, bulk[step], 1e-5) {
			t.Fatalf("step %d candidate cost = %f, bulk evaluation has %f", step, got, bulk[step])
		}
		outputs = tensor.MustFromSlice(symbols[step:step+1], tensor.Shape{1}, backend).Raw()
		states = gen.NextStates(prepared, states, outputs)
	}
}

func TestGenerate(t *testing.T) {
	backend := cpu.New()
	vocab := 4
	gen := newSymbolGenerator(vocab, 2, 3, backend)

	steps, batch := 5, 2
	result := gen.Generate(batch, steps, nil)

	if !result.Outputs.Shape().Equal(tensor.Shape{steps, batch}) {
		t.Fatalf("outputs shape = %v, want [%d %d]", result.Outputs.Shape(), steps, batch)
	}
	for _, id := range result.Outputs.AsInt32() {
		if id < 0 || id >= int32(vocab) {
			t.Fatalf("emitted symbol %d outside vocabulary", id)
		}
	}
	if !result.Costs.Shape().Equal(tensor.Shape{steps, batch}) {
		t.Fatalf("costs shape = %v, want [%d %d]", result.Costs.Shape(), steps, batch)
	}
	for _, c := range result.Costs.Raw().AsFloat32() {
		if c < 0 || math.IsNaN(float64(c)) {
			t.Fatalf("generation cost %f outside [0, inf)", c)
		}
	}
	if !result.States["states"].Shape().Equal(tensor.Shape{batch, 3}) {
		t.Errorf("final states shape = %v, want [%d 3]", result.States["states"].Shape(), batch)
	}
}

func TestEvaluateRecordsStatesAndGlimpses(t *testing.T) {
	backend := cpu.New()
	gen := newAttentionSymbolGenerator(4, 2, 3, 3, 2, backend)

	steps, batch, positions := 3, 2, 4
	contexts := rnn.Signals[*cpu.Backend]{
		rnn.AttendedName: tensor.Ones[float32](tensor.Shape{positions, batch, 2}, backend),
	}
	outputs := tensor.MustFromSlice([]int32{1, 2, 0, 3, 2, 2},
		tensor.Shape{steps, batch}, backend).Raw()

	eval := gen.Evaluate(outputs, nil, contexts)
	if !eval.States["states"].Shape().Equal(tensor.Shape{steps, batch, 3}) {
		t.Fatalf("recorded states shape = %v", eval.States["states"].Shape())
	}
	if !eval.Glimpses["weighted_averages"].Shape().Equal(tensor.Shape{steps, batch, 2}) {
		t.Fatalf("recorded weighted averages shape = %v", eval.Glimpses["weighted_averages"].Shape())
	}
	if !eval.Glimpses["weights"].Shape().Equal(tensor.Shape{steps, batch, positions}) {
		t.Fatalf("recorded weights shape = %v", eval.Glimpses["weights"].Shape())
	}
	if !eval.Readouts.Shape().Equal(tensor.Shape{steps, batch, 4}) {
		t.Fatalf("recorded readouts shape = %v", eval.Readouts.Shape())
	}
	// The first recorded state is the initial state.
	for _, v := range eval.States["states"].Slice(0, 1).Raw().AsFloat32() {
		if v != 0 {
			t.Fatal("first recorded state should be the initial state")
		}
	}
}
