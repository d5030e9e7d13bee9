// Package search implements beam search over a sequence generator.
//
// BeamSearch drives a generator through its per-step computers: it
// prepares the contexts once, seeds the beam from the generator's
// initial states and then repeatedly scores every candidate next
// output, keeps the beamSize cheapest hypotheses and advances their
// states. All bookkeeping runs on the host; only the per-step scoring
// and state updates go through the backend.
package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Generator is the slice of a sequence generator that beam search
// drives. CandidateCosts must return the negative log probability of
// every candidate output, shaped [batch, candidates], and the outputs
// crossing the boundary must be int32 symbols.
type Generator[B tensor.Backend] interface {
	// TrackedStateNames lists the state signals carried between steps.
	TrackedStateNames() []string

	// PrepareContexts augments contexts with entries derived once per
	// search.
	PrepareContexts(contexts rnn.Signals[B]) rnn.Signals[B]

	// InitialStates builds the step-zero states and outputs.
	InitialStates(batchSize int, contexts rnn.Signals[B]) (rnn.Signals[B], *tensor.RawTensor)

	// CandidateCosts scores every candidate next output.
	CandidateCosts(contexts, states rnn.Signals[B], outputs *tensor.RawTensor) *tensor.Tensor[float32, B]

	// NextStates advances the tracked states for the chosen outputs.
	NextStates(contexts, states rnn.Signals[B], outputs *tensor.RawTensor) rnn.Signals[B]
}

// BeamSearch keeps the beamSize lowest-cost output sequences while
// stepping a generator. A BeamSearch is not safe for concurrent use.
type BeamSearch[B tensor.Backend] struct {
	generator Generator[B]
	beamSize  int

	contextComputer      func(rnn.Signals[B]) rnn.Signals[B]
	initialStateComputer func(int, rnn.Signals[B]) (rnn.Signals[B], *tensor.RawTensor)
	costsComputer        func(rnn.Signals[B], rnn.Signals[B], *tensor.RawTensor) *tensor.Tensor[float32, B]
	nextStateComputer    func(rnn.Signals[B], rnn.Signals[B], *tensor.RawTensor) rnn.Signals[B]

	compiled bool
}

// New creates a beam search of the given width over a generator.
func New[B tensor.Backend](generator Generator[B], beamSize int) *BeamSearch[B] {
	if beamSize <= 0 {
		panic(fmt.Sprintf("search: beam size must be positive, got %d", beamSize))
	}
	return &BeamSearch[B]{generator: generator, beamSize: beamSize}
}

// BeamSize returns the number of hypotheses kept per step.
func (b *BeamSearch[B]) BeamSize() int { return b.beamSize }

// Compile binds the per-step computers. Search calls it on first use;
// calling it eagerly just front-loads the work.
func (b *BeamSearch[B]) Compile() {
	if b.compiled {
		return
	}
	b.contextComputer = b.generator.PrepareContexts
	b.initialStateComputer = b.generator.InitialStates
	b.costsComputer = b.generator.CandidateCosts
	b.nextStateComputer = b.generator.NextStates
	b.compiled = true
}

// Result holds the hypotheses of one search, time-major with one
// column per hypothesis. The mask covers each hypothesis up to and
// including its end-of-line symbol; Costs holds the cumulative cost of
// each hypothesis.
type Result struct {
	Outputs *tensor.RawTensor // [steps, beam], int32
	Mask    *tensor.RawTensor // [steps, beam], float32
	Costs   []float32
}

// Hypothesis returns the masked output prefix of the given column.
func (r *Result) Hypothesis(col int) []int32 {
	shape := r.Outputs.Shape()
	steps, beam := shape[0], shape[1]
	outputs := r.Outputs.AsInt32()
	mask := r.Mask.AsFloat32()
	var seq []int32
	for t := 0; t < steps; t++ {
		if mask[t*beam+col] != 0 {
			seq = append(seq, outputs[t*beam+col])
		}
	}
	return seq
}

// Best returns the column of the lowest-cost hypothesis.
func (r *Result) Best() int {
	best := 0
	for col, cost := range r.Costs {
		if cost < r.Costs[best] {
			best = col
		}
	}
	return best
}

// Search generates up to maxLength outputs for the given contexts.
// A hypothesis is finished once it emits eolSymbol; finished
// hypotheses keep their cost and compete only with their frozen
// continuation. The search stops early when every hypothesis is
// finished.
func (b *BeamSearch[B]) Search(contexts rnn.Signals[B], eolSymbol int32, maxLength int) *Result {
	if maxLength <= 0 {
		panic(fmt.Sprintf("search: max length must be positive, got %d", maxLength))
	}
	b.Compile()
	beam := b.beamSize
	ctx := b.contextComputer(contexts)

	initial, initialOutputs := b.initialStateComputer(beam, ctx)
	if initialOutputs.DType() != tensor.Int32 {
		panic("search: beam search requires a generator emitting int32 symbols")
	}
	states := make(rnn.Signals[B], len(b.generator.TrackedStateNames()))
	for _, name := range b.generator.TrackedStateNames() {
		s := initial[name]
		if s == nil {
			panic(fmt.Sprintf("search: generator did not produce initial state %q", name))
		}
		states[name] = s
	}
	outputs := append([]int32(nil), initialOutputs.AsInt32()...)

	var allOutputs [][]int32
	mask := make([]float32, beam)
	for i := range mask {
		mask[i] = 1
	}
	costs := make([]float32, beam)
	inf := float32(math.Inf(1))

	for step := 0; step < maxLength; step++ {
		if sum(mask) == 0 {
			break
		}
		candidates := b.costsComputer(ctx, states, int32Raw(outputs))
		vocab := candidates.Shape()[1]
		if beam > vocab {
			panic(fmt.Sprintf("search: beam size %d exceeds the %d candidate outputs", beam, vocab))
		}
		flat := candidates.Raw().AsFloat32()

		// Cumulative cost of every (hypothesis, candidate) pair. A
		// finished hypothesis may only continue with eol at its frozen
		// cost; every other continuation is priced out.
		nextCosts := make([]float32, beam*vocab)
		for row := 0; row < beam; row++ {
			if mask[row] == 0 {
				for v := 0; v < vocab; v++ {
					if int32(v) == eolSymbol { //nolint:gosec // vocab size is bounded by model architecture
						nextCosts[row*vocab+v] = costs[row]
					} else {
						nextCosts[row*vocab+v] = inf
					}
				}
				continue
			}
			for v := 0; v < vocab; v++ {
				nextCosts[row*vocab+v] = costs[row] + flat[row*vocab+v]
			}
		}

		// At the first step every hypothesis is the same seed, so only
		// the first row may contribute candidates.
		rows := beam
		if step == 0 {
			rows = 1
		}
		chosen := smallestK(nextCosts[:rows*vocab], beam)

		hypotheses := make([]int, beam)
		nextOutputs := make([]int32, beam)
		chosenCosts := make([]float32, beam)
		for i, flatIdx := range chosen {
			hypotheses[i] = flatIdx / vocab
			nextOutputs[i] = int32(flatIdx % vocab) //nolint:gosec // vocab size is bounded by model architecture
			chosenCosts[i] = nextCosts[flatIdx]
		}

		states = reindexStates(states, hypotheses)
		for t := range allOutputs {
			allOutputs[t] = reindex(allOutputs[t], hypotheses)
		}
		mask = reindex(mask, hypotheses)

		states = b.nextStateComputer(ctx, states, int32Raw(nextOutputs))
		outputs = nextOutputs
		allOutputs = append(allOutputs, nextOutputs)
		costs = chosenCosts
		for i := range mask {
			if nextOutputs[i] == eolSymbol {
				mask[i] = 0
			}
		}
	}

	return buildResult(allOutputs, costs, beam, eolSymbol)
}

// buildResult packs the collected rows and recomputes the mask from
// the outputs: each hypothesis is covered up to and including its
// first eol.
func buildResult(allOutputs [][]int32, costs []float32, beam int, eolSymbol int32) *Result {
	steps := len(allOutputs)
	outputsRaw := tensor.MustNewRaw(tensor.Shape{steps, beam}, tensor.Int32, tensor.CPU)
	flat := outputsRaw.AsInt32()
	for t, row := range allOutputs {
		copy(flat[t*beam:(t+1)*beam], row)
	}

	maskRaw := tensor.MustNewRaw(tensor.Shape{steps, beam}, tensor.Float32, tensor.CPU)
	mask := maskRaw.AsFloat32()
	for col := 0; col < beam; col++ {
		length := 0
		for t := 0; t < steps; t++ {
			if flat[t*beam+col] != eolSymbol {
				mask[t*beam+col] = 1
				length++
			}
		}
		if length < steps {
			mask[length*beam+col] = 1
		}
	}

	return &Result{Outputs: outputsRaw, Mask: maskRaw, Costs: costs}
}

// smallestK returns the flattened indices of the k smallest values,
// ascending, ties broken by index order.
func smallestK(flat []float32, k int) []int {
	idx := make([]int, len(flat))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		if flat[idx[i]] != flat[idx[j]] {
			return flat[idx[i]] < flat[idx[j]]
		}
		return idx[i] < idx[j]
	})
	return idx[:k]
}

// reindexStates gathers the chosen hypothesis rows of every state.
func reindexStates[B tensor.Backend](states rnn.Signals[B], rows []int) rnn.Signals[B] {
	idx := make([]int32, len(rows))
	for i, r := range rows {
		idx[i] = int32(r) //nolint:gosec // row count is the beam size
	}
	out := make(rnn.Signals[B], len(states))
	for name, s := range states {
		indices := tensor.MustFromSlice(idx, tensor.Shape{len(idx)}, s.Backend())
		out[name] = s.Embedding(indices)
	}
	return out
}

func reindex[T int32 | float32](values []T, rows []int) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}

func int32Raw(values []int32) *tensor.RawTensor {
	out := tensor.MustNewRaw(tensor.Shape{len(values)}, tensor.Int32, tensor.CPU)
	copy(out.AsInt32(), values)
	return out
}

func sum(values []float32) float32 {
	total := float32(0)
	for _, v := range values {
		total += v
	}
	return total
}
