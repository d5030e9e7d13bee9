package rnn

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// SequenceContentAttention scores every position of an attended
// sequence against the current transition states and returns the
// attention-weighted average of the attended vectors.
//
// The attended sequence is time-major [positions, batch, attendedDim].
// Each state is projected to a match space of width matchDim, the
// attended sequence is projected once by a preprocessor, and the score
// of a position is a learned linear function of tanh(preprocessed +
// projected states). Scores are softmax-normalized over positions with
// masked positions excluded.
//
// It produces two glimpses: "weighted_averages" of width attendedDim
// and "weights" of shape [batch, positions].
type SequenceContentAttention[B tensor.Backend] struct {
	matchDim    int
	attendedDim int

	stateNames        []string
	stateTransformers map[string]*nn.Linear[B]
	preprocessor      *nn.Linear[B]
	energyComputer    *nn.Linear[B]

	backend  B
	resolved bool
}

// NewSequenceContentAttention creates an attention mechanism matching
// states against attendedDim-wide vectors in a matchDim-wide space. The
// state projections are allocated later, once the owning wrapper knows
// the state dimensions.
func NewSequenceContentAttention[B tensor.Backend](matchDim, attendedDim int, backend B) *SequenceContentAttention[B] {
	if matchDim <= 0 || attendedDim <= 0 {
		panic(fmt.Sprintf("rnn: attention dimensions must be positive, got match %d attended %d",
			matchDim, attendedDim))
	}
	return &SequenceContentAttention[B]{
		matchDim:    matchDim,
		attendedDim: attendedDim,
		backend:     backend,
	}
}

// resolve allocates the per-state transformers and the shared
// preprocessor and energy projections. Idempotent.
func (a *SequenceContentAttention[B]) resolve(stateNames []string, stateDims map[string]int) {
	if a.resolved {
		return
	}
	a.stateNames = append([]string(nil), stateNames...)
	a.stateTransformers = make(map[string]*nn.Linear[B], len(stateNames))
	for _, name := range stateNames {
		dim, ok := stateDims[name]
		if !ok {
			panic(fmt.Sprintf("rnn: no dimension for attention state %q", name))
		}
		a.stateTransformers[name] = nn.NewLinearNoBias(dim, a.matchDim, a.backend)
	}
	a.preprocessor = nn.NewLinear(a.attendedDim, a.matchDim, a.backend)
	a.energyComputer = nn.NewLinearNoBias(a.matchDim, 1, a.backend)
	a.resolved = true
}

// Preprocess projects the attended sequence into the match space. The
// result depends only on the attended, so it can be computed once and
// reused across steps.
func (a *SequenceContentAttention[B]) Preprocess(attended *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !a.resolved {
		panic("rnn: attention dimensions not resolved")
	}
	return flattenApply(a.preprocessor, attended)
}

func (a *SequenceContentAttention[B]) computeEnergies(attended, preprocessed *tensor.Tensor[float32, B],
	states Signals[B]) *tensor.Tensor[float32, B] {
	if !a.resolved {
		panic("rnn: attention dimensions not resolved")
	}
	if preprocessed == nil {
		preprocessed = a.Preprocess(attended)
	}
	match := preprocessed
	for _, name := range a.stateNames {
		state := states[name]
		if state == nil {
			panic(fmt.Sprintf("rnn: attention requires state %q", name))
		}
		match = match.Add(a.stateTransformers[name].Forward(state))
	}
	shape := match.Shape()
	energies := flattenApply(a.energyComputer, match.Tanh())
	return energies.Reshape(shape[0], shape[1])
}

// computeWeights turns [positions, batch] energies into normalized
// attention weights. Energies are stabilized by their per-column
// maximum before exponentiation. When a column of the mask is all
// zeros the normalization constant is raised to one to keep the
// division defined; the weights of such a column are all zero.
func (a *SequenceContentAttention[B]) computeWeights(energies, attendedMask *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	stabilized := energies.Sub(energies.MaxDim(0, true))
	unnormalized := stabilized.Exp()
	if attendedMask != nil {
		unnormalized = unnormalized.Mul(attendedMask)
	}
	normalization := unnormalized.SumDim(0, true)
	if attendedMask != nil {
		maskSum := attendedMask.SumDim(0, true)
		zeros := tensor.Zeros[float32](maskSum.Shape(), a.backend)
		normalization = normalization.Add(maskSum.Equal(zeros).Float32())
	}
	return unnormalized.Div(normalization)
}

func (a *SequenceContentAttention[B]) weightedAverages(weights, attended *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return weights.Unsqueeze(-1).Mul(attended).SumDim(0, false)
}

// TakeGlimpses computes the attention weights and the weighted average
// of the attended sequence for the given states. preprocessedAttended
// and attendedMask may be nil; the former is then computed on the fly.
func (a *SequenceContentAttention[B]) TakeGlimpses(attended, preprocessedAttended,
	attendedMask *tensor.Tensor[float32, B], states Signals[B]) Signals[B] {
	energies := a.computeEnergies(attended, preprocessedAttended, states)
	weights := a.computeWeights(energies, attendedMask)
	return Signals[B]{
		"weighted_averages": a.weightedAverages(weights, attended),
		"weights":           weights.Transpose(),
	}
}

// InitialGlimpses returns zero glimpses shaped for the given batch and
// attended sequence.
func (a *SequenceContentAttention[B]) InitialGlimpses(batchSize int, attended *tensor.Tensor[float32, B]) Signals[B] {
	positions := attended.Shape()[0]
	return Signals[B]{
		"weighted_averages": tensor.Zeros[float32](tensor.Shape{batchSize, a.attendedDim}, a.backend),
		"weights":           tensor.Zeros[float32](tensor.Shape{batchSize, positions}, a.backend),
	}
}

// GlimpseNames lists the glimpses in the order they are produced.
func (a *SequenceContentAttention[B]) GlimpseNames() []string {
	return []string{"weighted_averages", "weights"}
}

// GlimpseDim reports the width of a named glimpse. The "weights"
// glimpse has no fixed width, reported as zero.
func (a *SequenceContentAttention[B]) GlimpseDim(name string) (int, bool) {
	switch name {
	case "weighted_averages":
		return a.attendedDim, true
	case "weights":
		return 0, true
	}
	return 0, false
}

// AttendedDim reports the width of the attended vectors.
func (a *SequenceContentAttention[B]) AttendedDim() int { return a.attendedDim }

// MatchDim reports the width of the match space.
func (a *SequenceContentAttention[B]) MatchDim() int { return a.matchDim }

func (a *SequenceContentAttention[B]) Parameters() []*nn.Parameter[B] {
	if !a.resolved {
		return nil
	}
	var params []*nn.Parameter[B]
	for _, name := range a.stateNames {
		params = append(params, a.stateTransformers[name].Parameters()...)
	}
	params = append(params, a.preprocessor.Parameters()...)
	params = append(params, a.energyComputer.Parameters()...)
	return params
}

// flattenApply applies a Linear to a tensor of rank two or higher by
// flattening the leading axes into rows.
func flattenApply[B tensor.Backend](l *nn.Linear[B], x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) == 2 {
		return l.Forward(x)
	}
	rows := 1
	for _, d := range shape[:len(shape)-1] {
		rows *= d
	}
	out := l.Forward(x.Reshape(rows, shape[len(shape)-1]))
	newShape := append(append([]int{}, shape[:len(shape)-1]...), l.OutFeatures())
	return out.Reshape(newShape...)
}
