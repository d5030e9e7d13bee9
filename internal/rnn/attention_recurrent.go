package rnn

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Context names understood by AttentionRecurrent. The attended sequence
// and its mask are supplied by the caller; the preprocessed attended is
// derived and added by Preprocess.
const (
	AttendedName             = "attended"
	AttendedMaskName         = "attended_mask"
	PreprocessedAttendedName = "preprocessed_attended"
)

// AttentionRecurrent couples a plain transition with a content-based
// attention mechanism. Before every state update it takes fresh
// glimpses of the attended sequence, projects the weighted averages
// into each sequential input of the inner transition and adds them to
// the incoming values.
type AttentionRecurrent[B tensor.Backend] struct {
	transition Transition[B]
	attention  *SequenceContentAttention[B]
	distribute map[string]*nn.Linear[B]
	resolved   bool
	backend    B
}

// NewAttentionRecurrent wraps a transition with an attention mechanism.
// ResolveDimensions must run before the wrapper is applied.
func NewAttentionRecurrent[B tensor.Backend](transition Transition[B],
	attention *SequenceContentAttention[B], backend B) *AttentionRecurrent[B] {
	return &AttentionRecurrent[B]{
		transition: transition,
		attention:  attention,
		backend:    backend,
	}
}

func (t *AttentionRecurrent[B]) StateNames() []string { return t.transition.StateNames() }

func (t *AttentionRecurrent[B]) GlimpseNames() []string { return t.attention.GlimpseNames() }

func (t *AttentionRecurrent[B]) SequentialInputNames() []string {
	return t.transition.SequentialInputNames()
}

func (t *AttentionRecurrent[B]) ContextNames() []string {
	return []string{AttendedName, AttendedMaskName}
}

func (t *AttentionRecurrent[B]) Dim(name string) (int, bool) {
	if dim, ok := t.attention.GlimpseDim(name); ok {
		return dim, ok
	}
	switch name {
	case AttendedName:
		return t.attention.AttendedDim(), true
	case AttendedMaskName:
		return 0, true
	case PreprocessedAttendedName:
		return t.attention.MatchDim(), true
	}
	return t.transition.Dim(name)
}

func (t *AttentionRecurrent[B]) ResolveDimensions() {
	if t.resolved {
		return
	}
	stateNames := t.transition.StateNames()
	stateDims := make(map[string]int, len(stateNames))
	for _, name := range stateNames {
		dim, ok := t.transition.Dim(name)
		if !ok {
			panic(fmt.Sprintf("rnn: transition does not know the dimension of state %q", name))
		}
		stateDims[name] = dim
	}
	t.attention.resolve(stateNames, stateDims)

	t.distribute = make(map[string]*nn.Linear[B], len(t.transition.SequentialInputNames()))
	for _, name := range t.transition.SequentialInputNames() {
		dim, ok := t.transition.Dim(name)
		if !ok {
			panic(fmt.Sprintf("rnn: transition does not know the dimension of input %q", name))
		}
		t.distribute[name] = nn.NewLinearNoBias(t.attention.AttendedDim(), dim, t.backend)
	}
	t.resolved = true
}

func (t *AttentionRecurrent[B]) Preprocess(contexts Signals[B]) Signals[B] {
	attended := contexts[AttendedName]
	if attended == nil || contexts[PreprocessedAttendedName] != nil {
		return contexts
	}
	out := make(Signals[B], len(contexts)+1)
	for name, v := range contexts {
		out[name] = v
	}
	out[PreprocessedAttendedName] = t.attention.Preprocess(attended)
	return out
}

func (t *AttentionRecurrent[B]) InitialStates(batchSize int, contexts Signals[B]) Signals[B] {
	attended := t.requireAttended(contexts)
	out := t.transition.InitialStates(batchSize)
	for name, g := range t.attention.InitialGlimpses(batchSize, attended) {
		out[name] = g
	}
	return out
}

// TakeGlimpses attends to the attended context given the current
// states. The previous glimpses are accepted for interface uniformity;
// content-based attention does not consume them.
func (t *AttentionRecurrent[B]) TakeGlimpses(states, glimpses, contexts Signals[B]) Signals[B] {
	attended := t.requireAttended(contexts)
	return t.attention.TakeGlimpses(attended,
		contexts[PreprocessedAttendedName], contexts[AttendedMaskName], states)
}

// ComputeStates adds the projected weighted averages to every
// sequential input and advances the inner transition.
func (t *AttentionRecurrent[B]) ComputeStates(inputs, states, glimpses, contexts Signals[B]) Signals[B] {
	if !t.resolved {
		panic("rnn: attention transition dimensions not resolved")
	}
	averages := glimpses["weighted_averages"]
	if averages == nil {
		panic("rnn: missing \"weighted_averages\" glimpse")
	}
	distributed := make(Signals[B], len(inputs))
	for name, x := range inputs {
		distributed[name] = x
	}
	for _, name := range t.transition.SequentialInputNames() {
		x := distributed[name]
		if x == nil {
			panic(fmt.Sprintf("rnn: missing sequential input %q", name))
		}
		distributed[name] = x.Add(t.distribute[name].Forward(averages))
	}
	return t.transition.Step(distributed, states)
}

func (t *AttentionRecurrent[B]) ApplySequence(inputs Signals[B], mask *tensor.Tensor[float32, B],
	contexts Signals[B]) (Signals[B], Signals[B]) {
	return generationScan[B](t, inputs, mask, contexts)
}

func (t *AttentionRecurrent[B]) Parameters() []*nn.Parameter[B] {
	params := append([]*nn.Parameter[B](nil), t.transition.Parameters()...)
	params = append(params, t.attention.Parameters()...)
	for _, name := range t.transition.SequentialInputNames() {
		if l := t.distribute[name]; l != nil {
			params = append(params, l.Parameters()...)
		}
	}
	return params
}

// Attention returns the wrapped attention mechanism.
func (t *AttentionRecurrent[B]) Attention() *SequenceContentAttention[B] { return t.attention }

func (t *AttentionRecurrent[B]) requireAttended(contexts Signals[B]) *tensor.Tensor[float32, B] {
	attended := contexts[AttendedName]
	if attended == nil {
		panic(fmt.Sprintf("rnn: attention transition requires the %q context", AttendedName))
	}
	return attended
}
