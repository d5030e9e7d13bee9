package seqgen

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Fork projects one feedback vector into every sequential input of the
// transition, each through its own affine map.
type Fork[B tensor.Backend] struct {
	outputNames []string
	forks       map[string]*nn.Linear[B]
	backend     B
	resolved    bool
}

// NewFork creates a fork over the named transition inputs. The
// projections are allocated later, once the owning generator has
// resolved the input dimensions.
func NewFork[B tensor.Backend](outputNames []string, backend B) *Fork[B] {
	return &Fork[B]{
		outputNames: append([]string(nil), outputNames...),
		backend:     backend,
	}
}

// resolve allocates one projection per forked input. Idempotent.
func (f *Fork[B]) resolve(inputDim int, outputDims map[string]int) {
	if f.resolved {
		return
	}
	f.forks = make(map[string]*nn.Linear[B], len(f.outputNames))
	for _, name := range f.outputNames {
		dim, ok := outputDims[name]
		if !ok {
			panic(fmt.Sprintf("seqgen: no dimension for forked input %q", name))
		}
		f.forks[name] = nn.NewLinear(inputDim, dim, f.backend)
	}
	f.resolved = true
}

// Apply projects the input into every forked signal.
func (f *Fork[B]) Apply(input *tensor.Tensor[float32, B]) rnn.Signals[B] {
	if !f.resolved {
		panic("seqgen: fork dimensions not resolved")
	}
	out := make(rnn.Signals[B], len(f.outputNames))
	for _, name := range f.outputNames {
		out[name] = flattenApply(f.forks[name], input)
	}
	return out
}

// OutputNames lists the forked signals.
func (f *Fork[B]) OutputNames() []string {
	return append([]string(nil), f.outputNames...)
}

func (f *Fork[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, name := range f.outputNames {
		if l := f.forks[name]; l != nil {
			params = append(params, l.Parameters()...)
		}
	}
	return params
}
