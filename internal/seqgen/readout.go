package seqgen

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/rnn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Readout computes the pre-emission representation of a sequence
// generator. Each named source (transition states, glimpses, contexts
// or the "feedback" of the previous output) is projected by its own
// bias-free linear map, the projections are summed and a single bias
// closes the merge. The emitter and feedback bricks hang off the
// readout and define how outputs leave and re-enter the network.
type Readout[B tensor.Backend] struct {
	sourceNames []string
	readoutDim  int
	emitter     Emitter[B]
	feedback    Feedback[B]

	merge     map[string]*nn.Linear[B]
	postMerge *nn.Bias[B]

	backend  B
	resolved bool
}

// NewReadout creates a readout over the named sources. The merge
// projections are allocated later, once the owning generator has
// resolved the source dimensions.
func NewReadout[B tensor.Backend](sourceNames []string, readoutDim int,
	emitter Emitter[B], feedback Feedback[B], backend B) *Readout[B] {
	if len(sourceNames) == 0 {
		panic("seqgen: readout requires at least one source")
	}
	if readoutDim <= 0 {
		panic(fmt.Sprintf("seqgen: readout dimension must be positive, got %d", readoutDim))
	}
	if emitter == nil {
		panic("seqgen: readout requires an emitter")
	}
	if feedback == nil {
		panic("seqgen: readout requires a feedback")
	}
	return &Readout[B]{
		sourceNames: append([]string(nil), sourceNames...),
		readoutDim:  readoutDim,
		emitter:     emitter,
		feedback:    feedback,
		backend:     backend,
	}
}

// Dim reports the width of the readout-owned signals: "readouts",
// "outputs" and "feedback".
func (r *Readout[B]) Dim(name string) (int, bool) {
	switch name {
	case "readouts":
		return r.readoutDim, true
	case "outputs":
		return r.emitter.OutputDim(), true
	case "feedback":
		return r.feedback.Dim(), true
	}
	return 0, false
}

// resolve allocates the merge projections from the resolved source
// dimensions. Idempotent.
func (r *Readout[B]) resolve(sourceDims map[string]int) {
	if r.resolved {
		return
	}
	if _, ok := r.feedback.(*LookupFeedback[B]); ok && r.emitter.OutputDim() != 0 {
		panic("seqgen: lookup feedback requires an emitter with scalar outputs")
	}
	r.merge = make(map[string]*nn.Linear[B], len(r.sourceNames))
	for _, name := range r.sourceNames {
		dim, ok := sourceDims[name]
		if !ok {
			panic(fmt.Sprintf("seqgen: no dimension for readout source %q", name))
		}
		if dim <= 0 {
			panic(fmt.Sprintf("seqgen: readout source %q has no usable dimension", name))
		}
		r.merge[name] = nn.NewLinearNoBias(dim, r.readoutDim, r.backend)
	}
	r.postMerge = nn.NewBias(r.readoutDim, r.backend)
	r.resolved = true
}

// Readouts merges the named sources into readout vectors. Sources may
// differ in rank; lower-rank sources broadcast across the leading axes
// of higher-rank ones.
func (r *Readout[B]) Readouts(sources rnn.Signals[B]) *tensor.Tensor[float32, B] {
	if !r.resolved {
		panic("seqgen: readout dimensions not resolved")
	}
	var merged *tensor.Tensor[float32, B]
	for _, name := range r.sourceNames {
		src := sources[name]
		if src == nil {
			panic(fmt.Sprintf("seqgen: missing readout source %q", name))
		}
		proj := flattenApply(r.merge[name], src)
		if merged == nil {
			merged = proj
		} else {
			merged = merged.Add(proj)
		}
	}
	return r.postMerge.Forward(merged)
}

// Emit delegates to the emitter.
func (r *Readout[B]) Emit(readouts *tensor.Tensor[float32, B]) *tensor.RawTensor {
	return r.emitter.Emit(readouts)
}

// Cost delegates to the emitter.
func (r *Readout[B]) Cost(readouts *tensor.Tensor[float32, B], outputs *tensor.RawTensor) *tensor.Tensor[float32, B] {
	return r.emitter.Cost(readouts, outputs)
}

// InitialOutputs delegates to the emitter.
func (r *Readout[B]) InitialOutputs(batchSize int) *tensor.RawTensor {
	return r.emitter.InitialOutputs(batchSize)
}

// Feedback delegates to the feedback brick.
func (r *Readout[B]) Feedback(outputs *tensor.RawTensor) *tensor.Tensor[float32, B] {
	return r.feedback.Feedback(outputs)
}

// SourceNames lists the merged sources.
func (r *Readout[B]) SourceNames() []string {
	return append([]string(nil), r.sourceNames...)
}

// ReadoutDim is the width of the merged readout vectors.
func (r *Readout[B]) ReadoutDim() int { return r.readoutDim }

// Emitter returns the emitter brick.
func (r *Readout[B]) Emitter() Emitter[B] { return r.emitter }

// PostMergeBias returns the bias parameter closing the merge, nil
// before dimensions are resolved. Training code that derives gradients
// by hand usually starts from this parameter.
func (r *Readout[B]) PostMergeBias() *nn.Parameter[B] {
	if r.postMerge == nil {
		return nil
	}
	return r.postMerge.Parameters()[0]
}

func (r *Readout[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	if r.resolved {
		for _, name := range r.sourceNames {
			params = append(params, r.merge[name].Parameters()...)
		}
		params = append(params, r.postMerge.Parameters()...)
	}
	params = append(params, r.emitter.Parameters()...)
	params = append(params, r.feedback.Parameters()...)
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
