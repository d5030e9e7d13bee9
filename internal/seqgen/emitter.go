package seqgen

import (
	"fmt"
	"math/rand"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Emitter turns readouts into outputs and scores outputs against
// readouts. Outputs cross this boundary as RawTensors because their
// element type is the emitter's choice: a categorical emitter produces
// int32 symbols, a trivial one float32 vectors.
type Emitter[B tensor.Backend] interface {
	// Emit produces one output per readout row.
	Emit(readouts *tensor.Tensor[float32, B]) *tensor.RawTensor

	// Cost scores the given outputs against the readouts, one cost per
	// position: the result has the readouts' shape with the trailing
	// axis dropped.
	Cost(readouts *tensor.Tensor[float32, B], outputs *tensor.RawTensor) *tensor.Tensor[float32, B]

	// InitialOutputs builds the outputs fed to the readout at the
	// first step, before any real output exists.
	InitialOutputs(batchSize int) *tensor.RawTensor

	// OutputDim is the trailing width of emitted outputs, zero when
	// outputs are scalar symbols.
	OutputDim() int

	// Parameters returns the trainable parameters of the emitter.
	Parameters() []*nn.Parameter[B]
}

// CategoricalEmitter is the extra capability beam search needs: access
// to the full distribution the emitter draws from.
type CategoricalEmitter[B tensor.Backend] interface {
	Emitter[B]

	// Probs returns the probability of every candidate output, shaped
	// like the readouts.
	Probs(readouts *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}

// SoftmaxEmitter interprets each readout as unnormalized log
// probabilities of a categorical distribution and emits int32 symbols
// drawn from it. The cost of an output is its negative log likelihood.
type SoftmaxEmitter[B tensor.Backend] struct {
	initialOutput int32
	rng           *rand.Rand
	backend       B
}

// SoftmaxOption configures a SoftmaxEmitter.
type SoftmaxOption func(*softmaxOptions)

type softmaxOptions struct {
	initialOutput int32
	seed          int64
}

// WithInitialOutput sets the symbol fed to the readout at the first
// step, usually a beginning-of-sequence marker.
func WithInitialOutput(output int32) SoftmaxOption {
	return func(o *softmaxOptions) {
		o.initialOutput = output
	}
}

// WithSeed fixes the sampling seed. A negative seed, the default,
// draws a fresh one.
func WithSeed(seed int64) SoftmaxOption {
	return func(o *softmaxOptions) {
		o.seed = seed
	}
}

// NewSoftmaxEmitter creates a categorical emitter.
func NewSoftmaxEmitter[B tensor.Backend](backend B, opts ...SoftmaxOption) *SoftmaxEmitter[B] {
	options := &softmaxOptions{
		initialOutput: 0,
		seed:          -1,
	}
	for _, opt := range opts {
		opt(options)
	}

	var rng *rand.Rand
	if options.seed >= 0 {
		rng = rand.New(rand.NewSource(options.seed)) //nolint:gosec // Intentional deterministic seed for reproducibility
	} else {
		rng = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // User requested random seed
	}

	return &SoftmaxEmitter[B]{
		initialOutput: options.initialOutput,
		rng:           rng,
		backend:       backend,
	}
}

// Probs softmax-normalizes the readouts over their trailing axis.
func (e *SoftmaxEmitter[B]) Probs(readouts *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return readouts.Softmax(len(readouts.Shape()) - 1)
}

// Emit draws one symbol per readout row.
func (e *SoftmaxEmitter[B]) Emit(readouts *tensor.Tensor[float32, B]) *tensor.RawTensor {
	probs := e.Probs(readouts)
	shape := probs.Shape()
	vocab := shape[len(shape)-1]
	rows := probs.NumElements() / vocab
	data := probs.Raw().AsFloat32()

	out := tensor.MustNewRaw(shape[:len(shape)-1], tensor.Int32, tensor.CPU)
	ids := out.AsInt32()
	for row := 0; row < rows; row++ {
		ids[row] = e.multinomial(data[row*vocab : (row+1)*vocab])
	}
	return out
}

// Cost returns the negative log likelihood of each output symbol.
func (e *SoftmaxEmitter[B]) Cost(readouts *tensor.Tensor[float32, B], outputs *tensor.RawTensor) *tensor.Tensor[float32, B] {
	shape := readouts.Shape()
	vocab := shape[len(shape)-1]
	leading := shape[:len(shape)-1]
	if !outputs.Shape().Equal(leading) {
		panic(fmt.Sprintf("seqgen: outputs shape %v does not match readouts shape %v",
			outputs.Shape(), shape))
	}
	rows := readouts.NumElements() / vocab
	probs := e.Probs(readouts).Reshape(rows, vocab)
	index := tensor.New[int32](outputs, e.backend).Reshape(rows, 1)
	picked := probs.Gather(1, index)
	return picked.Log().MulScalar(-1).Reshape(leading...)
}

// InitialOutputs fills a batch with the configured initial symbol.
func (e *SoftmaxEmitter[B]) InitialOutputs(batchSize int) *tensor.RawTensor {
	out := tensor.MustNewRaw(tensor.Shape{batchSize}, tensor.Int32, tensor.CPU)
	ids := out.AsInt32()
	for i := range ids {
		ids[i] = e.initialOutput
	}
	return out
}

// OutputDim is zero: the emitter produces scalar symbols.
func (e *SoftmaxEmitter[B]) OutputDim() int { return 0 }

func (e *SoftmaxEmitter[B]) Parameters() []*nn.Parameter[B] { return nil }

// multinomial samples from a categorical distribution.
func (e *SoftmaxEmitter[B]) multinomial(probs []float32) int32 {
	r := e.rng.Float32()

	cumSum := float32(0)
	for i, p := range probs {
		cumSum += p
		if r < cumSum {
			return int32(i) //nolint:gosec // vocab size is bounded by model architecture
		}
	}

	// Return last symbol if rounding errors
	return int32(len(probs) - 1) //nolint:gosec // vocab size is bounded by model architecture
}

// TrivialEmitter passes readouts through as float32 outputs and
// assigns zero cost. It is the identity end of the emitter contract,
// useful for networks whose readout already is the prediction.
type TrivialEmitter[B tensor.Backend] struct {
	readoutDim int
	backend    B
}

// NewTrivialEmitter creates an emitter passing through readoutDim-wide
// readouts.
func NewTrivialEmitter[B tensor.Backend](readoutDim int, backend B) *TrivialEmitter[B] {
	if readoutDim <= 0 {
		panic(fmt.Sprintf("seqgen: readout dimension must be positive, got %d", readoutDim))
	}
	return &TrivialEmitter[B]{readoutDim: readoutDim, backend: backend}
}

// Emit returns the readouts unchanged.
func (e *TrivialEmitter[B]) Emit(readouts *tensor.Tensor[float32, B]) *tensor.RawTensor {
	return readouts.Raw()
}

// Cost is zero for every position.
func (e *TrivialEmitter[B]) Cost(readouts *tensor.Tensor[float32, B], outputs *tensor.RawTensor) *tensor.Tensor[float32, B] {
	if !outputs.Shape().Equal(readouts.Shape()) {
		panic(fmt.Sprintf("seqgen: outputs shape %v does not match readouts shape %v",
			outputs.Shape(), readouts.Shape()))
	}
	shape := readouts.Shape()
	return tensor.Zeros[float32](shape[:len(shape)-1], e.backend)
}

// InitialOutputs is a zero vector per batch row.
func (e *TrivialEmitter[B]) InitialOutputs(batchSize int) *tensor.RawTensor {
	return tensor.Zeros[float32](tensor.Shape{batchSize, e.readoutDim}, e.backend).Raw()
}

// OutputDim is the readout width.
func (e *TrivialEmitter[B]) OutputDim() int { return e.readoutDim }

func (e *TrivialEmitter[B]) Parameters() []*nn.Parameter[B] { return nil }
