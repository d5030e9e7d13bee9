package seqgen

import (
	"fmt"

	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Feedback embeds previous outputs into the vector fed back into the
// transition at the next step.
type Feedback[B tensor.Backend] interface {
	// Feedback maps outputs to float vectors, adding a trailing axis of
	// width Dim when outputs are scalar symbols.
	Feedback(outputs *tensor.RawTensor) *tensor.Tensor[float32, B]

	// Dim is the width of the feedback vectors.
	Dim() int

	// Parameters returns the trainable parameters of the feedback.
	Parameters() []*nn.Parameter[B]
}

// TrivialFeedback passes float32 outputs through unchanged.
type TrivialFeedback[B tensor.Backend] struct {
	outputDim int
	backend   B
}

// NewTrivialFeedback creates an identity feedback for outputDim-wide
// outputs.
func NewTrivialFeedback[B tensor.Backend](outputDim int, backend B) *TrivialFeedback[B] {
	if outputDim <= 0 {
		panic(fmt.Sprintf("seqgen: output dimension must be positive, got %d", outputDim))
	}
	return &TrivialFeedback[B]{outputDim: outputDim, backend: backend}
}

func (f *TrivialFeedback[B]) Feedback(outputs *tensor.RawTensor) *tensor.Tensor[float32, B] {
	return tensor.New[float32](outputs, f.backend)
}

func (f *TrivialFeedback[B]) Dim() int { return f.outputDim }

func (f *TrivialFeedback[B]) Parameters() []*nn.Parameter[B] { return nil }

// LookupFeedback feeds back int32 symbols through a learned embedding
// table. It only composes with emitters producing scalar symbols.
type LookupFeedback[B tensor.Backend] struct {
	table       *nn.Embedding[B]
	numOutputs  int
	feedbackDim int
	backend     B
}

// NewLookupFeedback creates an embedding feedback over a vocabulary of
// numOutputs symbols.
func NewLookupFeedback[B tensor.Backend](numOutputs, feedbackDim int, backend B) *LookupFeedback[B] {
	if numOutputs <= 0 || feedbackDim <= 0 {
		panic(fmt.Sprintf("seqgen: lookup feedback dimensions must be positive, got %d symbols, dim %d",
			numOutputs, feedbackDim))
	}
	return &LookupFeedback[B]{
		table:       nn.NewEmbedding(numOutputs, feedbackDim, backend),
		numOutputs:  numOutputs,
		feedbackDim: feedbackDim,
		backend:     backend,
	}
}

func (f *LookupFeedback[B]) Feedback(outputs *tensor.RawTensor) *tensor.Tensor[float32, B] {
	return f.table.Forward(tensor.New[int32](outputs, f.backend))
}

func (f *LookupFeedback[B]) Dim() int { return f.feedbackDim }

func (f *LookupFeedback[B]) Parameters() []*nn.Parameter[B] {
	return f.table.Parameters()
}
