package tensor

// Backend defines the compute interface the toolkit builds on.
//
// Backends own every numeric kernel; the packages above them only declare
// what should be computed. All binary element-wise operations follow NumPy
// broadcasting rules. Kernels panic on shape or dtype mismatches: those are
// programmer errors, not recoverable conditions.
type Backend interface {
	// Element-wise binary operations (broadcasting).
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix multiplication for 2D tensors: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	Unsqueeze(t *RawTensor, dim int) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Chunk(t *RawTensor, n, dim int) []*RawTensor
	Slice(t *RawTensor, start, end int) *RawTensor

	// Scalar operations.
	AddScalar(t *RawTensor, scalar any) *RawTensor
	MulScalar(t *RawTensor, scalar any) *RawTensor

	// Element-wise math.
	Exp(t *RawTensor) *RawTensor
	Log(t *RawTensor) *RawTensor
	Sqrt(t *RawTensor) *RawTensor
	Tanh(t *RawTensor) *RawTensor
	Sigmoid(t *RawTensor) *RawTensor

	// Softmax along a dimension.
	Softmax(t *RawTensor, dim int) *RawTensor

	// Comparisons (return Bool tensors, broadcasting).
	Equal(a, b *RawTensor) *RawTensor
	NotEqual(a, b *RawTensor) *RawTensor

	// Reductions.
	Sum(t *RawTensor) *RawTensor
	SumDim(t *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(t *RawTensor, dim int, keepDim bool) *RawTensor
	MaxDim(t *RawTensor, dim int, keepDim bool) *RawTensor

	// Indexing.
	Gather(t *RawTensor, dim int, index *RawTensor) *RawTensor
	Embedding(weight, indices *RawTensor) *RawTensor

	// Type conversion.
	Cast(t *RawTensor, dtype DataType) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
