// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/bricks-ml/bricks/backend/cpu"
	"github.com/bricks-ml/bricks/tensor"
)

// TestBackendInterface verifies that cpu.Backend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.Backend)(nil)
}

// TestRawTensorAPI verifies the RawTensor type alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}

	byteSize := raw.ByteSize()
	expected := 6 * 4 // 6 elements * 4 bytes (float32)
	if byteSize != expected {
		t.Errorf("ByteSize() = %d, want %d", byteSize, expected)
	}
	if len(raw.Data()) != byteSize {
		t.Errorf("Data() length = %d, want %d", len(raw.Data()), byteSize)
	}
	if len(raw.AsFloat32()) != 6 {
		t.Errorf("AsFloat32() length = %d, want 6", len(raw.AsFloat32()))
	}

	// Clone produces an independent copy.
	clone := raw.Clone()
	clone.AsFloat32()[0] = 42
	if raw.AsFloat32()[0] == 42 {
		t.Error("Clone() shares storage with the original")
	}
}

// TestTensorCreationFunctions verifies the high-level creation API.
func TestTensorCreationFunctions(t *testing.T) {
	backend := cpu.New()

	zeros := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
	for i, v := range zeros.Data() {
		if v != 0 {
			t.Errorf("Zeros[%d] = %v, want 0", i, v)
		}
	}

	ones := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
	for i, v := range ones.Data() {
		if v != 1 {
			t.Errorf("Ones[%d] = %v, want 1", i, v)
		}
	}

	full := tensor.Full[float32](tensor.Shape{4}, 2.5, backend)
	for i, v := range full.Data() {
		if v != 2.5 {
			t.Errorf("Full[%d] = %v, want 2.5", i, v)
		}
	}

	fromSlice, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if fromSlice.At(1, 0) != 3 {
		t.Errorf("FromSlice At(1,0) = %v, want 3", fromSlice.At(1, 0))
	}

	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend); err == nil {
		t.Error("FromSlice accepted a slice shorter than the shape")
	}

	arange := tensor.Arange(5, backend)
	for i, v := range arange.Data() {
		if v != int32(i) {
			t.Errorf("Arange[%d] = %v, want %d", i, v, i)
		}
	}
}

// TestDeviceConstants verifies device constants are re-exported.
func TestDeviceConstants(t *testing.T) {
	if tensor.CPU.String() != "CPU" {
		t.Errorf("CPU.String() = %q, want \"CPU\"", tensor.CPU.String())
	}
	if tensor.CPU == tensor.CUDA {
		t.Error("CPU and CUDA constants should differ")
	}
}

// TestDataTypeConstants verifies dtype constants and sizes.
func TestDataTypeConstants(t *testing.T) {
	tests := []struct {
		dtype tensor.DataType
		name  string
		size  int
	}{
		{tensor.Float32, "float32", 4},
		{tensor.Float64, "float64", 8},
		{tensor.Int32, "int32", 4},
		{tensor.Int64, "int64", 8},
		{tensor.Uint8, "uint8", 1},
		{tensor.Bool, "bool", 1},
	}
	for _, tt := range tests {
		if tt.dtype.String() != tt.name {
			t.Errorf("%v.String() = %q, want %q", tt.dtype, tt.dtype.String(), tt.name)
		}
		if tt.dtype.Size() != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.name, tt.dtype.Size(), tt.size)
		}
	}
}

// TestShapeAPI verifies the Shape alias behaves like the internal type.
func TestShapeAPI(t *testing.T) {
	s := tensor.Shape{2, 3, 4}
	if s.NumElements() != 24 {
		t.Errorf("NumElements() = %d, want 24", s.NumElements())
	}
	if !s.Equal(tensor.Shape{2, 3, 4}) {
		t.Error("Equal() = false for identical shapes")
	}
	if s.Equal(tensor.Shape{2, 3}) {
		t.Error("Equal() = true for different ranks")
	}
	if err := (tensor.Shape{2, 0}).Validate(); err == nil {
		t.Error("Validate() accepted a zero dimension")
	}
}

// TestBroadcastShapes verifies the re-exported broadcasting rules.
func TestBroadcastShapes(t *testing.T) {
	shape, needed, err := tensor.BroadcastShapes(tensor.Shape{2, 1, 4}, tensor.Shape{3, 1})
	if err != nil {
		t.Fatalf("BroadcastShapes failed: %v", err)
	}
	if !shape.Equal(tensor.Shape{2, 3, 4}) {
		t.Errorf("broadcast shape = %v, want [2 3 4]", shape)
	}
	if !needed {
		t.Error("broadcasting should be reported as needed")
	}

	same, needed, err := tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{2, 3})
	if err != nil {
		t.Fatalf("BroadcastShapes failed: %v", err)
	}
	if !same.Equal(tensor.Shape{2, 3}) || needed {
		t.Errorf("identical shapes: got %v, needed=%v", same, needed)
	}

	if _, _, err := tensor.BroadcastShapes(tensor.Shape{2, 3}, tensor.Shape{4}); err == nil {
		t.Error("BroadcastShapes accepted incompatible shapes")
	}
}

// TestManipulationFunctions verifies Cat and the core tensor methods
// through the public API.
func TestManipulationFunctions(t *testing.T) {
	backend := cpu.New()

	a := tensor.MustFromSlice([]float32{1, 2}, tensor.Shape{1, 2}, backend)
	b := tensor.MustFromSlice([]float32{3, 4}, tensor.Shape{1, 2}, backend)
	c := tensor.Cat([]*tensor.Tensor[float32, *cpu.Backend]{a, b}, 0)
	if !c.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("Cat shape = %v, want [2 2]", c.Shape())
	}
	for i, want := range []float32{1, 2, 3, 4} {
		if c.Data()[i] != want {
			t.Errorf("Cat[%d] = %v, want %v", i, c.Data()[i], want)
		}
	}

	sum := a.Add(b)
	if sum.At(0, 0) != 4 || sum.At(0, 1) != 6 {
		t.Errorf("Add = %v, want [4 6]", sum.Data())
	}

	prod := a.MatMul(b.Transpose())
	if !prod.Shape().Equal(tensor.Shape{1, 1}) {
		t.Fatalf("MatMul shape = %v, want [1 1]", prod.Shape())
	}
	if prod.Item() != 11 { // 1*3 + 2*4
		t.Errorf("MatMul = %v, want 11", prod.Item())
	}
}
