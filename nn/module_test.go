// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/bricks-ml/bricks/backend/cpu"
	"github.com/bricks-ml/bricks/nn"
	"github.com/bricks-ml/bricks/tensor"
)

// TestModuleInterface verifies that concrete types implement the Module
// interface.
func TestModuleInterface(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name   string
		module nn.Module[*cpu.Backend]
		inDim  int
	}{
		{
			name:   "Linear",
			module: nn.NewLinear(10, 5, backend),
			inDim:  10,
		},
		{
			name:   "LinearNoBias",
			module: nn.NewLinearNoBias(10, 5, backend),
			inDim:  10,
		},
		{
			name:   "Bias",
			module: nn.NewBias(10, backend),
			inDim:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tensor.Randn[float32](tensor.Shape{2, tt.inDim}, backend)
			out := tt.module.Forward(input)
			if out == nil {
				t.Fatal("Forward() returned nil")
			}

			params := tt.module.Parameters()
			if len(params) == 0 {
				t.Error("Parameters() returned no parameters")
			}
			for _, p := range params {
				if p.Name() == "" {
					t.Error("parameter with empty name")
				}
			}
		})
	}
}

// TestActivationModules verifies the parameter-free activation modules.
func TestActivationModules(t *testing.T) {
	backend := cpu.New()
	input := tensor.MustFromSlice([]float32{-2, 0, 2}, tensor.Shape{3}, backend)

	var tanh nn.Module[*cpu.Backend] = nn.NewTanh[*cpu.Backend]()
	out := tanh.Forward(input).Data()
	if out[1] != 0 {
		t.Errorf("tanh(0) = %v, want 0", out[1])
	}
	if out[0] >= 0 || out[2] <= 0 || out[2] >= 1 {
		t.Errorf("tanh values out of range: %v", out)
	}
	if tanh.Parameters() != nil {
		t.Error("Tanh should have no parameters")
	}

	var sigmoid nn.Module[*cpu.Backend] = nn.NewSigmoid[*cpu.Backend]()
	out = sigmoid.Forward(input).Data()
	if out[1] != 0.5 {
		t.Errorf("sigmoid(0) = %v, want 0.5", out[1])
	}
	if out[0] <= 0 || out[0] >= 0.5 || out[2] <= 0.5 || out[2] >= 1 {
		t.Errorf("sigmoid values out of range: %v", out)
	}
	if sigmoid.Parameters() != nil {
		t.Error("Sigmoid should have no parameters")
	}
}

// TestParameterAPI verifies the Parameter alias exposes the expected API.
func TestParameterAPI(t *testing.T) {
	backend := cpu.New()
	data := tensor.Randn[float32](tensor.Shape{3, 3}, backend)
	param := nn.NewParameter("weight", data)

	if param.Name() != "weight" {
		t.Errorf("Name() = %q, want \"weight\"", param.Name())
	}
	if param.Tensor() != data {
		t.Error("Tensor() does not return the wrapped tensor")
	}
	if param.Grad() != nil {
		t.Error("Grad() should be nil before any backward pass")
	}

	grad := tensor.Ones[float32](tensor.Shape{3, 3}, backend)
	param.SetGrad(grad)
	if param.Grad() != grad {
		t.Error("Grad() does not return the tensor passed to SetGrad")
	}

	param.ZeroGrad()
	if param.Grad() != nil {
		t.Error("Grad() should be nil after ZeroGrad")
	}
}

// TestEmbeddingLookup verifies the embedding facade end to end.
func TestEmbeddingLookup(t *testing.T) {
	backend := cpu.New()
	weight := tensor.MustFromSlice(
		[]float32{0, 0, 1, 1, 2, 2}, tensor.Shape{3, 2}, backend)
	emb := nn.NewEmbeddingWithWeight(weight)

	idx := tensor.MustFromSlice([]int32{2, 0}, tensor.Shape{2}, backend)
	out := emb.Forward(idx)
	if !out.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("Forward shape = %v, want [2 2]", out.Shape())
	}
	want := []float32{2, 2, 0, 0}
	for i, v := range out.Data() {
		if v != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, v, want[i])
		}
	}
}
