package optim_test

import (
	"math"
	"testing"

	"github.com/bricks-ml/bricks/internal/backend/cpu"
	"github.com/bricks-ml/bricks/internal/nn"
	"github.com/bricks-ml/bricks/internal/optim"
	"github.com/bricks-ml/bricks/internal/tensor"
)

func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func newParam(name string, values []float32, backend *cpu.Backend) *nn.Parameter[*cpu.Backend] {
	return nn.NewParameter(name,
		tensor.MustFromSlice(values, tensor.Shape{len(values)}, backend))
}

func gradMap(param *nn.Parameter[*cpu.Backend], values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	grad := tensor.MustNewRaw(tensor.Shape{len(values)}, tensor.Float32, tensor.CPU)
	copy(grad.AsFloat32(), values)
	return map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): grad}
}

func TestScaleStep(t *testing.T) {
	backend := cpu.New()
	param := newParam("x", []float32{2}, backend)
	descent := optim.NewGradientDescent(
		[]*nn.Parameter[*cpu.Backend]{param}, optim.NewScale[*cpu.Backend](0.1), backend)

	descent.Step(gradMap(param, []float32{1}))

	// x_new = 2 - 0.1 * 1 = 1.9
	got := param.Tensor().Raw().AsFloat32()[0]
	if !floatEqual(got, 1.9, 1e-6) {
		t.Errorf("scaled update: got %f, want 1.9", got)
	}
}

func TestMomentumAccumulates(t *testing.T) {
	backend := cpu.New()
	param := newParam("x", []float32{1}, backend)
	descent := optim.NewGradientDescent(
		[]*nn.Parameter[*cpu.Backend]{param}, optim.NewMomentum[*cpu.Backend](0.1, 0.9), backend)

	// First step: velocity = 0.1, x = 1 - 0.1 = 0.9.
	descent.Step(gradMap(param, []float32{1}))
	if got := param.Tensor().Raw().AsFloat32()[0]; !floatEqual(got, 0.9, 1e-6) {
		t.Fatalf("first momentum step: got %f, want 0.9", got)
	}

	// Second step: velocity = 0.9*0.1 + 0.1 = 0.19, x = 0.9 - 0.19 = 0.71.
	descent.Step(gradMap(param, []float32{1}))
	if got := param.Tensor().Raw().AsFloat32()[0]; !floatEqual(got, 0.71, 1e-6) {
		t.Fatalf("second momentum step: got %f, want 0.71", got)
	}
}

func TestStepClippingGlobalNorm(t *testing.T) {
	backend := cpu.New()
	clip := optim.NewStepClipping[*cpu.Backend](5)

	// Joint norm sqrt(36 + 64) = 10 exceeds the threshold, so every
	// step shrinks by 0.5.
	steps := []*tensor.Tensor[float32, *cpu.Backend]{
		tensor.MustFromSlice([]float32{6}, tensor.Shape{1}, backend),
		nil,
		tensor.MustFromSlice([]float32{8}, tensor.Shape{1}, backend),
	}
	clipped := clip.ComputeSteps(steps)

	if got := clipped[0].Raw().AsFloat32()[0]; !floatEqual(got, 3, 1e-5) {
		t.Errorf("clipped step = %f, want 3", got)
	}
	if clipped[1] != nil {
		t.Error("nil step must stay nil")
	}
	if got := clipped[2].Raw().AsFloat32()[0]; !floatEqual(got, 4, 1e-5) {
		t.Errorf("clipped step = %f, want 4", got)
	}

	// Below the threshold the steps pass through untouched.
	small := []*tensor.Tensor[float32, *cpu.Backend]{
		tensor.MustFromSlice([]float32{3}, tensor.Shape{1}, backend),
	}
	if got := clip.ComputeSteps(small)[0].Raw().AsFloat32()[0]; got != 3 {
		t.Errorf("unclipped step = %f, want 3", got)
	}
}

func TestAdaDeltaStep(t *testing.T) {
	backend := cpu.New()
	rule := optim.NewAdaDelta[*cpu.Backend](0.95, 1e-6)

	grad := []*tensor.Tensor[float32, *cpu.Backend]{
		tensor.MustFromSlice([]float32{2}, tensor.Shape{1}, backend),
	}
	steps := rule.ComputeSteps(grad)

	// msGrad = 0.05 * 4 = 0.2; step = sqrt(1e-6)/sqrt(0.2 + 1e-6) * 2.
	want := float32(math.Sqrt(1e-6) / math.Sqrt(0.2+1e-6) * 2)
	if got := steps[0].Raw().AsFloat32()[0]; !floatEqual(got, want, 1e-6) {
		t.Errorf("adadelta step = %f, want %f", got, want)
	}

	// The accumulators persist: a second identical gradient yields a
	// different, larger step.
	first := steps[0].Raw().AsFloat32()[0]
	second := rule.ComputeSteps(grad)[0].Raw().AsFloat32()[0]
	if second <= first {
		t.Errorf("second adadelta step %f not larger than first %f", second, first)
	}
}

func TestCompositeRuleOrder(t *testing.T) {
	backend := cpu.New()
	// Scaling after clipping sees the already-clipped norm.
	rule := optim.NewCompositeRule[*cpu.Backend](
		optim.NewStepClipping[*cpu.Backend](1),
		optim.NewScale[*cpu.Backend](0.5),
	)
	steps := rule.ComputeSteps([]*tensor.Tensor[float32, *cpu.Backend]{
		tensor.MustFromSlice([]float32{2}, tensor.Shape{1}, backend),
	})
	if got := steps[0].Raw().AsFloat32()[0]; !floatEqual(got, 0.5, 1e-6) {
		t.Errorf("composite step = %f, want 0.5", got)
	}
}

func TestGradientDescentSkipsMissingGradients(t *testing.T) {
	backend := cpu.New()
	with := newParam("with", []float32{1}, backend)
	without := newParam("without", []float32{1}, backend)
	descent := optim.NewGradientDescent(
		[]*nn.Parameter[*cpu.Backend]{with, without}, nil, backend)

	descent.Step(gradMap(with, []float32{0.25}))

	if got := with.Tensor().Raw().AsFloat32()[0]; !floatEqual(got, 0.75, 1e-6) {
		t.Errorf("updated parameter = %f, want 0.75", got)
	}
	if got := without.Tensor().Raw().AsFloat32()[0]; got != 1 {
		t.Errorf("parameter without gradient moved to %f", got)
	}
}
