// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides gradient-descent training for the Bricks ML
// toolkit.
//
// # Overview
//
// A StepRule transforms gradients into parameter update steps. Rules
// compose: NewMomentum, for instance, chains learning-rate scaling with
// velocity accumulation. GradientDescent applies the resulting steps to
// parameters in place.
//
// Gradients are computed elsewhere and handed in as a map from
// parameter data to gradient data.
//
// # Basic Usage
//
//	import (
//	    "github.com/bricks-ml/bricks/backend/cpu"
//	    "github.com/bricks-ml/bricks/optim"
//	)
//
//	descent := optim.NewGradientDescent(params,
//	    optim.NewCompositeRule[*cpu.Backend](
//	        optim.NewStepClipping[*cpu.Backend](1.0),
//	        optim.NewMomentum[*cpu.Backend](0.01, 0.9),
//	    ), backend)
//
//	for step := 0; step < steps; step++ {
//	    grads := computeGradients(batch)
//	    descent.Step(grads)
//	    descent.ZeroGrad()
//	}
package optim
