// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package search provides beam search over sequence generators for the
// Bricks ML toolkit.
//
// # Overview
//
// BeamSearch drives a generator through its per-step computers: it
// prepares the contexts once, seeds the beam from the generator's
// initial states, then repeatedly scores every candidate next output,
// keeps the cheapest hypotheses and advances their states. Hypotheses
// that emit the end-of-line symbol freeze; the search stops when every
// hypothesis has finished or the length bound is hit.
//
// # Basic Usage
//
//	import (
//	    "github.com/bricks-ml/bricks/backend/cpu"
//	    "github.com/bricks-ml/bricks/rnn"
//	    "github.com/bricks-ml/bricks/search"
//	)
//
//	func decode(generator search.Generator[*cpu.Backend], contexts rnn.Signals[*cpu.Backend]) []int32 {
//	    beam := search.New[*cpu.Backend](generator, 12)
//	    result := beam.Search(contexts, 43, 50) // eol symbol 43, at most 50 steps
//	    return result.Hypothesis(result.Best())
//	}
package search
