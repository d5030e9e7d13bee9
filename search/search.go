// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package search

import (
	"github.com/bricks-ml/bricks/internal/search"
	"github.com/bricks-ml/bricks/internal/tensor"
)

// Generator is the slice of a sequence generator that beam search
// drives. seqgen.SequenceGenerator satisfies it.
type Generator[B tensor.Backend] = search.Generator[B]

// BeamSearch finds low-cost output sequences by keeping the beamSize
// cheapest hypotheses at every step.
type BeamSearch[B tensor.Backend] = search.BeamSearch[B]

// New creates a beam search of the given width over a generator.
//
// Example:
//
//	backend := cpu.New()
//	beam := search.New[*cpu.Backend](generator, 12)
//	result := beam.Search(contexts, eos, 50)
//	best := result.Hypothesis(result.Best())
func New[B tensor.Backend](generator Generator[B], beamSize int) *BeamSearch[B] {
	return search.New(generator, beamSize)
}

// Result holds the hypotheses a search produced: time-major outputs
// and mask plus the total cost per column.
type Result = search.Result
