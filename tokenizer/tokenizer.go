// Copyright 2025 Bricks ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer provides text tokenization for the Bricks ML toolkit.
//
// Two implementations are available: CharTokenizer, a fixed character
// inventory with sequence delimiters suited to character-level models,
// and TikToken, a BPE tokenizer backed by OpenAI-compatible encodings.
package tokenizer

import (
	"github.com/bricks-ml/bricks/internal/tokenizer"
)

// Tokenizer converts between text and int32 token sequences.
type Tokenizer = tokenizer.Tokenizer

// CharTokenizer tokenizes lowercased text over a fixed character
// inventory: letters, digits, basic punctuation, space, an unknown
// marker and sequence delimiters.
type CharTokenizer = tokenizer.CharTokenizer

// NewCharTokenizer creates a character-level tokenizer.
//
// Example:
//
//	tok := tokenizer.NewCharTokenizer()
//	ids, err := tok.Encode("reverse these words!")
func NewCharTokenizer() *CharTokenizer {
	return tokenizer.NewCharTokenizer()
}

// TikToken wraps a BPE encoding such as cl100k_base.
type TikToken = tokenizer.TikToken

// NewTikToken creates a BPE tokenizer for the named encoding.
// Supported encodings: cl100k_base, p50k_base, r50k_base.
//
// Example:
//
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    return err
//	}
//	ids, _ := tok.Encode("hello world")
func NewTikToken(encodingName string) (*TikToken, error) {
	return tokenizer.NewTikToken(encodingName)
}
