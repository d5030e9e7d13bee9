package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// encodingInfo carries the vocabulary facts tiktoken-go does not
// expose itself.
type encodingInfo struct {
	vocabSize int
	eos       int32
}

var encodings = map[string]encodingInfo{
	"cl100k_base": {vocabSize: 100256, eos: 100257}, // GPT-4, GPT-3.5-turbo
	"p50k_base":   {vocabSize: 50257, eos: 50256},   // GPT-3, Codex
	"r50k_base":   {vocabSize: 50257, eos: 50256},   // older GPT-3 models
}

// TikToken adapts a pkoukk/tiktoken-go BPE encoding to the Tokenizer
// interface.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	info     encodingInfo
	name     string
}

// NewTikToken creates a tokenizer for one of the supported encodings:
// "cl100k_base", "p50k_base" or "r50k_base".
func NewTikToken(encodingName string) (*TikToken, error) {
	info, ok := encodings[encodingName]
	if !ok {
		return nil, fmt.Errorf("unsupported tiktoken encoding %q", encodingName)
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encodingName, err)
	}
	return &TikToken{encoding: encoding, info: info, name: encodingName}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)
	result := make([]int32, len(tokens))
	for i, token := range tokens {
		result[i] = int32(token) //nolint:gosec // token IDs fit in int32, vocab size < 2^31
	}
	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	intTokens := make([]int, len(tokens))
	for i, token := range tokens {
		intTokens[i] = int(token)
	}
	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the vocabulary size of the encoding.
func (t *TikToken) VocabSize() int { return t.info.vocabSize }

// BosToken returns -1: the tiktoken encodings have no
// beginning-of-sequence token.
func (t *TikToken) BosToken() int32 { return -1 }

// EosToken returns the <|endoftext|> id of the encoding.
func (t *TikToken) EosToken() int32 { return t.info.eos }

// UnkToken returns -1: BPE encodings cover all byte sequences.
func (t *TikToken) UnkToken() int32 { return -1 }

// IsSpecialToken checks if a token ID is a special token.
func (t *TikToken) IsSpecialToken(token int32) bool {
	return token == t.info.eos
}

// Name returns the encoding name.
func (t *TikToken) Name() string { return t.name }
