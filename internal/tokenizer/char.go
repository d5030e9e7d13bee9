package tokenizer

import (
	"fmt"
	"strings"
)

// CharTokenizer maps single characters to ids over a fixed inventory:
// the lowercase letters, the digits, basic punctuation and an unknown
// marker, followed by space and the <S> and </S> sequence delimiters.
//
// Encode folds text to lower case and maps every character not in the
// inventory to the unknown token. The delimiters are never produced by
// Encode; callers frame sequences with BosToken and EosToken.
type CharTokenizer struct {
	idToChar []string
	charToID map[string]int32
	unk      int32
	bos      int32
	eos      int32
}

// NewCharTokenizer creates the character tokenizer.
func NewCharTokenizer() *CharTokenizer {
	inventory := make([]string, 0, 44)
	for c := 'a'; c <= 'z'; c++ {
		inventory = append(inventory, string(c))
	}
	for c := '0'; c <= '9'; c++ {
		inventory = append(inventory, string(c))
	}
	inventory = append(inventory, ",", ".", "!", "?", "<UNK>", " ", "<S>", "</S>")

	charToID := make(map[string]int32, len(inventory))
	for id, char := range inventory {
		charToID[char] = int32(id) //nolint:gosec // inventory has 44 entries
	}
	return &CharTokenizer{
		idToChar: inventory,
		charToID: charToID,
		unk:      charToID["<UNK>"],
		bos:      charToID["<S>"],
		eos:      charToID["</S>"],
	}
}

// Encode converts text to token IDs, one per character.
func (c *CharTokenizer) Encode(text string) ([]int32, error) {
	lowered := strings.ToLower(text)
	tokens := make([]int32, 0, len(lowered))
	for _, r := range lowered {
		id, ok := c.charToID[string(r)]
		if !ok {
			id = c.unk
		}
		tokens = append(tokens, id)
	}
	return tokens, nil
}

// Decode converts token IDs back to text. Special tokens decode to
// their markers.
func (c *CharTokenizer) Decode(tokens []int32) (string, error) {
	var b strings.Builder
	for _, token := range tokens {
		if token < 0 || int(token) >= len(c.idToChar) {
			return "", fmt.Errorf("token %d outside the character inventory", token)
		}
		b.WriteString(c.idToChar[token])
	}
	return b.String(), nil
}

// VocabSize returns the inventory size.
func (c *CharTokenizer) VocabSize() int { return len(c.idToChar) }

// BosToken returns the <S> delimiter id.
func (c *CharTokenizer) BosToken() int32 { return c.bos }

// EosToken returns the </S> delimiter id.
func (c *CharTokenizer) EosToken() int32 { return c.eos }

// UnkToken returns the <UNK> id.
func (c *CharTokenizer) UnkToken() int32 { return c.unk }

// IsSpecialToken reports whether the id is <UNK>, <S> or </S>.
func (c *CharTokenizer) IsSpecialToken(token int32) bool {
	return token == c.unk || token == c.bos || token == c.eos
}
