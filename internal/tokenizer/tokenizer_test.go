package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharTokenizer_Encode(t *testing.T) {
	tok := NewCharTokenizer()

	tokens, err := tok.Encode("ab c")
	require.NoError(t, err)
	space := tok.VocabSize() - 3
	assert.Equal(t, []int32{0, 1, int32(space), 2}, tokens)

	// Case folds, unknown characters map to <UNK>.
	upper, err := tok.Encode("A")
	require.NoError(t, err)
	assert.Equal(t, []int32{0}, upper)

	unknown, err := tok.Encode("ñ")
	require.NoError(t, err)
	assert.Equal(t, []int32{tok.UnkToken()}, unknown)
}

func TestCharTokenizer_RoundTrip(t *testing.T) {
	tok := NewCharTokenizer()

	text := "reverse these words, now!"
	tokens, err := tok.Encode(text)
	require.NoError(t, err)

	decoded, err := tok.Decode(tokens)
	require.NoError(t, err)
	assert.Equal(t, text, decoded)
}

func TestCharTokenizer_Specials(t *testing.T) {
	tok := NewCharTokenizer()

	assert.Equal(t, 44, tok.VocabSize())
	assert.Equal(t, int32(42), tok.BosToken())
	assert.Equal(t, int32(43), tok.EosToken())
	assert.Equal(t, int32(40), tok.UnkToken())

	assert.True(t, tok.IsSpecialToken(tok.BosToken()))
	assert.True(t, tok.IsSpecialToken(tok.EosToken()))
	assert.True(t, tok.IsSpecialToken(tok.UnkToken()))
	assert.False(t, tok.IsSpecialToken(0))

	framed, err := tok.Decode([]int32{tok.BosToken(), 7, 8, tok.EosToken()})
	require.NoError(t, err)
	assert.Equal(t, "<S>hi</S>", framed)

	_, err = tok.Decode([]int32{99})
	assert.Error(t, err)
}

func TestTikToken(t *testing.T) {
	_, err := NewTikToken("invalid_encoding_xyz")
	assert.Error(t, err)

	tok, err := NewTikToken("cl100k_base")
	require.NoError(t, err)
	assert.Equal(t, 100256, tok.VocabSize())
	assert.Equal(t, int32(100257), tok.EosToken())
	assert.Equal(t, int32(-1), tok.BosToken())

	tokens, err := tok.Encode("hello world")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	decoded, err := tok.Decode(tokens)
	require.NoError(t, err)
	assert.Equal(t, "hello world", decoded)
}
