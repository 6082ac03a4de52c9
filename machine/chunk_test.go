package machine

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubigma/cubigma/symbols"
)

func TestOrderPrefixRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for order := 0; order < NumChunks; order++ {
		for rep := 0; rep < 20; rep++ {
			q := orderPrefix(order, rng)
			require.Len(t, q, quartetLen)
			got, err := orderFromPrefix(q)
			require.NoError(t, err)
			assert.Equal(t, order, got)
		}
	}
}

func TestOrderFromPrefixErrors(t *testing.T) {
	pad := symbols.Pads[0]
	var frameErr *FramingError

	_, err := orderFromPrefix([]string{pad, pad, pad, pad})
	require.Error(t, err)
	assert.True(t, errors.As(err, &frameErr))

	_, err = orderFromPrefix([]string{"1", pad, "3", pad})
	require.Error(t, err)
	assert.True(t, errors.As(err, &frameErr))
}

func TestChunkSide(t *testing.T) {
	used := make(map[int]bool)
	assert.Equal(t, 2, chunkSide(4, used))
	assert.Equal(t, 4, chunkSide(4, used), "taken sides are skipped")
	assert.Equal(t, 6, chunkSide(17, used))
	assert.Equal(t, 8, chunkSide(17, used))
}

func TestChunkMessageShape(t *testing.T) {
	m := mustMachine(t, smallConfig())
	chunks, err := m.ChunkMessage(strings.Repeat("the rain in spain ", 6))
	require.NoError(t, err)
	require.Len(t, chunks, NumChunks)

	seen := make(map[int]bool, NumChunks)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		n := symbols.Length(ch.Symbols)
		side := 0
		for side*side < n {
			side++
		}
		assert.Equal(t, n, side*side, "chunk %d length %d is not square", i, n)
		assert.Zero(t, side%2, "chunk %d side %d is odd", i, side)
		assert.False(t, seen[n], "chunk %d repeats size %d", i, n)
		seen[n] = true
	}
}

func TestChunkDechunkRoundTrip(t *testing.T) {
	m := mustMachine(t, smallConfig())
	for _, msg := range []string{
		"",
		"q",
		"short",
		strings.Repeat("lorem ipsum dolor sit amet ", 4),
		strings.Repeat("a longer body of text, enough to spill into every chunk. ", 21),
		strings.Repeat("several thousand symbols of steady prose keep the framing honest. ", 70),
	} {
		chunks, err := m.ChunkMessage(msg)
		require.NoError(t, err)
		got, err := m.DechunkMessage(chunks)
		require.NoError(t, err)
		assert.Equal(t, msg, got, "round trip of %d symbols", symbols.Length(msg))
	}
}

func TestChunkMessageDeterministic(t *testing.T) {
	m := mustMachine(t, smallConfig())
	a, err := m.ChunkMessage("repeatable")
	require.NoError(t, err)
	b, err := m.ChunkMessage("repeatable")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncryptDecryptChunks(t *testing.T) {
	cfg := smallConfig()
	msg := "five ciphered pieces, one message"
	chunks, err := EncryptToChunks(msg, cfg)
	require.NoError(t, err)
	require.Len(t, chunks, NumChunks)
	for _, ch := range chunks {
		assert.NotContains(t, ch.Symbols, msg[:4])
	}

	got, err := DecryptFromChunks(chunks, cfg)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestDecryptChunksAnyOrder(t *testing.T) {
	cfg := smallConfig()
	msg := "order is recovered from the prefix, not the slice"
	chunks, err := EncryptToChunks(msg, cfg)
	require.NoError(t, err)

	// Shuffle and drop the order labels, as a steganographic extraction
	// would deliver them.
	shuffled := []Chunk{
		{Index: -1, Symbols: chunks[3].Symbols},
		{Index: -1, Symbols: chunks[0].Symbols},
		{Index: -1, Symbols: chunks[4].Symbols},
		{Index: -1, Symbols: chunks[1].Symbols},
		{Index: -1, Symbols: chunks[2].Symbols},
	}
	got, err := DecryptFromChunks(shuffled, cfg)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestDechunkMessageErrors(t *testing.T) {
	m := mustMachine(t, smallConfig())
	chunks, err := m.ChunkMessage("a perfectly ordinary message")
	require.NoError(t, err)
	var frameErr *FramingError

	_, err = m.DechunkMessage(chunks[:4])
	require.Error(t, err)
	assert.True(t, errors.As(err, &frameErr), "wrong chunk count")

	dup := append([]Chunk(nil), chunks...)
	dup[1] = dup[0]
	_, err = m.DechunkMessage(dup)
	require.Error(t, err)
	assert.True(t, errors.As(err, &frameErr), "duplicate order number")

	short := append([]Chunk(nil), chunks...)
	short[2].Symbols += "x"
	_, err = m.DechunkMessage(short)
	require.Error(t, err)
	assert.True(t, errors.As(err, &frameErr), "misaligned chunk")

	relabeled := append([]Chunk(nil), chunks...)
	relabeled[0].Index = 4
	relabeled[4].Index = 0
	_, err = m.DechunkMessage(relabeled)
	require.Error(t, err)
	assert.True(t, errors.As(err, &frameErr), "label contradicts prefix")
}

func TestDecryptFromChunksCountMismatch(t *testing.T) {
	cfg := smallConfig()
	chunks, err := EncryptToChunks("too few arrive", cfg)
	require.NoError(t, err)
	_, err = DecryptFromChunks(chunks[:3], cfg)
	require.Error(t, err)
	var frameErr *FramingError
	assert.True(t, errors.As(err, &frameErr))
}
