package stego

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cubigma/cubigma/machine"
)

func testConfig() machine.Config {
	return machine.Config{
		KeyPhrase:        "picture this",
		Dims:             machine.Dims{X: 5, Y: 5, Z: 5},
		TotalRotors:      3,
		ActiveRotorCount: 2,
	}
}

// hostImage builds a gradient with no pure black pixels, so nothing in the
// host can pose as a terminator.
func hostImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(40 + x%200),
				G: uint8(40 + y%200),
				B: 90,
				A: 255,
			})
		}
	}
	return img
}

func TestPixelCodec(t *testing.T) {
	for _, r := range []rune{'a', 'Z', '\n', 0xE000, 0xE003, '🌀', maxRune} {
		px, err := encodePixel(r)
		require.NoError(t, err)
		assert.Equal(t, r, decodePixel(px), "%U", r)
	}

	_, err := encodePixel(0)
	assert.Error(t, err)
	_, err = encodePixel(maxRune + 1)
	assert.Error(t, err)
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	cfg := testConfig()
	msg := "meet me at the old lighthouse at dawn"
	chunks, err := machine.EncryptToChunks(msg, cfg)
	require.NoError(t, err)

	carrier, err := Embed(hostImage(64, 64), chunks)
	require.NoError(t, err)

	got, err := Extract(carrier)
	require.NoError(t, err)
	require.Len(t, got, machine.NumChunks)
	for _, ch := range got {
		assert.Equal(t, -1, ch.Index)
	}

	plain, err := machine.DecryptFromChunks(got, cfg)
	require.NoError(t, err)
	assert.Equal(t, msg, plain)
}

func TestEmbedLeavesHostSize(t *testing.T) {
	chunks, err := machine.EncryptToChunks("size must not change", testConfig())
	require.NoError(t, err)
	carrier, err := Embed(hostImage(80, 60), chunks)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 60), carrier.Bounds())
}

func TestEmbedRejectsWrongChunkCount(t *testing.T) {
	_, err := Embed(hostImage(64, 64), []machine.Chunk{{Index: 0, Symbols: "abcd"}})
	assert.Error(t, err)
}

func TestEmbedRejectsTinyImage(t *testing.T) {
	chunks, err := machine.EncryptToChunks("this will not fit", testConfig())
	require.NoError(t, err)
	_, err = Embed(hostImage(8, 8), chunks)
	assert.Error(t, err)
}

func TestEmbedRejectsOverlappingSquares(t *testing.T) {
	// 21×21 clears every edge, but the framed center square would land on
	// top of a corner square and overwrite its payload.
	chunks, err := machine.EncryptToChunks("hi", testConfig())
	require.NoError(t, err)
	_, err = Embed(hostImage(21, 21), chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap")
}

func TestExtractRejectsPlainImage(t *testing.T) {
	_, err := Extract(hostImage(64, 64))
	assert.Error(t, err)
}

func TestEmbedExtractFiles(t *testing.T) {
	cfg := testConfig()
	msg := "files round trip through png"
	chunks, err := machine.EncryptToChunks(msg, cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	hostPath := filepath.Join(dir, "host.png")
	outPath := filepath.Join(dir, "carrier.png")

	f, err := os.Create(hostPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, hostImage(96, 96)))
	require.NoError(t, f.Close())

	require.NoError(t, EmbedFile(hostPath, outPath, chunks))

	got, err := ExtractFile(outPath)
	require.NoError(t, err)
	plain, err := machine.DecryptFromChunks(got, cfg)
	require.NoError(t, err)
	assert.Equal(t, msg, plain)
}

func TestExtractFileMissing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}
