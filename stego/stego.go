// Package stego embeds ciphertext chunks into PNG images and extracts them
// again.  It is a thin I/O layer over the machine's chunk API: five squares
// of digit-coded pixels at the four corners and the center, with no
// visibility into rotor internals.
package stego

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/cubigma/cubigma/machine"
)

// maxRune is the largest code point the six-digit pixel coding can carry.
const maxRune = 999999

// fillerRune pads the unused tail of a square.  It decodes below any real
// symbol's code point, so extraction can drop it, and its pixel is not
// black, so it never terminates square discovery early.
const fillerRune = 1

// encodePixel packs one code point into an RGB pixel: the decimal form
// zero-filled to six digits, two digits per channel.
func encodePixel(r rune) (color.RGBA, error) {
	if r <= 0 || r > maxRune {
		return color.RGBA{}, errors.Errorf("code point %U outside embeddable range", r)
	}
	v := int(r)
	return color.RGBA{
		R: uint8(v / 10000),
		G: uint8(v / 100 % 100),
		B: uint8(v % 100),
		A: 255,
	}, nil
}

// decodePixel reverses encodePixel.  A pure black pixel decodes to zero, the
// terminator.
func decodePixel(c color.Color) rune {
	r, g, b, _ := c.RGBA()
	return rune(int(r>>8)*10000 + int(g>>8)*100 + int(b>>8))
}

// squareSide returns the side of the smallest square holding n pixels.
func squareSide(n int) int {
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// region is the top-left anchor of one embedded square.
type region struct {
	x, y int
}

// rect is a half-open pixel rectangle.
type rect struct {
	x0, y0, x1, y1 int
}

func (r rect) inside(w, h int) bool {
	return r.x0 >= 0 && r.y0 >= 0 && r.x1 <= w && r.y1 <= h
}

func (r rect) intersects(o rect) bool {
	return r.x0 < o.x1 && o.x0 < r.x1 && r.y0 < o.y1 && o.y0 < r.y1
}

// footprints returns the pixel rectangle every square claims: each corner
// square plus the terminator pixel on its discovery diagonal, and the center
// square plus its one-pixel frame.
func footprints(w, h int, sides []int) []rect {
	c := sides[4] + 2
	cx, cy := (w-c)/2, (h-c)/2
	return []rect{
		{0, 0, sides[0] + 1, sides[0] + 1},
		{w - sides[1] - 1, 0, w, sides[1] + 1},
		{0, h - sides[2] - 1, sides[2] + 1, h},
		{w - sides[3] - 1, h - sides[3] - 1, w, h},
		{cx, cy, cx + c, cy + c},
	}
}

// regions lays out the five squares: four corners then dead center.  The
// center square gets a one-pixel black frame so extraction can find its
// anchor without knowing its size.
func regions(w, h int, sides []int) []region {
	c := sides[4] + 2
	return []region{
		{0, 0},
		{w - sides[1], 0},
		{0, h - sides[2]},
		{w - sides[3], h - sides[3]},
		{(w-c)/2 + 1, (h-c)/2 + 1},
	}
}

// Embed writes the five chunks into a copy of img and returns it.  Every
// square is followed by a black terminator pixel on its discovery diagonal.
func Embed(img image.Image, chunks []machine.Chunk) (*image.RGBA, error) {
	if len(chunks) != machine.NumChunks {
		return nil, errors.Errorf("got %d chunks, want %d", len(chunks), machine.NumChunks)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)

	payloads := make([][]rune, machine.NumChunks)
	sides := make([]int, machine.NumChunks)
	for i, ch := range chunks {
		payloads[i] = []rune(ch.Symbols)
		sides[i] = squareSide(len(payloads[i]))
	}
	claims := footprints(w, h, sides)
	for i, r := range claims {
		if !r.inside(w, h) {
			return nil, errors.Errorf("image %dx%d too small for the embedded squares", w, h)
		}
		for _, o := range claims[:i] {
			if r.intersects(o) {
				return nil, errors.Errorf("image %dx%d too small: embedded squares would overlap", w, h)
			}
		}
	}

	black := color.RGBA{A: 255}
	anchors := regions(w, h, sides)
	for i, anchor := range anchors {
		s := sides[i]
		for j, r := range payloads[i] {
			px, err := encodePixel(r)
			if err != nil {
				return nil, err
			}
			out.SetRGBA(anchor.x+j%s, anchor.y+j/s, px)
		}
		filler, _ := encodePixel(fillerRune)
		for j := len(payloads[i]); j < s*s; j++ {
			out.SetRGBA(anchor.x+j%s, anchor.y+j/s, filler)
		}
	}

	// Terminator pixels on the corner discovery diagonals.
	out.SetRGBA(sides[0], sides[0], black)
	out.SetRGBA(w-1-sides[1], sides[1], black)
	out.SetRGBA(sides[2], h-1-sides[2], black)
	out.SetRGBA(w-1-sides[3], h-1-sides[3], black)

	// Frame around the center square.
	cs := sides[4]
	cx, cy := anchors[4].x-1, anchors[4].y-1
	for k := 0; k < cs+2; k++ {
		out.SetRGBA(cx+k, cy, black)
		out.SetRGBA(cx+k, cy+cs+1, black)
		out.SetRGBA(cx, cy+k, black)
		out.SetRGBA(cx+cs+1, cy+k, black)
	}
	return out, nil
}

// isBlack reports a terminator pixel.
func isBlack(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 == 0 && g>>8 == 0 && b>>8 == 0
}

// discoverSide walks the diagonal from a corner anchor until the terminator.
func discoverSide(img image.Image, x0, y0, dx, dy int) int {
	b := img.Bounds()
	size := 0
	for {
		x, y := x0+dx*size, y0+dy*size
		if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
			return size
		}
		if isBlack(img.At(x, y)) {
			return size
		}
		size++
	}
}

// extractSquare reads a side×side square, dropping filler pixels.
func extractSquare(img image.Image, x0, y0, side int) string {
	b := img.Bounds()
	runes := make([]rune, 0, side*side)
	for j := 0; j < side*side; j++ {
		r := decodePixel(img.At(b.Min.X+x0+j%side, b.Min.Y+y0+j/side))
		if r <= fillerRune {
			continue
		}
		runes = append(runes, r)
	}
	return string(runes)
}

// Extract recovers the five chunks from an image produced by Embed.  Chunk
// order numbers are unknown at this layer; the decrypted order prefixes
// settle them, so every chunk is returned with Index -1.
func Extract(img image.Image) ([]machine.Chunk, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	tl := discoverSide(img, b.Min.X, b.Min.Y, 1, 1)
	tr := discoverSide(img, b.Max.X-1, b.Min.Y, -1, 1)
	bl := discoverSide(img, b.Min.X, b.Max.Y-1, 1, -1)
	br := discoverSide(img, b.Max.X-1, b.Max.Y-1, -1, -1)
	if tl == 0 || tr == 0 || bl == 0 || br == 0 {
		return nil, errors.New("no embedded squares found in image")
	}

	// Walk from the center to the frame to anchor the fifth square.
	cx, cy := b.Min.X+w/2, b.Min.Y+h/2
	x := cx
	for x > b.Min.X && !isBlack(img.At(x-1, cy)) {
		x--
	}
	y := cy
	for y > b.Min.Y && !isBlack(img.At(cx, y-1)) {
		y--
	}
	if x == b.Min.X || y == b.Min.Y {
		return nil, errors.New("center square frame not found in image")
	}
	cs := discoverSide(img, x, y, 1, 1)

	chunks := []machine.Chunk{
		{Index: -1, Symbols: extractSquare(img, 0, 0, tl)},
		{Index: -1, Symbols: extractSquare(img, w-tr, 0, tr)},
		{Index: -1, Symbols: extractSquare(img, 0, h-bl, bl)},
		{Index: -1, Symbols: extractSquare(img, w-br, h-br, br)},
		{Index: -1, Symbols: extractSquare(img, x-b.Min.X, y-b.Min.Y, cs)},
	}
	return chunks, nil
}

// EmbedFile embeds chunks into the PNG at inPath and writes the result to
// outPath.
func EmbedFile(inPath, outPath string, chunks []machine.Chunk) error {
	fin, err := os.Open(inPath)
	if err != nil {
		return errors.Wrapf(err, "opening %s", inPath)
	}
	defer fin.Close()
	img, err := png.Decode(fin)
	if err != nil {
		return errors.Wrapf(err, "decoding %s", inPath)
	}
	out, err := Embed(img, chunks)
	if err != nil {
		return err
	}
	fout, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "creating %s", outPath)
	}
	defer fout.Close()
	if err := png.Encode(fout, out); err != nil {
		return errors.Wrapf(err, "encoding %s", outPath)
	}
	log.WithFields(log.Fields{"image": outPath, "chunks": len(chunks)}).Info("embedded message")
	return nil
}

// ExtractFile recovers the chunks embedded in the PNG at path.
func ExtractFile(path string) ([]machine.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return Extract(img)
}
