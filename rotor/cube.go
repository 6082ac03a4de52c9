// Package rotor implements the three dimensional symbol lattices the cipher
// machine runs on.  A cube is a bijection between lattice coordinates and the
// symbol table, kept as a flat coordinate-to-symbol array with a parallel
// symbol-to-coordinate index so both directions survive mutation.
package rotor

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/cubigma/cubigma/symbols"
)

// Axis names one of the three lattice axes a slice can rotate about.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// DeriveSeed folds the given strings through SHA-256 into a deterministic
// seed for math/rand, so every derivation is reproducible from the key
// material alone.
func DeriveSeed(parts ...string) int64 {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			io.WriteString(h, "|")
		}
		io.WriteString(h, p)
	}
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[0:8])) ^
		int64(binary.BigEndian.Uint64(sum[8:16])) ^
		int64(binary.BigEndian.Uint64(sum[16:24])) ^
		int64(binary.BigEndian.Uint64(sum[24:32]))
}

// Cube is one rotor: an N×N×N lattice holding every table symbol exactly
// once.  Coordinates are flattened row-major as (x*N + y)*N + z.
type Cube struct {
	n    int
	grid []string
	pos  map[string]int
}

// Build derives rotor cube number rotorIndex from the key phrase.  The table
// is shuffled by a seed folding the key with the rotor index, then laid into
// the lattice in row-major order.  Build is pure: identical inputs give a
// bit-identical cube on every platform.
func Build(keyPhrase string, rotorIndex int, table *symbols.Table, n int) (*Cube, error) {
	volume := n * n * n
	if table.Size() != volume {
		return nil, fmt.Errorf("symbol table holds %d symbols but a %d×%d×%d cube needs %d",
			table.Size(), n, n, n, volume)
	}
	grid := table.Symbols()
	rng := rand.New(rand.NewSource(DeriveSeed(keyPhrase, "rotor", strconv.Itoa(rotorIndex))))
	rng.Shuffle(len(grid), func(i, j int) { grid[i], grid[j] = grid[j], grid[i] })

	c := &Cube{n: n, grid: grid, pos: make(map[string]int, len(grid))}
	for i, s := range grid {
		c.pos[s] = i
	}
	return c, nil
}

// Size returns the side length N.
func (c *Cube) Size() int {
	return c.n
}

// Clone returns an independent copy sharing no state with c.
func (c *Cube) Clone() *Cube {
	grid := make([]string, len(c.grid))
	copy(grid, c.grid)
	pos := make(map[string]int, len(c.pos))
	for s, i := range c.pos {
		pos[s] = i
	}
	return &Cube{n: c.n, grid: grid, pos: pos}
}

// Coord returns the lattice coordinate of sym.
func (c *Cube) Coord(sym string) (x, y, z int, ok bool) {
	i, ok := c.pos[sym]
	if !ok {
		return 0, 0, 0, false
	}
	z = i % c.n
	y = (i / c.n) % c.n
	x = i / (c.n * c.n)
	return x, y, z, true
}

// SymbolAt returns the symbol occupying (x,y,z).
func (c *Cube) SymbolAt(x, y, z int) string {
	return c.grid[(x*c.n+y)*c.n+z]
}

// RotateSlice turns the one-cell-thick layer at the given index 90° about
// the axis, permuting the grid and the inverse index together.
func (c *Cube) RotateSlice(axis Axis, index int, clockwise bool) {
	n := c.n
	old := make([]string, n*n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			old[a*n+b] = c.grid[c.layerIndex(axis, index, a, b)]
		}
	}
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			var s string
			if clockwise {
				s = old[(n-1-b)*n+a]
			} else {
				s = old[b*n+(n-1-a)]
			}
			i := c.layerIndex(axis, index, a, b)
			c.grid[i] = s
			c.pos[s] = i
		}
	}
}

// layerIndex maps layer coordinates (a,b) of the slice at index on the given
// axis to a flat grid index.
func (c *Cube) layerIndex(axis Axis, index, a, b int) int {
	switch axis {
	case AxisX:
		return (index*c.n+a)*c.n + b
	case AxisY:
		return (a*c.n+index)*c.n + b
	default:
		return (a*c.n+b)*c.n + index
	}
}

// Valid checks the bijection invariant: every symbol occupies exactly one
// coordinate and the inverse index agrees with the grid.
func (c *Cube) Valid() error {
	if len(c.grid) != c.n*c.n*c.n {
		return fmt.Errorf("grid holds %d cells, want %d", len(c.grid), c.n*c.n*c.n)
	}
	if len(c.pos) != len(c.grid) {
		return fmt.Errorf("inverse index holds %d symbols, want %d", len(c.pos), len(c.grid))
	}
	for i, s := range c.grid {
		if c.pos[s] != i {
			return fmt.Errorf("symbol %q at cell %d but indexed at %d", s, i, c.pos[s])
		}
	}
	return nil
}
