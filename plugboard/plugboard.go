// Package plugboard implements the involutive symbol-pair swap applied on
// both sides of the quartet codec, the way an Enigma plugboard sits on both
// signal directions.
package plugboard

import "fmt"

// Board maps each plugged symbol to its partner.  Symbols without a plug
// pass through unchanged, so Swap is total over any alphabet.
type Board struct {
	swap map[string]string
}

// New builds a board from symbol pairs.  A symbol may appear in at most one
// pair and never paired with itself.
func New(pairs [][2]string) (*Board, error) {
	swap := make(map[string]string, len(pairs)*2)
	for _, p := range pairs {
		a, b := p[0], p[1]
		if a == b {
			return nil, fmt.Errorf("plugboard pair %q/%q connects a symbol to itself", a, b)
		}
		if _, dup := swap[a]; dup {
			return nil, fmt.Errorf("symbol %q appears in more than one plugboard pair", a)
		}
		if _, dup := swap[b]; dup {
			return nil, fmt.Errorf("symbol %q appears in more than one plugboard pair", b)
		}
		swap[a] = b
		swap[b] = a
	}
	return &Board{swap: swap}, nil
}

// Swap returns the partner of sym, or sym itself when unplugged.  Applying
// Swap twice is the identity.
func (b *Board) Swap(sym string) string {
	if b == nil {
		return sym
	}
	if out, ok := b.swap[sym]; ok {
		return out
	}
	return sym
}

// Pairs returns every plugged symbol and its partner, one entry per symbol.
func (b *Board) Pairs() map[string]string {
	out := make(map[string]string, len(b.swap))
	for k, v := range b.swap {
		out[k] = v
	}
	return out
}
