// Package symbols holds the ordered alphabet of encodable symbols and the
// grapheme handling needed to treat emoji as single symbols.
package symbols

import (
	"fmt"

	"github.com/rivo/uniseg"
)

const (
	// Noise marks quartets that carry padding instead of message text.
	Noise = ""
)

// Pads are the three reserved symbols used to fill partial quartets.
var Pads = [3]string{"", "", ""}

// AlphabetError reports a symbol that is absent from the configured table.
type AlphabetError struct {
	Symbol string
}

func (e *AlphabetError) Error() string {
	return fmt.Sprintf("symbol %q is not in the symbol table", e.Symbol)
}

// Split breaks s into user-perceived symbols (grapheme clusters), so a
// multi-rune emoji counts as one symbol.
func Split(s string) []string {
	var out []string
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}

// Length returns the user-perceived length of s.
func Length(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// IsReserved reports whether sym is one of the pad or noise symbols that
// plaintext may never contain.
func IsReserved(sym string) bool {
	if sym == Noise {
		return true
	}
	for _, p := range Pads {
		if sym == p {
			return true
		}
	}
	return false
}

var master []string

// standsAlone reports whether r forms its own grapheme cluster next to any
// other table symbol.  Skin tone modifiers (U+1F3FB..U+1F3FF) fuse with a
// preceding emoji base into one cluster; a symbol that can vanish into its
// neighbor would corrupt the symbol stream when ciphertext is joined and
// re-split, so such code points never enter the inventory.
func standsAlone(r rune) bool {
	return r < 0x1F3FB || r > 0x1F3FF
}

// masterList returns the full ordered symbol inventory, most common first.
// The reserved framing symbols lead so every table size keeps them, followed
// by text ordered roughly by English frequency, then progressively rarer
// Unicode ranges.  Tables are cut from the front of this list.
func masterList() []string {
	if master != nil {
		return master
	}
	out := []string{Noise, Pads[0], Pads[1], Pads[2]}
	head := " etaoinshrdlcumwfgypbvkjxqz" +
		"ETAOINSHRDLCUMWFGYPBVKJXQZ" +
		"0123456789" +
		".,!?'\"-:;()[]{}<>/\\|@#$%^&*_+=~`\n\t"
	for _, r := range head {
		out = append(out, string(r))
	}
	ranges := []struct{ lo, hi rune }{
		{0x00C0, 0x00FF}, // Latin-1 letters
		{0x0391, 0x03C9}, // Greek
		{0x0410, 0x044F}, // Cyrillic
		{0x2190, 0x21FF}, // arrows
		{0x2200, 0x22FF}, // mathematical operators
		{0x2500, 0x257F}, // box drawing
		{0x1F300, 0x1F5FF}, // misc symbols and pictographs
		{0x1F600, 0x1F64F}, // emoticons
		{0x1F680, 0x1F6C5}, // transport
		{0x1F900, 0x1F9FF}, // supplemental symbols
	}
	for _, rr := range ranges {
		for r := rr.lo; r <= rr.hi; r++ {
			if !standsAlone(r) {
				continue
			}
			out = append(out, string(r))
		}
	}
	master = out
	return master
}

// Table is an ordered sequence of unique symbols sized to one cube volume.
type Table struct {
	symbols []string
	index   map[string]int
}

// NewTable cuts a table of exactly volume symbols from the master inventory
// and orders it least common first, which feeds rarer symbols into lattice
// construction earlier.
func NewTable(volume int) (*Table, error) {
	m := masterList()
	if volume > len(m) {
		return nil, fmt.Errorf("symbol inventory holds %d symbols, %d requested", len(m), volume)
	}
	syms := make([]string, volume)
	for i := 0; i < volume; i++ {
		syms[i] = m[volume-1-i]
	}
	idx := make(map[string]int, volume)
	for i, s := range syms {
		idx[s] = i
	}
	return &Table{symbols: syms, index: idx}, nil
}

// Size returns the number of symbols in the table.
func (t *Table) Size() int {
	return len(t.symbols)
}

// At returns the symbol at position i in table order.
func (t *Table) At(i int) string {
	return t.symbols[i]
}

// Index returns the table position of sym.
func (t *Table) Index(sym string) (int, bool) {
	i, ok := t.index[sym]
	return i, ok
}

// Contains reports whether sym is in the table.
func (t *Table) Contains(sym string) bool {
	_, ok := t.index[sym]
	return ok
}

// Symbols returns a copy of the table in order.
func (t *Table) Symbols() []string {
	out := make([]string, len(t.symbols))
	copy(out, t.symbols)
	return out
}

// CheckMessage verifies that every symbol of msg is encodable: present in
// the table and not one of the reserved framing symbols.
func (t *Table) CheckMessage(msg []string) error {
	for _, s := range msg {
		if IsReserved(s) || !t.Contains(s) {
			return &AlphabetError{Symbol: s}
		}
	}
	return nil
}

// CheckCiphertext verifies that every symbol of msg is present in the table.
// Reserved symbols are legal here since padding survives encryption.
func (t *Table) CheckCiphertext(msg []string) error {
	for _, s := range msg {
		if !t.Contains(s) {
			return &AlphabetError{Symbol: s}
		}
	}
	return nil
}
