package machine

import (
	"encoding/base64"

	"github.com/cubigma/cubigma/symbols"
)

const (
	// MinVolume and MaxVolume bound the supported lattice volume
	// (exclusive on both ends).
	MinVolume = 101
	MaxVolume = 1646

	defaultCubeSize         = 7
	defaultTotalRotors      = 5
	defaultActiveRotorCount = 3
)

// Dims are the lattice dimensions of one rotor cube.
type Dims struct {
	X, Y, Z int
}

// Volume returns X·Y·Z.
func (d Dims) Volume() int {
	return d.X * d.Y * d.Z
}

// Config carries every shared parameter both parties must agree on.  The
// zero value of each field falls back to the documented default.
type Config struct {
	// KeyPhrase is the shared secret.  Required.
	KeyPhrase string

	// Dims are the rotor cube dimensions.  Default 7×7×7.  The three
	// sides must be equal: stepping rotates square slices.
	Dims Dims

	// TotalRotors is how many rotor cubes are generated.  Default 5.
	TotalRotors int

	// ActiveRotorCount is how many of the generated cubes take part in a
	// session.  Default 3.
	ActiveRotorCount int

	// ActiveRotors, when non-empty, overrides the key-derived selection
	// with an explicit ordered list of rotor indices.
	ActiveRotors []int

	// PlugboardPairs are mutually substituted symbol pairs.
	PlugboardPairs [][2]string

	// Salt, when set, is the base64 PBKDF2 salt.  When empty the salt is
	// derived from the key phrase so that the ciphertext depends on the
	// shared secret alone.
	Salt string
}

// withDefaults returns cfg with zero-valued fields replaced by defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Dims == (Dims{}) {
		cfg.Dims = Dims{X: defaultCubeSize, Y: defaultCubeSize, Z: defaultCubeSize}
	}
	if cfg.TotalRotors == 0 {
		cfg.TotalRotors = defaultTotalRotors
	}
	if cfg.ActiveRotorCount == 0 {
		if len(cfg.ActiveRotors) > 0 {
			cfg.ActiveRotorCount = len(cfg.ActiveRotors)
		} else {
			cfg.ActiveRotorCount = defaultActiveRotorCount
		}
	}
	return cfg
}

// validate checks every configuration invariant before any cipher state is
// built.  Every violation surfaces as a ConfigError.
func (cfg Config) validate() error {
	if len(cfg.KeyPhrase) < 1 {
		return configErrorf("key phrase must not be empty")
	}
	d := cfg.Dims
	if d.X < 1 || d.Y < 1 || d.Z < 1 {
		return configErrorf("cube dimensions %d×%d×%d must all be positive", d.X, d.Y, d.Z)
	}
	if v := d.Volume(); v <= MinVolume || v >= MaxVolume {
		return configErrorf("cube volume %d outside supported range (%d, %d)", v, MinVolume, MaxVolume)
	}
	if d.X != d.Y || d.Y != d.Z {
		return configErrorf("cube dimensions %d×%d×%d must be equal: slice rotation needs square layers", d.X, d.Y, d.Z)
	}
	if cfg.TotalRotors < 1 {
		return configErrorf("totalRotors must be at least 1, got %d", cfg.TotalRotors)
	}
	if cfg.ActiveRotorCount < 1 || cfg.ActiveRotorCount > cfg.TotalRotors {
		return configErrorf("activeRotorCount must be between 1 and %d, got %d", cfg.TotalRotors, cfg.ActiveRotorCount)
	}
	if len(cfg.ActiveRotors) > 0 {
		if len(cfg.ActiveRotors) != cfg.ActiveRotorCount {
			return configErrorf("activeRotors lists %d rotors but activeRotorCount is %d",
				len(cfg.ActiveRotors), cfg.ActiveRotorCount)
		}
		seen := make(map[int]bool, len(cfg.ActiveRotors))
		for _, idx := range cfg.ActiveRotors {
			if idx < 0 || idx >= cfg.TotalRotors {
				return configErrorf("active rotor index %d out of range [0,%d)", idx, cfg.TotalRotors)
			}
			if seen[idx] {
				return configErrorf("active rotor index %d selected twice", idx)
			}
			seen[idx] = true
		}
	}
	if cfg.Salt != "" {
		if raw, err := base64.StdEncoding.DecodeString(cfg.Salt); err != nil || len(raw) != saltLen {
			return configErrorf("salt must be %d base64-encoded bytes", saltLen)
		}
	}
	return nil
}

// checkPlugboard verifies pair symbols against the built table: present,
// not reserved, and no symbol plugged twice.
func checkPlugboard(pairs [][2]string, table *symbols.Table) error {
	seen := make(map[string]bool, len(pairs)*2)
	for _, p := range pairs {
		for _, s := range p {
			if symbols.IsReserved(s) {
				return configErrorf("plugboard symbol %q is reserved for framing", s)
			}
			if !table.Contains(s) {
				return configErrorf("plugboard symbol %q is not in the symbol table", s)
			}
			if seen[s] {
				return configErrorf("symbol %q appears in more than one plugboard pair", s)
			}
			seen[s] = true
		}
		if p[0] == p[1] {
			return configErrorf("plugboard pair %q/%q connects a symbol to itself", p[0], p[1])
		}
	}
	return nil
}

// ParsePlugboardPairs turns config-file entries like "AB" (two symbols,
// mutually swapped) into pairs.  Emoji count as one symbol each.
func ParsePlugboardPairs(entries []string) ([][2]string, error) {
	out := make([][2]string, 0, len(entries))
	for _, e := range entries {
		syms := symbols.Split(e)
		if len(syms) != 2 {
			return nil, configErrorf("plugboard entry %q must hold exactly two symbols", e)
		}
		out = append(out, [2]string{syms[0], syms[1]})
	}
	return out, nil
}
