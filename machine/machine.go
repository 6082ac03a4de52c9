// Package machine assembles the rotor cubes, plugboard and quartet codec
// into the Cubigma cipher machine.  One Machine holds the immutable session
// prototype built from the configuration; every encode or decode run clones
// it into a private session whose rotor state steps once per quartet.
package machine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/cubigma/cubigma/plugboard"
	"github.com/cubigma/cubigma/rotor"
	"github.com/cubigma/cubigma/symbols"
)

const quartetLen = 4

type quartet [quartetLen]string

// Machine is the prepared cipher machine.  It is immutable once built and
// safe to share: mutation happens only inside per-run sessions.
type Machine struct {
	table    *symbols.Table
	board    *plugboard.Board
	bank     *rotor.Bank
	key      string // strengthened key, every derivation runs from this
	segments []string
}

// New validates cfg, strengthens the key phrase and builds every rotor cube.
// All ConfigError conditions surface here, before any message is touched.
func New(cfg Config) (*Machine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	salt := defaultSalt(cfg.KeyPhrase)
	if cfg.Salt != "" {
		salt, _ = base64.StdEncoding.DecodeString(cfg.Salt)
	}
	key := strengthenKey(cfg.KeyPhrase, salt)

	table, err := symbols.NewTable(cfg.Dims.Volume())
	if err != nil {
		return nil, configErrorf("%v", err)
	}
	if err := checkPlugboard(cfg.PlugboardPairs, table); err != nil {
		return nil, err
	}
	board, err := plugboard.New(cfg.PlugboardPairs)
	if err != nil {
		return nil, configErrorf("%v", err)
	}

	cubes := make([]*rotor.Cube, cfg.TotalRotors)
	for i := range cubes {
		cubes[i], err = rotor.Build(key, i, table, cfg.Dims.X)
		if err != nil {
			return nil, configErrorf("%v", err)
		}
	}
	active := cfg.ActiveRotors
	if len(active) == 0 {
		active, err = rotor.SelectActive(key, cfg.TotalRotors, cfg.ActiveRotorCount)
		if err != nil {
			return nil, configErrorf("%v", err)
		}
	}
	bank, err := rotor.NewBank(cubes, active)
	if err != nil {
		return nil, configErrorf("%v", err)
	}

	return &Machine{
		table:    table,
		board:    board,
		bank:     bank,
		key:      key,
		segments: splitKeySegments(key, len(active)),
	}, nil
}

// Table returns the symbol table the machine was built with.
func (m *Machine) Table() *symbols.Table {
	return m.table
}

// session is the mutable state of one encode or decode run: private clones
// of the active rotor cubes plus the quartet position counter.  A session is
// driven by a single goroutine and discarded at end of run.
type session struct {
	m       *Machine
	cubes   []*rotor.Cube
	counter uint64
}

func (m *Machine) newSession() *session {
	return &session{m: m, cubes: m.bank.CloneActive()}
}

// complementIn substitutes each quartet symbol with the one on the
// diagonally opposite corner of the cube.  The complement acts on every
// coordinate independently, so it is an involution for any input, aligned
// or degenerate quartets included; the center cell of an odd cube maps to
// itself, which the cipher tolerates.
func complementIn(c *rotor.Cube, q quartet) (quartet, error) {
	n := c.Size()
	for i, sym := range q {
		x, y, z, ok := c.Coord(sym)
		if !ok {
			return q, &symbols.AlphabetError{Symbol: sym}
		}
		q[i] = c.SymbolAt(n-1-x, n-1-y, n-1-z)
	}
	return q, nil
}

// reflectorPairings are the three involutive double transpositions of four
// positions.  Swapping two disjoint pairs twice is the identity.
var reflectorPairings = [3][quartetLen]int{
	{1, 0, 3, 2},
	{2, 3, 0, 1},
	{3, 2, 1, 0},
}

// reflect reorders the quartet by a pairing selected from the key and the
// current position counter, both of which encode and decode share.
func (s *session) reflect(q quartet) quartet {
	mac := hmac.New(sha256.New, []byte(s.m.key))
	io.WriteString(mac, strconv.FormatUint(s.counter, 10))
	p := reflectorPairings[int(mac.Sum(nil)[0])%len(reflectorPairings)]
	var out quartet
	for i := range out {
		out[i] = q[p[i]]
	}
	return out
}

// transform runs the quartet through the active rotors in order, the
// reflector, then the rotors in reverse order.  Each pass is an involution,
// and the palindrome makes the whole transform one: applied to its own
// output with unchanged rotor state it returns the original quartet.
func (s *session) transform(q quartet) (quartet, error) {
	var err error
	for _, c := range s.cubes {
		if q, err = complementIn(c, q); err != nil {
			return q, err
		}
	}
	q = s.reflect(q)
	for i := len(s.cubes) - 1; i >= 0; i-- {
		if q, err = complementIn(s.cubes[i], q); err != nil {
			return q, err
		}
	}
	return q, nil
}

// step rotates one slice of every active cube after a quartet has been
// transformed.  The drive value folds the rotor's key segment with the
// summed code points of the codec input and output; the sum is commutative
// in the two quartets, so encode and decode derive the same rotation.
func (s *session) step(in, out quartet) {
	var pair int64
	for _, sym := range in {
		pair += runeSum(sym)
	}
	for _, sym := range out {
		pair += runeSum(sym)
	}
	for i, c := range s.cubes {
		v := runeSum(s.m.segments[i]) - pair
		if v < 0 {
			v = -v
		}
		v += int64(s.counter)
		n := int64(c.Size())
		c.RotateSlice(rotor.Axis(v%3), int(v%n), v%2 == 0)
	}
}

// process pushes one quartet through plugboard, codec and plugboard, then
// advances the rotor state.  Stepping sees the codec-side quartets, which
// are identical whichever direction the run goes.
func (s *session) process(q quartet) (quartet, error) {
	for i := range q {
		q[i] = s.m.board.Swap(q[i])
	}
	out, err := s.transform(q)
	if err != nil {
		return out, err
	}
	s.step(q, out)
	s.counter++
	for i := range out {
		out[i] = s.m.board.Swap(out[i])
	}
	return out, nil
}

// run processes a quartet-aligned symbol stream through the session.
func (s *session) run(syms []string) ([]string, error) {
	if len(syms)%quartetLen != 0 {
		return nil, framingErrorf("stream length %d is not a quartet multiple", len(syms))
	}
	out := make([]string, 0, len(syms))
	for i := 0; i < len(syms); i += quartetLen {
		var q quartet
		copy(q[:], syms[i:i+quartetLen])
		r, err := s.process(q)
		if err != nil {
			return nil, err
		}
		out = append(out, r[:]...)
	}
	return out, nil
}

// paddingRNG returns the deterministic generator used for pad and noise
// symbols, so the padding a sender produces is reproducible from the key.
func (m *Machine) paddingRNG() *rand.Rand {
	return rand.New(rand.NewSource(rotor.DeriveSeed(m.key, "padding")))
}

// padToQuartet extends syms with reserved pad symbols until its length is a
// quartet multiple.
func padToQuartet(syms []string, rng *rand.Rand) []string {
	for len(syms)%quartetLen != 0 {
		syms = append(syms, symbols.Pads[rng.Intn(len(symbols.Pads))])
	}
	return syms
}

// stripFraming removes noise quartets and pad symbols from a decrypted
// stream.  Plaintext can never contain reserved symbols, so stripping by
// identity is lossless.
func stripFraming(syms []string) string {
	var b strings.Builder
	for i := 0; i+quartetLen <= len(syms); i += quartetLen {
		q := syms[i : i+quartetLen]
		noisy := false
		for _, s := range q {
			if s == symbols.Noise {
				noisy = true
				break
			}
		}
		if noisy {
			continue
		}
		for _, s := range q {
			if !symbols.IsReserved(s) {
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

// Encrypt ciphers message as one continuous quartet stream and returns the
// ciphertext symbols.
func (m *Machine) Encrypt(message string) (string, error) {
	syms := symbols.Split(message)
	if err := m.table.CheckMessage(syms); err != nil {
		return "", err
	}
	syms = padToQuartet(syms, m.paddingRNG())
	out, err := m.newSession().run(syms)
	if err != nil {
		return "", err
	}
	return strings.Join(out, ""), nil
}

// Decrypt reverses Encrypt.  It runs the identical pipeline: the transform
// is an involution and stepping is direction-blind, so the rotor states
// reached on both sides match quartet for quartet.
func (m *Machine) Decrypt(ciphertext string) (string, error) {
	syms := symbols.Split(ciphertext)
	if len(syms)%quartetLen != 0 {
		return "", framingErrorf("ciphertext length %d is not a quartet multiple", len(syms))
	}
	if err := m.table.CheckCiphertext(syms); err != nil {
		return "", err
	}
	plain, err := m.newSession().run(syms)
	if err != nil {
		return "", err
	}
	return stripFraming(plain), nil
}

// Encrypt builds a machine from cfg and ciphers message in plain mode.
func Encrypt(message string, cfg Config) (string, error) {
	m, err := New(cfg)
	if err != nil {
		return "", err
	}
	return m.Encrypt(message)
}

// Decrypt builds a machine from cfg and deciphers ciphertext in plain mode.
func Decrypt(ciphertext string, cfg Config) (string, error) {
	m, err := New(cfg)
	if err != nil {
		return "", err
	}
	return m.Decrypt(ciphertext)
}
