package machine

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"

	"github.com/cubigma/cubigma/symbols"
)

// NumChunks is the fixed number of pieces a message is split into for
// steganographic embedding.
const NumChunks = 5

// Chunk is one ordered piece of a (plain or ciphered) message.  Index is the
// order number 0..NumChunks-1, or -1 when the order is not yet known and
// must be recovered from the chunk's decrypted prefix quartet.
type Chunk struct {
	Index   int
	Symbols string
}

// orderPrefix builds the quartet that carries a chunk's order number: the
// order digit hidden among three pad symbols at an rng-chosen position.
func orderPrefix(order int, rng *rand.Rand) []string {
	q := []string{
		strconv.Itoa(order),
		symbols.Pads[rng.Intn(len(symbols.Pads))],
		symbols.Pads[rng.Intn(len(symbols.Pads))],
		symbols.Pads[rng.Intn(len(symbols.Pads))],
	}
	rng.Shuffle(len(q), func(i, j int) { q[i], q[j] = q[j], q[i] })
	return q
}

// orderFromPrefix recovers the order number from a decrypted prefix quartet.
func orderFromPrefix(q []string) (int, error) {
	order := -1
	for _, s := range q {
		if len(s) == 1 && s[0] >= '0' && s[0] < '0'+NumChunks {
			if order != -1 {
				return 0, framingErrorf("order prefix %q holds more than one order digit", strings.Join(q, ""))
			}
			order = int(s[0] - '0')
		}
	}
	if order == -1 {
		return 0, framingErrorf("order prefix %q holds no order digit", strings.Join(q, ""))
	}
	return order, nil
}

// noiseQuartet draws a quartet of filler: the noise marker plus three
// distinct table symbols, shuffled.  Decryption drops any quartet carrying
// the marker.
func (m *Machine) noiseQuartet(rng *rand.Rand) []string {
	q := []string{symbols.Noise}
	for len(q) < quartetLen {
		s := m.table.At(rng.Intn(m.table.Size()))
		dup := false
		for _, have := range q {
			if have == s {
				dup = true
				break
			}
		}
		if !dup {
			q = append(q, s)
		}
	}
	rng.Shuffle(len(q), func(i, j int) { q[i], q[j] = q[j], q[i] })
	return q
}

// chunkSide picks the side of the square a chunk is padded to: the smallest
// even side whose square fits the chunk, bumped past sides already taken so
// the five chunks come out differently sized.
func chunkSide(need int, used map[int]bool) int {
	side := 2
	for side*side < need || used[side] {
		side += 2
	}
	used[side] = true
	return side
}

// ChunkMessage pads message with reproducible noise and splits it into the
// five ordered chunks of the steganographic framing.  Each chunk leads with
// its order-prefix quartet and is noise-padded up to its own square size.
func (m *Machine) ChunkMessage(message string) ([]Chunk, error) {
	syms := symbols.Split(message)
	if err := m.table.CheckMessage(syms); err != nil {
		return nil, err
	}
	rng := m.paddingRNG()
	syms = padToQuartet(syms, rng)

	// Quartet-aligned near-equal split; trailing chunks may run short.
	part := (len(syms)/NumChunks + quartetLen - 1) / quartetLen * quartetLen
	if part == 0 {
		part = quartetLen
	}

	used := make(map[int]bool, NumChunks)
	out := make([]Chunk, NumChunks)
	for i := 0; i < NumChunks; i++ {
		lo := i * part
		hi := lo + part
		if lo > len(syms) {
			lo = len(syms)
		}
		if i == NumChunks-1 || hi > len(syms) {
			hi = len(syms)
		}
		body := append(orderPrefix(i, rng), syms[lo:hi]...)
		target := chunkSide(len(body), used)
		for len(body) < target*target {
			body = append(body, m.noiseQuartet(rng)...)
		}
		out[i] = Chunk{Index: i, Symbols: strings.Join(body, "")}
	}
	return out, nil
}

// DechunkMessage reassembles the five plaintext chunks by order number and
// strips the noise padding, restoring the original message.
func (m *Machine) DechunkMessage(chunks []Chunk) (string, error) {
	if len(chunks) != NumChunks {
		return "", framingErrorf("got %d chunks, want %d", len(chunks), NumChunks)
	}
	bodies := make([][]string, NumChunks)
	for _, ch := range chunks {
		syms := symbols.Split(ch.Symbols)
		if len(syms) < quartetLen || len(syms)%quartetLen != 0 {
			return "", framingErrorf("chunk length %d is not a quartet multiple", len(syms))
		}
		order, err := orderFromPrefix(syms[:quartetLen])
		if err != nil {
			return "", err
		}
		if ch.Index >= 0 && ch.Index != order {
			return "", framingErrorf("chunk labeled %d carries order prefix %d", ch.Index, order)
		}
		if bodies[order] != nil {
			return "", framingErrorf("order number %d appears twice", order)
		}
		bodies[order] = syms[quartetLen:]
	}
	var all []string
	for i, body := range bodies {
		if body == nil {
			return "", framingErrorf("order number %d is missing", i)
		}
		all = append(all, body...)
	}
	return stripFraming(all), nil
}

// EncryptToChunks chunks message and ciphers every chunk with its own
// independent session.  Chunk sessions share the initial rotor state but
// never each other's mutations, so they run in parallel and the result is
// ordered by index, not completion.
func (m *Machine) EncryptToChunks(message string) ([]Chunk, error) {
	plain, err := m.ChunkMessage(message)
	if err != nil {
		return nil, err
	}
	out := make([]Chunk, NumChunks)
	errs := make([]error, NumChunks)
	var wg sync.WaitGroup
	for i, ch := range plain {
		wg.Add(1)
		go func(i int, ch Chunk) {
			defer wg.Done()
			enc, err := m.newSession().run(symbols.Split(ch.Symbols))
			if err != nil {
				errs[i] = err
				return
			}
			out[i] = Chunk{Index: ch.Index, Symbols: strings.Join(enc, "")}
		}(i, ch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecryptFromChunks deciphers every chunk with its own session and
// reassembles the message.  Chunks may arrive in any order and with unknown
// Index: the decrypted order prefix is authoritative.
func (m *Machine) DecryptFromChunks(chunks []Chunk) (string, error) {
	if len(chunks) != NumChunks {
		return "", framingErrorf("got %d chunks, want %d", len(chunks), NumChunks)
	}
	plain := make([]Chunk, NumChunks)
	errs := make([]error, NumChunks)
	var wg sync.WaitGroup
	for i, ch := range chunks {
		wg.Add(1)
		go func(i int, ch Chunk) {
			defer wg.Done()
			syms := symbols.Split(ch.Symbols)
			if len(syms)%quartetLen != 0 {
				errs[i] = framingErrorf("chunk length %d is not a quartet multiple", len(syms))
				return
			}
			if err := m.table.CheckCiphertext(syms); err != nil {
				errs[i] = err
				return
			}
			dec, err := m.newSession().run(syms)
			if err != nil {
				errs[i] = err
				return
			}
			plain[i] = Chunk{Index: ch.Index, Symbols: strings.Join(dec, "")}
		}(i, ch)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return "", err
		}
	}
	return m.DechunkMessage(plain)
}

// EncryptToChunks builds a machine from cfg and ciphers message into the
// five steganographic chunks.
func EncryptToChunks(message string, cfg Config) ([]Chunk, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return m.EncryptToChunks(message)
}

// DecryptFromChunks builds a machine from cfg and restores the message from
// its five ciphered chunks.
func DecryptFromChunks(chunks []Chunk, cfg Config) (string, error) {
	m, err := New(cfg)
	if err != nil {
		return "", err
	}
	return m.DecryptFromChunks(chunks)
}
