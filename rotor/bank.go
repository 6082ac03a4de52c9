package rotor

import (
	"fmt"
	"math/rand"
)

// SelectActive derives which activeCount of the totalRotors generated cubes
// take part in a session, and in what order, from the key phrase alone.  The
// derivation is a seeded shuffle of the rotor indices, so both parties reach
// the same selection.
func SelectActive(keyPhrase string, totalRotors, activeCount int) ([]int, error) {
	if totalRotors < 1 {
		return nil, fmt.Errorf("totalRotors must be at least 1, got %d", totalRotors)
	}
	if activeCount < 1 || activeCount > totalRotors {
		return nil, fmt.Errorf("activeCount must be between 1 and %d, got %d", totalRotors, activeCount)
	}
	rng := rand.New(rand.NewSource(DeriveSeed(keyPhrase, "selection")))
	order := rng.Perm(totalRotors)
	return order[:activeCount], nil
}

// Bank holds every generated rotor cube plus the ordered subset active for
// the session.
type Bank struct {
	cubes  []*Cube
	active []int
}

// NewBank wraps the generated cubes with an active selection, rejecting
// duplicate or out-of-range indices.
func NewBank(cubes []*Cube, active []int) (*Bank, error) {
	if len(cubes) == 0 {
		return nil, fmt.Errorf("a bank needs at least one rotor cube")
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("at least one rotor must be active")
	}
	seen := make(map[int]bool, len(active))
	for _, idx := range active {
		if idx < 0 || idx >= len(cubes) {
			return nil, fmt.Errorf("active rotor index %d out of range [0,%d)", idx, len(cubes))
		}
		if seen[idx] {
			return nil, fmt.Errorf("active rotor index %d selected twice", idx)
		}
		seen[idx] = true
	}
	return &Bank{cubes: cubes, active: active}, nil
}

// ActiveIndices returns the ordered active selection.
func (b *Bank) ActiveIndices() []int {
	out := make([]int, len(b.active))
	copy(out, b.active)
	return out
}

// CloneActive returns fresh copies of the active cubes in selection order,
// ready to be mutated by one session without touching the bank.
func (b *Bank) CloneActive() []*Cube {
	out := make([]*Cube, len(b.active))
	for i, idx := range b.active {
		out[i] = b.cubes[idx].Clone()
	}
	return out
}
