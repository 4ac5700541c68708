// Package random provides seed generation and the seeded pseudo-random source
// shared by one simulation run.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// seedStream decorrelates the second PCG word from the seed itself.
const seedStream = 0x9e3779b97f4a7c15

// NewSeed generates a random non-zero seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		if s := binary.LittleEndian.Uint64(b[:]); s != 0 {
			return s, nil
		}
	}
}

// NewRand returns a deterministic generator for seed. Identical seeds produce
// identical sequences.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedStream))
}

// Resolve returns seed unchanged when non-zero, otherwise a fresh seed.
func Resolve(seed uint64) (uint64, error) {
	if seed != 0 {
		return seed, nil
	}
	return NewSeed()
}
