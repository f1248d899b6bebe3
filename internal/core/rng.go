package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }

// FillBernoulli fills the buffer with 0/1 values, each cell independently
// active with probability p.
func FillBernoulli(r *rand.Rand, buf []uint8, p float64) {
	for i := range buf {
		if r.Float64() < p {
			buf[i] = 1
		} else {
			buf[i] = 0
		}
	}
}

// FillParity fills the buffer with an alternating pattern: cell i is active
// iff i is odd.
func FillParity(buf []uint8) {
	for i := range buf {
		buf[i] = uint8(i & 1)
	}
}
