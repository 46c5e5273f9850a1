package forest

import "math/rand/v2"

// Rand produces uniformly distributed integers in [0, n). *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// drawRange is the number of distinct values a branch draw can take. A
// candidate direction recurses when its draw is below the completeness factor.
const drawRange = 256

// NewRand returns a PCG-backed source seeded with seed. Two sources created
// with the same seed produce the same sequence.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// newRandomRand returns a PCG source seeded from the runtime generator.
func newRandomRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// seedSource is implemented by sources that can produce a full 64-bit seed
// in one draw.
type seedSource interface {
	Uint64() uint64
}

// seedChunkBits is the width of each draw composed into a seed. It fits an
// int on 32-bit targets.
const seedChunkBits = 16

// nextSeed draws a seed for a per-tree source from rng. Sources without
// Uint64 contribute four 16-bit draws, most significant first.
func nextSeed(rng Rand) uint64 {
	if s, ok := rng.(seedSource); ok {
		return s.Uint64()
	}
	var seed uint64
	for range 64 / seedChunkBits {
		seed = seed<<seedChunkBits | uint64(rng.IntN(1<<seedChunkBits))
	}
	return seed
}
