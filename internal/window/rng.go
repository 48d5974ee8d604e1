package window

import "math/rand"

// rngFromSeed returns a deterministic generator for the given seed. Callers
// must supply the seed explicitly; there is no time-based fallback anywhere
// in this package.
func rngFromSeed(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// deriveSeed mixes a parent seed and a stream id into an independent seed
// using the SplitMix64 finalizer, so restarts and sub-phases get
// decorrelated streams without sharing generator state.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// shuffledRange returns a permutation of 0..n-1 drawn from rng.
func shuffledRange(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	for i := 0; i < n; i++ {
		p[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	return p
}
