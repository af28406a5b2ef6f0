package depot

import "math/rand/v2"

// Rng is a seeded generator for simulations that must replay identically.
// Store it as a resource and draw from it only in sequential systems; the
// sequence depends on the order of calls.
type Rng struct {
	seed uint64
	src  *rand.PCG
	r    *rand.Rand
}

func NewRng(seed uint64) *Rng {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Rng{seed: seed, src: src, r: rand.New(src)}
}

func (g *Rng) Seed() uint64 {
	return g.seed
}

// Reseed restarts the sequence from seed.
func (g *Rng) Reseed(seed uint64) {
	g.seed = seed
	g.src.Seed(seed, seed^0x9e3779b97f4a7c15)
}

func (g *Rng) Uint64() uint64 {
	return g.r.Uint64()
}

// IntN returns a value in [0, n). It panics if n <= 0.
func (g *Rng) IntN(n int) int {
	return g.r.IntN(n)
}

// Float64 returns a value in [0.0, 1.0).
func (g *Rng) Float64() float64 {
	return g.r.Float64()
}

// Range returns a value in [lo, hi).
func (g *Rng) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*g.r.Float64()
}

func (g *Rng) Bool() bool {
	return g.r.Uint64()&1 == 1
}

func (g *Rng) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}

// Choose returns a random element of items, or false when items is empty.
func Choose[T any](g *Rng, items []T) (T, bool) {
	if len(items) == 0 {
		var zero T
		return zero, false
	}
	return items[g.IntN(len(items))], true
}
