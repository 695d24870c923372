package simulator

import "math/rand"

// Source supplies the random draws used by replenishment. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
	Int63n(n int64) int64
}

// NewSource returns a deterministic source for seed.
func NewSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
