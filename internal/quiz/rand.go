package quiz

import (
	"math/rand"
	"time"
)

// Source is the randomness the synthesizer draws from. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// NewSeededRand returns a generator seeded with seed, or with the current
// time when seed is 0.
func NewSeededRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// shuffle is a Fisher-Yates shuffle driven by r.
func shuffle[T any](r Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
