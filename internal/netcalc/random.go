package netcalc

import (
	"math/rand/v2"
	"sync"
)

// Source supplies the random draws used for addresses, MACs and names.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// Int64N returns a uniform value in [0, n). n must be > 0.
	Int64N(n int64) int64
}

type globalSource struct{}

func (globalSource) Int64N(n int64) int64 {
	return rand.Int64N(n)
}

// DefaultSource returns the process-wide generator. It is safe for
// concurrent use.
func DefaultSource() Source {
	return globalSource{}
}

// lockedSource serializes access to a seeded generator
type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededSource returns a reproducible generator that is safe for
// concurrent use. Draw order under concurrency is not deterministic.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *lockedSource) Int64N(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Int64N(n)
}
