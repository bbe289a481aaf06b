// Package entropy provides the random sources the simulation draws from.
// Every stochastic decision takes an injected Source so a seeded run, or a
// scripted draw sequence, replays exactly.
package entropy

import (
	mrand "math/rand"
	"sync"
	"time"
)

// Source yields uniform samples in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a deterministic pseudo-random source.
type Seeded struct {
	seed int64
	rng  *mrand.Rand
}

// NewSeeded creates a pseudo-random source. A zero seed is replaced with the
// current time.
func NewSeeded(seed int64) *Seeded {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeded{seed: seed, rng: mrand.New(mrand.NewSource(seed))}
}

// Float64 returns the next sample.
func (s *Seeded) Float64() float64 {
	return s.rng.Float64()
}

// Seed returns the seed the source was created with.
func (s *Seeded) Seed() int64 {
	return s.seed
}

// Sequence replays a fixed list of draws, then repeats the last one. An empty
// sequence always returns Fallback. Used to force specific outcomes.
type Sequence struct {
	mu       sync.Mutex
	draws    []float64
	pos      int
	Fallback float64
}

// NewSequence creates a scripted source.
func NewSequence(draws ...float64) *Sequence {
	return &Sequence{draws: draws, Fallback: 0.999999}
}

// Float64 returns the next scripted draw.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		return s.Fallback
	}
	if s.pos >= len(s.draws) {
		return s.draws[len(s.draws)-1]
	}
	v := s.draws[s.pos]
	s.pos++
	return v
}

// Used returns how many scripted draws have been consumed.
func (s *Sequence) Used() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}
