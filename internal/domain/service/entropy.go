package service

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource yields uniformly distributed integers.
// Implementations must be safe for concurrent use.
type RandomSource interface {
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

// Clock abstracts wall time and blocking delays.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// IntBetween draws a value in [min, max] inclusive.
func IntBetween(r RandomSource, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.IntN(max-min+1)
}

// DurationBetween draws a duration in [min, max] at millisecond granularity
// when the span allows it, nanosecond granularity otherwise.
func DurationBetween(r RandomSource, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := max - min
	if span >= time.Millisecond {
		return min + time.Duration(r.IntN(int(span/time.Millisecond)+1))*time.Millisecond
	}
	return min + time.Duration(r.IntN(int(span)+1))
}

type globalRandom struct{}

// NewRandomSource returns a source backed by the runtime-seeded global generator.
func NewRandomSource() RandomSource {
	return globalRandom{}
}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

type seededRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededRandomSource returns a reproducible source. The mutex is held only
// for the draw itself.
func NewSeededRandomSource(seed uint64) RandomSource {
	return &seededRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededRandom) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

type systemClock struct{}

// SystemClock returns the real wall clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }
