package engine

import (
	"math/rand/v2"
	"time"
)

// Random is the source of uniform draws used by the generator
type Random interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRandom returns a deterministic Random for the given seed
func NewRandom(seed uint64) Random {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewTimeSeededRandom returns a Random seeded from the wall clock
func NewTimeSeededRandom() Random {
	return NewRandom(uint64(time.Now().UnixNano()))
}

// Clock is the time source queried by timed games
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
