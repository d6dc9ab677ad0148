package services

import "math/rand/v2"

// RandomSource draws integers for match resolution.
type RandomSource interface {
	// NextInt returns a uniform integer in [min, max], both inclusive.
	NextInt(min, max int) int
}

type mathRandSource struct{}

// NewRandomSource returns the process-wide source backed by math/rand/v2.
func NewRandomSource() RandomSource { return mathRandSource{} }

func (mathRandSource) NextInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.IntN(max-min+1)
}
