package exercise

import "math"

// Random is a 32-bit linear congruential generator. The same seed always
// yields the same sequence, which keeps generated exercises reproducible.
type Random struct {
	state uint32
}

// NewRandom seeds the generator. The seed is reduced modulo 2³², so negative
// seeds wrap around.
func NewRandom(seed int64) *Random {
	return &Random{state: uint32(seed)}
}

// Float returns the next draw in [0, 1).
func (r *Random) Float() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state) / (1 << 32)
}

// Int returns an integer in [min, max] inclusive.
func (r *Random) Int(min, max int) int {
	return int(math.Floor(r.Float()*float64(max-min+1))) + min
}

// Pick returns one element of values. values must not be empty.
func Pick[T any](r *Random, values []T) T {
	return values[int(math.Floor(r.Float()*float64(len(values))))]
}
