package world

// RNG is a Mulberry32 stream. The same seed always yields the same
// sequence, which is what makes world generation reproducible.
// An RNG is not safe for concurrent use.
type RNG struct {
	state uint32
}

// NewRNG returns a stream seeded with seed.
func NewRNG(seed uint32) *RNG {
	return &RNG{state: seed}
}

// Float returns the next value in [0, 1).
func (r *RNG) Float() float64 {
	r.state += 0x6d2b79f5
	t := r.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return float64(t^t>>14) / 4294967296
}

// Intn returns an integer in the closed range [min, max].
func (r *RNG) Intn(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return int(r.Float()*float64(max-min+1)) + min
}

// Chance reports true with probability p.
func (r *RNG) Chance(p float64) bool {
	return r.Float() < p
}

// Pick returns a uniformly chosen element of items, or the zero value
// when items is empty.
func Pick[T any](r *RNG, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[r.Intn(0, len(items)-1)]
}
