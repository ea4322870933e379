package assign

import "math/rand/v2"

// Shuffle returns a Fisher-Yates shuffled copy of in.
func Shuffle[T any](rng *rand.Rand, in []T) []T {
	out := append([]T(nil), in...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Pick returns a uniformly chosen element. ok is false for an empty slice.
func Pick[T any](rng *rand.Rand, in []T) (v T, ok bool) {
	if len(in) == 0 {
		return v, false
	}
	return in[rng.IntN(len(in))], true
}

// Draw takes n elements uniformly without replacement.
func Draw[T any](rng *rand.Rand, in []T, n int) []T {
	if n > len(in) {
		n = len(in)
	}
	if n <= 0 {
		return nil
	}
	return Shuffle(rng, in)[:n]
}
