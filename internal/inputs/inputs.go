// Package inputs generates synthetic operand vectors for example kernels.
package inputs

import (
	"fmt"
	"math/rand/v2"
)

// Integer is the set of integer element types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is the set of floating point element types.
type Float interface {
	~float32 | ~float64
}

// Number is any element type Uniform can produce.
type Number interface {
	Integer | Float
}

// NewSource returns a generator seeded with seed. Seed 0 draws a fresh seed
// from the runtime, so every call yields a different stream.
func NewSource(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Uniform returns count values drawn uniformly from [lo, hi] for integer
// types and [lo, hi) for floating point types.
func Uniform[T Number](r *rand.Rand, lo, hi T, count int) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("negative count %d", count)
	}
	if hi < lo {
		return nil, fmt.Errorf("empty range [%v, %v]", lo, hi)
	}
	if r == nil {
		r = NewSource(0)
	}
	out := make([]T, count)
	for i := range out {
		out[i] = draw(r, lo, hi)
	}
	return out, nil
}

// MustUniform is Uniform for fixed, known-good arguments.
func MustUniform[T Number](r *rand.Rand, lo, hi T, count int) []T {
	out, err := Uniform(r, lo, hi, count)
	if err != nil {
		panic(err)
	}
	return out
}

func draw[T Number](r *rand.Rand, lo, hi T) T {
	// Integer types truncate 0.5 to zero; floats do not.
	one, two := T(1), T(2)
	if one/two == 0 {
		span := uint64(hi) - uint64(lo) // two's complement wraps correctly
		if span == ^uint64(0) {
			return T(r.Uint64())
		}
		return lo + T(r.Uint64N(span+1))
	}
	v := lo + T(r.Float64())*(hi-lo)
	if v >= hi && lo < hi {
		// Narrow float types can round the top of [0, 1) up to hi.
		v = lo
	}
	return v
}
