package util

import (
	"math/rand"

	"github.com/sarchlab/pcodejit/jittype"
)

// MakeConstGen returns a generator that always yields the same value.
func MakeConstGen(constant uint64) func() uint64 {
	return func() uint64 {
		return constant
	}
}

// MakeIncreasingGen returns a generator counting up from start, wrapping
// within the width.
func MakeIncreasingGen(start uint64, w jittype.Width) func() uint64 {
	current := start & w.Mask()
	return func() uint64 {
		v := current
		current = (current + 1) & w.Mask()
		return v
	}
}

// MakeRandomGen returns a seeded generator of values of the width.
func MakeRandomGen(seed int64, w jittype.Width) func() uint64 {
	r := rand.New(rand.NewSource(seed))
	return func() uint64 {
		return r.Uint64() & w.Mask()
	}
}

// EdgeValues lists the values where integer operations of a width usually
// go wrong: zero, one, the extremes of both signed and unsigned ranges, and
// their neighbours.
func EdgeValues(w jittype.Width) []uint64 {
	return EdgeValuesOfSize(w.Bytes())
}

// EdgeValuesOfSize is EdgeValues for a varnode of size bytes, which need not
// fill a host width.
func EdgeValuesOfSize(size int) []uint64 {
	mask := jittype.SizeMask(size)
	signBit := uint64(1) << (8*size - 1)

	return []uint64{
		0,
		1,
		2,
		signBit - 1,
		signBit,
		signBit + 1,
		mask - 1,
		mask,
	}
}

// Take draws n values from a generator.
func Take(gen func() uint64, n int) []uint64 {
	values := make([]uint64, n)
	for i := range values {
		values[i] = gen()
	}

	return values
}
