package containers

import (
	"math"
	"unsafe"
)

const hashGolden uint64 = 0x9e3779b97f4a7c15

// Hasher folds a sequence of primitive values into a single hash. Every
// combine step depends on the running seed, so the order in which values are
// fed matters.
//
// The zero value is ready to use.
type Hasher struct {
	seed uint64
}

func mix64(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xbf58476d1ce4e5b9
	v ^= v >> 27
	v *= 0x94d049bb133111eb
	v ^= v >> 31
	return v
}

func (h *Hasher) combine(v uint64) {
	h.seed ^= mix64(v) + hashGolden + (h.seed << 6) + (h.seed >> 2)
}

// Uint combines any number of unsigned values, in order.
func (h *Hasher) Uint(values ...uint64) *Hasher {
	for _, v := range values {
		h.combine(v)
	}
	return h
}

func (h *Hasher) Int(v int64) *Hasher {
	h.combine(uint64(v))
	return h
}

func (h *Hasher) Bool(v bool) *Hasher {
	if v {
		h.combine(1)
	} else {
		h.combine(0)
	}
	return h
}

// Float32 hashes the bit pattern. Positive and negative zero hash
// differently, matching a field-wise bit comparison.
func (h *Hasher) Float32(v float32) *Hasher {
	h.combine(uint64(math.Float32bits(v)))
	return h
}

// Pointer hashes the address p points to. Only use it for canonical handles
// whose identity is their meaning.
func (h *Hasher) Pointer(p unsafe.Pointer) *Hasher {
	h.combine(uint64(uintptr(p)))
	return h
}

func (h *Hasher) Sum() uint64 {
	return h.seed
}
