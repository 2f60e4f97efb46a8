package containers

import (
	"testing"
	"unsafe"
)

func TestHasherDeterministic(t *testing.T) {
	var a, b Hasher
	a.Uint(1, 2, 3).Bool(true).Float32(0.5).Int(-4)
	b.Uint(1, 2, 3).Bool(true).Float32(0.5).Int(-4)
	if a.Sum() != b.Sum() {
		t.Errorf("same input hashed to %x and %x", a.Sum(), b.Sum())
	}
}

func TestHasherOrderSensitive(t *testing.T) {
	var a, b Hasher
	a.Uint(1, 2)
	b.Uint(2, 1)
	if a.Sum() == b.Sum() {
		t.Error("swapped values should hash differently")
	}
}

func TestHasherLengthSensitive(t *testing.T) {
	var a, b Hasher
	a.Uint(0)
	b.Uint(0, 0)
	if a.Sum() == b.Sum() {
		t.Error("different number of values should hash differently")
	}
}

func TestHasherFloatBits(t *testing.T) {
	var pos, neg Hasher
	pos.Float32(0)
	neg.Float32(float32(negZero()))
	if pos.Sum() == neg.Sum() {
		t.Error("expected +0 and -0 to hash differently")
	}
}

func negZero() float64 {
	z := 0.0
	return -z
}

func TestHasherPointer(t *testing.T) {
	x, y := new(int), new(int)
	var a, b, c Hasher
	a.Pointer(unsafe.Pointer(x))
	b.Pointer(unsafe.Pointer(x))
	c.Pointer(unsafe.Pointer(y))
	if a.Sum() != b.Sum() {
		t.Error("same pointer should hash the same")
	}
	if a.Sum() == c.Sum() {
		t.Error("different pointers should hash differently")
	}
}
