package containers

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
)

// NormalizeByKey puts a set-like list in canonical order: ascending by the
// value key extracts from each element.
//
// When the keys are already strictly increasing the input is returned as is.
// Otherwise a sorted copy is returned; items is never modified. Elements
// sharing a key keep their relative order.
func NormalizeByKey[E any, K constraints.Ordered](items []E, key func(E) K) []E {
	if IsStrictlyIncreasing(items, key) {
		return items
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b E) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return sorted
}

func IsStrictlyIncreasing[E any, K constraints.Ordered](items []E, key func(E) K) bool {
	for i := 1; i < len(items); i++ {
		if key(items[i-1]) >= key(items[i]) {
			return false
		}
	}
	return true
}
