package utils

import (
	"cmp"
	"slices"
)

// MergeSets unions any number of set maps into a new set.
func MergeSets[K comparable](sets ...map[K]struct{}) map[K]struct{} {
	total := 0
	for _, s := range sets {
		total += len(s)
	}
	out := make(map[K]struct{}, total)
	for _, s := range sets {
		for k := range s {
			out[k] = struct{}{}
		}
	}
	return out
}

// SetOf builds a set from the given items.
func SetOf[K comparable](items ...K) map[K]struct{} {
	out := make(map[K]struct{}, len(items))
	for _, k := range items {
		out[k] = struct{}{}
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
