package utils

import "hash/fnv"

// HashStringToUint64 maps a string to a stable 64-bit FNV-1a value.
// Analysis ids are derived from it, so the function must never change.
func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
