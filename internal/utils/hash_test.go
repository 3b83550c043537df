package utils

import "testing"

func TestHashStringToUint64Stable(t *testing.T) {
	// FNV-1a offset basis; the value is part of the analysis id format.
	if got := HashStringToUint64(""); got != 14695981039346656037 {
		t.Fatalf("unexpected hash for empty string: %d", got)
	}
	a := HashStringToUint64("thread|1700000000")
	if a != HashStringToUint64("thread|1700000000") {
		t.Fatalf("hash must be deterministic")
	}
	if a == HashStringToUint64("thread|1700000001") {
		t.Fatalf("distinct inputs should not collide here")
	}
}
