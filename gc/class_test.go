// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "testing"

func TestClassDescriptorIsRefAcrossWordBoundary(t *testing.T) {
	// Bit 130 (word 2, bit 2 of RefBitmap[2]) is the only reference
	// field of a 200-word class. A single uint64 could never represent
	// this; RefBitmap must span multiple words.
	cd := &ClassDescriptor{
		InstanceSize: 200,
		RefBitmap:    []uint64{0, 0, 1 << 2},
	}

	for i := 0; i < 200; i++ {
		want := i == 130
		if got := cd.IsRef(i); got != want {
			t.Fatalf("IsRef(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestClassDescriptorIsRefOutOfRange(t *testing.T) {
	cd := &ClassDescriptor{InstanceSize: 4, RefBitmap: []uint64{0xf}}
	if cd.IsRef(-1) {
		t.Fatalf("IsRef(-1) should be false")
	}
	// InstanceSize only covers 4 words; querying beyond RefBitmap's
	// length must not panic and must report non-reference.
	if cd.IsRef(4000) {
		t.Fatalf("IsRef beyond RefBitmap should be false, not panic")
	}
}
