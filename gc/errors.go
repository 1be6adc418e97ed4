// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "fmt"

// OutOfMemoryError is returned when an allocation cannot be satisfied even
// after draining any in-progress incremental cycle and running a full
// stop-the-world collection.
type OutOfMemoryError struct {
	Requested int
	Free      int
}

func (e *OutOfMemoryError) Error() string {
	return fmt.Sprintf("gc: out of memory: requested %d words, %d free", e.Requested, e.Free)
}

// NullDereferenceError is returned by WriteBarrier when called with
// HandleID NoHandle.
type NullDereferenceError struct{}

func (*NullDereferenceError) Error() string { return "gc: null dereference in write barrier" }

// NegativeArraySizeError is returned by NewArray when length < 0.
type NegativeArraySizeError struct {
	Length int
}

func (e *NegativeArraySizeError) Error() string {
	return fmt.Sprintf("gc: negative array size %d", e.Length)
}

// HandleExhaustedError is returned when the handle table's free list is
// empty even though the heap itself still has free words. From the
// mutator's point of view this is equivalent to OutOfMemory.
type HandleExhaustedError struct {
	Cap int
}

func (e *HandleExhaustedError) Error() string {
	return fmt.Sprintf("gc: handle table exhausted (cap %d)", e.Cap)
}

// ErrCorrupt reports a violation of a host contract (spec.md §7: "these
// are implementation bugs, not runtime errors"). It is carried by a
// panic, never returned, matching the teacher's panic("internal error")
// convention for conditions the collector cannot recover from.
type ErrCorrupt struct {
	Where string
	Why   string
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("gc: corrupt state in %s: %s", e.Where, e.Why)
}

func corrupt(where, why string) {
	panic(&ErrCorrupt{Where: where, Why: why})
}
