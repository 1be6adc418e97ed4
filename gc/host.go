// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// StackRange names one mutator thread's stack as a contiguous,
// word-addressed range [Base, Top) that the collector scans
// conservatively (spec.md §4.4).
type StackRange struct {
	Base Addr
	Top  Addr
}

// Host is the set of services the collector consumes from its
// surrounding runtime (spec.md §6.2). A Host never implements
// compaction or marking itself; it only answers questions the
// collector cannot answer on its own. This mirrors lldb.Filer's role
// as "the abstraction the allocator never implements itself, only
// consumes" — the collector is written once against this interface and
// is indifferent to whatever concrete mutator runtime backs it.
type Host interface {
	Memory

	// CurrentStackPointer returns the start bound for scanning the
	// calling (currently active) mutator's own stack: scanning runs
	// from this address up to that thread's registered stack top.
	CurrentStackPointer() Addr

	// ActiveStackTop returns the high bound of the currently active
	// mutator's stack region (its registered Top, as it would appear in
	// MutatorStacks if that thread were not the active one).
	ActiveStackTop() Addr

	// MutatorStacks enumerates the stack ranges of all mutator threads
	// other than the currently active one.
	MutatorStacks() []StackRange

	// AssertSTW halts all mutators at their next safe point and keeps
	// them halted until a matching ReleaseSTW. Calls may nest; only the
	// outermost AssertSTW/ReleaseSTW pair take visible effect, matching
	// lldb.Filer's BeginUpdate/EndUpdate nesting discipline.
	AssertSTW()

	// ReleaseSTW undoes one AssertSTW. Invocation of an unbalanced
	// ReleaseSTW is a host contract violation.
	ReleaseSTW()

	// InvalidateCaches is called once at the end of each compaction,
	// after live objects have been slid to their new addresses.
	InvalidateCaches()

	// StaticRefsRange returns the (base, count) of the static reference
	// table installed at Init. Re-readable; the collector does not
	// cache it across calls.
	StaticRefsRange() (base Addr, count int)

	// ClassDescriptor resolves the class descriptor at addr, as stored
	// in a handle's class_or_length field for a TypeObject handle.
	ClassDescriptor(addr Addr) *ClassDescriptor
}
