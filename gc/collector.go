// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"sync"

	"github.com/cznic/mathutil"
)

// Phase names the collector's state machine position (spec.md §4.8).
type Phase int

const (
	Idle Phase = iota
	RootScan
	Mark
	Compact
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case RootScan:
		return "RootScan"
	case Mark:
		return "Mark"
	case Compact:
		return "Compact"
	default:
		return "Phase(?)"
	}
}

// Collector is the single owning structure for all collector state: an
// internal mutex (the teacher's "big kernel lock", dbm.DB.bkl) guards
// the phase, both heap frontiers, the handle table's three lists, and
// live_epoch. All public entry points are methods on *Collector; Init
// fully constructs the state, and teardown is a simple drop — no
// process-wide static initialization (spec.md §9).
type Collector struct {
	mu sync.Mutex

	host    Host
	opts    Options
	handles *HandleTable
	heap    *Heap

	phase     Phase
	liveEpoch Epoch
	compact   compactor

	stwNesting int // Not read or written: AssertSTW/ReleaseSTW nesting is counted by the Host (see host.go).
	cyclesRun  int64
}

// Init installs an empty heap, an empty use list, and a full free list
// (spec.md §6.1). heapBase/heapWords describe the managed heap region
// within host's Memory; opts.HandleCap (or its default) sizes the
// handle table.
func Init(host Host, heapBase, heapWords Addr, opts Options) (*Collector, error) {
	if err := opts.check(); err != nil {
		return nil, err
	}
	c := &Collector{
		host:      host,
		opts:      opts,
		handles:   NewHandleTable(opts.HandleCap),
		heap:      NewHeap(heapBase, heapWords),
		phase:     Idle,
		liveEpoch: epochStart,
	}
	return c, nil
}

// Phase returns the collector's current state, mostly useful for tests
// and Stats.
func (c *Collector) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// copyWords moves n words from src to dst via the host's word accessors
// (spec.md §6.2 guarantees only ReadWord/WriteWord, so that is all the
// collector ever assumes). Callers (Compactor) only ever pass dst <=
// src, so a plain forward loop is memmove-safe: by the time word k is
// overwritten at dst+k, it has already been read (as src+k' for some
// k' <= k) if it was going to be read at all.
func (c *Collector) copyWords(dst, src Addr, n int) {
	for i := 0; i < n; i++ {
		c.host.WriteWord(dst+Addr(i), c.host.ReadWord(src+Addr(i)))
	}
}

// zeroWords clears [from, to) via the host's word accessor.
func (c *Collector) zeroWords(from, to Addr) {
	for a := from; a < to; a++ {
		c.host.WriteWord(a, 0)
	}
}

// NewObject allocates an instance of the class described at classAddr
// (spec.md §6.1). It may trigger incremental or full GC work on the
// allocation path.
func (c *Collector) NewObject(classAddr Addr) (HandleID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cd := c.host.ClassDescriptor(classAddr)
	if cd == nil {
		corrupt("NewObject", "class descriptor missing")
	}
	return c.allocate(cd.InstanceSize, func(h *Handle) {
		h.Type = TypeObject
		h.ClassOrLength = classAddr
	})
}

// NewArray allocates an array of length elements of kind elem (spec.md
// §6.1). length < 0 reports NegativeArraySizeError.
func (c *Collector) NewArray(length int, elem ElemKind) (HandleID, error) {
	if length < 0 {
		return NoHandle, &NegativeArraySizeError{Length: length}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	size := length * elem.Words()
	refArray := elem == refArrayMarker
	return c.allocate(size, func(h *Handle) {
		if refArray {
			h.Type = TypeRefArray
		} else {
			h.Type = TypePrimArray
			h.Elem = elem
		}
		h.ClassOrLength = Addr(length)
	})
}

// refArrayMarker is a pseudo-ElemKind value selecting TypeRefArray in
// NewArray; it is never a legal PrimArray element kind since
// ElemKind's real values are the iota block in class.go. Exported as
// RefArray so callers building a reference array do not need to reach
// into package internals to choose an element kind that means "every
// slot is a reference, not a primitive".
const refArrayMarker ElemKind = -1

// RefArray is the ElemKind to pass to NewArray to allocate a
// reference-typed array (every element a HandleID), as opposed to a
// primitive array.
const RefArray = refArrayMarker

// allocate runs the common tail of NewObject/NewArray: acquire a free
// handle, carve space at the top of the heap, try a GC increment, and
// fall back through the STW escape hatch of spec.md §4.8 if necessary.
// init is called on the fresh handle immediately before it is published
// (Type/ClassOrLength/Elem are set; DataPtr, Mark, and list membership
// are this function's own responsibility).
func (c *Collector) allocate(size int, init func(*Handle)) (HandleID, error) {
	if c.opts.Mode == ModeScoped {
		return c.allocateScoped(size, init)
	}

	addr, id, err := c.tryAllocate(size)
	if err != nil {
		return NoHandle, err
	}
	h := c.handles.Get(id)
	init(h)
	h.DataPtr = addr
	h.Mark = c.liveEpoch
	c.handles.UsePush(id)

	c.tryGCIncrementLocked()
	return id, nil
}

// tryAllocate reserves size heap words and a handle slot, running the
// STW escape sequence of spec.md §4.8 when the first attempt fails:
// drain any in-progress cycle, then run a full gc(), then give up.
func (c *Collector) tryAllocate(size int) (Addr, HandleID, error) {
	if addr, id, ok := c.tryAllocateOnce(size); ok {
		return addr, id, nil
	}

	if c.phase != Idle {
		c.drainCycleLocked()
	}
	if addr, id, ok := c.tryAllocateOnce(size); ok {
		return addr, id, nil
	}

	c.runFullCycleLocked()
	if addr, id, ok := c.tryAllocateOnce(size); ok {
		return addr, id, nil
	}

	// Report whichever resource is still short after the full cycle: a
	// handle table with free slots but no heap space is OutOfMemory, a
	// heap with room but no free handle slot is its own distinct error
	// (spec.md §7), since the mutator fixes the two differently.
	if c.heap.FreeWords() >= size && c.handles.Free() == 0 {
		return 0, NoHandle, &HandleExhaustedError{Cap: c.handles.Cap()}
	}
	return 0, NoHandle, &OutOfMemoryError{Requested: size, Free: c.heap.FreeWords()}
}

func (c *Collector) tryAllocateOnce(size int) (Addr, HandleID, bool) {
	if c.heap.FreeWords() < size {
		return 0, NoHandle, false
	}
	id, exhausted := c.handles.AcquireFree()
	if exhausted {
		return 0, NoHandle, false
	}
	addr, ok := c.heap.Allocate(size)
	if !ok {
		c.handles.Release(id)
		return 0, NoHandle, false
	}
	return addr, id, true
}

// FieldAddr resolves slot fieldIndex of the object denoted by id to a
// concrete heap address, for callers that want to read or write the
// raw word themselves (always via the host's ReadWord/WriteWord, never
// by caching the address across a GC increment: compaction may move it
// on the very next step).
func (c *Collector) FieldAddr(id HandleID, fieldIndex int) (Addr, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.handles.IsValid(id) {
		return 0, &NullDereferenceError{}
	}
	h := c.handles.Get(id)
	return h.DataPtr + Addr(fieldIndex), nil
}

// WriteBarrier must be called immediately before the mutator overwrites
// a reference-typed slot (spec.md §4.7, §6.1).
func (c *Collector) WriteBarrier(id HandleID, fieldIndex int) error {
	if id == NoHandle {
		return &NullDereferenceError{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.handles.IsValid(id) {
		return &NullDereferenceError{}
	}
	c.writeBarrier(id, fieldIndex)
	return nil
}

// GCIncrement advances an in-progress cycle by one bounded step (spec.md
// §4.8, §6.1): a Mark-phase call runs mark_step(MARK_STEP), a
// Compact-phase call runs compact_step(COMPACT_STEP). It is a no-op when
// the collector is Idle or running in ModeScoped; callers that want the
// threshold-triggered scheduling policy use the allocation path's own
// internal hook instead, which is not exposed directly since spec.md
// only ever drives it through allocate*.
func (c *Collector) GCIncrement() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.Mode == ModeScoped {
		return
	}
	c.gcIncrementLocked()
}

// GC runs a synchronous, full stop-the-world collection (spec.md §6.1).
func (c *Collector) GC() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.Mode == ModeScoped {
		return
	}
	if c.phase != Idle {
		// A cycle is already in flight: finish it rather than discard
		// its progress and start an unrelated second one.
		c.drainCycleLocked()
		return
	}
	c.runFullCycleLocked()
}

// FreeMemory returns the current free word count (converting to bytes,
// words * word size, is left to the host; this collector counts words,
// matching spec.md's word-addressable model).
func (c *Collector) FreeMemory() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heap.FreeWords()
}

// TotalMemory returns the heap's total word capacity.
func (c *Collector) TotalMemory() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.heap.Top() - c.heap.Base())
}

// IsValidObjectHandle reports whether h currently names a live,
// use-listed handle (spec.md §6.1).
func (c *Collector) IsValidObjectHandle(h HandleID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handles.IsValid(h)
}

// tryGCIncrementLocked implements the scheduling hook of spec.md §4.8
// ("Scheduling hook"): advance an in-progress cycle by one step, or
// start a new one proactively once free space drops below the
// configured threshold fraction, or do nothing. Callers already hold
// c.mu.
func (c *Collector) tryGCIncrementLocked() {
	if c.opts.Mode == ModeScoped {
		return
	}
	if c.phase != Idle {
		c.gcIncrementLocked()
		return
	}
	threshold := int(c.heap.Top()-c.heap.Base()) / c.opts.FreeThresholdFraction
	if c.heap.FreeWords() < threshold {
		c.startCycleLocked()
		c.gcIncrementLocked()
	}
}

// gcIncrementLocked advances the phase state machine by one bounded
// step (spec.md §4.8 "Mark"/"Compact").
func (c *Collector) gcIncrementLocked() {
	switch c.phase {
	case Mark:
		if c.markStep(c.opts.MarkStep) {
			c.prepareCompact()
			c.phase = Compact
		}
	case Compact:
		if c.compactStep(c.opts.CompactStep) {
			c.finishCycle()
			c.phase = Idle
		}
	}
}

// startCycleLocked performs RootScan: a brief STW halt, epoch toggle,
// and root seeding, then transitions to Mark (spec.md §4.8).
func (c *Collector) startCycleLocked() {
	c.phase = RootScan
	c.host.AssertSTW()
	c.liveEpoch = nextEpoch(c.liveEpoch)
	c.scanRoots()
	c.host.ReleaseSTW()
	c.phase = Mark
}

// drainCycleLocked synchronously finishes whatever phase is currently
// in progress, under a global STW halt (spec.md §4.8 "STW escape" step
// 1). Idle is a no-op.
func (c *Collector) drainCycleLocked() {
	if c.phase == Idle {
		return
	}
	c.host.AssertSTW()
	defer c.host.ReleaseSTW()

	for c.phase == Mark {
		if c.markStep(mathutil.Max(c.opts.MarkStep, 1)) {
			c.prepareCompact()
			c.phase = Compact
		}
	}
	for c.phase == Compact {
		if c.compactStep(mathutil.Max(c.opts.CompactStep, 1)) {
			c.finishCycle()
			c.phase = Idle
		}
	}
}

// runFullCycleLocked discards any gray list remnants (all live objects
// will be rediscovered from roots), toggles the epoch, marks to
// fixpoint, compacts to completion, and finishes — all under one STW
// halt (spec.md §4.8 "STW escape" step 2).
func (c *Collector) runFullCycleLocked() {
	if c.opts.Mode == ModeScoped {
		return
	}
	c.host.AssertSTW()
	defer c.host.ReleaseSTW()

	c.handles.grayReset()
	c.liveEpoch = nextEpoch(c.liveEpoch)
	c.phase = Mark
	c.scanRoots()
	for !c.markStep(mathutil.Max(c.opts.MarkStep*4, 64)) {
	}
	c.prepareCompact()
	c.phase = Compact
	for !c.compactStep(mathutil.Max(c.opts.CompactStep*4, 64)) {
	}
	c.finishCycle()
	c.phase = Idle
}
