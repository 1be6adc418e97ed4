// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runtime provides a ready-made, in-process gc.Host and a thin
// Machine wrapper over gc.Collector, playing the role the teacher's dbm
// package plays over lldb.Allocator: dbm.DB never reimplements the
// allocator, it only arranges convenient, safely-wrapped access to it.
// Here Machine never reimplements the collector, it only supplies the
// memory, the per-thread operand stacks, and the static reference table
// the collector's Host contract requires (spec.md §6.2).
package runtime

import (
	"sync"

	"github.com/cznic/incgc/gc"
)

// threadStack is one mutator's registered stack region within the
// shared Memory, plus its current stack pointer. Growth direction
// mirrors a typical downward-growing call stack: Base is the lowest
// address the region may use, sp starts at Top and decreases as words
// are pushed, matching gc.StackRange's [Base, Top) convention.
type threadStack struct {
	base Addr
	top  Addr
	sp   Addr
}

// Addr and Word alias the collector's own word types so callers of this
// package never need to import gc directly for plain arithmetic.
type Addr = gc.Addr
type Word = gc.Word

// InProcessHost is a single-process gc.Host: one ArrayMemory, a side
// table of registered class descriptors, a static reference table, and
// a set of named thread stacks. It is not goroutine-safe on its own;
// Machine serializes all access to it through the collector's own
// mutex, the same way dbm.DB never lets a caller touch its lldb.Filer
// without first acquiring db.bkl.
type InProcessHost struct {
	*gc.ArrayMemory

	classesMu sync.Mutex
	classes   map[Addr]*gc.ClassDescriptor

	staticBase  Addr
	staticCount int

	threadsMu sync.Mutex
	threads   map[string]*threadStack
	active    string // name of the thread currently inside the collector.

	pause sync.Mutex // AssertSTW/ReleaseSTW's halting signal (teacher's bkl, generalized).
	nest  int
}

// NewInProcessHost builds a host over a memory region of the given
// total word count, reserving the first staticSlots words as the
// static reference table (spec.md §4.4 "static refs").
func NewInProcessHost(words Addr, staticSlots int) *InProcessHost {
	return &InProcessHost{
		ArrayMemory: gc.NewArrayMemory(words),
		classes:     map[Addr]*gc.ClassDescriptor{},
		staticBase:  0,
		staticCount: staticSlots,
		threads:     map[string]*threadStack{},
	}
}

// RegisterClass installs the class descriptor object instances at
// classAddr resolve to; classAddr is whatever value the loader/compiler
// assigns a class, and is opaque to the host itself.
func (h *InProcessHost) RegisterClass(classAddr Addr, cd *gc.ClassDescriptor) {
	h.classesMu.Lock()
	defer h.classesMu.Unlock()
	h.classes[classAddr] = cd
}

func (h *InProcessHost) ClassDescriptor(addr Addr) *gc.ClassDescriptor {
	h.classesMu.Lock()
	defer h.classesMu.Unlock()
	return h.classes[addr]
}

func (h *InProcessHost) StaticRefsRange() (Addr, int) { return h.staticBase, h.staticCount }

// SetStaticRef installs handle id in static reference slot slot,
// 0 <= slot < staticCount.
func (h *InProcessHost) SetStaticRef(slot int, id gc.HandleID) {
	h.WriteWord(h.staticBase+Addr(slot), Word(id))
}

// RegisterThread registers [base, base+words) as the operand stack of a
// mutator thread named name, growing down from base+words. The caller
// picks disjoint regions for the collector heap and every thread's
// stack; this host does no allocation bookkeeping of its own, matching
// spec.md §6.2's Memory contract.
func (h *InProcessHost) RegisterThread(name string, base, words Addr) {
	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	top := base + words
	h.threads[name] = &threadStack{base: base, top: top, sp: top}
}

// UnregisterThread drops a thread's stack registration, e.g. once it
// has exited.
func (h *InProcessHost) UnregisterThread(name string) {
	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	delete(h.threads, name)
}

// EnterThread marks name as the currently active mutator, the one
// CurrentStackPointer/ActiveStackTop describe during the next
// collector call the active thread makes. Machine calls this around
// every collector entry point.
func (h *InProcessHost) EnterThread(name string) {
	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	h.active = name
}

// PushWord writes w at the next free slot of name's stack and advances
// its pointer, reporting ok == false on overflow.
func (h *InProcessHost) PushWord(name string, w Word) (ok bool) {
	h.threadsMu.Lock()
	t, found := h.threads[name]
	h.threadsMu.Unlock()
	if !found || t.sp <= t.base {
		return false
	}
	t.sp--
	h.WriteWord(t.sp, w)
	return true
}

// PopWord retracts name's stack pointer by one and returns the word
// that was there, reporting ok == false if the stack is already empty.
func (h *InProcessHost) PopWord(name string) (w Word, ok bool) {
	h.threadsMu.Lock()
	t, found := h.threads[name]
	h.threadsMu.Unlock()
	if !found || t.sp >= t.top {
		return 0, false
	}
	w = h.ReadWord(t.sp)
	t.sp++
	return w, true
}

func (h *InProcessHost) CurrentStackPointer() Addr {
	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	if t, ok := h.threads[h.active]; ok {
		return t.sp
	}
	return 0
}

func (h *InProcessHost) ActiveStackTop() Addr {
	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	if t, ok := h.threads[h.active]; ok {
		return t.top
	}
	return 0
}

func (h *InProcessHost) MutatorStacks() []gc.StackRange {
	h.threadsMu.Lock()
	defer h.threadsMu.Unlock()
	ranges := make([]gc.StackRange, 0, len(h.threads))
	for name, t := range h.threads {
		if name == h.active {
			continue
		}
		ranges = append(ranges, gc.StackRange{Base: t.sp, Top: t.top})
	}
	return ranges
}

// AssertSTW/ReleaseSTW implement the nesting discipline spec.md §5
// requires, generalizing the teacher's dbm.DB.bkl from "one lock per
// DB" to "one halting signal per host": only the outermost pair takes
// visible effect. Real mutator threads would poll a flag at their own
// safe points instead of blocking on this mutex directly; a
// single-process host with no competing goroutines has no safe points
// to poll, so taking the lock is sufficient and matches the contract
// (spec.md §9: real thread scheduling is out of scope).
func (h *InProcessHost) AssertSTW() {
	if h.nest == 0 {
		h.pause.Lock()
	}
	h.nest++
}

func (h *InProcessHost) ReleaseSTW() {
	h.nest--
	if h.nest == 0 {
		h.pause.Unlock()
	}
}

// InvalidateCaches drops nothing here: this host caches no derived view
// of heap contents (no inline caches, no resolved method pointers), so
// the hook is a no-op. A real bytecode interpreter with inline caches
// keyed by data_ptr would flush them here.
func (h *InProcessHost) InvalidateCaches() {}

var _ gc.Host = (*InProcessHost)(nil)
