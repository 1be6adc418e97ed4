// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"fmt"

	"github.com/cznic/incgc/gc"
)

// Options amends Machine construction: the managed heap's size, the
// static reference table's size, and the collector tuning knobs
// forwarded to gc.Init unchanged.
type Options struct {
	// HeapWords sizes the region gc.Collector carves object bodies out
	// of. Zero is rejected: an empty heap can never allocate anything.
	HeapWords Addr

	// StaticSlots sizes the static reference table reserved ahead of
	// the heap. Zero means no static roots at all.
	StaticSlots int

	// StackWords sizes the combined region available for mutator thread
	// stacks, reserved immediately above the heap. SpawnThread carves
	// consecutive sub-regions from it.
	StackWords Addr

	Collector gc.Options
}

// Machine is the small, single-process runtime this repository uses to
// exercise gc.Collector end to end: one InProcessHost, one Collector
// over it, and a name-keyed set of registered mutator thread stacks.
// Modeled on dbm.DB's two-stage construction (create2 wraps a raw
// lldb.Allocator the same way New here wraps a raw gc.Collector) and on
// its enter/leave bracketing of every public entry point; here the
// bracketing only marks the calling thread active via EnterThread, and
// the collector itself asserts and releases STW where it needs it.
type Machine struct {
	host           *InProcessHost
	coll           *gc.Collector
	stackWatermark Addr
	stackLimit     Addr
}

// New builds a Machine with a fresh heap and static reference table of
// the requested sizes. The returned Machine owns no goroutines and
// starts no background work, matching spec.md §9 ("no process-wide
// static initialization").
func New(opts Options) (*Machine, error) {
	if opts.HeapWords <= 0 {
		return nil, fmt.Errorf("runtime: New: HeapWords must be positive, got %d", opts.HeapWords)
	}
	heapBase := Addr(opts.StaticSlots)
	heapTop := heapBase + opts.HeapWords
	total := heapTop + opts.StackWords
	host := NewInProcessHost(total, opts.StaticSlots)

	coll, err := gc.Init(host, heapBase, opts.HeapWords, opts.Collector)
	if err != nil {
		return nil, err
	}
	return &Machine{host: host, coll: coll, stackWatermark: heapTop, stackLimit: total}, nil
}

// RegisterClass installs a class descriptor for classAddr, as supplied
// by whatever loader produced the running program's class metadata.
func (m *Machine) RegisterClass(classAddr Addr, cd *gc.ClassDescriptor) {
	m.host.RegisterClass(classAddr, cd)
}

// SpawnThread registers a new mutator thread named name with a
// stackWords-word operand stack, bump-carved from Options.StackWords.
// It reports ok == false if the Machine's reserved stack region is
// exhausted.
func (m *Machine) SpawnThread(name string, stackWords Addr) (ok bool) {
	base := m.stackWatermark
	if base+stackWords > m.stackLimit {
		return false
	}
	m.stackWatermark += stackWords
	m.host.RegisterThread(name, base, stackWords)
	return true
}

// RetireThread drops name's stack registration, e.g. when a thread
// exits. Any handles it alone held reachable become collectible on the
// next cycle.
func (m *Machine) RetireThread(name string) {
	m.host.UnregisterThread(name)
}

// SetStaticRef installs handle id as the value of static root slot,
// overwriting whatever was previously rooted there. Static slots are raw
// root words read at every RootScan, not object fields, so no write
// barrier is run for the store.
func (m *Machine) SetStaticRef(slot int, id gc.HandleID) {
	m.host.SetStaticRef(slot, id)
}

// enter marks thread as the active mutator for the duration of a single
// collector call, mirroring dbm.DB.enter/leave's bracketing of every
// public DB method around db.bkl.
func (m *Machine) enter(thread string) { m.host.EnterThread(thread) }

// NewObject allocates an instance of classAddr on behalf of thread.
func (m *Machine) NewObject(thread string, classAddr Addr) (gc.HandleID, error) {
	m.enter(thread)
	return m.coll.NewObject(classAddr)
}

// NewArray allocates a length-element array of kind elem on behalf of
// thread; elem may be gc.RefArray for a reference-typed array.
func (m *Machine) NewArray(thread string, length int, elem gc.ElemKind) (gc.HandleID, error) {
	m.enter(thread)
	return m.coll.NewArray(length, elem)
}

// GCIncrement advances an in-progress cycle by one bounded step on
// behalf of thread, for callers that want to drive collection explicitly
// rather than relying solely on allocation-triggered increments. Like
// gc.Collector.GCIncrement it never starts a cycle; it is a no-op while
// the collector is Idle.
func (m *Machine) GCIncrement(thread string) {
	m.enter(thread)
	m.coll.GCIncrement()
}

// GC runs a synchronous, full stop-the-world collection.
func (m *Machine) GC(thread string) {
	m.enter(thread)
	m.coll.GC()
}

// IsValidObjectHandle reports whether id currently names a live object.
func (m *Machine) IsValidObjectHandle(id gc.HandleID) bool {
	return m.coll.IsValidObjectHandle(id)
}

// Stats returns a snapshot of collector bookkeeping.
func (m *Machine) Stats() gc.Stats { return m.coll.Stats() }

// Host exposes the underlying InProcessHost for tests and debug tools
// that need direct word-level access to object bodies; ordinary
// mutator code should prefer Machine's Object/Array helpers (object.go)
// so that every reference-field store passes through WriteBarrier.
func (m *Machine) Host() *InProcessHost { return m.host }
