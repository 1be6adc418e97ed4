// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "github.com/cznic/mathutil"

// Handle is the sole externally visible reference to a heap object
// (spec.md §3.1). All mutator-visible "references" are HandleID values
// indexing a HandleTable; compaction rewrites only DataPtr, never any
// word inside the object body.
type Handle struct {
	DataPtr        Addr       // FreeAddr when the handle is on the free list.
	ClassOrLength  Addr       // Class descriptor address (Object) or element count (array).
	Mark           Epoch      // Equals live_epoch once blackened this cycle.
	Type           HandleType
	Elem           ElemKind // Meaningful only when Type == TypePrimArray.
	next           HandleID // Free-list / use-list link (mutually exclusive membership).
	grayLink       HandleID // NotInList when absent; GrayEnd terminates the list.
}

// Next returns the handle's list link. Meaningful only while the
// caller already knows which list (free, use, or compactor snapshot)
// it is walking.
func (h *Handle) Next() HandleID { return h.next }

// SetNext overwrites the handle's list link, used by the Compactor to
// relink its address-sorted snapshot and the rebuilt use list.
func (h *Handle) SetNext(id HandleID) { h.next = id }

// HandleTable is a fixed-capacity array of Handle records, partitioned
// at all times into exactly two disjoint lists — free and use — plus an
// orthogonal gray-list threading that only touches handles already on
// the use list (spec.md §3.1 invariants). The repository this is
// modeled on (lldb's FLT) buckets its free list by size class because
// on-disk blocks vary in size; handle table slots are fixed-size, so a
// single free list suffices (see DESIGN.md).
type HandleTable struct {
	slots    []Handle
	freeHead HandleID // NoHandle when the free list is empty.
	useHead  HandleID // NoHandle when the use list is empty.
	grayHead HandleID // GrayEnd when the gray list is empty.
	free     int
}

// NewHandleTable builds a table of the given capacity, cap, with every
// slot initially free-listed (spec.md §3.1 "A handle is born free").
// cap is clamped to be at least 1; spec.md §6.4 calls handle_cap a hard
// cap, so the caller-chosen value is taken as-is above that floor.
func NewHandleTable(cap int) *HandleTable {
	cap = mathutil.Max(cap, 1)
	t := &HandleTable{
		slots:    make([]Handle, cap+1), // index 0 is unused; NoHandle == 0.
		grayHead: GrayEnd,
	}
	for i := cap; i >= 1; i-- {
		t.slots[i].next = t.freeHead
		t.freeHead = HandleID(i)
	}
	t.free = cap
	return t
}

// Cap returns the table's total slot count.
func (t *HandleTable) Cap() int { return len(t.slots) - 1 }

// Free returns the number of currently free-listed handles.
func (t *HandleTable) Free() int { return t.free }

// Live returns the number of currently use-listed handles.
func (t *HandleTable) Live() int { return t.Cap() - t.free }

// Get returns a pointer to the handle record for id. The caller must
// hold the collector's global mutex.
func (t *HandleTable) Get(id HandleID) *Handle {
	return &t.slots[id]
}

// AcquireFree pops the free list head, or reports Exhausted == true if
// the free list is empty.
func (t *HandleTable) AcquireFree() (id HandleID, exhausted bool) {
	if t.freeHead == NoHandle {
		return NoHandle, true
	}
	id = t.freeHead
	h := &t.slots[id]
	t.freeHead = h.next
	h.next = NoHandle
	t.free--
	return id, false
}

// Release pushes id onto the free list and resets DataPtr to FreeAddr.
// It overwrites id's next link without unlinking id from any list, so id
// must not be threaded on the live use list or the gray list.
func (t *HandleTable) Release(id HandleID) {
	h := &t.slots[id]
	h.DataPtr = FreeAddr
	h.next = t.freeHead
	t.freeHead = id
	t.free++
}

// UsePush links id onto the head of the use list.
func (t *HandleTable) UsePush(id HandleID) {
	h := &t.slots[id]
	h.next = t.useHead
	t.useHead = id
}

// UseHead returns the current use list head, NoHandle if empty.
func (t *HandleTable) UseHead() HandleID { return t.useHead }

// DetachUseList empties the live use list and returns its former head,
// for Compactor.prepare to take a private snapshot of.
func (t *HandleTable) DetachUseList() HandleID {
	h := t.useHead
	t.useHead = NoHandle
	return h
}

// Next returns the next-link of id as threaded through whichever list it
// currently belongs to (free or use); callers are expected to already
// know which list they are walking.
func (t *HandleTable) Next(id HandleID) HandleID { return t.slots[id].next }

// SetUseList installs head as the live use list, discarding whatever was
// there (used by Compactor.finish to splice survivors back in).
func (t *HandleTable) SetUseList(head HandleID) { t.useHead = head }

// GrayPush links h onto the head of the gray list, unless it is already
// threaded on (idempotent, spec.md §3.4/§4.2).
func (t *HandleTable) GrayPush(id HandleID) {
	h := &t.slots[id]
	if h.grayLink != NotInList {
		return
	}
	h.grayLink = t.grayHead
	t.grayHead = id
}

// GrayPop unlinks and returns the gray list head, or reports empty ==
// true if the list is exhausted.
func (t *HandleTable) GrayPop() (id HandleID, empty bool) {
	if t.grayHead == GrayEnd {
		return NoHandle, true
	}
	id = t.grayHead
	h := &t.slots[id]
	t.grayHead = h.grayLink
	h.grayLink = NotInList
	return id, false
}

// GrayEmpty reports whether the gray list currently has no entries.
func (t *HandleTable) GrayEmpty() bool { return t.grayHead == GrayEnd }

// grayReset discards the entire gray list, resetting every currently
// threaded handle's grayLink back to NotInList. Used by the full STW
// cycle (spec.md §4.8 "STW escape" step 2): "discard the gray list (all
// live objects will be rediscovered from roots)".
func (t *HandleTable) grayReset() {
	for cur := t.grayHead; cur != GrayEnd; {
		h := &t.slots[cur]
		next := h.grayLink
		h.grayLink = NotInList
		cur = next
	}
	t.grayHead = GrayEnd
}

// OnGrayList reports whether id is currently threaded onto the gray
// list, an O(1) check against its grayLink field (spec.md §3.4).
func (t *HandleTable) OnGrayList(id HandleID) bool {
	return t.slots[id].grayLink != NotInList
}

// IsValid reports whether id names a currently live (use-listed) handle,
// by walking the use list — the same cost IsValidObjectHandle's
// traversal documented in spec.md §6.1 pays.
func (t *HandleTable) IsValid(id HandleID) bool {
	if id == NoHandle || int(id) >= len(t.slots) {
		return false
	}
	for cur := t.useHead; cur != NoHandle; cur = t.slots[cur].next {
		if cur == id {
			return true
		}
	}
	return false
}

// InRange reports whether id could plausibly be a live HandleID: the
// conservative stack scanner's first precondition (spec.md §4.4.1).
// Handle identifiers are themselves 1-word values here (a table index,
// not a byte address), so "aligned to the handle record size" (spec.md
// §4.4.2) is trivially true for any in-range value; the host-specific
// alignment check a byte-addressed handle table would need is folded
// into this single range test.
func (t *HandleTable) InRange(id HandleID) bool {
	return id != NoHandle && int(id) < len(t.slots)
}
