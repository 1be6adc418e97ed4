// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "github.com/cznic/sortutil"

// compactor holds the sliding-compaction state for one cycle (spec.md
// §4.6). It operates on a private, address-sorted snapshot of the use
// list taken at the mark→compact boundary; the live use list is empty
// for the duration of compaction and is rebuilt from survivors.
type compactor struct {
	list    HandleID // Head of the sorted snapshot, walked front to back.
	dst     Addr     // Next destination word (compact_dst).
	newList HandleID // Accumulator head for survivors (reverse order; order is not observable).
	active  bool
}

// sortUseListByDataPtr detaches the live use list and returns its
// members as a HandleID chain ordered by ascending DataPtr (spec.md
// §4.2's sort_use_list_by_data_ptr / §4.6's "This ordering is
// essential"). Handle IDs and their DataPtr values are packed into a
// single int64 key (dataPtr in the high 32 bits, id in the low 32) and
// sorted with sortutil.Int64Slice — the same sort the teacher's
// falloc_test.go verification pass uses on raw addresses, here
// promoted to a production operation so the pairing between address
// and handle survives the sort.
func (c *Collector) sortUseListByDataPtr() HandleID {
	var ids []HandleID
	for cur := c.handles.DetachUseList(); cur != NoHandle; {
		next := c.handles.Next(cur)
		ids = append(ids, cur)
		cur = next
	}
	if len(ids) == 0 {
		return NoHandle
	}

	keys := make(sortutil.Int64Slice, len(ids))
	for i, id := range ids {
		dp := int64(c.handles.Get(id).DataPtr)
		keys[i] = dp<<32 | int64(id)
	}
	sortIndices := make([]int, len(ids))
	for i := range sortIndices {
		sortIndices[i] = i
	}
	// sortutil.Int64Slice sorts the keys themselves; recover the
	// permutation by re-reading the low 32 bits of each sorted key,
	// which is exactly the packed HandleID.
	keys.Sort()

	var head, tail HandleID
	for _, k := range keys {
		id := HandleID(k & 0xffffffff)
		h := c.handles.Get(id)
		h.SetNext(NoHandle)
		if head == NoHandle {
			head = id
		} else {
			c.handles.Get(tail).SetNext(id)
		}
		tail = id
	}
	return head
}

// prepareCompact is called once per cycle, at the mark→compact
// boundary (spec.md §4.6 "Prepare"): sort the use list by DataPtr, move
// it into the compactor's private snapshot, and reset compact_dst to
// the heap base.
func (c *Collector) prepareCompact() {
	c.compact = compactor{
		list:   c.sortUseListByDataPtr(),
		dst:    c.heap.Base(),
		active: true,
	}
}

// compactStep processes up to n snapshot entries (spec.md §4.6
// "Step"). Black handles are slid forward to compact_dst (a no-op copy
// when already in place) and survive onto the new use list; white
// handles are released to the free list. Reports done == true once the
// snapshot is exhausted.
func (c *Collector) compactStep(n int) (done bool) {
	for i := 0; i < n; i++ {
		if c.compact.list == NoHandle {
			return true
		}
		id := c.compact.list
		h := c.handles.Get(id)
		c.compact.list = h.Next()

		if h.Mark == c.liveEpoch {
			size := c.objectSize(h)
			if size > 0 && h.DataPtr != c.compact.dst {
				// Forward copy is safe: compact_dst never exceeds a
				// yet-to-be-moved source, by induction on the
				// address-sorted snapshot order (spec.md §4.6).
				c.copyWords(c.compact.dst, h.DataPtr, size)
			}
			h.DataPtr = c.compact.dst
			c.compact.dst += Addr(size)

			h.SetNext(c.compact.newList)
			c.compact.newList = id
		} else {
			c.handles.Release(id)
		}
	}
	return c.compact.list == NoHandle
}

// finishCycle splices survivors back onto the live use list, installs
// the new compact_top, resets the allocation region, and requests a
// cache invalidation from the host (spec.md §4.6 "Finish").
func (c *Collector) finishCycle() {
	c.handles.SetUseList(c.compact.newList)
	c.heap.SetCompactTop(c.compact.dst)
	c.heap.ResetAllocRegion(c.zeroWords)
	c.compact = compactor{}
	c.host.InvalidateCaches()
	c.cyclesRun++
}

// objectSize computes the word size of a live handle's body, per
// spec.md §4.6 ("via class descriptor for Objects, or element-count ×
// element-width for arrays").
func (c *Collector) objectSize(h *Handle) int {
	switch h.Type {
	case TypeObject:
		cd := c.host.ClassDescriptor(h.ClassOrLength)
		if cd == nil {
			corrupt("objectSize", "class descriptor missing for live object handle")
		}
		return cd.InstanceSize
	case TypeRefArray:
		return int(h.ClassOrLength)
	case TypePrimArray:
		return int(h.ClassOrLength) * h.Elem.Words()
	}
	corrupt("objectSize", "unknown handle type")
	return 0
}
