// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// writeBarrier implements the snapshot-at-beginning (Yuasa) barrier of
// spec.md §4.7. It must run before the mutator overwrites
// slot fieldIndex of the object denoted by handle; the caller
// (Collector.WriteBarrier) already holds the global mutex for the
// duration of this call.
//
// The barrier preserves: every reference that existed at the start of
// the cycle is either still reachable from some root, or was handed to
// the collector by being overwritten here. A Dijkstra (insertion)
// barrier alone would miss this — incremental marking may already have
// passed the writer's object before the new reference is installed — so
// this traces the deleted edge instead of the inserted one.
func (c *Collector) writeBarrier(id HandleID, fieldIndex int) {
	h := c.handles.Get(id)

	isRefSlot := false
	switch h.Type {
	case TypeObject:
		cd := c.host.ClassDescriptor(h.ClassOrLength)
		if cd == nil {
			corrupt("writeBarrier", "class descriptor missing for live object handle")
		}
		isRefSlot = cd.IsRef(fieldIndex)
	case TypeRefArray:
		isRefSlot = true
	case TypePrimArray:
		isRefSlot = false
	}
	if !isRefSlot {
		return
	}

	old := HandleID(c.host.ReadWord(h.DataPtr + Addr(fieldIndex)))
	if old == NoHandle {
		return
	}
	if !c.handles.InRange(old) {
		return
	}
	oldHandle := c.handles.Get(old)
	if oldHandle.DataPtr == FreeAddr {
		return
	}
	if oldHandle.Mark == c.liveEpoch {
		return
	}
	c.markerPush(old)
}
