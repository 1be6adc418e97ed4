// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// markerPush is the tri-color marker's precondition-filtered push
// (spec.md §4.5): ignore FreeAddr handles, ignore already-black
// handles, otherwise gray-list the handle if it is not already
// threaded on. Idempotent under concurrent mutator barriers because
// every caller holds the global mutex.
func (c *Collector) markerPush(id HandleID) {
	if id == NoHandle || !c.handles.InRange(id) {
		return
	}
	h := c.handles.Get(id)
	if h.DataPtr == FreeAddr {
		return
	}
	if h.Mark == c.liveEpoch {
		return
	}
	c.handles.GrayPush(id)
}

// traceOne pops one gray handle and blackens it, walking its children
// per spec.md §4.5's trace step. It is a no-op if the popped handle
// already went black since it was queued (can happen when the same
// handle was pushed twice before being traced).
func (c *Collector) traceOne() {
	id, empty := c.handles.GrayPop()
	if empty {
		return
	}
	h := c.handles.Get(id)
	if h.Mark == c.liveEpoch {
		return
	}
	h.Mark = c.liveEpoch

	switch h.Type {
	case TypeObject:
		cd := c.host.ClassDescriptor(h.ClassOrLength)
		if cd == nil {
			corrupt("traceOne", "class descriptor missing for live object handle")
		}
		words := cd.InstanceSize
		for i := 0; i < words; i++ {
			if !cd.IsRef(i) {
				continue
			}
			child := HandleID(c.host.ReadWord(h.DataPtr + Addr(i)))
			c.markerPush(child)
		}
	case TypeRefArray:
		length := int(h.ClassOrLength)
		for i := 0; i < length; i++ {
			child := HandleID(c.host.ReadWord(h.DataPtr + Addr(i)))
			c.markerPush(child)
		}
	case TypePrimArray:
		// No children.
	}
}

// markStep processes up to n gray entries and reports whether the gray
// list is empty afterward (spec.md §4.5 "Bounded increment"). The
// collector calls this from gcIncrement until it reports true, at which
// point the Mark phase gives way to Compact.
func (c *Collector) markStep(n int) (grayEmpty bool) {
	for i := 0; i < n; i++ {
		if c.handles.GrayEmpty() {
			return true
		}
		c.traceOne()
	}
	return c.handles.GrayEmpty()
}
