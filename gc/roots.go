// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// scanStaticRefs reads exactly count words starting at base and pushes
// each onto the gray list (spec.md §4.4, static references). The
// collector must hold the global mutex and mutators must already be
// halted (RootScan is STW).
func (c *Collector) scanStaticRefs() {
	base, count := c.host.StaticRefsRange()
	for i := 0; i < count; i++ {
		w := c.host.ReadWord(base + Addr(i))
		c.markerPush(HandleID(w))
	}
}

// scanStack conservatively scans [r.Base, r.Top) word-by-word, pushing
// every word that survives the four preconditions of spec.md §4.4:
// in-range, aligned (trivial here, see HandleTable.InRange), use-listed,
// and not already black. This can only ever produce false positives
// (spec.md: "at most false positives... never false negatives"); a
// coincidental integer that happens to look like a live HandleID wastes
// one trace step but never corrupts anything because precondition 3
// already proved the handle names a real, currently live object.
func (c *Collector) scanStack(r StackRange) {
	for a := r.Base; a < r.Top; a++ {
		w := c.host.ReadWord(a)
		id := HandleID(w)
		if !c.handles.InRange(id) {
			continue
		}
		h := c.handles.Get(id)
		if h.DataPtr == FreeAddr {
			continue
		}
		if h.Mark == c.liveEpoch {
			continue
		}
		c.markerPush(id)
	}
}

// scanRoots performs the full STW root scan: static refs, the active
// mutator's own stack, and every other registered mutator stack.
func (c *Collector) scanRoots() {
	c.scanStaticRefs()

	sp := c.host.CurrentStackPointer()
	c.scanStack(StackRange{Base: sp, Top: c.host.ActiveStackTop()})

	for _, r := range c.host.MutatorStacks() {
		c.scanStack(r)
	}
}
