// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "fmt"

// Stats reports a snapshot of collector bookkeeping, modeled on
// lldb.AllocStats. It supplements spec.md §8 invariant 6
// (handles_free == handles_total - live_handles) with a queryable
// struct instead of leaving it a prose-only invariant.
type Stats struct {
	HandlesTotal int
	HandlesFree  int
	HandlesLive  int
	FreeWords    int
	TotalWords   int
	Phase        Phase
	CyclesRun    int64
}

// Stats returns a current snapshot.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		HandlesTotal: c.handles.Cap(),
		HandlesFree:  c.handles.Free(),
		HandlesLive:  c.handles.Live(),
		FreeWords:    c.heap.FreeWords(),
		TotalWords:   int(c.heap.Top() - c.heap.Base()),
		Phase:        c.phase,
		CyclesRun:    c.cyclesRun,
	}
}

// Verify walks the handle table and heap frontiers non-destructively,
// reporting any violation of spec.md §8's universally quantified
// invariants 1 and 2 to log. It returns false if log ever returned
// false; the walk does not stop early on that, every check still runs
// and reports (only a detected use list cycle ends the list walk).
// Verify does not
// require mutators to be halted for its own sake, but callers wanting a
// consistent snapshot should pair it with AssertSTW/ReleaseSTW.
func (c *Collector) Verify(log func(error) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok := true
	report := func(err error) {
		if !log(err) {
			ok = false
		}
	}

	if !(c.heap.Base() <= c.heap.CompactTop() &&
		c.heap.CompactTop() <= c.heap.AllocBottom() &&
		c.heap.AllocBottom() <= c.heap.Top()) {
		report(fmt.Errorf("gc: Verify: frontier order violated: base=%d compactTop=%d allocBottom=%d top=%d",
			c.heap.Base(), c.heap.CompactTop(), c.heap.AllocBottom(), c.heap.Top()))
	}

	seen := map[HandleID]bool{}
	for cur := c.handles.UseHead(); cur != NoHandle; cur = c.handles.Next(cur) {
		if seen[cur] {
			report(fmt.Errorf("gc: Verify: use list cycle at handle %d", cur))
			break
		}
		seen[cur] = true

		h := c.handles.Get(cur)
		inCompacted := h.DataPtr >= c.heap.Base() && h.DataPtr < c.heap.CompactTop()
		inFresh := h.DataPtr >= c.heap.AllocBottom() && h.DataPtr < c.heap.Top()
		if !inCompacted && !inFresh {
			report(fmt.Errorf("gc: Verify: handle %d data_ptr %d outside live regions", cur, h.DataPtr))
		}
	}

	if got, want := len(seen), c.handles.Live(); got != want {
		report(fmt.Errorf("gc: Verify: use list length %d != live count %d", got, want))
	}
	if got, want := c.handles.Free()+c.handles.Live(), c.handles.Cap(); got != want {
		report(fmt.Errorf("gc: Verify: free+live %d != cap %d", got, want))
	}

	return ok
}
