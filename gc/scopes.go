// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// allocateScoped serves NewObject/NewArray when Options.Mode ==
// ModeScoped (spec.md §6.4, §9 "Scoped/immortal regions"): allocation
// is linear from the current region's bump pointer, sharing the
// allocate entry point but taking a completely different code path.
// There is no free list recycling within the scope and no collector to
// run; a failed reservation fails immediately, matching "gc() in this
// mode is a no-op that raises OutOfMemory on exhaustion" — there is
// nothing for gcIncrement or the STW escape hatch to do here, so
// tryAllocateOnce's single attempt is the whole story. The region
// semantics themselves (scope push/pop, lifetime) are a host concern
// out of this collector's scope per spec.md's Non-goals; this collector
// only guarantees NewObject/NewArray keep working in this mode.
func (c *Collector) allocateScoped(size int, init func(*Handle)) (HandleID, error) {
	addr, id, ok := c.tryAllocateOnce(size)
	if !ok {
		return NoHandle, &OutOfMemoryError{Requested: size, Free: c.heap.FreeWords()}
	}
	h := c.handles.Get(id)
	init(h)
	h.DataPtr = addr
	h.Mark = c.liveEpoch
	c.handles.UsePush(id)
	return id, nil
}
