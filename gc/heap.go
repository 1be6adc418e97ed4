// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "github.com/cznic/mathutil"

// Heap is the single contiguous, word-indexed region [heapBase,
// heapBase+heapWords) the collector carves object bodies out of
// (spec.md §3.2). It carries no per-object header words of its own —
// unlike lldb's self-describing atom blocks, every object's size and
// type live in its Handle, external to the heap bytes, so the heap
// itself is nothing but the two frontiers.
type Heap struct {
	base        Addr
	words       Addr
	compactTop  Addr // One past the last word of compacted live data.
	allocBottom Addr // Lowest word currently allocated to a live object.
}

// NewHeap installs an empty heap of the given size over base..base+words.
func NewHeap(base, words Addr) *Heap {
	return &Heap{
		base:        base,
		words:       words,
		compactTop:  base,
		allocBottom: base + words,
	}
}

// Base returns the heap's lowest addressable word.
func (h *Heap) Base() Addr { return h.base }

// Top returns one past the heap's highest addressable word.
func (h *Heap) Top() Addr { return h.base + h.words }

// CompactTop returns the current compaction frontier.
func (h *Heap) CompactTop() Addr { return h.compactTop }

// AllocBottom returns the current allocation frontier.
func (h *Heap) AllocBottom() Addr { return h.allocBottom }

// FreeWords returns alloc_bottom - compact_top, the width of the free
// interval between the two frontiers.
func (h *Heap) FreeWords() int {
	return mathutil.Max(0, int(h.allocBottom)-int(h.compactTop))
}

// Allocate reserves size words at the top of the free interval,
// decrementing alloc_bottom, and returns the new alloc_bottom (the base
// address of the reservation). It reports ok == false if size exceeds
// FreeWords.
func (h *Heap) Allocate(size int) (addr Addr, ok bool) {
	if size < 0 || size > h.FreeWords() {
		return 0, false
	}
	h.allocBottom -= Addr(size)
	return h.allocBottom, true
}

// SetCompactTop installs a new compaction frontier, as computed by
// Compactor.step's running compact_dst.
func (h *Heap) SetCompactTop(addr Addr) { h.compactTop = addr }

// ResetAllocRegion sets alloc_bottom back to the top of the heap after a
// finished cycle (spec.md §4.3) and calls zero(compact_top, heap top) so
// the caller can clear the whole free interval, leaving newly allocated
// fields defaulted to zero/null. Heap itself holds no Memory reference;
// the caller (Collector) supplies the zeroing action.
func (h *Heap) ResetAllocRegion(zero func(from, to Addr)) {
	h.allocBottom = h.base + h.words
	zero(h.compactTop, h.allocBottom)
}
