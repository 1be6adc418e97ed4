// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// Memory is a word-addressable model of the backing store the collector
// and its heap live in. ReadWord/WriteWord are always word-aligned; the
// collector never performs a sub-word access. A Memory is not safe for
// concurrent access on its own — callers (the Collector) hold the global
// mutex around any sequence of reads/writes that must be observed
// atomically by the mutator and the collector alike.
type Memory interface {
	// ReadWord returns the word stored at addr.
	ReadWord(addr Addr) Word

	// WriteWord stores w at addr.
	WriteWord(addr Addr, w Word)

	// Words returns the total addressable size, in words.
	Words() Addr
}

var _ Memory = (*ArrayMemory)(nil) // Ensure ArrayMemory is a Memory.

// ArrayMemory is a flat, in-process Memory backed by a single []Word.
// It is the ready-to-use Memory implementation a mutator reaches for
// without writing its own, the same role lldb.MemFiler played for Filer.
// Unlike MemFiler, ArrayMemory does not page its backing store: the GC
// heap is never sparse, so a flat slice is strictly simpler and
// sufficient.
type ArrayMemory struct {
	words []Word
}

// NewArrayMemory allocates an ArrayMemory of the given size, in words.
// All words are initially zero.
func NewArrayMemory(words Addr) *ArrayMemory {
	return &ArrayMemory{words: make([]Word, words)}
}

// ReadWord implements Memory.
func (m *ArrayMemory) ReadWord(addr Addr) Word {
	return m.words[addr]
}

// WriteWord implements Memory.
func (m *ArrayMemory) WriteWord(addr Addr, w Word) {
	m.words[addr] = w
}

// Words implements Memory.
func (m *ArrayMemory) Words() Addr {
	return Addr(len(m.words))
}

// Zero clears [from, to) to zero words. The collector does not call it:
// Heap.ResetAllocRegion zeroes through the Host's WriteWord instead.
func (m *ArrayMemory) Zero(from, to Addr) {
	for i := from; i < to; i++ {
		m.words[i] = 0
	}
}

// CopyWords copies n words from src to dst. Both ranges belong to the
// same Memory. The collector does not call it (compaction copies through
// the Host's ReadWord/WriteWord, always with dst <= src, a forward,
// left-to-right slide), and CopyWords itself does not assume that
// ordering — it copies in the direction that is always safe
// for overlapping ranges, mirroring the standard library's copy()
// semantics for a single slice.
func (m *ArrayMemory) CopyWords(dst, src Addr, n int) {
	copy(m.words[dst:int(dst)+n], m.words[src:int(src)+n])
}
