// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// fakeHost is a minimal, single-goroutine Host used by the package's own
// tests. It keeps class descriptors in a side table keyed by a small
// synthetic address rather than inside Memory, since no test here needs
// to traverse a class descriptor's own bytes.
type fakeHost struct {
	*ArrayMemory
	classes     map[Addr]*ClassDescriptor
	staticBase  Addr
	staticCount int
	stacks      []StackRange
	activeSP    Addr
	activeTop   Addr
	stwDepth    int
	invalidated int
}

func newFakeHost(words Addr) *fakeHost {
	return &fakeHost{
		ArrayMemory: NewArrayMemory(words),
		classes:     map[Addr]*ClassDescriptor{},
	}
}

func (h *fakeHost) registerClass(addr Addr, cd *ClassDescriptor) { h.classes[addr] = cd }

func (h *fakeHost) CurrentStackPointer() Addr { return h.activeSP }
func (h *fakeHost) ActiveStackTop() Addr      { return h.activeTop }
func (h *fakeHost) MutatorStacks() []StackRange {
	return h.stacks
}
func (h *fakeHost) AssertSTW()  { h.stwDepth++ }
func (h *fakeHost) ReleaseSTW() { h.stwDepth-- }

func (h *fakeHost) InvalidateCaches() { h.invalidated++ }

func (h *fakeHost) StaticRefsRange() (Addr, int) { return h.staticBase, h.staticCount }

func (h *fakeHost) ClassDescriptor(addr Addr) *ClassDescriptor { return h.classes[addr] }

var _ Host = (*fakeHost)(nil)
