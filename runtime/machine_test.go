// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import (
	"testing"

	"github.com/cznic/incgc/gc"
)

func nodeClass() *gc.ClassDescriptor {
	return &gc.ClassDescriptor{InstanceSize: 1, RefBitmap: []uint64{1}}
}

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	m, err := New(Options{
		HeapWords:   256,
		StaticSlots: 4,
		StackWords:  64,
		Collector:   gc.Options{HandleCap: 64},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMachineAllocateAndLinkObjects(t *testing.T) {
	m := newTestMachine(t)
	cls := Addr(1000)
	m.RegisterClass(cls, nodeClass())

	if ok := m.SpawnThread("main", 16); !ok {
		t.Fatal("SpawnThread failed")
	}

	root, err := m.NewObject("main", cls)
	if err != nil {
		t.Fatal(err)
	}
	child, err := m.NewObject("main", cls)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SetRef("main", root, 0, child); err != nil {
		t.Fatal(err)
	}
	got, err := m.GetRef(root, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != child {
		t.Fatalf("GetRef(root, 0) = %d, want %d", got, child)
	}

	m.SetStaticRef(0, root)
	m.GC("main")

	if !m.IsValidObjectHandle(root) || !m.IsValidObjectHandle(child) {
		t.Fatalf("root and child should survive a gc() while root is statically rooted")
	}
}

func TestMachineCollectsUnreachableObject(t *testing.T) {
	m := newTestMachine(t)
	cls := Addr(1000)
	m.RegisterClass(cls, nodeClass())
	m.SpawnThread("main", 16)

	orphan, err := m.NewObject("main", cls)
	if err != nil {
		t.Fatal(err)
	}
	m.GC("main")
	if m.IsValidObjectHandle(orphan) {
		t.Fatalf("orphan should have been collected: nothing roots it")
	}
}

func TestMachineStackScanKeepsHandleAlive(t *testing.T) {
	m := newTestMachine(t)
	cls := Addr(1000)
	m.RegisterClass(cls, nodeClass())
	m.SpawnThread("main", 16)

	h, err := m.NewObject("main", cls)
	if err != nil {
		t.Fatal(err)
	}
	// Push the handle id onto the thread's own operand stack instead of
	// a static root: the conservative stack scanner should find it.
	if ok := m.host.PushWord("main", Word(h)); !ok {
		t.Fatal("PushWord failed")
	}

	m.GC("main")
	if !m.IsValidObjectHandle(h) {
		t.Fatalf("h should survive via conservative stack scan")
	}
}

func TestSpawnThreadExhaustion(t *testing.T) {
	m := newTestMachine(t)
	if ok := m.SpawnThread("a", 60); !ok {
		t.Fatal("first SpawnThread should fit in 64 reserved words")
	}
	if ok := m.SpawnThread("b", 8); ok {
		t.Fatalf("second SpawnThread should fail: only 4 words left of 64")
	}
}
