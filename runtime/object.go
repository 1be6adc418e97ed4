// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runtime

import "github.com/cznic/incgc/gc"

// SetRef overwrites reference-typed field fieldIndex of the object (or
// element index of the ref array) denoted by id with value, running the
// write barrier first (spec.md §4.7: the barrier must graysify the old
// value before the mutator installs the new one). This is the one
// sanctioned way to store a reference through this package; calling
// WriteWord directly on a handle's field without first going through
// SetRef (or an explicit WriteBarrier/WriteWord pair) can lose an
// object the snapshot barrier was relying on to preserve.
func (m *Machine) SetRef(thread string, id gc.HandleID, fieldIndex int, value gc.HandleID) error {
	m.enter(thread)
	if err := m.coll.WriteBarrier(id, fieldIndex); err != nil {
		return err
	}
	addr, err := m.coll.FieldAddr(id, fieldIndex)
	if err != nil {
		return err
	}
	m.host.WriteWord(addr, Word(value))
	return nil
}

// GetRef reads reference-typed field fieldIndex of the object denoted
// by id. No barrier is needed for reads: the barrier only protects
// against losing the old value of an overwritten slot.
func (m *Machine) GetRef(id gc.HandleID, fieldIndex int) (gc.HandleID, error) {
	addr, err := m.coll.FieldAddr(id, fieldIndex)
	if err != nil {
		return gc.NoHandle, err
	}
	return gc.HandleID(m.host.ReadWord(addr)), nil
}

// SetPrim overwrites primitive-typed field fieldIndex with value.
// Primitive fields are never reference-bearing, so no barrier applies;
// this is a direct pass-through to the host's word accessor, still
// routed through Collector.FieldAddr so a stale cached address never
// outlives a compaction.
func (m *Machine) SetPrim(id gc.HandleID, fieldIndex int, value gc.Word) error {
	addr, err := m.coll.FieldAddr(id, fieldIndex)
	if err != nil {
		return err
	}
	m.host.WriteWord(addr, value)
	return nil
}

// GetPrim reads primitive-typed field fieldIndex.
func (m *Machine) GetPrim(id gc.HandleID, fieldIndex int) (gc.Word, error) {
	addr, err := m.coll.FieldAddr(id, fieldIndex)
	if err != nil {
		return 0, err
	}
	return m.host.ReadWord(addr), nil
}
