// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

// ElemKind enumerates primitive array element kinds, distinguishing
// 1-word from 2-word elements (spec.md §3.1).
type ElemKind int

const (
	ElemByte ElemKind = iota
	ElemShort
	ElemInt
	ElemLong
	ElemFloat
	ElemDouble
	ElemChar
	ElemBoolean
)

// Words reports how many Memory words one element of this kind occupies.
func (k ElemKind) Words() int {
	switch k {
	case ElemLong, ElemDouble:
		return 2
	default:
		return 1
	}
}

// HandleType tags what a handle denotes, per spec.md §3.1.
type HandleType int

const (
	// TypeObject denotes a class instance; children are found via the
	// class descriptor's ref_bitmap.
	TypeObject HandleType = iota
	// TypeRefArray denotes an array every element of which is a
	// reference.
	TypeRefArray
	// TypePrimArray denotes an array of ElemKind primitives; it has no
	// children.
	TypePrimArray
)

// ClassDescriptor is the external, collector-immutable contract
// supplied by the compiler/loader for every Object-typed handle
// (spec.md §3.3). class_or_length on an Object handle is the Addr of
// its ClassDescriptor.
type ClassDescriptor struct {
	// InstanceSize is the total number of words occupied by an
	// instance of this class.
	InstanceSize int

	// RefBitmap is the unbounded ref_bitmap bit string of spec.md §3.3:
	// word i of the instance is a reference field iff bit i%64 of
	// RefBitmap[i/64] is set. Bit 0 of RefBitmap[0] is word 0 (spec.md
	// §9 open question, resolved LSB-is-field-0; see DESIGN.md). A class
	// with no reference fields may leave RefBitmap nil. Unlike a single
	// machine word, this representation has no 64-word ceiling on
	// InstanceSize.
	RefBitmap []uint64
}

// IsRef reports whether word i of an instance of this class holds a
// reference (handle identifier) rather than a primitive value.
func (c *ClassDescriptor) IsRef(i int) bool {
	if i < 0 {
		return false
	}
	w := i / 64
	if w >= len(c.RefBitmap) {
		return false
	}
	return c.RefBitmap[w]&(uint64(1)<<uint(i%64)) != 0
}
