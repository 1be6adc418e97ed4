// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import (
	"encoding/binary"

	"github.com/cznic/zappy"
)

// DumpHeap serializes every live object's handle id, data pointer, and
// raw body words into a zappy-compressed byte slice, for offline
// inspection. This is ambient debug tooling, not part of the collector
// hot path or any spec.md operation; it is modeled on lldb/db_bench's
// use of zappy.Encode to compress serialized values before writing them
// out.
func (c *Collector) DumpHeap() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var raw []byte
	var rec [4]byte
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(rec[:], v)
		raw = append(raw, rec[:]...)
	}

	for cur := c.handles.UseHead(); cur != NoHandle; cur = c.handles.Next(cur) {
		h := c.handles.Get(cur)
		size := c.objectSize(h)
		putU32(uint32(cur))
		putU32(uint32(h.DataPtr))
		putU32(uint32(h.Type))
		putU32(uint32(size))
		for i := 0; i < size; i++ {
			putU32(uint32(c.host.ReadWord(h.DataPtr + Addr(i))))
		}
	}

	return zappy.Encode(nil, raw)
}
