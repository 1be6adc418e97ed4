// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gcdemo exercises the collector with a churning reference
// chain: a configurable number of nodes, a fraction of which are
// relinked to fresh garbage on every round, driven through enough
// allocation and GCIncrement traffic to cycle the collector many times
// over.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/cznic/incgc/gc"
	"github.com/cznic/incgc/runtime"
)

var (
	nodes     = flag.Int("nodes", 500, "chain length")
	rounds    = flag.Int("rounds", 2000, "mutation rounds")
	heapWords = flag.Int("heap", 1<<16, "heap size in words")
	markStep  = flag.Int("mark-step", 0, "gray entries per GCIncrement (0: default)")
	seed      = flag.Int64("seed", 1, "math/rand seed")
)

// node is a single-field object: word 0 is a reference to the next
// node in the chain, or gc.NoHandle at the tail.
var nodeClass = Addr(1)

type Addr = gc.Addr

func nodeDescriptor() *gc.ClassDescriptor {
	return &gc.ClassDescriptor{InstanceSize: 1, RefBitmap: []uint64{1}}
}

func main() {
	flag.Parse()

	m, err := runtime.New(runtime.Options{
		HeapWords:   Addr(*heapWords),
		StaticSlots: 1,
		StackWords:  64,
		Collector: gc.Options{
			MarkStep: *markStep,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	m.RegisterClass(nodeClass, nodeDescriptor())
	if ok := m.SpawnThread("main", 64); !ok {
		log.Fatal("gcdemo: SpawnThread failed")
	}

	chain := make([]gc.HandleID, *nodes)
	for i := range chain {
		h, err := m.NewObject("main", nodeClass)
		if err != nil {
			log.Fatal(err)
		}
		chain[i] = h
	}
	for i := 0; i < len(chain)-1; i++ {
		if err := m.SetRef("main", chain[i], 0, chain[i+1]); err != nil {
			log.Fatal(err)
		}
	}
	m.SetStaticRef(0, chain[0])

	rng := rand.New(rand.NewSource(*seed))
	for round := 0; round < *rounds; round++ {
		// Churn: drop a random suffix edge (making everything beyond it
		// garbage), then immediately regrow the chain back to length.
		cut := rng.Intn(len(chain))
		if err := m.SetRef("main", chain[cut], 0, gc.NoHandle); err != nil {
			log.Fatal(err)
		}
		for i := cut + 1; i < len(chain); i++ {
			h, err := m.NewObject("main", nodeClass)
			if err != nil {
				log.Fatal(err)
			}
			chain[i] = h
			if err := m.SetRef("main", chain[i-1], 0, chain[i]); err != nil {
				log.Fatal(err)
			}
		}
		m.GCIncrement("main")

		if round%200 == 0 {
			s := m.Stats()
			fmt.Printf("round %5d: phase=%-8s free=%d/%d handles_live=%d cycles=%d\n",
				round, s.Phase, s.FreeWords, s.TotalWords, s.HandlesLive, s.CyclesRun)
		}
	}

	m.GC("main")
	s := m.Stats()
	fmt.Printf("final: phase=%s free=%d/%d handles_live=%d cycles=%d\n",
		s.Phase, s.FreeWords, s.TotalWords, s.HandlesLive, s.CyclesRun)
}
