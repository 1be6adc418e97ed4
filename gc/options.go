// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gc

import "fmt"

const (
	// ModeManaged runs the full incremental mark-compact collector
	// (spec.md §4.8).
	ModeManaged = iota

	// ModeScoped disables mark-compact entirely: allocation is linear
	// bump allocation within a current region, GC is a no-op, and an
	// allocation that does not fit reports OutOfMemory immediately
	// (spec.md §6.4, §9 "Scoped memory").
	ModeScoped
)

// defaults, per spec.md §6.4.
const (
	defaultMarkStep              = 20
	defaultCompactStep           = 10
	defaultFreeThresholdFraction = 4
)

// Options amends the behavior of Init, mirroring dbm.Options's
// enumerated-knob shape (spec.md §6.4). A zero Options{} means "use the
// documented defaults" for every numeric field; only Mode has no
// meaningful zero-default distinct from ModeManaged (ModeManaged == 0).
type Options struct {
	// Mode selects ModeManaged (default) or ModeScoped.
	Mode int

	// HandleCap is the handle table's hard capacity. Zero means "use
	// the repository default of 65536" (spec.md §4.2).
	HandleCap int

	// MarkStep is the number of gray entries processed per
	// gcIncrement call while in the Mark phase. Zero means the
	// default of 20.
	MarkStep int

	// CompactStep is the number of handles compacted per gcIncrement
	// call while in the Compact phase. Zero means the default of 10.
	CompactStep int

	// FreeThresholdFraction is the denominator of the heap fraction
	// below which a cycle starts proactively: free_words <
	// heap_words/FreeThresholdFraction. Zero means the default of 4
	// (a quarter of the heap).
	FreeThresholdFraction int

	checked bool
}

const defaultHandleCap = 65536

func (o *Options) check() error {
	if o.checked {
		return nil
	}
	switch o.Mode {
	default:
		return fmt.Errorf("gc: unsupported Options.Mode: %d", o.Mode)
	case ModeManaged, ModeScoped:
	}
	if o.HandleCap <= 0 {
		o.HandleCap = defaultHandleCap
	}
	if o.MarkStep <= 0 {
		o.MarkStep = defaultMarkStep
	}
	if o.CompactStep <= 0 {
		o.CompactStep = defaultCompactStep
	}
	if o.FreeThresholdFraction <= 0 {
		o.FreeThresholdFraction = defaultFreeThresholdFraction
	}
	o.checked = true
	return nil
}
