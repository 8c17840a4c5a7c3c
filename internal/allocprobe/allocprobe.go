// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package allocprobe is the process-wide allocator-leak probe used by
// the self-test harness to confirm that Delete releases everything a
// queue allocated. It is an external collaborator of the CORE (spec
// §1), not part of it, and is deliberately stdlib-only: the pack has
// no allocation-delta profiling library, only memory-limit/capacity
// probes aimed at a different problem (see DESIGN.md).
package allocprobe

import "runtime"

// Snapshot captures live heap object and byte counts after forcing a
// garbage collection, so that two Snapshots taken around a
// construct-then-Delete cycle are comparable without GC timing noise.
type Snapshot struct {
	HeapObjects uint64
	HeapAlloc   uint64
}

// Take forces a GC and returns the resulting heap statistics.
func Take() Snapshot {
	runtime.GC()
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return Snapshot{HeapObjects: stats.HeapObjects, HeapAlloc: stats.HeapAlloc}
}

// Delta is the change from before to after, useful for asserting that
// a construct/use/Delete cycle returns to (approximately) its
// pre-construction baseline.
type Delta struct {
	HeapObjects int64
	HeapAlloc   int64
}

// Since returns how much the heap grew (or shrank) from before to the
// current snapshot.
func (before Snapshot) Since() Delta {
	after := Take()
	return Delta{
		HeapObjects: int64(after.HeapObjects) - int64(before.HeapObjects),
		HeapAlloc:   int64(after.HeapAlloc) - int64(before.HeapAlloc),
	}
}
