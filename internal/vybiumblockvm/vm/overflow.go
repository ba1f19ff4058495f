package vm

import (
	"sort"

	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
)

// OverflowTable holds the operand-stack elements that have spilled below the
// top MinStackDepth positions, plus — when trace capture is enabled — a
// sorted step -> snapshot history so any past clock's contents can be
// reconstructed (spec.md §3 "Overflow table `O`", §4.3).
type OverflowTable struct {
	active []*core.FieldElement

	capture   bool
	steps     []uint64
	snapshots [][]*core.FieldElement
}

// NewOverflowTable creates an empty overflow table. capture controls whether
// the step->snapshot history is recorded; disabling it (spec.md §5 "Memory
// discipline") keeps long-running, trace-less executions from growing that
// history unboundedly.
func NewOverflowTable(capture bool) *OverflowTable {
	return &OverflowTable{capture: capture}
}

// Len reports the number of elements currently held in the overflow table.
func (o *OverflowTable) Len() int {
	return len(o.active)
}

// Push appends a spilled element, tagging the mutation with step (the clock
// at which it occurred) for later reconstruction.
func (o *OverflowTable) Push(step uint64, v *core.FieldElement) {
	o.active = append(o.active, v)
	o.recordSnapshot(step)
}

// Pop removes and returns the most recently pushed element, reporting false
// if the overflow table is empty. Tags the mutation with step like Push.
func (o *OverflowTable) Pop(step uint64) (*core.FieldElement, bool) {
	if len(o.active) == 0 {
		return nil, false
	}
	v := o.active[len(o.active)-1]
	o.active = o.active[:len(o.active)-1]
	o.recordSnapshot(step)
	return v, true
}

func (o *OverflowTable) recordSnapshot(step uint64) {
	if !o.capture {
		return
	}
	snap := make([]*core.FieldElement, len(o.active))
	copy(snap, o.active)
	o.steps = append(o.steps, step)
	o.snapshots = append(o.snapshots, snap)
}

// SnapshotAt appends the overflow contents as of the last mutation at a step
// <= step into out, in insertion (bottom-to-top) order. It appends nothing
// if no mutation has occurred by that step (spec.md §4.3 "Ordering
// guarantee").
func (o *OverflowTable) SnapshotAt(step uint64, out *[]*core.FieldElement) {
	i := sort.Search(len(o.steps), func(i int) bool { return o.steps[i] > step })
	if i == 0 {
		return
	}
	*out = append(*out, o.snapshots[i-1]...)
}

// AppendFront appends the first size elements of the *current* active
// sequence into out, used to pad a reconstructed stack view up to the
// physical row width (spec.md §4.3 "append_front").
func (o *OverflowTable) AppendFront(size int, out *[]*core.FieldElement) {
	if size > len(o.active) {
		size = len(o.active)
	}
	*out = append(*out, o.active[:size]...)
}
