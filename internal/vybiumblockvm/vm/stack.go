package vm

import (
	"fmt"

	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
)

// MinStackDepth is the minimum logical stack depth, and the width of the
// dense "top segment" held in on-chip columns (spec.md §3, §6).
const MinStackDepth = 16

// OperandStack is the VM's field-element stack: a dense top segment of
// MinStackDepth columns, each with a full per-cycle history for trace
// reconstruction, plus an OverflowTable holding whatever spills below it
// (spec.md §3 "Operand stack `S`", §4.2).
type OperandStack struct {
	field *core.Field

	top   [MinStackDepth]*core.FieldElement
	depth uint64 // logical depth, always >= MinStackDepth

	overflow *OverflowTable

	// rows[k] is the top-segment contents as of clock k; rows[0] is the
	// initial state captured before any block-tree micro-op runs.
	rows [][MinStackDepth]*core.FieldElement
}

// NewOperandStack creates an operand stack padded with zeroes and primed
// with the given initial values (stack_init, spec.md §6 — "first element
// ends up deepest"), capturing overflow history when captureOverflow is set.
func NewOperandStack(field *core.Field, initial []*core.FieldElement, captureOverflow bool) *OperandStack {
	s := &OperandStack{
		field:    field,
		depth:    MinStackDepth,
		overflow: NewOverflowTable(captureOverflow),
	}
	for i := range s.top {
		s.top[i] = field.Zero()
	}
	for _, v := range initial {
		s.pushNoHistory(v)
	}
	if s.overflow.Len() > 0 {
		// Make the seeded overflow contents visible to SnapshotAt from step 0.
		s.overflow.recordSnapshot(0)
	}
	s.rows = append(s.rows, s.top)
	return s
}

// pushNoHistory performs the physical push without tagging a clock step,
// used only to seed stack_init before execution begins.
func (s *OperandStack) pushNoHistory(v *core.FieldElement) {
	if s.depth >= MinStackDepth {
		spill := s.top[MinStackDepth-1]
		s.overflow.active = append(s.overflow.active, spill)
	}
	for i := MinStackDepth - 1; i > 0; i-- {
		s.top[i] = s.top[i-1]
	}
	s.top[0] = v
	s.depth++
}

// Depth returns the current logical stack depth.
func (s *OperandStack) Depth() uint64 {
	return s.depth
}

// Peek returns the top element without removing it.
func (s *OperandStack) Peek() *core.FieldElement {
	return s.top[0]
}

// PeekAt returns the element at the given depth from the top (0 = top),
// reaching into the overflow table when depth >= MinStackDepth.
func (s *OperandStack) PeekAt(depth int) (*core.FieldElement, error) {
	if depth < 0 || uint64(depth) >= s.depth {
		return nil, errStackDepth(depth)
	}
	if depth < MinStackDepth {
		return s.top[depth], nil
	}
	idx := len(s.overflow.active) - 1 - (depth - MinStackDepth)
	return s.overflow.active[idx], nil
}

func errStackDepth(depth int) error {
	return &ExecutionError{Kind: ErrStackUnderflow, Site: "peek", Value: fmt.Sprintf("%d", depth)}
}

// Push inserts v at position 0, spilling the previous bottom-of-top-segment
// element into the overflow table (tagged with step) if the stack was
// already at or beyond MinStackDepth (spec.md §4.2).
func (s *OperandStack) Push(step uint64, v *core.FieldElement) {
	if s.depth >= MinStackDepth {
		spill := s.top[MinStackDepth-1]
		s.overflow.Push(step, spill)
	}
	for i := MinStackDepth - 1; i > 0; i-- {
		s.top[i] = s.top[i-1]
	}
	s.top[0] = v
	s.depth++
	s.captureRow(step)
}

// Pop removes and returns position 0, pulling the overflow table's top
// element (if any) up into position MinStackDepth-1 (spec.md §4.2).
func (s *OperandStack) Pop(step uint64) (*core.FieldElement, error) {
	if s.depth == 0 {
		return nil, &ExecutionError{Kind: ErrStackUnderflow, Clk: step, Site: "pop"}
	}
	v := s.top[0]
	for i := 0; i < MinStackDepth-1; i++ {
		s.top[i] = s.top[i+1]
	}
	if risen, ok := s.overflow.Pop(step); ok {
		s.top[MinStackDepth-1] = risen
	} else {
		s.top[MinStackDepth-1] = s.field.Zero()
	}
	if s.depth > MinStackDepth {
		s.depth--
	}
	s.captureRow(step)
	return v, nil
}

// Touch records a row at step without changing the stack's contents, for
// user ops that consume a clock cycle but do not mutate the stack (e.g.
// assert_u32).
func (s *OperandStack) Touch(step uint64) {
	s.captureRow(step)
}

// SetAt overwrites the element at depth (0 = top) in place, without changing
// logical depth, and records the resulting row at step. Used by swap, which
// exchanges two existing slots rather than pushing or popping.
func (s *OperandStack) SetAt(step uint64, depth int, v *core.FieldElement) error {
	if depth < 0 || uint64(depth) >= s.depth {
		return errStackDepth(depth)
	}
	if depth < MinStackDepth {
		s.top[depth] = v
	} else {
		idx := len(s.overflow.active) - 1 - (depth - MinStackDepth)
		s.overflow.active[idx] = v
	}
	s.captureRow(step)
	return nil
}

func (s *OperandStack) captureRow(step uint64) {
	for uint64(len(s.rows)) <= step {
		s.rows = append(s.rows, s.top)
	}
	s.rows[step] = s.top
}

// StateAt reconstructs the full logical stack as of the given clock step:
// the top-segment row at that step, followed by the overflow view at that
// step (spec.md §4.2 "get_state_at"). When the overflow table keeps no
// step->snapshot history (trace capture disabled), there is no per-step
// overflow view to reconstruct, so the boundary is padded from the
// overflow table's current contents instead (spec.md §4.3 "append_front").
func (s *OperandStack) StateAt(step uint64) []*core.FieldElement {
	var row [MinStackDepth]*core.FieldElement
	if step < uint64(len(s.rows)) {
		row = s.rows[step]
	} else {
		row = s.top
	}
	out := make([]*core.FieldElement, 0, MinStackDepth)
	out = append(out, row[:]...)
	if s.overflow.capture {
		s.overflow.SnapshotAt(step, &out)
	} else {
		s.overflow.AppendFront(s.overflow.Len(), &out)
	}
	return out
}

