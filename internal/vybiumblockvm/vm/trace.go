package vm

import (
	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/utils"
)

// TraceInfo describes the shape of an ExecutionTrace: how many rows it has
// and how wide each row is (spec.md §6 "Execution trace"). Width tracks the
// free-memory pointer, the 16-wide stack top segment, a loop-depth column,
// and however many overflow columns the deepest moment of execution needed.
type TraceInfo struct {
	ClkFinal      uint64
	MaxStackDepth uint64
	MaxLoopDepth  int
	Width         int
}

// ExecutionTrace is the column-oriented view of a finished execution: row k
// holds the VM's full state at clock k, reconstructed on demand from the
// stack, overflow table, memory and system register histories each
// component already keeps (spec.md §6). It stops at the column-oriented
// view; the further step of laying trace columns out for a STARK prover —
// constraint polynomials, auxiliary randomized columns, co-processor trace
// segments — is out of scope (spec.md §1).
type ExecutionTrace struct {
	process *Process
	info    TraceInfo
}

// NewExecutionTrace builds a trace view over a process that has finished
// executing (or failed partway through — Length and Row still reconstruct
// everything up to the point execution stopped).
func NewExecutionTrace(p *Process) *ExecutionTrace {
	info := TraceInfo{
		ClkFinal:      p.Sys().Clk(),
		MaxStackDepth: p.MaxStackDepth(),
		MaxLoopDepth:  p.MaxLoopDepth(),
	}
	info.Width = 1 + MinStackDepth + 1 + int(info.MaxStackDepth-MinStackDepth)
	return &ExecutionTrace{process: p, info: info}
}

// Info returns the trace's shape.
func (t *ExecutionTrace) Info() TraceInfo {
	return t.info
}

// Length returns the trace's padded row count: the smallest power of two
// that is at least clk_final+1 (spec.md §6 "trace length is a power of
// two").
func (t *ExecutionTrace) Length() uint64 {
	return uint64(utils.NextPowerOfTwo(int(t.info.ClkFinal + 1)))
}

// Row reconstructs the full column vector at clk: fmp, the 16-wide stack top
// segment, the current loop-nesting depth, and whatever overflow columns are
// active, zero-padded out to the trace's fixed width.
func (t *ExecutionTrace) Row(clk uint64) []*core.FieldElement {
	field := t.process.field
	row := make([]*core.FieldElement, 0, t.info.Width)

	row = append(row, t.process.Sys().FmpAt(clk))

	state := t.process.Stack().StateAt(clk)
	for i := 0; i < MinStackDepth; i++ {
		if i < len(state) {
			row = append(row, state[i])
		} else {
			row = append(row, field.Zero())
		}
	}

	row = append(row, field.NewElementFromUint64(uint64(t.process.LoopDepthAt(clk))))

	overflowWidth := t.info.Width - (1 + MinStackDepth + 1)
	for i := 0; i < overflowWidth; i++ {
		idx := MinStackDepth + i
		if idx < len(state) {
			row = append(row, state[idx])
		} else {
			row = append(row, field.Zero())
		}
	}

	return row
}

// Rows materializes every row from 0 through ClkFinal, without the
// power-of-two padding Length reports (spec.md §6, §4.6 shared replay base).
func (t *ExecutionTrace) Rows() [][]*core.FieldElement {
	out := make([][]*core.FieldElement, 0, t.info.ClkFinal+1)
	for clk := uint64(0); clk <= t.info.ClkFinal; clk++ {
		out = append(out, t.Row(clk))
	}
	return out
}
