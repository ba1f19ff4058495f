package vm

import (
	"math"

	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
)

// VmState is one snapshot yielded by StateIterator: the full observable VM
// state as of a single clock cycle (spec.md §4.6).
type VmState struct {
	Clk    uint64
	Fmp    *core.FieldElement
	Stack  []*core.FieldElement
	Memory []AddressWord
}

// StateIterator is a lazy, finite, non-restartable replay of a finished
// execution's per-cycle state, reconstructed from the histories the stack,
// overflow table, memory and system registers already retain (spec.md §4.6).
// It follows the bufio.Scanner idiom: call Next in a loop, read State inside
// the loop body, then check Err once the loop ends.
type StateIterator struct {
	process  *Process
	clkFinal uint64
	clk      uint64
	err      error
	cur      VmState
}

// NewStateIterator creates an iterator over process, replaying clocks 0
// through clkFinal inclusive. execErr, if non-nil, is the error execution
// stopped on; Err returns it only after the loop runs out of cycles to
// yield, mirroring "yield the stored error once, at the end" (spec.md §4.6).
func NewStateIterator(process *Process, clkFinal uint64, execErr error) *StateIterator {
	return &StateIterator{process: process, clkFinal: clkFinal, err: execErr}
}

// Next advances the iterator, reporting whether a new state is available in
// State. The error stored at construction, if any, surfaces through Err only
// once Next returns false.
func (it *StateIterator) Next() bool {
	if it.clk > it.clkFinal {
		return false
	}
	it.cur = VmState{
		Clk:    it.clk,
		Fmp:    it.process.Sys().FmpAt(it.clk),
		Stack:  it.process.Stack().StateAt(it.clk),
		Memory: it.process.Memory().GetValuesAt(0, math.MaxUint64, it.clk),
	}
	it.clk++
	return true
}

// State returns the snapshot produced by the most recent call to Next.
func (it *StateIterator) State() VmState {
	return it.cur
}

// Err returns the execution error the run stopped on, or nil if it ran to
// completion. Only meaningful once Next has returned false.
func (it *StateIterator) Err() error {
	if it.clk <= it.clkFinal {
		return nil
	}
	return it.err
}
