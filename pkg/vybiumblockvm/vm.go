// Package vybiumblockvm provides the public API for the vybium block VM: a
// stack-based processor for a zero-knowledge-proof-friendly instruction set
// over a prime field.
package vybiumblockvm

import (
	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/vm"
)

// VM is the public interface for the vybium block VM.
type VM interface {
	// Field returns the field this VM instance executes over, so callers
	// can build FieldElement values (stack_init, advice tape, op arguments)
	// that are guaranteed compatible.
	Field() *Field

	// NewAdviceSet builds an authenticated advice set from leaves, enforcing
	// this VM's ProcessorConfig.MaxAdviceSetHeight.
	NewAdviceSet(leaves []*FieldElement) (*AdviceSet, error)

	// Execute runs script to completion (or to its first error) and returns
	// the resulting column-oriented execution trace (spec.md §4.1
	// "execute").
	Execute(script *Script, input ProgramInput) (*ExecutionTrace, error)

	// ExecuteIter runs script and returns a lazy iterator that replays its
	// per-cycle state. The iterator's Err, once exhausted, reports the
	// execution error the run stopped on, if any (spec.md §4.6).
	ExecuteIter(script *Script, input ProgramInput) (*StateIterator, error)
}

// vmImpl is the internal implementation of VM.
type vmImpl struct {
	field  *core.Field
	config *ProcessorConfig
}

// NewVM creates a new vybium block VM with the given configuration. A nil
// config uses DefaultProcessorConfig.
func NewVM(config *ProcessorConfig) (VM, error) {
	if config == nil {
		config = DefaultProcessorConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &VMError{Code: ErrInvalidConfig, Message: err.Error()}
	}

	field, err := core.NewField(config.FieldModulus)
	if err != nil {
		return nil, &VMError{Code: ErrFieldCreation, Message: "failed to create field: " + err.Error(), Cause: err}
	}

	return &vmImpl{field: field, config: config.Clone()}, nil
}

func (v *vmImpl) Field() *Field {
	return v.field
}

func (v *vmImpl) NewAdviceSet(leaves []*FieldElement) (*AdviceSet, error) {
	set, err := vm.NewAdviceSet(leaves, v.config.MaxAdviceSetHeight)
	if err != nil {
		return nil, &VMError{Code: ErrInvalidProgram, Message: "advice set exceeds MaxAdviceSetHeight: " + err.Error(), Cause: err}
	}
	return set, nil
}

func (v *vmImpl) newProcess(input ProgramInput) *vm.Process {
	return vm.NewProcess(v.field, input.StackInit, input.AdviceTape, input.AdviceSets, v.config.TraceCapture)
}

// Execute runs script on a freshly created process and returns its trace.
func (v *vmImpl) Execute(script *Script, input ProgramInput) (*ExecutionTrace, error) {
	process := v.newProcess(input)
	if err := process.Execute(script); err != nil {
		return nil, &VMError{Code: ErrExecution, Message: "script execution failed: " + err.Error(), Cause: err}
	}
	return vm.NewExecutionTrace(process), nil
}

// ExecuteIter runs script on a freshly created process, then returns an
// iterator over its per-cycle state regardless of whether execution
// succeeded — a run that failed partway still replays every cycle up to the
// point of failure, with the failure surfacing through the iterator's Err
// once exhausted.
func (v *vmImpl) ExecuteIter(script *Script, input ProgramInput) (*StateIterator, error) {
	process := v.newProcess(input)
	execErr := process.Execute(script)
	clkFinal := process.Sys().Clk()
	return vm.NewStateIterator(process, clkFinal, execErr), nil
}
